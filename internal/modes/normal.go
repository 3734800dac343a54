package modes

import (
	"strings"

	"github.com/vicut/vicut/internal/keystream"
	"github.com/vicut/vicut/internal/linebuf"
	"github.com/vicut/vicut/internal/vicmd"
)

// Normal implements the Normal-mode key parser: spec.md §4.4.1's pending
// grapheme accumulator, attempting a full parse on every key.
type Normal struct {
	pending strings.Builder
	// Visual is not read by HandleKey: this parser always recognizes the
	// normal-mode verb set. The visual-mode verb vocabulary lives in the
	// Visual type.
	Visual *vicmd.CmdFlags
}

// NewNormal creates a Normal-mode parser.
func NewNormal() *Normal { return &Normal{} }

func (n *Normal) IsRepeatable() bool               { return false }
func (n *Normal) AsReplay() linebuf.CmdReplay       { return linebuf.CmdReplay{} }
func (n *Normal) ClampCursor() bool                 { return true }
func (n *Normal) ReportMode() string                { return NameNormal.String() }
func (n *Normal) PendingSeq() string                { return n.pending.String() }

// HandleKey feeds one key event into the pending sequence and attempts a
// parse.
func (n *Normal) HandleKey(ev keystream.KeyEvent) (*vicmd.ViCmd, Status) {
	if ev.Code == keystream.KeyEsc {
		n.pending.Reset()
		return nil, Invalid
	}
	if ev.Code == keystream.KeyChar && ev.Text == "r" && ev.Mods.Has(keystream.ModCtrl) && n.pending.Len() == 0 {
		return n.complete(&vicmd.VerbCmd{Verb: vicmd.VerbRedo, Count: 1}, nil)
	}

	tok := tokenFor(ev)
	if tok == "" {
		return nil, Pending
	}
	n.pending.WriteString(tok)

	cmd, status := ParseNormalSeq(n.pending.String())
	switch status {
	case Complete:
		n.pending.Reset()
		return cmd, Complete
	case Invalid:
		n.pending.Reset()
		return nil, Invalid
	default:
		return nil, Pending
	}
}

func (n *Normal) complete(verb *vicmd.VerbCmd, motion *vicmd.Motion) (*vicmd.ViCmd, Status) {
	cmd := &vicmd.ViCmd{Verb: verb, Motion: motion, Register: vicmd.DefaultRegister()}
	cmd.NormalizeCounts()
	n.pending.Reset()
	return cmd, Complete
}

// tokenFor converts a KeyEvent to the pending-sequence token used by the
// generic text grammar. Arrow/Home/End-style keys map to their hjkl0$
// equivalents so they compose the same way printable keys do.
func tokenFor(ev keystream.KeyEvent) string {
	switch ev.Code {
	case keystream.KeyChar, keystream.KeyGrapheme:
		return ev.Text
	case keystream.KeyLeft:
		return "h"
	case keystream.KeyRight:
		return "l"
	case keystream.KeyUp:
		return "k"
	case keystream.KeyDown:
		return "j"
	case keystream.KeyHome:
		return "0"
	case keystream.KeyEnd:
		return "$"
	case keystream.KeyEnter:
		return "\n"
	case keystream.KeyBackspace:
		return "h"
	case keystream.KeyDelete:
		return "x"
	default:
		return ""
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLetter(r rune) bool { return isLower(r) || isUpper(r) }

func atoiRunes(rs []rune) int {
	v := 0
	for _, r := range rs {
		v = v*10 + int(r-'0')
	}
	return v
}

// ParseNormalSeq attempts to parse seq as a complete Normal-mode command.
// Shared by Normal and Visual (Visual first checks a bare key against its
// own visualVerbs table and calls this for everything else).
func ParseNormalSeq(seq string) (*vicmd.ViCmd, Status) {
	runes := []rune(seq)
	idx := 0
	n := len(runes)

	count1, idx2, hasCount1 := scanCount(runes, idx)
	idx = idx2

	var regName *rune
	if idx < n && runes[idx] == '"' {
		idx++
		if idx >= n {
			return nil, Pending
		}
		if !isLetter(runes[idx]) {
			return nil, Invalid
		}
		r := runes[idx]
		regName = &r
		idx++
	}

	count1b, idx3, hasCount1b := scanCount(runes, idx)
	if hasCount1b {
		if hasCount1 {
			count1 = count1 * count1b
		} else {
			count1 = count1b
			hasCount1 = true
		}
		idx = idx3
	}

	if idx >= n {
		return nil, Pending
	}

	if cmd, status, ok := parseShorthand(regName, runes, idx, count1, hasCount1); ok {
		return cmd, status
	}

	verb, verbCount, consumed, vstatus := parseVerb(runes, idx)
	if vstatus == Pending {
		return nil, Pending
	}
	if vstatus == Invalid {
		return nil, Invalid
	}
	idx = consumed

	if verb != nil {
		verb.Count = firstNonZero(verbCount, count1, 1)
	}

	// Verbs that self-complete without a motion.
	if verb != nil && verbSelfCompletes(verb.Verb) {
		if idx != n {
			return nil, Invalid
		}
		return buildCmd(regName, verb, nil, count1, hasCount1)
	}

	if idx >= n {
		return nil, Pending
	}

	// Double-verb linewise rule: dd, cc, yy, gugu, gUgU, g~g~, g?g?.
	if verb != nil {
		if dm, dstatus, dconsumed := matchDoubledVerb(verb.Verb, runes, idx); dstatus != Invalid {
			if dstatus == Pending {
				return nil, Pending
			}
			idx = dconsumed
			if idx != n {
				return nil, Invalid
			}
			return buildCmd(regName, verb, &dm, count1, hasCount1)
		}
	}

	motion, mcount, mconsumed, mstatus := parseMotion(verb, runes, idx)
	if mstatus == Pending {
		return nil, Pending
	}
	if mstatus == Invalid {
		return nil, Invalid
	}
	idx = mconsumed
	if idx != n {
		return nil, Invalid
	}
	motion.Count = firstNonZero(mcount, 1, 1)
	return buildCmd(regName, verb, &motion, count1, hasCount1)
}

func buildCmd(reg *rune, verb *vicmd.VerbCmd, motion *vicmd.Motion, count1 int, hasCount1 bool) (*vicmd.ViCmd, Status) {
	register := vicmd.DefaultRegister()
	if reg != nil {
		register = vicmd.NewRegisterName(*reg, 1)
	}
	if hasCount1 && verb != nil && motion != nil {
		// count1 was already folded into verb.Count by the caller via
		// firstNonZero; nothing further to do here.
	}
	cmd := &vicmd.ViCmd{Register: register, Verb: verb, Motion: motion, RawSeq: ""}
	cmd.NormalizeCounts()
	return cmd, Complete
}

func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 1
}

func scanCount(runes []rune, idx int) (count int, newIdx int, has bool) {
	n := len(runes)
	if idx >= n || runes[idx] < '1' || runes[idx] > '9' {
		return 0, idx, false
	}
	start := idx
	for idx < n && isDigit(runes[idx]) {
		idx++
	}
	return atoiRunes(runes[start:idx]), idx, true
}

func verbSelfCompletes(v vicmd.Verb) bool {
	switch v {
	case vicmd.VerbPutAfter, vicmd.VerbPutBefore, vicmd.VerbUndo, vicmd.VerbRedo,
		vicmd.VerbRepeatLast, vicmd.VerbReplaceMode, vicmd.VerbJoinLines,
		vicmd.VerbToggleInplace, vicmd.VerbReplaceChar,
		vicmd.VerbInsertMode, vicmd.VerbVisualMode, vicmd.VerbVisualLineMode,
		vicmd.VerbVisualBlockMode, vicmd.VerbExMode:
		return true
	default:
		return false
	}
}

// parseVerb recognizes a single- or double-char verb at runes[idx:].
// Returns verb=nil, status=Complete (meaning "no verb present, proceed to
// motion") when the character at idx does not start any known verb.
func parseVerb(runes []rune, idx int) (verb *vicmd.VerbCmd, count int, newIdx int, status Status) {
	n := len(runes)
	ch := runes[idx]
	switch ch {
	case 'd':
		return &vicmd.VerbCmd{Verb: vicmd.VerbDelete}, 0, idx + 1, Complete
	case 'c':
		return &vicmd.VerbCmd{Verb: vicmd.VerbChange}, 0, idx + 1, Complete
	case 'y':
		return &vicmd.VerbCmd{Verb: vicmd.VerbYank}, 0, idx + 1, Complete
	case 'p':
		return &vicmd.VerbCmd{Verb: vicmd.VerbPutAfter}, 0, idx + 1, Complete
	case 'P':
		return &vicmd.VerbCmd{Verb: vicmd.VerbPutBefore}, 0, idx + 1, Complete
	case 'r':
		if idx+1 >= n {
			return nil, 0, idx, Pending
		}
		return &vicmd.VerbCmd{Verb: vicmd.VerbReplaceChar, Ch: runes[idx+1]}, 0, idx + 2, Complete
	case 'R':
		return &vicmd.VerbCmd{Verb: vicmd.VerbReplaceMode}, 0, idx + 1, Complete
	case '~':
		return &vicmd.VerbCmd{Verb: vicmd.VerbToggleInplace, N: 1}, 0, idx + 1, Complete
	case 'u':
		return &vicmd.VerbCmd{Verb: vicmd.VerbUndo}, 0, idx + 1, Complete
	case '.':
		return &vicmd.VerbCmd{Verb: vicmd.VerbRepeatLast}, 0, idx + 1, Complete
	case 'J':
		return &vicmd.VerbCmd{Verb: vicmd.VerbJoinLines}, 0, idx + 1, Complete
	case '>':
		return &vicmd.VerbCmd{Verb: vicmd.VerbIndent}, 0, idx + 1, Complete
	case '<':
		return &vicmd.VerbCmd{Verb: vicmd.VerbDedent}, 0, idx + 1, Complete
	case 'v':
		return &vicmd.VerbCmd{Verb: vicmd.VerbVisualMode}, 0, idx + 1, Complete
	case 'V':
		return &vicmd.VerbCmd{Verb: vicmd.VerbVisualLineMode}, 0, idx + 1, Complete
	case 'o':
		return &vicmd.VerbCmd{Verb: vicmd.VerbLineBreakAfter}, 0, idx + 1, Complete
	case 'O':
		return &vicmd.VerbCmd{Verb: vicmd.VerbLineBreakBefore}, 0, idx + 1, Complete
	case 'i':
		return &vicmd.VerbCmd{Verb: vicmd.VerbInsertMode}, 0, idx + 1, Complete
	case ':', '/', '?':
		return &vicmd.VerbCmd{Verb: vicmd.VerbExMode, Ch: ch}, 0, idx + 1, Complete
	case 'g':
		if idx+1 >= n {
			return nil, 0, idx, Pending
		}
		switch runes[idx+1] {
		case 'u':
			return &vicmd.VerbCmd{Verb: vicmd.VerbToLower}, 0, idx + 2, Complete
		case 'U':
			return &vicmd.VerbCmd{Verb: vicmd.VerbToUpper}, 0, idx + 2, Complete
		case '~':
			return &vicmd.VerbCmd{Verb: vicmd.VerbToggleRange}, 0, idx + 2, Complete
		case '?':
			return &vicmd.VerbCmd{Verb: vicmd.VerbRot13}, 0, idx + 2, Complete
		default:
			// Not a verb; let motion parsing handle gg/ge/gE.
			return nil, 0, idx, Complete
		}
	default:
		return nil, 0, idx, Complete
	}
}

// matchDoubledVerb recognizes the doubled-verb linewise shorthand (dd, cc,
// yy, >>, <<, gugu, gUgU, g~g~, g?g?). It is only invoked once a verb has
// already been parsed, so it checks whether the *same* verb character(s)
// repeat at idx.
func matchDoubledVerb(v vicmd.Verb, runes []rune, idx int) (vicmd.Motion, Status, int) {
	n := len(runes)
	need := verbGlyph(v)
	if need == "" {
		return vicmd.Motion{}, Invalid, idx
	}
	glyph := []rune(need)
	if idx+len(glyph) > n {
		if idx >= n {
			return vicmd.Motion{}, Pending, idx
		}
		// partial match check
		for i, r := range glyph {
			if idx+i >= n {
				return vicmd.Motion{}, Pending, idx
			}
			if runes[idx+i] != r {
				return vicmd.Motion{}, Invalid, idx
			}
		}
	}
	for i, r := range glyph {
		if runes[idx+i] != r {
			return vicmd.Motion{}, Invalid, idx
		}
	}
	return vicmd.Motion{Kind: vicmd.MotionWholeLine, Count: 1}, Complete, idx + len(glyph)
}

func verbGlyph(v vicmd.Verb) string {
	switch v {
	case vicmd.VerbDelete:
		return "d"
	case vicmd.VerbChange:
		return "c"
	case vicmd.VerbYank:
		return "y"
	case vicmd.VerbIndent:
		return ">"
	case vicmd.VerbDedent:
		return "<"
	case vicmd.VerbToLower:
		return "gu"
	case vicmd.VerbToUpper:
		return "gU"
	case vicmd.VerbToggleRange:
		return "g~"
	case vicmd.VerbRot13:
		return "g?"
	default:
		return ""
	}
}

// parseMotion recognizes the normal-mode motion grammar, including text
// objects and char search. verb is nil for bare motions (cursor movement);
// non-nil to trigger the cw anomaly.
func parseMotion(verb *vicmd.VerbCmd, runes []rune, idx int) (vicmd.Motion, int, int, Status) {
	n := len(runes)
	count, idx2, has := scanCount(runes, idx)
	idx = idx2
	_ = has
	if idx >= n {
		return vicmd.Motion{}, count, idx, Pending
	}
	ch := runes[idx]
	switch ch {
	case 'h':
		return vicmd.Motion{Kind: vicmd.MotionBackwardChar}, count, idx + 1, Complete
	case 'l', ' ':
		return vicmd.Motion{Kind: vicmd.MotionForwardChar}, count, idx + 1, Complete
	case 'j':
		return vicmd.Motion{Kind: vicmd.MotionLineDown}, count, idx + 1, Complete
	case 'k':
		return vicmd.Motion{Kind: vicmd.MotionLineUp}, count, idx + 1, Complete
	case 'w':
		// The cw anomaly (stop at word end, don't eat trailing whitespace)
		// is applied in evalWordMotion by checking for VerbChange; the
		// parsed motion itself is an ordinary WordStart/Forward.
		return vicmd.Motion{Kind: vicmd.MotionWord, Word: vicmd.WordNormal, WordTo: vicmd.WordStart, Dir: vicmd.DirForward}, count, idx + 1, Complete
	case 'W':
		return vicmd.Motion{Kind: vicmd.MotionWord, Word: vicmd.WordBig, WordTo: vicmd.WordStart, Dir: vicmd.DirForward}, count, idx + 1, Complete
	case 'e':
		return vicmd.Motion{Kind: vicmd.MotionWord, Word: vicmd.WordNormal, WordTo: vicmd.WordEnd, Dir: vicmd.DirForward}, count, idx + 1, Complete
	case 'E':
		return vicmd.Motion{Kind: vicmd.MotionWord, Word: vicmd.WordBig, WordTo: vicmd.WordEnd, Dir: vicmd.DirForward}, count, idx + 1, Complete
	case 'b':
		return vicmd.Motion{Kind: vicmd.MotionWord, Word: vicmd.WordNormal, WordTo: vicmd.WordStart, Dir: vicmd.DirBackward}, count, idx + 1, Complete
	case 'B':
		return vicmd.Motion{Kind: vicmd.MotionWord, Word: vicmd.WordBig, WordTo: vicmd.WordStart, Dir: vicmd.DirBackward}, count, idx + 1, Complete
	case '0':
		return vicmd.Motion{Kind: vicmd.MotionBeginningOfLine}, count, idx + 1, Complete
	case '^':
		return vicmd.Motion{Kind: vicmd.MotionBeginningOfFirstWord}, count, idx + 1, Complete
	case '$':
		return vicmd.Motion{Kind: vicmd.MotionEndOfLine}, count, idx + 1, Complete
	case '%':
		return vicmd.Motion{Kind: vicmd.MotionToDelimMatch}, count, idx + 1, Complete
	case 'G':
		return vicmd.Motion{Kind: vicmd.MotionEndOfBuffer}, count, idx + 1, Complete
	case 'g':
		if idx+1 >= n {
			return vicmd.Motion{}, count, idx, Pending
		}
		switch runes[idx+1] {
		case 'g':
			return vicmd.Motion{Kind: vicmd.MotionBeginningOfBuffer}, count, idx + 2, Complete
		case 'e':
			return vicmd.Motion{Kind: vicmd.MotionWord, Word: vicmd.WordNormal, WordTo: vicmd.WordEnd, Dir: vicmd.DirBackward}, count, idx + 2, Complete
		case 'E':
			return vicmd.Motion{Kind: vicmd.MotionWord, Word: vicmd.WordBig, WordTo: vicmd.WordEnd, Dir: vicmd.DirBackward}, count, idx + 2, Complete
		default:
			return vicmd.Motion{}, count, idx, Invalid
		}
	case 'f', 'F', 't', 'T':
		if idx+1 >= n {
			return vicmd.Motion{}, count, idx, Pending
		}
		dir := vicmd.DirForward
		dest := vicmd.DestOn
		switch ch {
		case 'F':
			dir = vicmd.DirBackward
		case 't':
			dest = vicmd.DestBefore
		case 'T':
			dir = vicmd.DirBackward
			dest = vicmd.DestBefore
		}
		return vicmd.Motion{Kind: vicmd.MotionCharSearch, Dir: dir, Dest: dest, Ch: runes[idx+1]}, count, idx + 2, Complete
	case ';':
		return vicmd.Motion{Kind: vicmd.MotionRepeatMotion}, count, idx + 1, Complete
	case ',':
		return vicmd.Motion{Kind: vicmd.MotionRepeatMotionRev}, count, idx + 1, Complete
	case 'n':
		return vicmd.Motion{Kind: vicmd.MotionPatternSearch}, count, idx + 1, Complete
	case 'N':
		return vicmd.Motion{Kind: vicmd.MotionPatternSearchRev}, count, idx + 1, Complete
	case 'i', 'a':
		if idx+1 >= n {
			return vicmd.Motion{}, count, idx, Pending
		}
		bound := vicmd.BoundInside
		if ch == 'a' {
			bound = vicmd.BoundAround
		}
		obj, ok := textObjectFor(runes[idx+1])
		if !ok {
			return vicmd.Motion{}, count, idx, Invalid
		}
		word := vicmd.WordNormal
		if runes[idx+1] == 'W' {
			word = vicmd.WordBig
		}
		return vicmd.Motion{Kind: vicmd.MotionTextObject, Object: obj, Bound: bound, Word: word}, count, idx + 2, Complete
	default:
		return vicmd.Motion{}, count, idx, Invalid
	}
}

// parseShorthand recognizes the single-key commands that are conventional
// aliases for a verb+motion pair: x=dl, X=dh, D=d$, C=c$, s=cl, S=cc,
// Y=yy, a/A/I move the cursor then enter Insert mode. It only fires when
// runes[idx] is the last pending character.
func parseShorthand(reg *rune, runes []rune, idx int, count1 int, hasCount1 bool) (*vicmd.ViCmd, Status, bool) {
	n := len(runes)
	ch := runes[idx]
	var verb vicmd.VerbCmd
	var motion vicmd.Motion
	switch ch {
	case 'x':
		verb = vicmd.VerbCmd{Verb: vicmd.VerbDelete}
		motion = vicmd.Motion{Kind: vicmd.MotionForwardCharForced}
	case 'X':
		verb = vicmd.VerbCmd{Verb: vicmd.VerbDelete}
		motion = vicmd.Motion{Kind: vicmd.MotionBackwardCharForced}
	case 'D':
		verb = vicmd.VerbCmd{Verb: vicmd.VerbDelete}
		motion = vicmd.Motion{Kind: vicmd.MotionEndOfLine}
	case 'C':
		verb = vicmd.VerbCmd{Verb: vicmd.VerbChange}
		motion = vicmd.Motion{Kind: vicmd.MotionEndOfLine}
	case 's':
		verb = vicmd.VerbCmd{Verb: vicmd.VerbChange}
		motion = vicmd.Motion{Kind: vicmd.MotionForwardCharForced}
	case 'S':
		verb = vicmd.VerbCmd{Verb: vicmd.VerbChange}
		motion = vicmd.Motion{Kind: vicmd.MotionWholeLine}
	case 'Y':
		verb = vicmd.VerbCmd{Verb: vicmd.VerbYank}
		motion = vicmd.Motion{Kind: vicmd.MotionWholeLine}
	case 'a':
		verb = vicmd.VerbCmd{Verb: vicmd.VerbInsertMode}
		motion = vicmd.Motion{Kind: vicmd.MotionForwardCharForced}
	case 'A':
		verb = vicmd.VerbCmd{Verb: vicmd.VerbInsertMode}
		motion = vicmd.Motion{Kind: vicmd.MotionEndOfLine}
	case 'I':
		verb = vicmd.VerbCmd{Verb: vicmd.VerbInsertMode}
		motion = vicmd.Motion{Kind: vicmd.MotionBeginningOfFirstWord}
	default:
		return nil, Invalid, false
	}
	if idx+1 != n {
		return nil, Invalid, true
	}
	count := firstNonZero(count1, 1)
	register := vicmd.DefaultRegister()
	if reg != nil {
		register = vicmd.NewRegisterName(*reg, 1)
	}
	cmd := &vicmd.ViCmd{Register: register, Verb: &verb, Motion: &motion}
	if ch == 'a' || ch == 'A' || ch == 'I' {
		// The count governs the insert-mode repeat, not the one-off
		// cursor move that opens Insert mode; skip the generic
		// verb.count*motion.count fold.
		verb.Count = count
		motion.Count = 1
	} else {
		verb.Count = count
		motion.Count = 1
		cmd.NormalizeCounts()
	}
	_ = hasCount1
	return cmd, Complete, true
}

func textObjectFor(r rune) (vicmd.TextObjKind, bool) {
	switch r {
	case 'w':
		return vicmd.TextObjWord, true
	case 'W':
		return vicmd.TextObjWord, true
	case '"':
		return vicmd.TextObjDoubleQuote, true
	case '\'':
		return vicmd.TextObjSingleQuote, true
	case '`':
		return vicmd.TextObjBacktickQuote, true
	case '(', ')':
		return vicmd.TextObjParen, true
	case '{', '}':
		return vicmd.TextObjBrace, true
	case '[', ']':
		return vicmd.TextObjBracket, true
	case '<', '>':
		return vicmd.TextObjAngle, true
	case 'b':
		return vicmd.TextObjAnyBracket, true
	case 's':
		return vicmd.TextObjSentence, true
	default:
		return vicmd.TextObjKind(0), false
	}
}
