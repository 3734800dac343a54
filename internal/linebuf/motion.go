package linebuf

import (
	"github.com/vicut/vicut/internal/vicmd"
)

// EvalMotion evaluates m (optionally in the context of verb, which only
// affects the cw anomaly) against the buffer and returns a MotionKindValue.
// Grounded on spec.md §4.3.2 / original_source/src/linebuf.rs's eval_motion.
// m.Kind is a closed enum that evalMotionDispatch switches over exhaustively;
// the bounds check here is the spec.md §7 UnsupportedMotion backstop for a
// Kind added to vicmd without a matching dispatch arm.
func (b *LineBuf) EvalMotion(verb *vicmd.VerbCmd, m vicmd.Motion) (MotionKindValue, error) {
	if m.Kind < vicmd.MotionNone || m.Kind > vicmd.MotionNull {
		return Null(), &UnsupportedMotionError{Kind: m.Kind}
	}
	return b.evalMotionDispatch(verb, m), nil
}

// evalMotionDispatch holds the actual per-Kind switch; split out so
// EvalMotion's bounds check stays a single early return rather than
// threading an error through every arm below.
func (b *LineBuf) evalMotionDispatch(verb *vicmd.VerbCmd, m vicmd.Motion) MotionKindValue {
	count := m.Count
	if count <= 0 {
		count = 1
	}
	cur := b.cursor.Get()

	switch m.Kind {
	case vicmd.MotionNone, vicmd.MotionNull:
		return Null()

	case vicmd.MotionForwardChar:
		return b.evalForwardChar(cur, count, false)
	case vicmd.MotionBackwardChar:
		return b.evalBackwardChar(cur, count, false)
	case vicmd.MotionForwardCharForced:
		return b.evalForwardChar(cur, count, true)
	case vicmd.MotionBackwardCharForced:
		return b.evalBackwardChar(cur, count, true)

	case vicmd.MotionLineUp, vicmd.MotionLineUpCharwise:
		return b.evalVertical(cur, -count, m.Kind == vicmd.MotionLineUpCharwise)
	case vicmd.MotionLineDown, vicmd.MotionLineDownCharwise:
		return b.evalVertical(cur, count, m.Kind == vicmd.MotionLineDownCharwise)

	case vicmd.MotionWholeLine:
		return b.evalWholeLine(cur, count)

	case vicmd.MotionWord:
		return b.evalWordMotion(verb, cur, count, m)

	case vicmd.MotionBeginningOfLine:
		s, _ := b.LineBounds(b.LineOf(cur))
		return On(s)
	case vicmd.MotionBeginningOfFirstWord:
		s, e := b.LineBounds(b.LineOf(cur))
		p := s
		for p < e && IsWhitespace(b.GraphemeAt(p)) {
			p++
		}
		return On(p)
	case vicmd.MotionEndOfLine:
		// Onto, not On: $ lands on the last grapheme of the line for bare
		// movement (apply.go treats On/Onto identically there) but must
		// still reach that same grapheme when used as an operand (d$, y$),
		// which needs RangeFromMotion's inclusive +1 on the far end.
		_, e := b.LineBounds(b.LineOf(cur))
		if e > 0 {
			return Onto(e - 1)
		}
		return Onto(e)
	case vicmd.MotionEndOfLastWord:
		_, e := b.LineBounds(b.LineOf(cur))
		p := e - 1
		for p > 0 && IsWhitespace(b.GraphemeAt(p)) {
			p--
		}
		return On(maxInt(p, 0))

	case vicmd.MotionBeginningOfBuffer:
		return On(0)
	case vicmd.MotionEndOfBuffer:
		return On(maxInt(b.GraphemeCount()-1, 0))
	case vicmd.MotionWholeBuffer:
		return Inclusive(0, b.GraphemeCount())

	case vicmd.MotionToDelimMatch:
		if p, ok := b.findMatchingDelim(cur); ok {
			return On(p)
		}
		return Null()
	case vicmd.MotionToParen:
		if p, ok := b.findUnmatched(cur, '(', ')', m.Dir); ok {
			return On(p)
		}
		return Null()
	case vicmd.MotionToBrace:
		if p, ok := b.findUnmatched(cur, '{', '}', m.Dir); ok {
			return On(p)
		}
		return Null()
	case vicmd.MotionToBracket:
		if p, ok := b.findUnmatched(cur, '[', ']', m.Dir); ok {
			return On(p)
		}
		return Null()

	case vicmd.MotionTextObject:
		return b.evalTextObject(cur, m)

	case vicmd.MotionCharSearch:
		return b.evalCharSearch(cur, count, m)

	case vicmd.MotionPatternSearch:
		return b.evalPatternSearch(cur, m.Pattern, true)
	case vicmd.MotionPatternSearchRev:
		return b.evalPatternSearch(cur, m.Pattern, false)

	case vicmd.MotionRange:
		return Exclusive(m.RangeLo, m.RangeHi)

	case vicmd.MotionRepeatMotion, vicmd.MotionRepeatMotionRev:
		// Resolved by the Executor, which substitutes the remembered
		// char-search motion before calling EvalMotion.
		return Null()

	default:
		return Null()
	}
}

// evalForwardChar/evalBackwardChar follow original_source/src/linebuf.rs's
// eval_motion arm for Motion::ForwardChar/BackwardChar: the whole motion
// fails (Null) the moment a step would cross a newline, rather than
// stopping short of it; the Forced variants never consult newlines at all
// and saturate at the buffer bounds.
func (b *LineBuf) evalForwardChar(cur, count int, forced bool) MotionKindValue {
	if forced {
		n := b.GraphemeCount()
		p := cur + count
		if p > n {
			p = n
		}
		return On(p)
	}
	p := cur
	for i := 0; i < count; i++ {
		if b.GraphemeAt(p) == "\n" {
			return Null()
		}
		p++
	}
	return On(p)
}

func (b *LineBuf) evalBackwardChar(cur, count int, forced bool) MotionKindValue {
	if forced {
		p := cur - count
		if p < 0 {
			p = 0
		}
		return On(p)
	}
	p := cur
	for i := 0; i < count; i++ {
		if p <= 0 {
			return Null()
		}
		if b.GraphemeAt(p-1) == "\n" {
			return Null()
		}
		p--
	}
	return On(p)
}

// evalVertical computes j/k style motion. delta is signed line count.
// Returns InclusiveWithTargetCol per spec.md §4.3.2.
func (b *LineBuf) evalVertical(cur, delta int, charwise bool) MotionKindValue {
	_ = charwise
	lines := b.lines()
	curLine := b.LineOf(cur)
	targetLine := curLine + delta
	if targetLine < 0 || targetLine >= len(lines) {
		return Null()
	}

	col := b.savedCol
	var targetCol int
	if col != nil {
		targetCol = *col
	} else {
		s, _ := b.LineBounds(curLine)
		targetCol = StringDisplayWidth(b.Slice(s, cur))
		b.savedCol = &targetCol
	}

	s, e := b.LineBounds(targetLine)
	p := s
	width := 0
	for p < e {
		gw := GraphemeDisplayWidth(b.GraphemeAt(p))
		if width+gw > targetCol {
			break
		}
		width += gw
		p++
	}
	return InclusiveWithTargetCol(minInt(cur, p), maxInt(cur, p), targetCol)
}

func (b *LineBuf) evalWholeLine(cur, count int) MotionKindValue {
	startLine := b.LineOf(cur)
	endLine := startLine + count - 1
	lines := b.lines()
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}
	s, _ := b.LineBounds(startLine)
	_, e := b.LineBounds(endLine)
	if lines[endLine].hasNewline {
		e++
	}
	return Inclusive(s, e)
}

// evalWordMotion implements w/W/e/E/b/B/ge/gE, including the cw anomaly.
func (b *LineBuf) evalWordMotion(verb *vicmd.VerbCmd, cur, count int, m vicmd.Motion) MotionKindValue {
	big := m.Word == vicmd.WordBig
	forward := m.Dir == vicmd.DirForward
	toEnd := m.WordTo == vicmd.WordEnd

	isChangeWord := verb != nil && verb.Verb == vicmd.VerbChange && !toEnd && forward
	p := cur
	n := b.GraphemeCount()
	for i := 0; i < count; i++ {
		if forward {
			if toEnd {
				p = b.wordEndForward(p, big)
			} else if isChangeWord {
				p = b.wordStartForwardForChange(p, big)
			} else {
				p = b.wordStartForward(p, big)
			}
		} else {
			if toEnd {
				p = b.wordEndBackward(p, big)
			} else {
				p = b.wordStartBackward(p, big)
			}
		}
	}
	if p == cur && n > 0 {
		return Null()
	}
	return On(p)
}

func (b *LineBuf) classAt(i int) CharClass {
	return ClassOf(b.GraphemeAt(i))
}

func sameClass(a, c CharClass, big bool) bool {
	if big {
		return (a == ClassWhitespace) == (c == ClassWhitespace)
	}
	return a == c
}

func (b *LineBuf) wordStartForward(p int, big bool) int {
	n := b.GraphemeCount()
	if p >= n {
		return p
	}
	start := b.classAt(p)
	for p < n && sameClass(b.classAt(p), start, big) && start != ClassWhitespace {
		p++
	}
	for p < n && b.classAt(p) == ClassWhitespace {
		p++
	}
	return p
}

// wordStartForwardForChange implements the cw anomaly: when standing on a
// word's left boundary, the motion stops at the word's end and does not
// consume trailing whitespace.
func (b *LineBuf) wordStartForwardForChange(p int, big bool) int {
	n := b.GraphemeCount()
	if p >= n {
		return p
	}
	start := b.classAt(p)
	if start == ClassWhitespace {
		return b.wordStartForward(p, big)
	}
	for p < n && sameClass(b.classAt(p), start, big) {
		p++
	}
	return p
}

func (b *LineBuf) wordEndForward(p int, big bool) int {
	n := b.GraphemeCount()
	if p+1 >= n {
		return maxInt(n-1, 0)
	}
	p++
	for p < n && b.classAt(p) == ClassWhitespace {
		p++
	}
	if p >= n {
		return maxInt(n-1, 0)
	}
	cls := b.classAt(p)
	for p+1 < n && sameClass(b.classAt(p+1), cls, big) {
		p++
	}
	return p
}

func (b *LineBuf) wordStartBackward(p int, big bool) int {
	if p <= 0 {
		return 0
	}
	p--
	for p > 0 && b.classAt(p) == ClassWhitespace {
		p--
	}
	if p == 0 {
		return 0
	}
	cls := b.classAt(p)
	for p > 0 && sameClass(b.classAt(p-1), cls, big) {
		p--
	}
	return p
}

func (b *LineBuf) wordEndBackward(p int, big bool) int {
	if p <= 0 {
		return 0
	}
	p--
	for p > 0 && b.classAt(p) == ClassWhitespace {
		p--
	}
	if p == 0 {
		return 0
	}
	cls := b.classAt(p)
	for p > 0 && sameClass(b.classAt(p-1), cls, big) {
		p--
	}
	// now at word start; step back further to previous word's end
	if p == 0 {
		return 0
	}
	p--
	for p > 0 && b.classAt(p) == ClassWhitespace {
		p--
	}
	return p
}

// evalCharSearch implements f/F/t/T.
func (b *LineBuf) evalCharSearch(cur, count int, m vicmd.Motion) MotionKindValue {
	_, lineEnd := b.LineBounds(b.LineOf(cur))
	p := cur
	found := -1
	if m.Dir == vicmd.DirForward {
		for n := 0; n < count; n++ {
			q := p + 1
			for q < lineEnd && b.GraphemeAt(q) != string(m.Ch) {
				q++
			}
			if q >= lineEnd {
				return Null()
			}
			p = q
		}
		found = p
		if m.Dest == vicmd.DestBefore {
			found--
		}
	} else {
		lineStart, _ := b.LineBounds(b.LineOf(cur))
		for n := 0; n < count; n++ {
			q := p - 1
			for q >= lineStart && b.GraphemeAt(q) != string(m.Ch) {
				q--
			}
			if q < lineStart {
				return Null()
			}
			p = q
		}
		found = p
		if m.Dest == vicmd.DestBefore {
			found++
		}
	}
	return On(found)
}

// evalPatternSearch implements / and ? motions via the regexp2 cache.
func (b *LineBuf) evalPatternSearch(cur int, pattern string, forward bool) MotionKindValue {
	if pattern == "" {
		return Null()
	}
	byteCur := b.byteOffset(cur)
	if forward {
		s, _, ok, err := FindForward(pattern, b.buffer, byteCur+1)
		if err != nil || !ok {
			return Null()
		}
		return On(ByteToGraphemeOffset(b.buffer, s))
	}
	s, _, ok, err := FindBackward(pattern, b.buffer, maxInt(byteCur-1, 0))
	if err != nil || !ok {
		return Null()
	}
	return On(ByteToGraphemeOffset(b.buffer, s))
}

// findMatchingDelim implements %: find the next bracket at/after cursor
// (the search runs to the end of the buffer, not just the current line),
// then scan for its balanced partner.
func (b *LineBuf) findMatchingDelim(cur int) (int, bool) {
	pairs := map[string]string{"(": ")", "[": "]", "{": "}", "<": ">"}
	closers := map[string]string{")": "(", "]": "[", "}": "{", ">": "<"}
	n := b.GraphemeCount()
	p := cur
	for p < n {
		g := b.GraphemeAt(p)
		if _, ok := pairs[g]; ok {
			return b.scanForward(p, g, pairs[g])
		}
		if _, ok := closers[g]; ok {
			return b.scanBackward(p, closers[g], g)
		}
		p++
	}
	return 0, false
}

func (b *LineBuf) scanForward(from int, open, close string) (int, bool) {
	depth := 0
	n := b.GraphemeCount()
	for p := from; p < n; p++ {
		g := b.GraphemeAt(p)
		if g == open {
			depth++
		} else if g == close {
			depth--
			if depth == 0 {
				return p, true
			}
		}
	}
	return 0, false
}

func (b *LineBuf) scanBackward(from int, open, close string) (int, bool) {
	depth := 0
	for p := from; p >= 0; p-- {
		g := b.GraphemeAt(p)
		if g == close {
			depth++
		} else if g == open {
			depth--
			if depth == 0 {
				return p, true
			}
		}
	}
	return 0, false
}

// findUnmatched implements [(, ]), [{, ]}, depth-tracking scans.
func (b *LineBuf) findUnmatched(cur int, open, close byte, dir vicmd.Direction) (int, bool) {
	openS, closeS := string(open), string(close)
	if dir == vicmd.DirBackward {
		depth := 0
		for p := cur - 1; p >= 0; p-- {
			g := b.GraphemeAt(p)
			if g == closeS {
				depth++
			} else if g == openS {
				if depth == 0 {
					return p, true
				}
				depth--
			}
		}
		return 0, false
	}
	depth := 0
	n := b.GraphemeCount()
	for p := cur + 1; p < n; p++ {
		g := b.GraphemeAt(p)
		if g == openS {
			depth++
		} else if g == closeS {
			if depth == 0 {
				return p, true
			}
			depth--
		}
	}
	return 0, false
}

// isEscapedAt reports whether the grapheme at idx is preceded by an odd
// number of consecutive backslashes.
func (b *LineBuf) isEscapedAt(idx int) bool {
	count := 0
	p := idx - 1
	for p >= 0 && b.GraphemeAt(p) == `\` {
		count++
		p--
	}
	return count%2 == 1
}

func delimPair(kind vicmd.TextObjKind) (open, close string, ok bool) {
	switch kind {
	case vicmd.TextObjParen:
		return "(", ")", true
	case vicmd.TextObjBracket:
		return "[", "]", true
	case vicmd.TextObjBrace:
		return "{", "}", true
	case vicmd.TextObjAngle:
		return "<", ">", true
	}
	return "", "", false
}

func quoteChar(kind vicmd.TextObjKind) (string, bool) {
	switch kind {
	case vicmd.TextObjDoubleQuote:
		return `"`, true
	case vicmd.TextObjSingleQuote:
		return `'`, true
	case vicmd.TextObjBacktickQuote:
		return "`", true
	}
	return "", false
}

// evalTextObject implements the paired-delimiter, quote, and word text
// objects. Paragraph objects are a documented open question (spec.md §9)
// and are not implemented; Sentence is implemented.
func (b *LineBuf) evalTextObject(cur int, m vicmd.Motion) MotionKindValue {
	if open, close, ok := delimPair(m.Object); ok {
		return b.evalPairedDelim(cur, open, close, m.Bound)
	}
	if q, ok := quoteChar(m.Object); ok {
		return b.evalQuote(cur, q, m.Bound)
	}
	switch m.Object {
	case vicmd.TextObjAnyBracket:
		return b.evalAnyBracket(cur, m.Bound)
	case vicmd.TextObjWord:
		return b.evalWordObject(cur, m)
	case vicmd.TextObjSentence:
		return b.evalSentenceObject(cur, m.Bound)
	default:
		return Null()
	}
}

func (b *LineBuf) evalAnyBracket(cur int, bound vicmd.Bound) MotionKindValue {
	best := MotionKindValue{Tag: MKNull}
	bestWidth := -1
	for _, pair := range [][2]string{{"(", ")"}, {"[", "]"}, {"{", "}"}} {
		mv := b.evalPairedDelim(cur, pair[0], pair[1], bound)
		if s, e, ok := mv.Range(); ok {
			w := e - s
			if bestWidth == -1 || w < bestWidth {
				bestWidth = w
				best = mv
			}
		}
	}
	return best
}

// evalPairedDelim implements i(/a(/i[/a[/i{/a{/i</a< per spec.md §4.3.2:
// scan backward tracking escape/balance for an opener, then forward for the
// matching closer; if no opener is found behind the cursor, scan forward
// for the first enclosing pair instead.
func (b *LineBuf) evalPairedDelim(cur int, open, close string, bound vicmd.Bound) MotionKindValue {
	openPos, ok := b.findEnclosingOpen(cur, open, close)
	if !ok {
		openPos, ok = b.findEnclosingOpenForward(cur, open, close)
		if !ok {
			return Null()
		}
	}
	closePos, ok := b.scanForwardEscaped(openPos, open, close)
	if !ok {
		return Null()
	}
	if bound == vicmd.BoundAround {
		end := closePos + 1
		n := b.GraphemeCount()
		for end < n && IsWhitespace(b.GraphemeAt(end)) && b.LineOf(end) == b.LineOf(closePos) {
			end++
		}
		return Inclusive(openPos, end-1)
	}
	if closePos == openPos+1 {
		return Inclusive(openPos+1, openPos)
	}
	return Inclusive(openPos+1, closePos-1)
}

func (b *LineBuf) findEnclosingOpen(cur int, open, close string) (int, bool) {
	depth := 0
	for p := cur; p >= 0; p-- {
		g := b.GraphemeAt(p)
		if b.isEscapedAt(p) {
			continue
		}
		if g == close && p != cur {
			depth++
		} else if g == open {
			if depth == 0 {
				return p, true
			}
			depth--
		}
	}
	return 0, false
}

func (b *LineBuf) findEnclosingOpenForward(cur int, open, _ string) (int, bool) {
	n := b.GraphemeCount()
	for p := cur; p < n; p++ {
		if b.GraphemeAt(p) == open && !b.isEscapedAt(p) {
			return p, true
		}
	}
	return 0, false
}

func (b *LineBuf) scanForwardEscaped(from int, open, close string) (int, bool) {
	depth := 0
	n := b.GraphemeCount()
	for p := from; p < n; p++ {
		if b.isEscapedAt(p) {
			continue
		}
		g := b.GraphemeAt(p)
		if g == open {
			depth++
		} else if g == close {
			depth--
			if depth == 0 {
				return p, true
			}
		}
	}
	return 0, false
}

// evalQuote implements i"/a"/i'/a'/i`/a`, restricted to the current line,
// with symmetric escape-parity handling.
func (b *LineBuf) evalQuote(cur int, q string, bound vicmd.Bound) MotionKindValue {
	lineStart, lineEnd := b.LineBounds(b.LineOf(cur))
	var positions []int
	for p := lineStart; p < lineEnd; p++ {
		if b.GraphemeAt(p) == q && !b.isEscapedAt(p) {
			positions = append(positions, p)
		}
	}
	var openPos, closePos int
	found := false
	for i := 0; i+1 < len(positions); i += 2 {
		if positions[i] <= cur && cur <= positions[i+1] {
			openPos, closePos = positions[i], positions[i+1]
			found = true
			break
		}
	}
	if !found {
		for i := 0; i+1 < len(positions); i += 2 {
			if positions[i] >= cur {
				openPos, closePos = positions[i], positions[i+1]
				found = true
				break
			}
		}
	}
	if !found {
		return Null()
	}
	if bound == vicmd.BoundAround {
		end := closePos + 1
		for end < lineEnd && IsWhitespace(b.GraphemeAt(end)) {
			end++
		}
		return Inclusive(openPos, end-1)
	}
	if closePos == openPos+1 {
		return Inclusive(openPos+1, openPos)
	}
	return Inclusive(openPos+1, closePos-1)
}

// evalWordObject implements iw/aw/iW/aW.
func (b *LineBuf) evalWordObject(cur int, m vicmd.Motion) MotionKindValue {
	big := m.Word == vicmd.WordBig
	n := b.GraphemeCount()
	if n == 0 {
		return Null()
	}
	cls := b.classAt(minInt(cur, n-1))
	s := cur
	for s > 0 && sameClass(b.classAt(s-1), cls, big) {
		s--
	}
	e := cur
	for e+1 < n && sameClass(b.classAt(e+1), cls, big) {
		e++
	}
	if m.Bound == vicmd.BoundInside {
		return Inclusive(s, e)
	}
	end := e + 1
	consumedTrailing := false
	for end < n && b.classAt(end) == ClassWhitespace {
		end++
		consumedTrailing = true
	}
	if !consumedTrailing {
		for s > 0 && b.classAt(s-1) == ClassWhitespace {
			s--
		}
	}
	return Inclusive(s, end-1)
}

func isSentenceTerminator(g string) bool {
	return g == "." || g == "?" || g == "!"
}

func isClosingPunct(g string) bool {
	return g == ")" || g == "]" || g == `"` || g == "'"
}

// evalSentenceObject implements a minimal sentence text object: terminators
// are '.', '?', '!'; a sentence starts at the first non-whitespace grapheme
// following whitespace that followed a terminator (ignoring trailing
// closers), or at buffer start. A line start alone does not begin a
// sentence.
func (b *LineBuf) evalSentenceObject(cur int, bound vicmd.Bound) MotionKindValue {
	n := b.GraphemeCount()
	start := b.sentenceStart(cur)
	end := start
	for end < n {
		g := b.GraphemeAt(end)
		if isSentenceTerminator(g) {
			p := end + 1
			for p < n && isClosingPunct(b.GraphemeAt(p)) {
				p++
			}
			end = p
			break
		}
		end++
	}
	if bound == vicmd.BoundAround {
		e := end
		for e < n && IsWhitespace(b.GraphemeAt(e)) {
			e++
		}
		return Inclusive(start, maxInt(e-1, start))
	}
	return Inclusive(start, maxInt(end-1, start))
}

func (b *LineBuf) sentenceStart(cur int) int {
	p := cur
	for p > 0 {
		prev := b.GraphemeAt(p - 1)
		if IsWhitespace(prev) {
			q := p - 1
			for q > 0 && IsWhitespace(b.GraphemeAt(q-1)) {
				q--
			}
			if q > 0 && isSentenceTerminatorSkippingClosers(b, q-1) {
				return p
			}
			p = q
			continue
		}
		p--
	}
	return 0
}

func isSentenceTerminatorSkippingClosers(b *LineBuf, p int) bool {
	for p >= 0 && isClosingPunct(b.GraphemeAt(p)) {
		p--
	}
	if p < 0 {
		return false
	}
	return isSentenceTerminator(b.GraphemeAt(p))
}

// NextSentenceStart implements ")" motion: forward to the next sentence
// start.
func (b *LineBuf) NextSentenceStart(cur int) MotionKindValue {
	n := b.GraphemeCount()
	p := cur
	for p < n {
		g := b.GraphemeAt(p)
		if isSentenceTerminator(g) {
			p++
			for p < n && isClosingPunct(b.GraphemeAt(p)) {
				p++
			}
			for p < n && IsWhitespace(b.GraphemeAt(p)) {
				p++
			}
			if p < n {
				return To(p)
			}
			return To(n)
		}
		p++
	}
	return Null()
}

// PrevSentenceStart implements "(" motion: backward by repeatedly
// re-finding the prior sentence start.
func (b *LineBuf) PrevSentenceStart(cur int) MotionKindValue {
	s := b.sentenceStart(cur)
	if s == cur {
		if cur == 0 {
			return Null()
		}
		s = b.sentenceStart(cur - 1)
	}
	return To(s)
}
