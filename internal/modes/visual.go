package modes

import (
	"strings"

	"github.com/vicut/vicut/internal/keystream"
	"github.com/vicut/vicut/internal/linebuf"
	"github.com/vicut/vicut/internal/vicmd"
)

// Visual implements spec.md §4.4.4: "Normal-shaped" key handling (same
// count/register/motion grammar as Normal) but with its own verb
// vocabulary that always operates against the active selection rather
// than a freshly evaluated motion range. A bare motion while visual
// extends the selection instead of just moving the cursor
// (inVisual=true is threaded through to LineBuf.ApplyMotion by the
// caller).
type Visual struct {
	pending strings.Builder
	Line    bool // true for V (linewise) visual
	Block   bool // true for Ctrl-V (block) visual
}

// NewVisual creates a Visual-mode parser. line/block select the visual
// sub-mode's default selection shape.
func NewVisual(line, block bool) *Visual {
	return &Visual{Line: line, Block: block}
}

func (v *Visual) IsRepeatable() bool         { return false }
func (v *Visual) AsReplay() linebuf.CmdReplay { return linebuf.CmdReplay{} }
func (v *Visual) ClampCursor() bool          { return true }
func (v *Visual) PendingSeq() string         { return v.pending.String() }

func (v *Visual) ReportMode() string {
	switch {
	case v.Line:
		return NameVisualLine.String()
	case v.Block:
		return NameVisualBlock.String()
	default:
		return NameVisual.String()
	}
}

var visualVerbs = map[rune]vicmd.Verb{
	'd': vicmd.VerbDelete, 'x': vicmd.VerbDelete,
	'y': vicmd.VerbYank,
	'c': vicmd.VerbChange, 's': vicmd.VerbChange,
	'~': vicmd.VerbToggleRange,
	'u': vicmd.VerbToLower,
	'U': vicmd.VerbToUpper,
	'J': vicmd.VerbJoinLines,
	'>': vicmd.VerbIndent,
	'<': vicmd.VerbDedent,
}

func (v *Visual) HandleKey(ev keystream.KeyEvent) (*vicmd.ViCmd, Status) {
	if ev.Code == keystream.KeyEsc {
		v.pending.Reset()
		cmd := &vicmd.ViCmd{
			Verb:   &vicmd.VerbCmd{Verb: vicmd.VerbNormalMode},
			Motion: &vicmd.Motion{Kind: vicmd.MotionNull},
		}
		return cmd, Complete
	}

	if v.pending.Len() == 0 && (ev.Code == keystream.KeyChar || ev.Code == keystream.KeyGrapheme) && len(ev.Text) == 1 {
		r := []rune(ev.Text)[0]
		switch r {
		case 'o':
			return &vicmd.ViCmd{Verb: &vicmd.VerbCmd{Verb: vicmd.VerbSwapVisualAnchor}}, Complete
		case 'A', 'I':
			vb := vicmd.VerbInsertMode
			return &vicmd.ViCmd{Verb: &vicmd.VerbCmd{Verb: vb}, Flags: vicmd.FlagVisual}, Complete
		}
		if verb, ok := visualVerbs[r]; ok {
			return &vicmd.ViCmd{Verb: &vicmd.VerbCmd{Verb: verb, Count: 1}}, Complete
		}
	}

	tok := tokenFor(ev)
	if tok == "" {
		return nil, Pending
	}
	v.pending.WriteString(tok)

	cmd, status := ParseNormalSeq(v.pending.String())
	switch status {
	case Complete:
		v.pending.Reset()
		return cmd, Complete
	case Invalid:
		v.pending.Reset()
		return nil, Invalid
	default:
		return nil, Pending
	}
}
