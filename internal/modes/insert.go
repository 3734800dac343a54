package modes

import (
	"github.com/vicut/vicut/internal/keystream"
	"github.com/vicut/vicut/internal/linebuf"
	"github.com/vicut/vicut/internal/vicmd"
)

// Insert implements spec.md §4.4.2: every keystroke produces at most one
// primitive ViCmd, logged for dot-repeat replay on exit.
type Insert struct {
	log    []vicmd.ViCmd
	repeat int
}

// NewInsert creates an Insert-mode parser with the given dot-repeat count
// (the verb count that opened Insert mode, e.g. "3i").
func NewInsert(repeat int) *Insert {
	if repeat <= 0 {
		repeat = 1
	}
	return &Insert{repeat: repeat}
}

func (m *Insert) IsRepeatable() bool { return true }
func (m *Insert) ClampCursor() bool  { return false }
func (m *Insert) ReportMode() string { return NameInsert.String() }
func (m *Insert) PendingSeq() string { return "" }

func (m *Insert) AsReplay() linebuf.CmdReplay {
	if len(m.log) == 0 {
		return linebuf.CmdReplay{}
	}
	cmds := make([]vicmd.ViCmd, len(m.log))
	copy(cmds, m.log)
	return linebuf.CmdReplay{Multi: &linebuf.CmdReplayMulti{Cmds: cmds, Repeat: m.repeat}}
}

// HandleKey returns the primitive ViCmd for this key. Esc returns a
// NormalMode verb with a BackwardChar motion (not logged); callers check
// the returned verb's mode-transition flag to detect mode exit.
func (m *Insert) HandleKey(ev keystream.KeyEvent) (*vicmd.ViCmd, Status) {
	var cmd *vicmd.ViCmd
	switch {
	case ev.Code == keystream.KeyEsc:
		cmd = &vicmd.ViCmd{
			Verb:   &vicmd.VerbCmd{Verb: vicmd.VerbNormalMode},
			Motion: &vicmd.Motion{Kind: vicmd.MotionBackwardChar, Count: 1},
		}
		return cmd, Complete
	case ev.Code == keystream.KeyEnter:
		cmd = &vicmd.ViCmd{
			Verb: &vicmd.VerbCmd{Verb: vicmd.VerbInsertChar, Ch: '\n'},
		}
	case ev.Code == keystream.KeyBackspace, (ev.Code == keystream.KeyChar && ev.Text == "h" && ev.Mods.Has(keystream.ModCtrl)):
		cmd = &vicmd.ViCmd{
			Verb:   &vicmd.VerbCmd{Verb: vicmd.VerbDelete},
			Motion: &vicmd.Motion{Kind: vicmd.MotionBackwardCharForced, Count: 1},
		}
	case ev.Code == keystream.KeyChar && ev.Text == "w" && ev.Mods.Has(keystream.ModCtrl):
		cmd = &vicmd.ViCmd{
			Verb:   &vicmd.VerbCmd{Verb: vicmd.VerbDelete},
			Motion: &vicmd.Motion{Kind: vicmd.MotionWord, Word: vicmd.WordNormal, WordTo: vicmd.WordStart, Dir: vicmd.DirBackward, Count: 1},
		}
	case ev.Code == keystream.KeyTab:
		cmd = &vicmd.ViCmd{Verb: &vicmd.VerbCmd{Verb: vicmd.VerbInsertChar, Ch: '\t'}}
	case ev.Code == keystream.KeyChar || ev.Code == keystream.KeyGrapheme:
		r := []rune(ev.Text)
		ch := rune(0)
		if len(r) > 0 {
			ch = r[0]
		}
		if len(r) == 1 {
			cmd = &vicmd.ViCmd{Verb: &vicmd.VerbCmd{Verb: vicmd.VerbInsertChar, Ch: ch}}
		} else {
			cmd = &vicmd.ViCmd{Verb: &vicmd.VerbCmd{Verb: vicmd.VerbInsert, Text: ev.Text}}
		}
	default:
		return nil, Pending
	}
	m.log = append(m.log, *cmd)
	return cmd, Complete
}
