package modes

import (
	"github.com/vicut/vicut/internal/keystream"
	"github.com/vicut/vicut/internal/linebuf"
	"github.com/vicut/vicut/internal/vicmd"
)

// Replace implements spec.md §4.4.3: printable characters overwrite
// in place and advance the cursor, Backspace steps back without undoing
// the overwrite, Esc exits to Normal.
type Replace struct {
	log    []vicmd.ViCmd
	repeat int
}

// NewReplace creates a Replace-mode parser with the given dot-repeat count.
func NewReplace(repeat int) *Replace {
	if repeat <= 0 {
		repeat = 1
	}
	return &Replace{repeat: repeat}
}

func (m *Replace) IsRepeatable() bool { return true }
func (m *Replace) ClampCursor() bool  { return false }
func (m *Replace) ReportMode() string { return NameReplace.String() }
func (m *Replace) PendingSeq() string { return "" }

func (m *Replace) AsReplay() linebuf.CmdReplay {
	if len(m.log) == 0 {
		return linebuf.CmdReplay{}
	}
	cmds := make([]vicmd.ViCmd, len(m.log))
	copy(cmds, m.log)
	return linebuf.CmdReplay{Multi: &linebuf.CmdReplayMulti{Cmds: cmds, Repeat: m.repeat}}
}

func (m *Replace) HandleKey(ev keystream.KeyEvent) (*vicmd.ViCmd, Status) {
	var cmd *vicmd.ViCmd
	switch {
	case ev.Code == keystream.KeyEsc:
		cmd = &vicmd.ViCmd{
			Verb:   &vicmd.VerbCmd{Verb: vicmd.VerbNormalMode},
			Motion: &vicmd.Motion{Kind: vicmd.MotionBackwardChar, Count: 1},
		}
		return cmd, Complete
	case ev.Code == keystream.KeyBackspace:
		cmd = &vicmd.ViCmd{
			Motion: &vicmd.Motion{Kind: vicmd.MotionBackwardCharForced, Count: 1},
		}
	case ev.Code == keystream.KeyEnter:
		cmd = &vicmd.ViCmd{
			Verb:   &vicmd.VerbCmd{Verb: vicmd.VerbReplaceChar, Ch: '\n'},
			Motion: &vicmd.Motion{Kind: vicmd.MotionForwardCharForced, Count: 1},
		}
	case ev.Code == keystream.KeyChar || ev.Code == keystream.KeyGrapheme:
		r := []rune(ev.Text)
		ch := rune(0)
		if len(r) > 0 {
			ch = r[0]
		}
		cmd = &vicmd.ViCmd{
			Verb:   &vicmd.VerbCmd{Verb: vicmd.VerbReplaceChar, Ch: ch},
			Motion: &vicmd.Motion{Kind: vicmd.MotionForwardCharForced, Count: 1},
		}
	default:
		return nil, Pending
	}
	m.log = append(m.log, *cmd)
	return cmd, Complete
}
