package modes

import (
	"strings"

	"github.com/vicut/vicut/internal/keystream"
	"github.com/vicut/vicut/internal/linebuf"
	"github.com/vicut/vicut/internal/vicmd"
)

// Search implements the "/pattern<CR>" and "?pattern<CR>" entry points:
// accumulate a raw pattern string until Enter, then emit a single
// PatternSearch(Rev) motion. Esc cancels with no ViCmd.
type Search struct {
	forward bool
	count   int
	buf     strings.Builder
}

// NewSearch creates a Search-mode parser. forward selects "/" vs "?"; count
// is the repeat carried in from Normal mode (e.g. "3/foo<CR>").
func NewSearch(forward bool, count int) *Search {
	if count <= 0 {
		count = 1
	}
	return &Search{forward: forward, count: count}
}

func (s *Search) IsRepeatable() bool          { return false }
func (s *Search) AsReplay() linebuf.CmdReplay { return linebuf.CmdReplay{} }
func (s *Search) ClampCursor() bool           { return true }
func (s *Search) PendingSeq() string          { return s.buf.String() }
func (s *Search) ReportMode() string          { return NameSearch.String() }

func (s *Search) HandleKey(ev keystream.KeyEvent) (*vicmd.ViCmd, Status) {
	switch {
	case ev.Code == keystream.KeyEsc:
		return nil, Invalid
	case ev.Code == keystream.KeyEnter:
		kind := vicmd.MotionPatternSearch
		if !s.forward {
			kind = vicmd.MotionPatternSearchRev
		}
		motion := &vicmd.Motion{Kind: kind, Pattern: s.buf.String(), Count: s.count}
		return &vicmd.ViCmd{Motion: motion, Register: vicmd.DefaultRegister()}, Complete
	case ev.Code == keystream.KeyBackspace:
		str := s.buf.String()
		if str == "" {
			return nil, Invalid
		}
		r := []rune(str)
		s.buf.Reset()
		s.buf.WriteString(string(r[:len(r)-1]))
		return nil, Pending
	case ev.Code == keystream.KeyChar || ev.Code == keystream.KeyGrapheme:
		s.buf.WriteString(ev.Text)
		return nil, Pending
	default:
		return nil, Pending
	}
}
