// Package modes implements the per-mode key-event state machines that
// translate KeyStream output into structured vicmd.ViCmd values: Normal,
// Insert, Replace, Visual, Ex, and Search.
//
// Grounded on spec.md §4.4 and on internal/ui/shared/vimtextarea's mode
// dispatch shape (a tagged-variant Mode rather than deep inheritance,
// per spec.md §9's "polymorphic mode dispatch" design note), generalized
// away from bubbletea key messages onto keystream.KeyEvent.
package modes

import (
	"github.com/vicut/vicut/internal/keystream"
	"github.com/vicut/vicut/internal/linebuf"
	"github.com/vicut/vicut/internal/vicmd"
)

// Status reports the outcome of feeding one key to a Mode's parser.
type Status int

const (
	// Pending means the parser is still accumulating keys.
	Pending Status = iota
	// Complete means a ViCmd was produced; the parser's pending state is
	// cleared.
	Complete
	// Invalid means the accumulated sequence could not be parsed; the
	// pending state is discarded silently (spec.md §7: not an error to the
	// caller).
	Invalid
)

// Mode is the capability set every mode parser implements (spec.md §4.4 /
// §9's {handle_key, is_repeatable, as_replay, clamp_cursor, report_mode,
// pending_seq}).
type Mode interface {
	// HandleKey feeds one key event and reports the outcome.
	HandleKey(ev keystream.KeyEvent) (cmd *vicmd.ViCmd, status Status)
	// IsRepeatable reports whether this mode's session should be recorded
	// for dot-repeat on exit.
	IsRepeatable() bool
	// AsReplay returns the dot-repeat replay value for this mode's session.
	AsReplay() linebuf.CmdReplay
	// ClampCursor reports whether the cursor must not rest on or past the
	// buffer's terminating position in this mode.
	ClampCursor() bool
	// ReportMode names the mode for the host driver/diagnostics.
	ReportMode() string
	// PendingSeq returns the raw text accumulated so far (for diagnostics
	// and for re-synthesizing RawSeq on completed commands).
	PendingSeq() string
}

// Name enumerates the mode names ReportMode returns: the six modes, with
// Visual split into its character, line and block forms.
type Name int

const (
	NameNormal Name = iota
	NameInsert
	NameReplace
	NameVisual
	NameVisualLine
	NameVisualBlock
	NameEx
	NameSearch
)

func (n Name) String() string {
	switch n {
	case NameNormal:
		return "normal"
	case NameInsert:
		return "insert"
	case NameReplace:
		return "replace"
	case NameVisual:
		return "visual"
	case NameVisualLine:
		return "visual-line"
	case NameVisualBlock:
		return "visual-block"
	case NameEx:
		return "ex"
	case NameSearch:
		return "search"
	default:
		return "unknown"
	}
}
