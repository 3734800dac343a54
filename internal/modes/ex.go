package modes

import (
	"strconv"
	"strings"

	"github.com/vicut/vicut/internal/keystream"
	"github.com/vicut/vicut/internal/linebuf"
	"github.com/vicut/vicut/internal/vicmd"
)

// Ex implements the ":"-prefixed command-line accumulator of spec.md
// §4.4.5: a raw text buffer terminated by Enter (submit) or Esc (cancel),
// parsed on submission into a vicmd.ExCommand.
type Ex struct {
	buf          strings.Builder
	visualLine0  int // 0-based start of the caller's current visual selection, for '<
	visualLine1  int // for '>
	currentLine  int // for '.'
	lastLine     int // for '$'
}

// NewEx creates an Ex-mode parser. currentLine/lastLine/visual* give the
// line-addressing context needed to resolve '.', '$', and '<,'>.
func NewEx(currentLine, lastLine, visualLine0, visualLine1 int) *Ex {
	return &Ex{currentLine: currentLine, lastLine: lastLine, visualLine0: visualLine0, visualLine1: visualLine1}
}

func (e *Ex) IsRepeatable() bool          { return false }
func (e *Ex) AsReplay() linebuf.CmdReplay { return linebuf.CmdReplay{} }
func (e *Ex) ClampCursor() bool           { return true }
func (e *Ex) PendingSeq() string          { return ":" + e.buf.String() }
func (e *Ex) ReportMode() string          { return NameEx.String() }

func (e *Ex) HandleKey(ev keystream.KeyEvent) (*vicmd.ViCmd, Status) {
	switch {
	case ev.Code == keystream.KeyEsc:
		return nil, Invalid
	case ev.Code == keystream.KeyEnter:
		text := e.buf.String()
		cmd, ok := e.parse(text)
		if !ok {
			if strings.TrimSpace(text) == "" {
				// A bare ":" commits nothing, matching Vim: not a parse
				// failure, just an empty command line.
				return nil, Invalid
			}
			// Unparseable but non-empty: surface spec.md §7's
			// NotAnEditorCommand rather than discarding it silently, per
			// the "Ex command failure" error kind (distinct from the
			// normal-mode "Unparseable key sequence" kind, which IS
			// silent).
			return &vicmd.ViCmd{Ex: &vicmd.ExCommand{Arg: text}, Register: vicmd.DefaultRegister()}, Complete
		}
		return &vicmd.ViCmd{Ex: cmd, Register: vicmd.DefaultRegister()}, Complete
	case ev.Code == keystream.KeyBackspace:
		s := e.buf.String()
		if s == "" {
			return nil, Invalid
		}
		r := []rune(s)
		e.buf.Reset()
		e.buf.WriteString(string(r[:len(r)-1]))
		return nil, Pending
	case ev.Code == keystream.KeyChar || ev.Code == keystream.KeyGrapheme:
		e.buf.WriteString(ev.Text)
		return nil, Pending
	default:
		return nil, Pending
	}
}

// parse resolves an address expression followed by a command name and
// argument, per spec.md §4.4.5 and §7's NotAnEditorCommand failure mode.
func (e *Ex) parse(s string) (*vicmd.ExCommand, bool) {
	cmd := &vicmd.ExCommand{}
	rest := s

	lo, hi, hasRange, tail, ok := e.parseAddress(rest)
	if !ok {
		return nil, false
	}
	cmd.HasRange = hasRange
	cmd.RangeLo, cmd.RangeHi = lo, hi
	rest = tail

	rest = strings.TrimLeft(rest, " ")
	if rest == "" {
		return nil, false
	}

	switch {
	case strings.HasPrefix(rest, "normal!"):
		cmd.Name = "normal"
		cmd.Arg = strings.TrimPrefix(strings.TrimPrefix(rest, "normal!"), " ")
	case strings.HasPrefix(rest, "normal "):
		cmd.Name = "normal"
		cmd.Arg = strings.TrimPrefix(rest, "normal ")
	case strings.HasPrefix(rest, "s/") || strings.HasPrefix(rest, "s,"):
		cmd.Name = "s"
		cmd.Arg = rest[2:]
	case strings.HasPrefix(rest, "g!/") || strings.HasPrefix(rest, "g!"):
		cmd.Name = "g!"
		cmd.Arg = strings.TrimPrefix(strings.TrimLeft(strings.TrimPrefix(rest, "g!"), " "), "/")
	case strings.HasPrefix(rest, "g/") || strings.HasPrefix(rest, "g "):
		cmd.Name = "g"
		cmd.Arg = strings.TrimPrefix(strings.TrimLeft(strings.TrimPrefix(rest, "g"), " "), "/")
	case rest == "d" || strings.HasPrefix(rest, "d "):
		cmd.Name = "d"
	case rest == "y" || strings.HasPrefix(rest, "y "):
		cmd.Name = "y"
	case rest == "p" || strings.HasPrefix(rest, "p ") || rest == "pu":
		cmd.Name = "p"
	default:
		return nil, false
	}
	return cmd, true
}

// parseAddress resolves an optional address expression: %, ., $, a bare
// line number, '<,'> , or two such addresses joined by ','.
func (e *Ex) parseAddress(s string) (lo, hi int, has bool, rest string, ok bool) {
	if strings.HasPrefix(s, "%") {
		return 0, e.lastLine, true, s[1:], true
	}
	if strings.HasPrefix(s, "'<,'>") {
		return e.visualLine0, e.visualLine1, true, s[5:], true
	}
	a, tail, matched := e.parseOneAddress(s)
	if !matched {
		return 0, 0, false, s, true
	}
	if strings.HasPrefix(tail, ",") {
		b, tail2, matched2 := e.parseOneAddress(tail[1:])
		if !matched2 {
			return 0, 0, false, s, false
		}
		return a, b, true, tail2, true
	}
	return a, a, true, tail, true
}

func (e *Ex) parseOneAddress(s string) (line int, rest string, ok bool) {
	switch {
	case strings.HasPrefix(s, "."):
		return e.currentLine, s[1:], true
	case strings.HasPrefix(s, "$"):
		return e.lastLine, s[1:], true
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, _ := strconv.Atoi(s[:i])
	return n - 1, s[i:], true
}
