package executor

import (
	"fmt"
	"strings"

	"github.com/vicut/vicut/internal/keystream"
	"github.com/vicut/vicut/internal/linebuf"
	"github.com/vicut/vicut/internal/modes"
	"github.com/vicut/vicut/internal/vicmd"
)

// NotAnEditorCommandError reports that the ex parser produced a command
// name/argument pair execEx has no handler for, per spec.md §7's
// "Ex command failure" error kind. Text is the offending ex command as the
// user wrote it (minus the leading ':'), matching the original Rust's
// `NotAnEditorCommand(<text>)`.
type NotAnEditorCommandError struct {
	Text string
}

func (e *NotAnEditorCommandError) Error() string {
	return fmt.Sprintf("not an editor command: %s", e.Text)
}

// execEx runs a parsed Ex command against the buffer, per SPEC_FULL.md
// §4.7. Address ranges are 0-based inclusive line indices resolved by
// modes.Ex at parse time.
func (e *Executor) execEx(cmd *vicmd.ExCommand) error {
	if cmd.Name == "" {
		// modes.Ex couldn't parse the line at all (unknown command word,
		// bad address syntax); cmd.Arg carries the raw text it gave up on.
		return &NotAnEditorCommandError{Text: cmd.Arg}
	}
	switch cmd.Name {
	case "d", "y", "p":
		return e.execLineRangeVerb(cmd)
	case "s":
		return e.execSubstitute(cmd)
	case "normal":
		return e.execNormalOverRange(cmd)
	case "g", "g!":
		return e.execGlobal(cmd)
	default:
		return &NotAnEditorCommandError{Text: cmd.Name}
	}
}

func (e *Executor) lineRange(cmd *vicmd.ExCommand) (lo, hi int) {
	lo, hi = cmd.RangeLo, cmd.RangeHi
	if !cmd.HasRange {
		lo = e.buf.LineOf(e.buf.Cursor().Get())
		hi = lo
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi >= e.buf.LineCount() {
		hi = e.buf.LineCount() - 1
	}
	return lo, hi
}

func (e *Executor) execLineRangeVerb(cmd *vicmd.ExCommand) error {
	lo, hi := e.lineRange(cmd)
	start, _ := e.buf.LineBounds(lo)
	_, end := e.buf.LineBounds(hi)
	if end < e.buf.GraphemeCount() {
		end++ // consume the trailing newline, matching linewise Delete/Yank
	}

	switch cmd.Name {
	case "d", "y":
		verb := vicmd.VerbDelete
		if cmd.Name == "y" {
			verb = vicmd.VerbYank
		}
		motion := &vicmd.Motion{Kind: vicmd.MotionRange, RangeLo: start, RangeHi: end}
		vc := &vicmd.ViCmd{Verb: &vicmd.VerbCmd{Verb: verb}, Motion: motion, Register: vicmd.DefaultRegister()}
		reg := e.regs.Get(nil)
		_, changed, err := e.buf.ExecCmd(vc, &reg, false)
		if err != nil {
			return err
		}
		if changed || verb == vicmd.VerbYank {
			e.regs.Set(nil, reg, false)
		}
		return nil
	case "p":
		reg := e.regs.Get(nil)
		e.buf.SetCursor(e.buf.Cursor().Set(start))
		vc := &vicmd.ViCmd{Verb: &vicmd.VerbCmd{Verb: vicmd.VerbPutAfter}, Register: vicmd.DefaultRegister()}
		_, _, err := e.buf.ExecCmd(vc, &reg, false)
		return err
	}
	return nil
}

// execSubstitute implements `s/old/new/flags` over the addressed line
// range; `g` makes the replacement global within each line, `i` makes the
// pattern case-insensitive (regexp2's (?i)), `c` (confirm) is accepted and
// ignored since there is no interactive surface to confirm against.
func (e *Executor) execSubstitute(cmd *vicmd.ExCommand) error {
	parts := splitUnescaped(cmd.Arg, '/')
	if len(parts) < 2 {
		return &NotAnEditorCommandError{Text: "s/" + cmd.Arg}
	}
	pattern, repl := parts[0], parts[1]
	flags := ""
	if len(parts) > 2 {
		flags = parts[2]
	}
	if strings.Contains(flags, "i") {
		pattern = "(?i)" + pattern
	}
	global := strings.Contains(flags, "g")

	lo, hi := e.lineRange(cmd)
	for ln := lo; ln <= hi && ln < e.buf.LineCount(); ln++ {
		start, end := e.buf.LineBounds(ln)
		text := e.buf.Slice(start, end)
		replaced, n, err := linebuf.SubstituteLine(pattern, repl, text, global)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		e.buf.ReplaceRange(start, end, replaced)
	}
	return nil
}

// execNormalOverRange replays {keys} through Normal mode once per
// addressed line, cursor seeded at that line's first column each time.
func (e *Executor) execNormalOverRange(cmd *vicmd.ExCommand) error {
	lo, hi := e.lineRange(cmd)
	for ln := lo; ln <= hi && ln < e.buf.LineCount(); ln++ {
		start, _ := e.buf.LineBounds(ln)
		e.buf.SetCursor(e.buf.Cursor().Set(start))
		saved := e.mode
		e.mode = modes.NewNormal()
		dec := keystream.NewDecoder([]byte(cmd.Arg))
		for {
			ev, ok := dec.Next()
			if !ok {
				break
			}
			if err := e.feed(ev); err != nil {
				return err
			}
		}
		e.mode = saved
	}
	return nil
}

// execGlobal runs {cmd} on every line matching (g) or not matching (g!)
// {pat}, collecting the target lines before mutating so edits on earlier
// lines don't shift the indices of later ones mid-scan.
func (e *Executor) execGlobal(cmd *vicmd.ExCommand) error {
	parts := splitUnescaped(cmd.Arg, '/')
	if len(parts) < 1 {
		return &NotAnEditorCommandError{Text: "g/" + cmd.Arg}
	}
	pattern := parts[0]
	inner := ""
	if len(parts) > 1 {
		inner = strings.Join(parts[1:], "/")
	}
	negate := cmd.Name == "g!"

	var targets []int
	for ln := 0; ln < e.buf.LineCount(); ln++ {
		start, end := e.buf.LineBounds(ln)
		text := e.buf.Slice(start, end)
		matched, err := linebuf.MatchLine(pattern, text)
		if err != nil {
			return err
		}
		if matched != negate {
			targets = append(targets, ln)
		}
	}

	innerCmd, ok := e.parseExInner(inner)
	if !ok {
		return &NotAnEditorCommandError{Text: "g/" + cmd.Arg}
	}

	for i := len(targets) - 1; i >= 0; i-- {
		innerCmd.HasRange = true
		innerCmd.RangeLo = targets[i]
		innerCmd.RangeHi = targets[i]
		if err := e.execEx(innerCmd); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) parseExInner(s string) (*vicmd.ExCommand, bool) {
	s = strings.TrimSpace(s)
	switch {
	case s == "d", s == "y":
		return &vicmd.ExCommand{Name: s}, true
	case strings.HasPrefix(s, "s/"):
		return &vicmd.ExCommand{Name: "s", Arg: s[2:]}, true
	case strings.HasPrefix(s, "normal "):
		return &vicmd.ExCommand{Name: "normal", Arg: strings.TrimPrefix(s, "normal ")}, true
	default:
		return nil, false
	}
}

// splitUnescaped splits on sep, treating "\<sep>" as a literal separator
// character rather than a field boundary.
func splitUnescaped(s string, sep byte) []string {
	var out []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == sep {
			cur.WriteByte(sep)
			i++
			continue
		}
		if s[i] == sep {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	out = append(out, cur.String())
	return out
}
