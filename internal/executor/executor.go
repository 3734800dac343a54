// Package executor implements the ViCut engine: the top-level driver that
// owns a LineBuf, the current mode, a register store, and a key stream,
// wiring mode transitions and dot-repeat per spec.md §4.5.
//
// Grounded on internal/ui/shared/vimtextarea's top-level Model update loop
// (mode dispatch + pending-command bookkeeping) and spec.md §4.5.
package executor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vicut/vicut/internal/keystream"
	"github.com/vicut/vicut/internal/linebuf"
	"github.com/vicut/vicut/internal/modes"
	"github.com/vicut/vicut/internal/registers"
	"github.com/vicut/vicut/internal/vicmd"
)

// tracer reads whatever TracerProvider is globally installed: vtrace's
// no-op provider by default, or a real exporter once a caller has built a
// vtrace.Provider from --trace/tracing.enabled and called NewProvider.
var tracer = otel.Tracer("github.com/vicut/vicut/internal/executor")

// Executor ties together LineBuf, a mode parser, and a register store,
// exposing the field-capture API an external driver (the CLI, or a
// script) uses to read and mutate a buffer with Vim key sequences.
type Executor struct {
	buf  *linebuf.LineBuf
	mode modes.Mode
	regs *registers.Store

	lastCharMotion *vicmd.Motion // last char-search motion, for ;/,

	repeatAction repeatAction

	visualLine0, visualLine1 int // last visual selection's line bounds, for '<,'>
}

type repeatAction struct {
	single *vicmd.ViCmd
	multi  *linebuf.CmdReplayMulti
}

// New creates an Executor over the given initial buffer content, starting
// in Normal mode with a fresh register store.
func New(content string) *Executor {
	return &Executor{
		buf:  linebuf.New(content, 0),
		mode: modes.NewNormal(),
		regs: registers.New(),
	}
}

// Buffer returns the current buffer contents.
func (e *Executor) Buffer() string { return e.buf.Buffer() }

// ModeName reports the current mode's name for diagnostics.
func (e *Executor) ModeName() string { return e.mode.ReportMode() }

// LoadInput replaces the executor's buffer contents and resets to Normal
// mode with the cursor at the start, per spec.md §4.5.3's load_input.
func (e *Executor) LoadInput(s string) {
	e.buf = linebuf.New(s, 0)
	e.mode = modes.NewNormal()
}

// SetNormalMode resets to Normal mode and clears any selection, per
// spec.md §4.5.3's set_normal_mode.
func (e *Executor) SetNormalMode() {
	e.mode = modes.NewNormal()
	e.buf.SetSelection(linebuf.Selection{})
}

// MoveCursor executes keys and discards any captured text.
func (e *Executor) MoveCursor(ctx context.Context, keys string) error {
	_, err := e.run(ctx, "move_cursor", keys, false)
	return err
}

// ReadField executes keys until exhausted and returns the text between
// the starting cursor position and the ending cursor position (the
// grapheme under each included), or the active selection if one exists by
// the time keys are exhausted. The text is read from the buffer as it
// stands after the keys ran.
func (e *Executor) ReadField(ctx context.Context, keys string) (string, error) {
	return e.run(ctx, "read_field", keys, true)
}

func (e *Executor) run(ctx context.Context, spanName, keys string, capture bool) (string, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("vicut.keys", keys),
	))
	defer span.End()
	_ = ctx

	startCur := e.buf.Cursor().Get()

	dec := keystream.NewDecoder([]byte(keys))
	for {
		ev, ok := dec.Next()
		if !ok {
			break
		}
		if err := e.feed(ev); err != nil {
			span.SetAttributes(attribute.String("vicut.error", err.Error()))
			return "", err
		}
	}

	if !capture {
		return "", nil
	}

	if sel := e.buf.Selection(); sel.Active {
		norm := sel.Normalized()
		text, err := e.buf.SliceChecked(norm.Start, norm.End+1)
		if err != nil {
			span.SetAttributes(attribute.String("vicut.error", err.Error()))
		}
		return text, err
	}
	endCur := e.buf.Cursor().Get()
	if endCur < startCur {
		startCur, endCur = endCur, startCur
	}
	end := endCur + 1
	if end > e.buf.GraphemeCount() {
		end = e.buf.GraphemeCount()
	}
	text, err := e.buf.SliceChecked(startCur, end)
	if err != nil {
		span.SetAttributes(attribute.String("vicut.error", err.Error()))
	}
	return text, err
}

// feed dispatches one decoded key through the current mode parser, handling
// mode transitions, ex-command and char-search-repeat special cases, and
// dot-repeat bookkeeping, per spec.md §4.5.
func (e *Executor) feed(ev keystream.KeyEvent) error {
	cmd, status := e.mode.HandleKey(ev)
	switch status {
	case modes.Pending:
		return nil
	case modes.Invalid:
		// A cancelled or empty Ex/Search line ends that mode.
		if _, ok := e.mode.(*modes.Ex); ok || isSearchMode(e.mode) {
			e.mode = modes.NewNormal()
		}
		return nil
	}

	return e.dispatch(cmd)
}

func (e *Executor) dispatch(cmd *vicmd.ViCmd) error {
	if cmd == nil {
		return nil
	}

	if cmd.Ex != nil {
		err := e.execEx(cmd.Ex)
		e.mode = modes.NewNormal()
		return err
	}

	if cmd.IsCmdRepeat() {
		return e.repeatLast(cmd)
	}
	if cmd.IsMotionRepeat() {
		return e.repeatCharSearch(cmd)
	}

	inVisual := isVisualMode(e.mode)

	if cmd.IsModeTransition() {
		return e.transition(cmd, inVisual)
	}

	reg := e.regs.Get(cmd.Register.Name)
	captured, changed, err := e.buf.ExecCmd(cmd, &reg, inVisual)
	if err != nil {
		return err
	}
	if cmd.Verb != nil && (cmd.Verb.Verb == vicmd.VerbYank || (changed && (cmd.Verb.Verb == vicmd.VerbDelete || cmd.Verb.Verb == vicmd.VerbChange))) {
		e.regs.Set(cmd.Register.Name, reg, cmd.Register.Append)
	}
	_ = captured

	if cmd.IsCharSearch() {
		m := *cmd.Motion
		e.lastCharMotion = &m
	}
	if cmd.IsRepeatable() {
		single := *cmd
		e.repeatAction = repeatAction{single: &single}
	}
	if isSearchMode(e.mode) {
		e.mode = modes.NewNormal()
	}
	return nil
}

func isVisualMode(m modes.Mode) bool {
	switch m.(type) {
	case *modes.Visual:
		return true
	default:
		return false
	}
}

func isSearchMode(m modes.Mode) bool {
	switch m.(type) {
	case *modes.Search:
		return true
	default:
		return false
	}
}

// transition implements spec.md §4.5.1.
func (e *Executor) transition(cmd *vicmd.ViCmd, inVisual bool) error {
	switch cmd.Verb.Verb {
	case vicmd.VerbChange:
		e.buf.SetCursorExclusive(false)
		reg := e.regs.Get(cmd.Register.Name)
		captured, changed, err := e.buf.ExecCmd(cmd, &reg, inVisual)
		if err != nil {
			return err
		}
		if changed {
			e.regs.Set(cmd.Register.Name, reg, cmd.Register.Append)
		}
		_ = captured
		e.mode = modes.NewInsert(cmd.VerbCount())
	case vicmd.VerbInsertMode:
		e.buf.SetCursorExclusive(false)
		if cmd.Motion != nil {
			reg := e.regs.Get(nil)
			e.buf.ExecCmd(&vicmd.ViCmd{Motion: cmd.Motion}, &reg, inVisual)
		}
		e.mode = modes.NewInsert(cmd.VerbCount())
	case vicmd.VerbLineBreakBefore, vicmd.VerbLineBreakAfter:
		reg := e.regs.Get(nil)
		e.buf.ExecCmd(cmd, &reg, inVisual)
		e.mode = modes.NewInsert(cmd.VerbCount())
	case vicmd.VerbNormalMode:
		if cmd.Motion != nil {
			reg := e.regs.Get(nil)
			e.buf.ExecCmd(&vicmd.ViCmd{Motion: cmd.Motion}, &reg, inVisual)
		}
		e.buf.SetCursorExclusive(true)
		if repl := e.mode.AsReplay(); !repl.IsZero() && e.mode.IsRepeatable() {
			e.repeatAction = repeatAction{multi: repl.Multi}
		}
		if sel := e.buf.Selection(); sel.Active {
			norm := sel.Normalized()
			e.visualLine0 = e.buf.LineOf(norm.Start)
			e.visualLine1 = e.buf.LineOf(norm.End)
		}
		e.buf.SetSelection(linebuf.Selection{})
		e.mode = modes.NewNormal()
	case vicmd.VerbReplaceMode:
		e.buf.SetCursorExclusive(false)
		e.mode = modes.NewReplace(1)
	case vicmd.VerbVisualMode:
		e.buf.StartSelecting(linebuf.SelectChar)
		e.mode = modes.NewVisual(false, false)
	case vicmd.VerbVisualLineMode:
		e.buf.StartSelecting(linebuf.SelectLine)
		e.mode = modes.NewVisual(true, false)
	case vicmd.VerbVisualBlockMode:
		e.buf.StartSelecting(linebuf.SelectBlock)
		e.mode = modes.NewVisual(false, true)
	case vicmd.VerbVisualSelectLast:
		last := e.buf.LastSelection()
		e.buf.SetSelection(last)
		e.mode = modes.NewVisual(last.Mode == linebuf.SelectLine, last.Mode == linebuf.SelectBlock)
	case vicmd.VerbExMode:
		switch cmd.Verb.Ch {
		case '/':
			e.mode = modes.NewSearch(true, cmd.VerbCount())
		case '?':
			e.mode = modes.NewSearch(false, cmd.VerbCount())
		default:
			cur := e.buf.LineOf(e.buf.Cursor().Get())
			last := e.buf.LineCount() - 1
			v0, v1 := e.visualLine0, e.visualLine1
			e.mode = modes.NewEx(cur, last, v0, v1)
		}
	case vicmd.VerbSearchMode:
		e.mode = modes.NewSearch(true, cmd.VerbCount())
	default:
		return fmt.Errorf("unhandled mode transition verb %v", cmd.Verb.Verb)
	}
	return nil
}

func (e *Executor) repeatLast(cmd *vicmd.ViCmd) error {
	if e.repeatAction.single != nil {
		replay := *e.repeatAction.single
		if cmd.Verb.Count > 0 && replay.Verb != nil {
			replay.Verb.Count = cmd.Verb.Count
			if replay.Motion != nil {
				replay.Motion.Count = 1
			}
			replay.NormalizeCounts()
		}
		return e.dispatch(&replay)
	}
	if e.repeatAction.multi != nil {
		repeat := e.repeatAction.multi.Repeat
		if cmd.Verb.Count > 1 {
			repeat = cmd.Verb.Count
		}
		for i := 0; i < repeat; i++ {
			for _, c := range e.repeatAction.multi.Cmds {
				cc := c
				if err := e.dispatch(&cc); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *Executor) repeatCharSearch(cmd *vicmd.ViCmd) error {
	if e.lastCharMotion == nil {
		return nil
	}
	m := *e.lastCharMotion
	if cmd.Motion.Kind == vicmd.MotionRepeatMotionRev {
		if m.Dir == vicmd.DirForward {
			m.Dir = vicmd.DirBackward
		} else {
			m.Dir = vicmd.DirForward
		}
	}
	m.Count = cmd.MotionCount()
	replay := &vicmd.ViCmd{Verb: cmd.Verb, Motion: &m, Register: cmd.Register}
	return e.dispatch(replay)
}
