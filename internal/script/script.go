// Package script parses and runs ".vicut" script files: the line-oriented
// batch grammar SPEC_FULL.md §4.8 supplies as the concrete format for the
// "embedded scripting grammar" spec.md §1 scopes out of the core.
//
// Grounded on internal/modes/ex.go's address+command-letter parser for
// parsing style, and run against an *executor.Executor the same way
// internal/executor's ReadField/MoveCursor are driven from cmd/root.go.
package script

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/vicut/vicut/internal/executor"
	"github.com/vicut/vicut/internal/vlog"
)

// DirectiveKind names what a parsed script line does. The "normal!",
// "keys" and "put" forms all become DirNormal; "field" becomes DirField.
type DirectiveKind int

const (
	// DirNormal replays keys through Normal mode, discarding any capture.
	DirNormal DirectiveKind = iota
	// DirField captures the text spanned by executing keys.
	DirField
)

// Directive is one parsed, non-blank, non-comment line of a script.
type Directive struct {
	Kind DirectiveKind
	Keys string
}

// Parse splits script text into directives, in order. "set register {name}"
// does not itself produce a Directive: it rewrites any following bare "put"
// line into the "<name>p Normal-mode key sequence before that line is
// parsed, per SPEC_FULL.md §4.8.
func Parse(text string) ([]Directive, error) {
	var out []Directive
	var pendingRegister byte

	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "normal! "):
			out = append(out, Directive{Kind: DirNormal, Keys: strings.TrimPrefix(line, "normal! ")})
		case strings.HasPrefix(line, "field "):
			out = append(out, Directive{Kind: DirField, Keys: strings.TrimPrefix(line, "field ")})
		case strings.HasPrefix(line, "keys "):
			out = append(out, Directive{Kind: DirNormal, Keys: strings.TrimPrefix(line, "keys ")})
		case strings.HasPrefix(line, "set register "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "set register "))
			if len(name) != 1 || name[0] < 'a' || name[0] > 'z' {
				return nil, fmt.Errorf("line %d: set register expects a single a-z letter, got %q", lineNo, name)
			}
			pendingRegister = name[0]
		case line == "put":
			keys := "p"
			if pendingRegister != 0 {
				keys = fmt.Sprintf("\"%cp", pendingRegister)
			}
			out = append(out, Directive{Kind: DirNormal, Keys: keys})
		default:
			return nil, fmt.Errorf("line %d: unrecognized script directive: %q", lineNo, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return out, nil
}

// Run executes directives in order against ex, returning each "field"
// directive's captured text as one element, in order. A directive error aborts the
// remaining script and is returned alongside whatever fields were already
// captured.
func Run(ctx context.Context, ex *executor.Executor, directives []Directive) ([]string, error) {
	var fields []string
	for _, d := range directives {
		switch d.Kind {
		case DirNormal:
			if err := ex.MoveCursor(ctx, d.Keys); err != nil {
				vlog.ErrorErr(vlog.CatScript, "script directive failed", err, "keys", d.Keys)
				return fields, fmt.Errorf("running %q: %w", d.Keys, err)
			}
		case DirField:
			v, err := ex.ReadField(ctx, d.Keys)
			if err != nil {
				vlog.ErrorErr(vlog.CatScript, "field directive failed", err, "keys", d.Keys)
				return fields, fmt.Errorf("capturing field %q: %w", d.Keys, err)
			}
			fields = append(fields, v)
		}
	}
	return fields, nil
}
