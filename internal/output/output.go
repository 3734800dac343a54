// Package output serializes the captured fields of one or more
// Executor.ReadField/MoveCursor runs into one of vicut's output modes, per
// SPEC_FULL.md §6.3. It sits downstream of internal/fanout (one Unit per
// input file or line) and internal/executor (the []string each Unit's
// field captures collapse into).
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"go.yaml.in/yaml/v3"
)

// Mode names one of the five serialization strategies SPEC_FULL.md §6.1's
// -o/--output flag selects between.
type Mode string

const (
	ModeRaw       Mode = "raw"
	ModeDelimited Mode = "delimited"
	ModeJSON      Mode = "json"
	ModeYAML      Mode = "yaml"
	ModeTemplate  Mode = "template"
)

// ParseMode validates a --output flag value.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRaw, ModeDelimited, ModeJSON, ModeYAML, ModeTemplate:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want raw, delimited, json, yaml, or template)", s)
	}
}

// Unit is one input's result: the transformed buffer (for a whole-buffer
// -k run) and/or the ordered list of -f/field captures, plus any error the
// run produced. A failing Unit still carries whatever Fields/Buffer were
// captured before the failure, per SPEC_FULL.md §7.1.
type Unit struct {
	Source string // file path, or "" for stdin/-e input
	Buffer string // the transformed whole buffer, for -k runs
	Fields []string
	Err    error
}

// Formatter renders a slice of Units in one Mode.
type Formatter struct {
	Mode      Mode
	Delimiter string // ModeDelimited field separator; defaults to "\t"
	Template  string // ModeTemplate text/template source
}

// New builds a Formatter, defaulting Delimiter to "\t" if empty.
func New(mode Mode, delimiter, tmpl string) Formatter {
	if delimiter == "" {
		delimiter = "\t"
	}
	return Formatter{Mode: mode, Delimiter: delimiter, Template: tmpl}
}

// Format renders units according to f.Mode. Units whose Err is non-nil are
// skipped from the rendered payload in every mode (the caller reports them
// separately, per SPEC_FULL.md §7.1).
func (f Formatter) Format(units []Unit) (string, error) {
	switch f.Mode {
	case ModeRaw:
		return f.formatRaw(units), nil
	case ModeDelimited:
		return f.formatDelimited(units), nil
	case ModeJSON:
		return f.formatJSON(units)
	case ModeYAML:
		return f.formatYAML(units)
	case ModeTemplate:
		return f.formatTemplate(units)
	default:
		return "", fmt.Errorf("unknown output mode %q", f.Mode)
	}
}

func (f Formatter) formatRaw(units []Unit) string {
	var lines []string
	for _, u := range units {
		if u.Err != nil {
			continue
		}
		if u.Buffer != "" || len(u.Fields) == 0 {
			lines = append(lines, u.Buffer)
			continue
		}
		lines = append(lines, u.Fields...)
	}
	return strings.Join(lines, "\n")
}

func (f Formatter) formatDelimited(units []Unit) string {
	var lines []string
	for _, u := range units {
		if u.Err != nil {
			continue
		}
		lines = append(lines, strings.Join(u.Fields, f.Delimiter))
	}
	return strings.Join(lines, "\n")
}

// fieldRecord is the one shape both JSON and YAML serialize, per
// SPEC_FULL.md §6.3's "field index or name → value" description.
func fieldRecord(u Unit) map[string]string {
	rec := make(map[string]string, len(u.Fields)+1)
	if u.Source != "" {
		rec["source"] = u.Source
	}
	for i, v := range u.Fields {
		rec[fmt.Sprintf("field%d", i)] = v
	}
	return rec
}

func (f Formatter) formatJSON(units []Unit) (string, error) {
	var recs []map[string]string
	for _, u := range units {
		if u.Err != nil {
			continue
		}
		recs = append(recs, fieldRecord(u))
	}
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling output as json: %w", err)
	}
	return string(b), nil
}

func (f Formatter) formatYAML(units []Unit) (string, error) {
	var recs []map[string]string
	for _, u := range units {
		if u.Err != nil {
			continue
		}
		recs = append(recs, fieldRecord(u))
	}
	b, err := yaml.Marshal(recs)
	if err != nil {
		return "", fmt.Errorf("marshaling output as yaml: %w", err)
	}
	return string(b), nil
}

// templateData is what --template's Go text/template string sees per
// Unit: .Source, .Fields (the full slice), and a .Field function for
// positional access (`{{.Field 0}}`), per SPEC_FULL.md §6.3.
type templateData struct {
	Source string
	Fields []string
}

// Field returns Fields[i], or "" if i is out of range — a missing capture
// renders as empty rather than failing the whole template.
func (d templateData) Field(i int) string {
	if i < 0 || i >= len(d.Fields) {
		return ""
	}
	return d.Fields[i]
}

func (f Formatter) formatTemplate(units []Unit) (string, error) {
	tmpl, err := template.New("vicut-output").Parse(f.Template)
	if err != nil {
		return "", fmt.Errorf("parsing output template: %w", err)
	}

	var sb strings.Builder
	first := true
	for _, u := range units {
		if u.Err != nil {
			continue
		}
		if !first {
			sb.WriteByte('\n')
		}
		first = false
		var buf bytes.Buffer
		data := templateData{Source: u.Source, Fields: u.Fields}
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("executing output template: %w", err)
		}
		sb.Write(buf.Bytes())
	}
	return sb.String(), nil
}
