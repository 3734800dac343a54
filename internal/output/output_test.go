package output

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseModeRejectsUnknown(t *testing.T) {
	_, err := ParseMode("xml")
	require.Error(t, err)
}

func TestFormatRawJoinsBuffers(t *testing.T) {
	f := New(ModeRaw, "", "")
	out, err := f.Format([]Unit{{Buffer: "first"}, {Buffer: "second"}})
	require.NoError(t, err)
	require.Equal(t, "first\nsecond", out)
}

func TestFormatRawSkipsFailedUnits(t *testing.T) {
	f := New(ModeRaw, "", "")
	out, err := f.Format([]Unit{{Buffer: "ok"}, {Err: errors.New("boom")}})
	require.NoError(t, err)
	require.Equal(t, "ok", out)
}

func TestFormatDelimitedJoinsFieldsPerLine(t *testing.T) {
	f := New(ModeDelimited, ",", "")
	out, err := f.Format([]Unit{
		{Fields: []string{"a", "b"}},
		{Fields: []string{"c", "d"}},
	})
	require.NoError(t, err)
	require.Equal(t, "a,b\nc,d", out)
}

func TestFormatDelimitedDefaultsToTab(t *testing.T) {
	f := New(ModeDelimited, "", "")
	out, err := f.Format([]Unit{{Fields: []string{"a", "b"}}})
	require.NoError(t, err)
	require.Equal(t, "a\tb", out)
}

func TestFormatJSONProducesFieldRecords(t *testing.T) {
	f := New(ModeJSON, "", "")
	out, err := f.Format([]Unit{{Source: "file.txt", Fields: []string{"x", "y"}}})
	require.NoError(t, err)
	require.Contains(t, out, `"source": "file.txt"`)
	require.Contains(t, out, `"field0": "x"`)
	require.Contains(t, out, `"field1": "y"`)
}

func TestFormatYAMLProducesFieldRecords(t *testing.T) {
	f := New(ModeYAML, "", "")
	out, err := f.Format([]Unit{{Fields: []string{"x"}}})
	require.NoError(t, err)
	require.Contains(t, out, "field0: x")
}

func TestFormatTemplateRendersFieldAccessors(t *testing.T) {
	f := New(ModeTemplate, "", "{{.Source}}: {{.Field 0}}")
	out, err := f.Format([]Unit{{Source: "a.txt", Fields: []string{"hello"}}})
	require.NoError(t, err)
	require.Equal(t, "a.txt: hello", out)
}

func TestFormatTemplateOutOfRangeFieldIsEmpty(t *testing.T) {
	f := New(ModeTemplate, "", "[{{.Field 5}}]")
	out, err := f.Format([]Unit{{Fields: []string{"only"}}})
	require.NoError(t, err)
	require.Equal(t, "[]", out)
}

func TestFormatRejectsBadTemplate(t *testing.T) {
	f := New(ModeTemplate, "", "{{.Nope")
	_, err := f.Format([]Unit{{Fields: []string{"x"}}})
	require.Error(t, err)
}
