package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vicut/vicut/internal/executor"
)

func TestParseIgnoresBlankAndCommentLines(t *testing.T) {
	directives, err := Parse("\n# a comment\n\nnormal! dw\n")
	require.NoError(t, err)
	require.Equal(t, []Directive{{Kind: DirNormal, Keys: "dw"}}, directives)
}

func TestParseFieldAndKeys(t *testing.T) {
	directives, err := Parse("field $\nkeys 0\n")
	require.NoError(t, err)
	require.Equal(t, []Directive{
		{Kind: DirField, Keys: "$"},
		{Kind: DirNormal, Keys: "0"},
	}, directives)
}

func TestParseSetRegisterRewritesPut(t *testing.T) {
	directives, err := Parse("set register a\nput\n")
	require.NoError(t, err)
	require.Equal(t, []Directive{{Kind: DirNormal, Keys: `"ap`}}, directives)
}

func TestParsePutWithoutSetRegisterUsesDefault(t *testing.T) {
	directives, err := Parse("put\n")
	require.NoError(t, err)
	require.Equal(t, []Directive{{Kind: DirNormal, Keys: "p"}}, directives)
}

func TestParseRejectsBadRegisterName(t *testing.T) {
	_, err := Parse("set register 1\n")
	require.Error(t, err)
}

func TestParseRejectsUnrecognizedDirective(t *testing.T) {
	_, err := Parse("bogus thing\n")
	require.Error(t, err)
}

func TestRunExecutesDirectivesAndCollectsFields(t *testing.T) {
	ex := executor.New("The quick brown fox")
	directives, err := Parse("field dw\nfield $\n")
	require.NoError(t, err)

	fields, err := Run(context.Background(), ex, directives)
	require.NoError(t, err)
	require.Equal(t, []string{"q", "quick brown fox"}, fields)
	require.Equal(t, "quick brown fox", ex.Buffer())
}

func TestRunStopsOnFirstError(t *testing.T) {
	ex := executor.New("abc")
	directives := []Directive{
		{Kind: DirField, Keys: ":bogus\r"},
		{Kind: DirField, Keys: "$"},
	}

	fields, err := Run(context.Background(), ex, directives)
	require.Error(t, err)
	require.Empty(t, fields, "the failing directive's partial output must not be returned")

	var notAnEditorCommand *executor.NotAnEditorCommandError
	require.ErrorAs(t, err, &notAnEditorCommand)
}
