package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vicut/vicut/internal/executor"
)

func TestNewOperation_RequiresAnOperation(t *testing.T) {
	_, err := newOperation("", nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no operation specified")
}

func TestNewOperation_KeysOnly(t *testing.T) {
	op, err := newOperation("dw", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "dw", op.keys)
	require.Empty(t, op.fields)
	require.Empty(t, op.scriptDirs)
}

func TestNewOperation_ScriptParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.vicut")
	require.NoError(t, os.WriteFile(path, []byte("nonsense directive\n"), 0o600))

	_, err := newOperation("", nil, []string{path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing script")
}

func TestNewOperation_MissingScriptFile(t *testing.T) {
	_, err := newOperation("", nil, []string{"/no/such/file.vicut"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading script")
}

func TestOperationRun_KeysThenFields(t *testing.T) {
	op, err := newOperation("$", []string{"0"}, nil)
	require.NoError(t, err)

	ex := executor.New("The quick brown fox")
	buffer, fields, err := op.run(context.Background(), ex)
	require.NoError(t, err)
	require.Equal(t, "The quick brown fox", buffer)
	require.Len(t, fields, 1)
	require.Equal(t, "The quick brown fox", fields[0])
}

func TestOperationRun_ScriptCapturesField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.vicut")
	script := "normal! 0\nfield $\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o600))

	op, err := newOperation("", nil, []string{path})
	require.NoError(t, err)

	ex := executor.New("hello world")
	_, fields, err := op.run(context.Background(), ex)
	require.NoError(t, err)
	require.Equal(t, []string{"hello world"}, fields)
}

func TestResolveInputs_ExprMutuallyExclusiveWithArgs(t *testing.T) {
	flagExpr = "hello"
	defer func() { flagExpr = "" }()

	_, err := resolveInputs([]string{"some-file.txt"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "mutually exclusive")
}

func TestResolveInputs_Expr(t *testing.T) {
	flagExpr = "hello world"
	defer func() { flagExpr = "" }()

	srcs, err := resolveInputs(nil)
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	require.Equal(t, "", srcs[0].name)
	require.Equal(t, "hello world", srcs[0].text)
}

func TestResolveInputs_Files(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("buffer text"), 0o600))

	srcs, err := resolveInputs([]string{path})
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	require.Equal(t, path, srcs[0].name)
	require.Equal(t, "buffer text", srcs[0].text)
}

func TestResolveInputs_MissingFile(t *testing.T) {
	_, err := resolveInputs([]string{"/no/such/input.txt"})
	require.Error(t, err)
}

func TestLineSource(t *testing.T) {
	require.Equal(t, "line 1", lineSource("", 0))
	require.Equal(t, "input.txt:3", lineSource("input.txt", 2))
}

func TestSourceLabel(t *testing.T) {
	require.Equal(t, "<stdin>", sourceLabel(""))
	require.Equal(t, "foo.txt", sourceLabel("foo.txt"))
}

func TestAnyFailed(t *testing.T) {
	require.False(t, anyFailed(nil))
}
