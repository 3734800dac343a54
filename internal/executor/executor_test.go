package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// Literal scenarios from spec.md §8.

func TestDeleteWord(t *testing.T) {
	ex := New("The quick brown fox jumps over the lazy dog")
	setCursor(t, ex, 16)

	require.NoError(t, ex.MoveCursor(context.Background(), "dw"))
	require.Equal(t, "The quick brown jumps over the lazy dog", ex.Buffer())
}

func TestBackwardDeleteWithCount(t *testing.T) {
	ex := New("The quick brown fox jumps over the lazy dog")
	setCursor(t, ex, 16)

	require.NoError(t, ex.MoveCursor(context.Background(), "2db"))
	require.Equal(t, "The fox jumps over the lazy dog", ex.Buffer())
}

func TestInnerQuotesWithEscapes(t *testing.T) {
	ex := New(`this buffer has "some \"quoted" text`)

	require.NoError(t, ex.MoveCursor(context.Background(), `di"`))
	require.Equal(t, `this buffer has "" text`, ex.Buffer())
}

func TestAroundParensWithEscapes(t *testing.T) {
	ex := New(`this buffer has (some \(\)(inner) \(\)delimited) text`)

	require.NoError(t, ex.MoveCursor(context.Background(), `da)`))
	require.Equal(t, `this buffer has text`, ex.Buffer())
}

func TestRot13FiveWordsBackward(t *testing.T) {
	ex := New("The quick brown fox jumps over the lazy dog")
	setCursor(t, ex, 31)

	require.NoError(t, ex.MoveCursor(context.Background(), "g?5b"))
	require.Equal(t, "The dhvpx oebja sbk whzcf bire the lazy dog", ex.Buffer())
}

func TestInsertAtEndThenNewlineThenInsert(t *testing.T) {
	ex := New("foo bar biz")

	require.NoError(t, ex.MoveCursor(context.Background(), "$a\rbar foo biz"))
	require.Equal(t, "foo bar biz\nbar foo biz", ex.Buffer())
}

// setCursor drives the cursor to an absolute grapheme index via repeated
// forward motion, since Executor only exposes keys-driven movement.
func setCursor(t *testing.T, ex *Executor, n int) {
	t.Helper()
	require.NoError(t, ex.MoveCursor(context.Background(), "0"))
	if n > 0 {
		require.NoError(t, ex.MoveCursor(context.Background(), plRepeat("l", n)))
	}
}

func plRepeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

// Ex and Search mode must return to Normal once a command completes;
// regression test for the dispatch() bug where the executor got stuck in
// Ex/Search mode after the first use of ':' or '/'.
func TestExModeReturnsToNormalAfterSubmit(t *testing.T) {
	ex := New("one two three")

	require.NoError(t, ex.MoveCursor(context.Background(), ":d\r"))
	require.Equal(t, "normal", ex.ModeName())

	// A second normal-mode motion must actually move the cursor, proving
	// the executor isn't still consuming keys as ex-mode text.
	require.NoError(t, ex.MoveCursor(context.Background(), "w"))
	require.Equal(t, "normal", ex.ModeName())
}

func TestSearchModeReturnsToNormalAfterMatch(t *testing.T) {
	ex := New("one two three")

	require.NoError(t, ex.MoveCursor(context.Background(), "/three\r"))
	require.Equal(t, "normal", ex.ModeName())
}

func TestUnknownExCommandReturnsTypedError(t *testing.T) {
	ex := New("abc")

	err := ex.MoveCursor(context.Background(), ":bogus\r")
	require.Error(t, err)

	var notAnEditorCommand *NotAnEditorCommandError
	require.ErrorAs(t, err, &notAnEditorCommand)
	require.Equal(t, "abc", ex.Buffer(), "a failed ex command must leave the buffer untouched")
}

func TestBlankExCommandIsANoOp(t *testing.T) {
	ex := New("abc")

	require.NoError(t, ex.MoveCursor(context.Background(), ":\r"))
	require.Equal(t, "abc", ex.Buffer())
}

// The field is the cursor span read from the edited buffer: dw leaves the
// cursor where it started, so the field is the one grapheme now under it.
func TestReadFieldCapturesCursorSpanAfterEdit(t *testing.T) {
	ex := New("The quick brown fox")

	field, err := ex.ReadField(context.Background(), "dw")
	require.NoError(t, err)
	require.Equal(t, "q", field)
	require.Equal(t, "quick brown fox", ex.Buffer())
}
