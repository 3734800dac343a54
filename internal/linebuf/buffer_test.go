package linebuf

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vicut/vicut/internal/vicmd"
)

// motionWithUnknownKind builds a Motion whose Kind is outside vicmd's
// declared MotionKindTag enum, simulating a future variant EvalMotion has
// no dispatch arm for.
func motionWithUnknownKind() vicmd.Motion {
	return vicmd.Motion{Kind: vicmd.MotionKindTag(9999), Count: 1}
}

// TestSliceToAndSliceFromReassembleBuffer checks spec.md §8's invariant:
// for all buffers and all grapheme indices i, slice_to(i) ++ slice_from(i)
// == the buffer.
func TestSliceToAndSliceFromReassembleBuffer(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 \n]{0,40}`).Draw(t, "text")
		b := New(text, 0)
		n := b.GraphemeCount()

		i := rapid.IntRange(0, n).Draw(t, "i")
		require.Equal(t, text, b.SliceTo(i)+b.SliceFrom(i))
	})
}

func TestSliceCheckedRejectsOutOfRangeStart(t *testing.T) {
	b := New("abc", 0)

	_, err := b.SliceChecked(-1, 2)
	require.Error(t, err)

	var sliceErr *SliceError
	require.ErrorAs(t, err, &sliceErr)
}

func TestSliceCheckedRejectsEndPastBuffer(t *testing.T) {
	b := New("abc", 0)

	_, err := b.SliceChecked(0, 100)
	require.Error(t, err)

	var sliceErr *SliceError
	require.ErrorAs(t, err, &sliceErr)
}

func TestSliceCheckedAcceptsFullRange(t *testing.T) {
	b := New("abc", 0)

	s, err := b.SliceChecked(0, b.GraphemeCount())
	require.NoError(t, err)
	require.Equal(t, "abc", s)
}

func TestCursorStaysWithinBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-z]{0,20}`).Draw(t, "text")
		b := New(text, 0)

		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			delta := rapid.IntRange(-5, 5).Draw(t, "delta")
			b.cursor = b.cursor.Set(b.cursor.Get() + delta)
			got := b.cursor.Get()
			require.GreaterOrEqual(t, got, 0)
			require.LessOrEqual(t, got, b.cursor.UpperBound())
		}
	})
}

func TestEvalMotionRejectsOutOfRangeKind(t *testing.T) {
	b := New("abc", 0)

	_, err := b.EvalMotion(nil, motionWithUnknownKind())
	require.Error(t, err)

	var unsupported *UnsupportedMotionError
	require.ErrorAs(t, err, &unsupported)
}
