package linebuf

import (
	"fmt"

	"github.com/vicut/vicut/internal/vicmd"
)

// UnsupportedMotionError reports that EvalMotion was asked to evaluate a
// vicmd.MotionKindTag it has no dispatch arm for, per spec.md §7's
// "Unsupported motion" error kind.
type UnsupportedMotionError struct {
	Kind vicmd.MotionKindTag
}

func (e *UnsupportedMotionError) Error() string {
	return fmt.Sprintf("unsupported motion kind %d", e.Kind)
}

// SliceError reports that a field-capture range fell outside the buffer's
// current grapheme bounds, per spec.md §7's "Slice failure" error kind.
// Grounded on original_source/src/exec.rs's read_field, which maps a failed
// LineBuf::slice (an Option) to Err("Failed to slice buffer".to_string())
// rather than silently clamping.
type SliceError struct {
	Start, End, Count int
}

func (e *SliceError) Error() string {
	return fmt.Sprintf("slice [%d,%d) outside buffer of %d graphemes", e.Start, e.End, e.Count)
}
