package linebuf

import "github.com/vicut/vicut/internal/vicmd"

// Cursor is a ClampedIndex over a buffer's grapheme count.
type Cursor = ClampedIndex

// NewCursor builds a cursor bound to graphemeCount, exclusive in modes that
// must not rest on or past the last grapheme (Normal/Visual), inclusive in
// Insert (may rest one past last).
func NewCursor(graphemeCount int, exclusive bool) Cursor {
	return NewClampedIndex(graphemeCount, exclusive)
}

// SelectAnchor records which end of a selection moves with the cursor.
type SelectAnchor int

const (
	AnchorEnd SelectAnchor = iota
	AnchorStart
)

// Invert flips the anchor.
func (a SelectAnchor) Invert() SelectAnchor {
	if a == AnchorEnd {
		return AnchorStart
	}
	return AnchorEnd
}

// SelectMode names the shape of a visual selection.
type SelectMode int

const (
	SelectNone SelectMode = iota
	SelectChar
	SelectLine
	SelectBlock
)

// Selection is an optional [Start, End] grapheme range with an anchor end.
type Selection struct {
	Active bool
	Start  int
	End    int
	Mode   SelectMode
	Anchor SelectAnchor
}

// Normalized returns the selection with Start <= End.
func (s Selection) Normalized() Selection {
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	return s
}

// MotionKindValue is the result of evaluating a Motion against a buffer.
// It encodes Vim's exclusive/inclusive/linewise taxonomy plus the
// "target column" memory used by vertical motions.
type MotionKindValue struct {
	Tag MotionResultTag

	// To/On/Onto
	Pos int

	// Inclusive/Exclusive/*WithTargetCol
	Start, End int
	TargetCol  int
}

// MotionResultTag names which MotionKindValue variant is populated.
type MotionResultTag int

const (
	MKNull MotionResultTag = iota
	MKTo
	MKOn
	MKOnto
	MKInclusive
	MKExclusive
	MKInclusiveWithTargetCol
	MKExclusiveWithTargetCol
)

// Null is the no-op MotionKindValue.
func Null() MotionKindValue { return MotionKindValue{Tag: MKNull} }

// To builds an exclusive absolute-position MotionKindValue.
func To(p int) MotionKindValue { return MotionKindValue{Tag: MKTo, Pos: p} }

// On builds an inclusive-for-move, exclusive-for-op MotionKindValue.
func On(p int) MotionKindValue { return MotionKindValue{Tag: MKOn, Pos: p} }

// Onto builds an inclusive-for-op, exclusive-for-move MotionKindValue.
func Onto(p int) MotionKindValue { return MotionKindValue{Tag: MKOnto, Pos: p} }

// Inclusive builds an inclusive range MotionKindValue.
func Inclusive(s, e int) MotionKindValue {
	return MotionKindValue{Tag: MKInclusive, Start: s, End: e}
}

// Exclusive builds an exclusive range MotionKindValue.
func Exclusive(s, e int) MotionKindValue {
	return MotionKindValue{Tag: MKExclusive, Start: s, End: e}
}

// InclusiveWithTargetCol builds an inclusive range carrying a saved target
// column for vertical motion.
func InclusiveWithTargetCol(s, e, col int) MotionKindValue {
	return MotionKindValue{Tag: MKInclusiveWithTargetCol, Start: s, End: e, TargetCol: col}
}

// ExclusiveWithTargetCol builds an exclusive range carrying a saved target
// column for vertical motion.
func ExclusiveWithTargetCol(s, e, col int) MotionKindValue {
	return MotionKindValue{Tag: MKExclusiveWithTargetCol, Start: s, End: e, TargetCol: col}
}

// IsNull reports whether this is the no-op variant.
func (m MotionKindValue) IsNull() bool { return m.Tag == MKNull }

// HasTargetCol reports whether this variant carries a saved target column.
func (m MotionKindValue) HasTargetCol() bool {
	return m.Tag == MKInclusiveWithTargetCol || m.Tag == MKExclusiveWithTargetCol
}

// Range returns (start, end) for range-shaped variants; ok is false for
// To/On/Onto/Null.
func (m MotionKindValue) Range() (start, end int, ok bool) {
	switch m.Tag {
	case MKInclusive, MKInclusiveWithTargetCol, MKExclusive, MKExclusiveWithTargetCol:
		return m.Start, m.End, true
	default:
		return 0, 0, false
	}
}

// IsInclusive reports whether the far end of the range is part of the
// operand for an operator (Onto/Inclusive variants).
func (m MotionKindValue) IsInclusive() bool {
	switch m.Tag {
	case MKOnto, MKInclusive, MKInclusiveWithTargetCol:
		return true
	default:
		return false
	}
}

// Register is a named clipboard payload.
type Register struct {
	Content     string
	IsWholeLine bool
}

// CmdReplaySingle is a single repeatable ViCmd, for dot-repeat of Normal
// verbs.
type CmdReplaySingle struct {
	Cmd vicmd.ViCmd
}

// CmdReplayMulti is a list of ViCmds with a repeat count, for Insert/Replace
// re-entry via dot-repeat.
type CmdReplayMulti struct {
	Cmds   []vicmd.ViCmd
	Repeat int
}

// CmdReplay is either a CmdReplaySingle or a CmdReplayMulti.
type CmdReplay struct {
	Single *CmdReplaySingle
	Multi  *CmdReplayMulti
}

// IsZero reports whether no replay has been recorded.
func (r CmdReplay) IsZero() bool { return r.Single == nil && r.Multi == nil }
