// Package vicmd defines the structured command values produced by the mode
// parsers and consumed by the executor: registers, verbs, motions, and the
// compound ViCmd that ties them together.
package vicmd

// RegisterName identifies the register a verb reads from or writes to.
// A nil Name means the default (unnamed) register. Append is true when the
// register letter was given in uppercase ("A" appends to register "a").
type RegisterName struct {
	Name   *rune
	Count  int
	Append bool
}

// DefaultRegister is the unnamed register.
func DefaultRegister() RegisterName {
	return RegisterName{Count: 1}
}

// NewRegisterName builds a RegisterName from a parsed register letter.
// Uppercase letters request append semantics and normalize to lowercase.
func NewRegisterName(ch rune, count int) RegisterName {
	if count <= 0 {
		count = 1
	}
	lower := ch
	append_ := false
	if ch >= 'A' && ch <= 'Z' {
		append_ = true
		lower = ch - 'A' + 'a'
	}
	return RegisterName{Name: &lower, Count: count, Append: append_}
}

// Verb is the operation half of a ViCmd.
type Verb int

const (
	VerbNone Verb = iota
	VerbDelete
	VerbChange
	VerbYank
	VerbPutBefore
	VerbPutAfter
	VerbReplaceChar     // ReplaceChar(Char)
	VerbReplaceInplace  // ReplaceCharInplace(Char, N)
	VerbToggleInplace   // ToggleCaseInplace(N)
	VerbToggleRange     // ToggleCaseRange
	VerbToLower
	VerbToUpper
	VerbRot13
	VerbUndo
	VerbRedo
	VerbRepeatLast
	VerbIndent
	VerbDedent
	VerbJoinLines
	VerbInsertChar // InsertChar(Char)
	VerbInsert     // Insert(Text)
	VerbSwapVisualAnchor
	VerbLineBreakBefore
	VerbLineBreakAfter

	// Mode transitions.
	VerbNormalMode
	VerbInsertMode
	VerbReplaceMode
	VerbVisualMode
	VerbVisualLineMode
	VerbVisualBlockMode
	VerbVisualSelectLast
	VerbExMode
	VerbSearchMode
)

// IsRepeatable reports whether the verb is recorded for dot-repeat.
func (v Verb) IsRepeatable() bool {
	switch v {
	case VerbDelete, VerbChange, VerbReplaceChar, VerbReplaceInplace,
		VerbToLower, VerbToUpper, VerbToggleRange, VerbToggleInplace,
		VerbPutBefore, VerbPutAfter, VerbLineBreakBefore, VerbLineBreakAfter,
		VerbJoinLines, VerbInsertChar, VerbInsert, VerbIndent, VerbDedent, VerbRot13:
		return true
	default:
		return false
	}
}

// IsCharInsert reports whether the verb belongs to the character-edit
// family (Change, InsertChar, ReplaceChar, ReplaceInplace) whose undo edit
// may be coalesced ("merging") with the preceding one.
func (v Verb) IsCharInsert() bool {
	switch v {
	case VerbChange, VerbInsertChar, VerbReplaceChar, VerbReplaceInplace:
		return true
	default:
		return false
	}
}

// IsModeTransition reports whether executing this verb changes the current mode.
func (v Verb) IsModeTransition() bool {
	switch v {
	case VerbChange, VerbInsertMode, VerbExMode, VerbSearchMode,
		VerbLineBreakBefore, VerbLineBreakAfter, VerbNormalMode,
		VerbVisualSelectLast, VerbVisualMode, VerbVisualLineMode,
		VerbVisualBlockMode, VerbReplaceMode:
		return true
	default:
		return false
	}
}

// VerbCmd pairs a verb with its numeric count and any inline argument
// (a replacement character, an inserted string, or a toggle count).
type VerbCmd struct {
	Count int
	Verb  Verb
	Ch    rune   // ReplaceChar / ReplaceCharInplace / InsertChar argument
	Text  string // Insert argument
	N     int    // ReplaceCharInplace / ToggleCaseInplace repeat argument
}

// MotionKindTag names the dispatchable motion family. Parameters (Word
// kind, Bound, Direction, search char) live alongside on Motion.
type MotionKindTag int

const (
	MotionNone MotionKindTag = iota
	MotionForwardChar
	MotionBackwardChar
	MotionForwardCharForced
	MotionBackwardCharForced
	MotionLineUp
	MotionLineDown
	MotionLineUpCharwise
	MotionLineDownCharwise
	MotionWholeLine
	MotionWord       // WordMotion(To, Word, Direction)
	MotionBeginningOfLine
	MotionBeginningOfFirstWord
	MotionEndOfLine
	MotionEndOfLastWord
	MotionBeginningOfBuffer
	MotionEndOfBuffer
	MotionWholeBuffer
	MotionToDelimMatch
	MotionToParen
	MotionToBrace
	MotionToBracket
	MotionTextObject // TextObj(Kind, Bound)
	MotionCharSearch // (Direction, Dest, Char)
	MotionPatternSearch
	MotionPatternSearchRev
	MotionRepeatMotion
	MotionRepeatMotionRev
	MotionRange
	MotionNull
)

// Word selects whether a word motion honors character-class boundaries
// ("normal" word) or only whitespace ("big" word / WORD).
type Word int

const (
	WordNormal Word = iota
	WordBig
)

// WordTo selects whether a word motion targets the start or end of a word.
type WordTo int

const (
	WordStart WordTo = iota
	WordEnd
)

// Direction is a navigation direction shared by word, char-search, and
// delimiter motions.
type Direction int

const (
	DirForward Direction = iota
	DirBackward
)

// Dest refines a char-search motion's landing spot relative to the match.
type Dest int

const (
	DestOn Dest = iota
	DestBefore
)

// Bound selects whether a text object includes its delimiters ("around")
// or excludes them ("inside").
type Bound int

const (
	BoundInside Bound = iota
	BoundAround
)

// TextObjKind names a text object family. Quote/paren/bracket/brace/angle
// objects use Bound only; Word objects also use Word.
type TextObjKind int

const (
	TextObjWord TextObjKind = iota
	TextObjSentence
	TextObjParagraph
	TextObjDoubleQuote
	TextObjSingleQuote
	TextObjBacktickQuote
	TextObjParen
	TextObjBracket
	TextObjBrace
	TextObjAngle
	TextObjAnyBracket // 'b' - innermost of (), [], {}
)

// Motion is the navigation half of a ViCmd.
type Motion struct {
	Count int
	Kind  MotionKindTag

	Word      Word
	WordTo    WordTo
	Dir       Direction
	Dest      Dest
	Ch        rune
	Bound     Bound
	Object    TextObjKind
	Pattern   string
	RangeLo   int
	RangeHi   int
}

// CmdFlags carries composed-mode hints such as verb+visual sub-selections
// (e.g. "dvw": delete operator composed with a transient visual motion).
type CmdFlags int

const (
	FlagNone CmdFlags = 0
	FlagVisual CmdFlags = 1 << iota
	FlagVisualLine
	FlagVisualBlock
	FlagExitCurrentMode
)

// ViCmd is the fully parsed command value a ModeParser emits and the
// Executor evaluates.
type ViCmd struct {
	Register RegisterName
	Verb     *VerbCmd
	Motion   *Motion
	Flags    CmdFlags
	RawSeq   string
	// Ex carries a parsed Ex-mode command line; when set, Verb/Motion are
	// nil and the Executor dispatches through its own Ex interpreter
	// instead of LineBuf.ExecCmd.
	Ex *ExCommand
}

// VerbCount returns the verb's count, or 1 if there is no verb.
func (c *ViCmd) VerbCount() int {
	if c.Verb == nil {
		return 1
	}
	if c.Verb.Count <= 0 {
		return 1
	}
	return c.Verb.Count
}

// MotionCount returns the motion's count, or 1 if there is no motion.
func (c *ViCmd) MotionCount() int {
	if c.Motion == nil {
		return 1
	}
	if c.Motion.Count <= 0 {
		return 1
	}
	return c.Motion.Count
}

// NormalizeCounts folds verb.count * motion.count into motion.count and
// resets verb.count to 1, per spec.md's counting invariant.
func (c *ViCmd) NormalizeCounts() {
	if c.Verb == nil || c.Motion == nil {
		return
	}
	product := c.VerbCount() * c.MotionCount()
	c.Verb.Count = 1
	c.Motion.Count = product
}

// IsRepeatable reports whether the command's verb should be recorded for
// dot-repeat.
func (c *ViCmd) IsRepeatable() bool {
	return c.Verb != nil && c.Verb.Verb.IsRepeatable()
}

// IsCmdRepeat reports whether this ViCmd is the "." repeat-last verb.
func (c *ViCmd) IsCmdRepeat() bool {
	return c.Verb != nil && c.Verb.Verb == VerbRepeatLast
}

// IsMotionRepeat reports whether this ViCmd's motion is ";" or ",".
func (c *ViCmd) IsMotionRepeat() bool {
	return c.Motion != nil && (c.Motion.Kind == MotionRepeatMotion || c.Motion.Kind == MotionRepeatMotionRev)
}

// IsCharSearch reports whether this ViCmd's motion is a char-search motion.
func (c *ViCmd) IsCharSearch() bool {
	return c.Motion != nil && c.Motion.Kind == MotionCharSearch
}

// IsUndoOp reports whether the verb is Undo or Redo.
func (c *ViCmd) IsUndoOp() bool {
	return c.Verb != nil && (c.Verb.Verb == VerbUndo || c.Verb.Verb == VerbRedo)
}

// IsModeTransition reports whether executing this command changes mode.
func (c *ViCmd) IsModeTransition() bool {
	return c.Verb != nil && c.Verb.Verb.IsModeTransition()
}
