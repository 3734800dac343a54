package linebuf

import (
	"strings"

	"github.com/vicut/vicut/internal/vicmd"
)

// RangeFromMotion canonicalizes a MotionKindValue to a [start,end) grapheme
// range with Vim's inclusivity adjustments applied: On is exclusive-for-op
// (plain ordered(cursor,pos), no increment) while Onto/Inclusive are
// inclusive-for-op (add one to the far end); To nudges ±1 is already baked
// into eval (To is only used for bare movement, never as an operator
// range — operators use On/Onto/Inclusive/Exclusive per spec.md's motion
// taxonomy).
func RangeFromMotion(mk MotionKindValue, cursor int) (start, end int, linewise bool) {
	switch mk.Tag {
	case MKOn:
		return minInt(cursor, mk.Pos), maxInt(cursor, mk.Pos), false
	case MKOnto:
		return minInt(cursor, mk.Pos), maxInt(cursor, mk.Pos) + 1, false
	case MKTo:
		return minInt(cursor, mk.Pos), maxInt(cursor, mk.Pos), false
	case MKInclusive, MKInclusiveWithTargetCol:
		s, e, _ := mk.Range()
		return s, e + 1, mk.Tag == MKInclusiveWithTargetCol
	case MKExclusive, MKExclusiveWithTargetCol:
		s, e, _ := mk.Range()
		return s, e, mk.Tag == MKExclusiveWithTargetCol
	default:
		return cursor, cursor, false
	}
}

// ExecVerb executes verb against the range produced by motion (or, if
// motion is Null and a selection is active, against the selection), per
// spec.md §4.3.4. Returns the yanked/drained text, whether the buffer
// changed, and an error for unsupported verbs.
func (b *LineBuf) ExecVerb(vc *vicmd.VerbCmd, mk MotionKindValue, reg *Register) (captured string, changed bool, err error) {
	cur := b.cursor.Get()
	start, end, targetCol := b.operandRange(mk, cur)

	before := b.buffer
	beforeCursor := cur

	switch vc.Verb {
	case vicmd.VerbDelete, vicmd.VerbChange, vicmd.VerbYank:
		text := b.Slice(start, end)
		if reg != nil {
			reg.Content = text
			reg.IsWholeLine = mk.Tag == MKInclusiveWithTargetCol && vc.Verb != vicmd.VerbYank && targetColSpansLines(mk)
		}
		captured = text
		if vc.Verb != vicmd.VerbYank {
			b.replaceGraphemeRange(start, end, "")
			newCur := start
			if mk.HasTargetCol() {
				lineStart, _ := b.LineBounds(b.LineOf(newCur))
				newCur = lineStart + minInt(mk.TargetCol, b.GraphemeCount()-lineStart)
			}
			b.cursor = b.cursor.SetMax(b.GraphemeCount()).Set(newCur)
			changed = true
		} else {
			b.cursor = b.cursor.Set(start)
		}

	case vicmd.VerbRot13:
		text := b.Slice(start, end)
		var sb strings.Builder
		for i := 0; i < len(text); i++ {
			sb.WriteByte(rot13Byte(text[i]))
		}
		b.replaceGraphemeRange(start, end, sb.String())
		b.cursor = b.cursor.SetMax(b.GraphemeCount()).Set(start)
		changed = true

	case vicmd.VerbReplaceChar:
		if cur < b.GraphemeCount() {
			b.replaceGraphemeRange(cur, cur+1, string(vc.Ch))
			changed = true
		}
		b.cursor = b.cursor.SetMax(b.GraphemeCount())
		b.ApplyMotion(mk, false)

	case vicmd.VerbReplaceInplace:
		n := vc.N
		if n <= 0 {
			n = 1
		}
		p := cur
		count := b.GraphemeCount()
		for i := 0; i < n && p < count; i++ {
			if b.GraphemeAt(p) == "\n" {
				break
			}
			b.replaceGraphemeRange(p, p+1, string(vc.Ch))
			p++
			count = b.GraphemeCount()
		}
		b.cursor = b.cursor.SetMax(b.GraphemeCount()).Set(minInt(p, maxInt(count-1, 0)))
		changed = true

	case vicmd.VerbToggleInplace:
		n := vc.N
		if n <= 0 {
			n = 1
		}
		e := minInt(cur+n, b.GraphemeCount())
		b.toggleCaseRange(cur, e)
		b.cursor = b.cursor.Set(minInt(e, maxInt(b.GraphemeCount()-1, 0)))
		changed = true

	case vicmd.VerbToggleRange:
		b.toggleCaseRange(start, end)
		b.cursor = b.cursor.Set(start)
		changed = true

	case vicmd.VerbToLower:
		b.caseRange(start, end, strings.ToLower)
		b.cursor = b.cursor.Set(start)
		changed = true

	case vicmd.VerbToUpper:
		b.caseRange(start, end, strings.ToUpper)
		b.cursor = b.cursor.Set(start)
		changed = true

	case vicmd.VerbPutBefore, vicmd.VerbPutAfter:
		if reg == nil {
			break
		}
		pos := cur
		text := reg.Content
		if reg.IsWholeLine {
			lineStart, lineEnd := b.LineBounds(b.LineOf(cur))
			if vc.Verb == vicmd.VerbPutAfter {
				pos = lineEnd
				if lineEnd < b.GraphemeCount() {
					pos++
				} else {
					text = "\n" + strings.TrimSuffix(text, "\n")
				}
			} else {
				pos = lineStart
			}
			if !strings.HasSuffix(text, "\n") && pos <= lineEnd {
				text = text + "\n"
			}
		} else if vc.Verb == vicmd.VerbPutAfter {
			pos = minInt(cur+1, b.GraphemeCount())
		}
		b.replaceGraphemeRange(pos, pos, text)
		b.cursor = b.cursor.SetMax(b.GraphemeCount()).Set(pos)
		changed = true

	case vicmd.VerbUndo:
		if p, ok := b.Undo(); ok {
			b.cursor = b.cursor.SetMax(b.GraphemeCount()).Set(p)
			changed = true
		}
		return "", changed, nil

	case vicmd.VerbRedo:
		if p, ok := b.Redo(); ok {
			b.cursor = b.cursor.SetMax(b.GraphemeCount()).Set(p)
			changed = true
		}
		return "", changed, nil

	case vicmd.VerbJoinLines:
		lineStart, lineEnd := b.LineBounds(b.LineOf(cur))
		if lineEnd >= b.GraphemeCount() {
			break
		}
		nextStart := lineEnd + 1
		_, nextEnd := b.LineBounds(b.LineOf(nextStart))
		p := nextStart
		for p < nextEnd && IsWhitespace(b.GraphemeAt(p)) {
			p++
		}
		joinPos := lineEnd
		b.replaceGraphemeRange(joinPos, p, " ")
		b.cursor = b.cursor.SetMax(b.GraphemeCount()).Set(joinPos)
		changed = true
		_ = lineStart

	case vicmd.VerbInsertChar:
		b.replaceGraphemeRange(cur, cur, string(vc.Ch))
		b.cursor = b.cursor.SetMax(b.GraphemeCount()).Set(cur + 1)
		changed = true

	case vicmd.VerbInsert:
		gc := GraphemeCount(vc.Text)
		b.replaceGraphemeRange(cur, cur, vc.Text)
		b.cursor = b.cursor.SetMax(b.GraphemeCount()).Set(cur + gc)
		changed = true

	case vicmd.VerbIndent:
		b.indentRange(start, end, true)
		changed = true

	case vicmd.VerbDedent:
		b.indentRange(start, end, false)
		changed = true

	case vicmd.VerbLineBreakBefore:
		lineStart, _ := b.LineBounds(b.LineOf(cur))
		b.replaceGraphemeRange(lineStart, lineStart, "\n")
		b.cursor = b.cursor.SetMax(b.GraphemeCount()).SetExclusive(false).Set(lineStart)
		changed = true

	case vicmd.VerbLineBreakAfter:
		_, lineEnd := b.LineBounds(b.LineOf(cur))
		pos := lineEnd
		b.replaceGraphemeRange(pos, pos, "\n")
		b.cursor = b.cursor.SetMax(b.GraphemeCount()).SetExclusive(false).Set(pos + 1)
		changed = true

	case vicmd.VerbSwapVisualAnchor:
		if b.selection.Active {
			b.selection.Start, b.selection.End = b.selection.End, b.selection.Start
			b.selection.Anchor = b.selection.Anchor.Invert()
			if b.selection.Anchor == AnchorEnd {
				b.cursor = b.cursor.Set(b.selection.End)
			} else {
				b.cursor = b.cursor.Set(b.selection.Start)
			}
		}

	case vicmd.VerbRepeatLast:
		// Resolved by the executor.

	default:
		// Mode-transition verbs have no buffer-side effect here; the
		// executor handles mode switching.
	}

	if changed {
		b.recordEdit(before, beforeCursor, vc.Verb.IsCharInsert())
	}
	return captured, changed, nil
}

func targetColSpansLines(mk MotionKindValue) bool {
	return mk.Tag == MKInclusiveWithTargetCol || mk.Tag == MKExclusiveWithTargetCol
}

// operandRange resolves the (start,end) operand for a verb: from motion, or
// from the active selection when motion is Null.
func (b *LineBuf) operandRange(mk MotionKindValue, cur int) (start, end int, hasTargetCol bool) {
	if mk.IsNull() && b.selection.Active {
		sel := b.selection.Normalized()
		end = sel.End
		if sel.Mode != SelectLine {
			end++
		} else {
			lineStart, _ := b.LineBounds(b.LineOf(sel.Start))
			_, lineEnd := b.LineBounds(b.LineOf(sel.End))
			sel.Start = lineStart
			end = minInt(lineEnd+1, b.GraphemeCount())
		}
		return sel.Start, end, false
	}
	s, e, tc := RangeFromMotion(mk, cur)
	return s, e, tc
}

func (b *LineBuf) toggleCaseRange(start, end int) {
	text := b.Slice(start, end)
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		sb.WriteByte(toggleCaseByte(text[i]))
	}
	b.replaceGraphemeRange(start, end, sb.String())
}

func (b *LineBuf) caseRange(start, end int, f func(string) string) {
	text := b.Slice(start, end)
	b.replaceGraphemeRange(start, end, f(text))
}

func (b *LineBuf) indentRange(start, end int, indent bool) {
	lineStart := b.LineOf(start)
	lineEnd := b.LineOf(maxInt(end-1, start))
	for l := lineEnd; l >= lineStart; l-- {
		s, _ := b.LineBounds(l)
		if indent {
			b.replaceGraphemeRange(s, s, "\t")
		} else if b.GraphemeAt(s) == "\t" {
			b.replaceGraphemeRange(s, s+1, "")
		} else {
			p := s
			for i := 0; i < 8 && p < b.GraphemeCount() && b.GraphemeAt(p) == " "; i++ {
				p++
			}
			if p > s {
				b.replaceGraphemeRange(s, p, "")
			}
		}
	}
	b.cursor = b.cursor.SetMax(b.GraphemeCount())
}
