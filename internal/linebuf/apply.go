package linebuf

// ApplyMotion updates the cursor (and, in visual mode, the selection) from
// a MotionKindValue, per spec.md §4.3.3.
func (b *LineBuf) ApplyMotion(mk MotionKindValue, inVisual bool) {
	switch mk.Tag {
	case MKNull:
		return
	case MKOn, MKOnto:
		b.cursor = b.cursor.Set(mk.Pos)
		if inVisual {
			b.extendSelection(b.cursor.Get())
		}
		if mk.Tag != MKOnto {
			b.savedCol = nil
		}
	case MKTo:
		start := b.cursor.Get()
		p := mk.Pos
		if p > start {
			p--
		} else if p < start {
			p++
		}
		b.cursor = b.cursor.Set(p)
		if inVisual {
			b.extendSelection(b.cursor.Get())
		}
		b.savedCol = nil
	case MKInclusive, MKExclusive:
		s, e, _ := mk.Range()
		if !inVisual {
			b.cursor = b.cursor.Set(s)
		} else {
			end := e
			if mk.Tag == MKExclusive {
				end--
			}
			b.cursor = b.cursor.Set(end)
			b.extendSelection(b.cursor.Get())
		}
		b.savedCol = nil
	case MKInclusiveWithTargetCol, MKExclusiveWithTargetCol:
		s, e, _ := mk.Range()
		lineStart, _ := b.LineBounds(b.LineOf(maxInt(s, e)))
		target := minInt(e, lineStart+mk.TargetCol)
		_ = s
		b.cursor = b.cursor.Set(target)
		if inVisual {
			b.extendSelection(b.cursor.Get())
		}
		// savedCol intentionally preserved across vertical motion.
	}
}

func (b *LineBuf) extendSelection(to int) {
	if !b.selection.Active {
		return
	}
	b.selection.End = to
}
