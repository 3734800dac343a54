package linebuf

import "github.com/vicut/vicut/internal/vicmd"

// ExecCmd dispatches a fully parsed ViCmd against the buffer, per spec.md
// §4.3.5. reg is the register resolved by the caller (the Executor owns
// register-name → Register lookup; LineBuf only reads/writes the value it
// is handed).
func (b *LineBuf) ExecCmd(cmd *vicmd.ViCmd, reg *Register, inVisual bool) (captured string, changed bool, err error) {
	if cmd.Verb == nil || !cmd.Verb.Verb.IsCharInsert() {
		if top, ok := b.undo.Top(); ok && top.Merging {
			top.Merging = false
			b.undo.SetTop(top)
		}
	}

	var mk MotionKindValue
	if cmd.Motion != nil {
		var verb *vicmd.VerbCmd
		if cmd.Verb != nil {
			verb = cmd.Verb
		}
		var evalErr error
		b.withHintSpliced(func() {
			mk, evalErr = b.EvalMotion(verb, *cmd.Motion)
		})
		if evalErr != nil {
			return "", false, evalErr
		}
	} else {
		mk = Null()
	}

	if cmd.Verb != nil {
		captured, changed, err = b.ExecVerb(cmd.Verb, mk, reg)
	} else {
		b.ApplyMotion(mk, inVisual)
	}

	if mk.Tag != MKInclusiveWithTargetCol && mk.Tag != MKExclusiveWithTargetCol {
		b.savedCol = nil
	}
	return captured, changed, err
}
