package compiler

// label is a back-patchable bytecode offset: opened before its target
// location is known (e.g. the branch-past-body target of a while loop),
// then defined once codegen reaches that point.
type label struct {
	offset int32 // -1 until defined
}

// labelPatch records that instruction code[instrIndex]'s operand at
// operandSlot (0=A, 1=B, 2=C) must be rewritten, once lbl is defined, to
// lbl's offset minus instrIndex (a relative PC delta).
type labelPatch struct {
	instrIndex  int
	operandSlot int
	lbl         *label
}

// labelManager opens labels with an unresolved offset and, once codegen for
// a prototype completes, rewrites every JUMP/BRANCH/BRANCHNOT operand that
// referenced one to its resolved relative offset.
type labelManager struct {
	patches []labelPatch
}

func (lm *labelManager) openLabel() *label {
	return &label{offset: -1}
}

func (lm *labelManager) defineLabel(lbl *label, offset int32) {
	lbl.offset = offset
}

// reserve records that the instruction at instrIndex branches to lbl via
// its operand at operandSlot; the operand is rewritten by resolve once lbl
// is defined.
func (lm *labelManager) reserve(instrIndex, operandSlot int, lbl *label) {
	lm.patches = append(lm.patches, labelPatch{instrIndex: instrIndex, operandSlot: operandSlot, lbl: lbl})
}

// resolve rewrites every reserved operand to (label offset - instruction
// offset), the relative PC delta the VM's JUMP/BRANCH/BRANCHNOT add to PC.
func (lm *labelManager) resolve(code []Instruction) {
	for _, p := range lm.patches {
		delta := p.lbl.offset - int32(p.instrIndex)
		switch p.operandSlot {
		case 0:
			code[p.instrIndex].A = delta
		case 1:
			code[p.instrIndex].B = delta
		case 2:
			code[p.instrIndex].C = delta
		}
	}
}
