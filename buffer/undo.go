package buffer

import "time"

// Operation is one recorded edit: Deleted was removed at Pos and Inserted
// put in its place.
type Operation struct {
	Pos      int
	Deleted  string
	Inserted string
	Time     time.Time // when the operation was recorded
	Group    int       // group ID for batched undo (0 = ungrouped)
}

type UndoStack struct {
	undos     []Operation
	redos     []Operation
	nextGroup int // next group ID to assign
}

const undoGroupInterval = 300 * time.Millisecond

func NewUndoStack() *UndoStack {
	return &UndoStack{nextGroup: 1}
}

func (u *UndoStack) Push(op Operation) {
	if op.Time.IsZero() {
		op.Time = time.Now()
	}

	// Auto-group sequential single-byte typing within the time window
	if len(u.undos) > 0 {
		prev := &u.undos[len(u.undos)-1]
		if op.Time.Sub(prev.Time) < undoGroupInterval && !isGroupBreak(prev, &op) {
			if prev.Group == 0 {
				prev.Group = u.nextGroup
				u.nextGroup++
			}
			op.Group = prev.Group
		}
	}

	u.undos = append(u.undos, op)
	u.redos = u.redos[:0]
}

// isGroupBreak returns true if consecutive ops should NOT be grouped
// (e.g., whitespace breaks a word group, or non-adjacent positions).
func isGroupBreak(prev, cur *Operation) bool {
	if len(cur.Deleted) != 0 || len(prev.Deleted) != 0 {
		return true
	}
	if len(cur.Inserted) != 1 || len(prev.Inserted) != 1 {
		return true
	}
	switch cur.Inserted[0] {
	case ' ', '\n', '\t':
		return true
	}
	switch prev.Inserted[0] {
	case ' ', '\n', '\t':
		return true
	}
	return cur.Pos != prev.Pos+1
}

func (u *UndoStack) CanUndo() bool { return len(u.undos) > 0 }
func (u *UndoStack) CanRedo() bool { return len(u.redos) > 0 }

func (u *UndoStack) Clear() {
	u.undos = nil
	u.redos = nil
}

// PopUndo pops the top operation and all others in the same group. The
// returned slice is most recent first.
func (u *UndoStack) PopUndo() []Operation {
	if len(u.undos) == 0 {
		return nil
	}
	ops := []Operation{u.undos[len(u.undos)-1]}
	u.undos = u.undos[:len(u.undos)-1]

	if g := ops[0].Group; g != 0 {
		for len(u.undos) > 0 && u.undos[len(u.undos)-1].Group == g {
			ops = append(ops, u.undos[len(u.undos)-1])
			u.undos = u.undos[:len(u.undos)-1]
		}
	}
	u.redos = append(u.redos, ops...)
	return ops
}

// PopRedo pops the top redo operation and all others in the same group.
// The returned slice is oldest first.
func (u *UndoStack) PopRedo() []Operation {
	if len(u.redos) == 0 {
		return nil
	}
	ops := []Operation{u.redos[len(u.redos)-1]}
	u.redos = u.redos[:len(u.redos)-1]

	if g := ops[0].Group; g != 0 {
		for len(u.redos) > 0 && u.redos[len(u.redos)-1].Group == g {
			ops = append(ops, u.redos[len(u.redos)-1])
			u.redos = u.redos[:len(u.redos)-1]
		}
	}
	u.undos = append(u.undos, ops...)
	return ops
}
