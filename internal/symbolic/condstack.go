package symbolic

import "github.com/philgrim2/scriptsym/internal/script"

// CondStack is the compact (size, first_false_pos) representation of
// spec.md §3/§9, replacing the teacher's []int condStack (engine.go) with
// the two-integer encoding the spec mandates for compactness.
type CondStack struct {
	size          int
	firstFalsePos int
}

// NewCondStack returns an empty condition stack (all_true trivially holds).
func NewCondStack() CondStack {
	return CondStack{firstFalsePos: -1}
}

// Empty reports size == 0.
func (c CondStack) Empty() bool { return c.size == 0 }

// AllTrue reports whether every recorded gate is currently true.
func (c CondStack) AllTrue() bool { return c.firstFalsePos == -1 }

// Push records a new nested gate value f.
func (c CondStack) Push(f bool) CondStack {
	if !f && c.AllTrue() {
		c.firstFalsePos = c.size
	}
	c.size++
	return c
}

// Pop removes the top gate. Fails UNBALANCED_CONDITIONAL on an empty stack.
func (c CondStack) Pop() (CondStack, error) {
	if c.size == 0 {
		return c, script.NewError(script.ErrUnbalancedConditional, "condition stack pop on empty stack")
	}
	c.size--
	if c.firstFalsePos == c.size {
		c.firstFalsePos = -1
	}
	return c, nil
}

// ToggleTop flips the top gate (OP_ELSE semantics).
func (c CondStack) ToggleTop() CondStack {
	if c.AllTrue() {
		c.firstFalsePos = c.size - 1
	} else if c.firstFalsePos == c.size-1 {
		c.firstFalsePos = -1
	}
	// Toggling a non-top false is unobservable for gating; no-op.
	return c
}
