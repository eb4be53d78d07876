package game

import (
	"opening_tree/internal/domain/tree"
)

// history keeps published states for undo/redo. States share their node
// graphs, so an entry costs a root pointer plus cursor and headers.
type history struct {
	past   []tree.State
	future []tree.State
	limit  int
}

func (h *history) record(prev tree.State) {
	h.past = append(h.past, prev)
	if h.limit > 0 && len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	h.future = nil
}

func (h *history) undo(cur tree.State) (tree.State, bool) {
	if len(h.past) == 0 {
		return tree.State{}, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, cur)
	return prev, true
}

func (h *history) redo(cur tree.State) (tree.State, bool) {
	if len(h.future) == 0 {
		return tree.State{}, false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, cur)
	return next, true
}

func (h *history) canUndo() bool { return len(h.past) > 0 }

func (h *history) canRedo() bool { return len(h.future) > 0 }
