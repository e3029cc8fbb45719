package body

import "sync/atomic"

// Handle is a creature's reference to its current graph. Readers Load the graph
// once per tick; the reproduction step builds a replacement off to the side and
// publishes it with Swap, so no reader ever sees a graph mid-edit.
type Handle struct {
	p atomic.Pointer[Graph]
}

// NewHandle returns a handle publishing g.
func NewHandle(g *Graph) *Handle {
	h := &Handle{}
	h.p.Store(g)
	return h
}

// Load returns the currently published graph.
func (h *Handle) Load() *Graph {
	return h.p.Load()
}

// Swap publishes g and returns the previous graph.
func (h *Handle) Swap(g *Graph) *Graph {
	return h.p.Swap(g)
}
