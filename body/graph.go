// Package body models a creature's body as a tree of modules joined through
// typed attachment points, with a memoized physics aggregation.
package body

import (
	"fmt"
	"iter"
	"slices"
)

// NodeID is a stable index into a graph's node table. Ids are never reused.
type NodeID int32

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Node wraps a module and its position in the tree.
type Node struct {
	ID       NodeID
	Module   Module
	Parent   NodeID
	Socket   string // parent socket this node occupies; empty for the root
	Children []NodeID
}

// Limits is the budget a graph was built under.
type Limits struct {
	MaxMass       float64
	NerveCapacity float64
}

// Graph is an arena of nodes forming a single tree rooted at a core module.
// It is owned by one creature and is not safe for concurrent mutation; publish
// edits by building a new graph and swapping it through a Handle.
type Graph struct {
	nodes  []Node
	alive  []bool
	count  int
	limits Limits

	// cache is nil whenever a structural edit happened since the last Aggregate.
	cache *PhysicsAggregation
	// layout holds node transforms by id and is rebuilt alongside cache.
	layout []Transform
}

// New creates a graph whose root is the given core module.
func New(root Module) (*Graph, error) {
	if root.Category() != CategoryCore {
		return nil, &StructuralMutationError{
			Op:     "create",
			Node:   0,
			Reason: fmt.Sprintf("root must be a core module, got %s", root.Category()),
		}
	}
	return &Graph{
		nodes: []Node{{ID: 0, Module: root, Parent: NoNode}},
		alive: []bool{true},
		count: 1,
	}, nil
}

// Root returns the root node id.
func (g *Graph) Root() NodeID {
	return 0
}

// Len returns the number of live nodes.
func (g *Graph) Len() int {
	return g.count
}

// Limits returns the budget recorded on the graph.
func (g *Graph) Limits() Limits {
	return g.limits
}

// SetLimits records the budget the graph was built under.
func (g *Graph) SetLimits(l Limits) {
	g.limits = l
}

// Has reports whether id refers to a live node.
func (g *Graph) Has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.alive[id]
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if !g.Has(id) {
		return Node{}, false
	}
	n := g.nodes[id]
	n.Children = slices.Clone(n.Children)
	return n, true
}

// Module returns the module stored at id.
func (g *Graph) Module(id NodeID) (Module, bool) {
	if !g.Has(id) {
		return Module{}, false
	}
	return g.nodes[id].Module, true
}

// ChildrenOf returns the children of id in attachment order.
func (g *Graph) ChildrenOf(id NodeID) []NodeID {
	if !g.Has(id) {
		return nil
	}
	return slices.Clone(g.nodes[id].Children)
}

// occupant returns the child of parent sitting in socket, or NoNode.
func (g *Graph) occupant(parent NodeID, socket string) NodeID {
	for _, c := range g.nodes[parent].Children {
		if g.nodes[c].Socket == socket {
			return c
		}
	}
	return NoNode
}

// checkAttach validates placing m on parent's socket without changing anything.
func (g *Graph) checkAttach(parent NodeID, socket string, m Module) *AttachmentError {
	reject := func(reason string) *AttachmentError {
		return &AttachmentError{Parent: parent, Socket: socket, Module: m.Key, Reason: reason}
	}
	if !g.Has(parent) {
		return reject("parent does not exist")
	}
	point, ok := g.nodes[parent].Module.Socket(socket)
	if !ok {
		return reject(fmt.Sprintf("parent module %q has no such socket", g.nodes[parent].Module.Key))
	}
	if occ := g.occupant(parent, socket); occ != NoNode {
		return reject(fmt.Sprintf("socket already occupied by node %d", occ))
	}
	if reason := rejectReason(point, m); reason != "" {
		return reject(reason)
	}
	return nil
}

// AddModule attaches m to the parent's socket and returns the new node id.
// On failure an *AttachmentError is returned and the graph is unchanged.
func (g *Graph) AddModule(parent NodeID, socket string, m Module) (NodeID, error) {
	if err := g.checkAttach(parent, socket, m); err != nil {
		return NoNode, err
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{ID: id, Module: m, Parent: parent, Socket: socket})
	g.alive = append(g.alive, true)
	g.nodes[parent].Children = append(g.nodes[parent].Children, id)
	g.count++
	g.cache = nil
	return id, nil
}

// RemoveModule detaches id and its entire subtree. The root cannot be removed.
func (g *Graph) RemoveModule(id NodeID) error {
	if id == g.Root() {
		return &StructuralMutationError{Op: "remove", Node: id, Reason: "cannot remove the root module"}
	}
	if !g.Has(id) {
		return &StructuralMutationError{Op: "remove", Node: id, Reason: "no such node"}
	}
	g.detach(id)
	for _, n := range g.subtree(id) {
		g.alive[n] = false
		g.nodes[n].Children = nil
		g.count--
	}
	g.cache = nil
	return nil
}

// MoveModule re-attaches the subtree rooted at id to another socket. Moving a
// node beneath itself is rejected as a cycle.
func (g *Graph) MoveModule(id, parent NodeID, socket string) error {
	if id == g.Root() {
		return &StructuralMutationError{Op: "move", Node: id, Reason: "cannot move the root module"}
	}
	if !g.Has(id) {
		return &StructuralMutationError{Op: "move", Node: id, Reason: "no such node"}
	}
	if slices.Contains(g.subtree(id), parent) {
		return &StructuralMutationError{
			Op:     "move",
			Node:   id,
			Reason: fmt.Sprintf("node %d is inside the moved subtree; this would introduce a cycle", parent),
		}
	}
	if err := g.checkAttach(parent, socket, g.nodes[id].Module); err != nil {
		return err
	}
	g.detach(id)
	g.nodes[id].Parent = parent
	g.nodes[id].Socket = socket
	g.nodes[parent].Children = append(g.nodes[parent].Children, id)
	g.cache = nil
	return nil
}

// ReplaceModule swaps the module at id for m, keeping its position and
// children. The parent socket must accept m, and m must offer every socket
// the existing children occupy and accept them.
func (g *Graph) ReplaceModule(id NodeID, m Module) error {
	if !g.Has(id) {
		return &StructuralMutationError{Op: "replace", Node: id, Reason: "no such node"}
	}
	n := g.nodes[id]
	if id == g.Root() {
		if m.Category() != CategoryCore {
			return &StructuralMutationError{
				Op:     "replace",
				Node:   id,
				Reason: fmt.Sprintf("root must be a core module, got %s", m.Category()),
			}
		}
	} else {
		point, _ := g.nodes[n.Parent].Module.Socket(n.Socket)
		if reason := rejectReason(point, m); reason != "" {
			return &AttachmentError{Parent: n.Parent, Socket: n.Socket, Module: m.Key, Reason: reason}
		}
	}
	for _, c := range n.Children {
		child := g.nodes[c]
		point, ok := m.Socket(child.Socket)
		if !ok {
			return &StructuralMutationError{
				Op:     "replace",
				Node:   id,
				Reason: fmt.Sprintf("replacement lacks socket %q used by node %d", child.Socket, c),
			}
		}
		if reason := rejectReason(point, child.Module); reason != "" {
			return &AttachmentError{Parent: id, Socket: child.Socket, Module: child.Module.Key, Reason: reason}
		}
	}
	g.nodes[id].Module = m
	g.cache = nil
	return nil
}

// detach unlinks id from its parent's child list.
func (g *Graph) detach(id NodeID) {
	p := g.nodes[id].Parent
	g.nodes[p].Children = slices.DeleteFunc(g.nodes[p].Children, func(c NodeID) bool { return c == id })
}

// subtree returns id and all its descendants in depth-first order.
func (g *Graph) subtree(id NodeID) []NodeID {
	var out []NodeID
	stack := []NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		children := g.nodes[n].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

// Walk yields live nodes depth-first from the root, visiting children in the
// order they were attached. The order is stable for a given graph and is the
// order used by aggregation and serialization.
func (g *Graph) Walk() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, id := range g.subtree(g.Root()) {
			n := g.nodes[id]
			n.Children = slices.Clone(n.Children)
			if !yield(n) {
				return
			}
		}
	}
}

// Order returns node ids in Walk order.
func (g *Graph) Order() []NodeID {
	return g.subtree(g.Root())
}

// IterModules yields every module in Walk order.
func (g *Graph) IterModules() iter.Seq2[NodeID, Module] {
	return func(yield func(NodeID, Module) bool) {
		for _, id := range g.subtree(g.Root()) {
			if !yield(id, g.nodes[id].Module) {
				return
			}
		}
	}
}

// Ancestors returns the ids from id's parent up to the root.
func (g *Graph) Ancestors(id NodeID) []NodeID {
	if !g.Has(id) {
		return nil
	}
	var out []NodeID
	for p := g.nodes[id].Parent; p != NoNode; p = g.nodes[p].Parent {
		out = append(out, p)
	}
	return out
}

// Depth returns the number of hops from the root, or -1 for unknown ids.
func (g *Graph) Depth(id NodeID) int {
	if !g.Has(id) {
		return -1
	}
	return len(g.Ancestors(id))
}

// SocketRef names one socket on one node.
type SocketRef struct {
	Node  NodeID
	Point AttachmentPoint
}

// FreeSockets lists unoccupied sockets in Walk order.
func (g *Graph) FreeSockets() []SocketRef {
	var out []SocketRef
	for _, id := range g.subtree(g.Root()) {
		for _, p := range g.nodes[id].Module.Sockets {
			if g.occupant(id, p.ID) == NoNode {
				out = append(out, SocketRef{Node: id, Point: p})
			}
		}
	}
	return out
}

// Clone returns an independent copy, suitable for editing off to the side
// before swapping it in through a Handle.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:  make([]Node, len(g.nodes)),
		alive:  slices.Clone(g.alive),
		count:  g.count,
		limits: g.limits,
		cache:  g.cache,
		layout: g.layout,
	}
	for i, n := range g.nodes {
		n.Children = slices.Clone(n.Children)
		c.nodes[i] = n
	}
	return c
}
