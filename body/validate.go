package body

import (
	"fmt"
)

// ValidationError is one structural problem found by Validate.
type ValidationError struct {
	Code    string
	Message string
	Node    NodeID
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (node: %d)", e.Code, e.Message, e.Node)
}

// Validate re-checks every invariant of the tree and returns all problems found.
// Graphs edited only through AddModule/RemoveModule/MoveModule always validate.
func (g *Graph) Validate() []ValidationError {
	var errs []ValidationError

	root := g.Root()
	if !g.Has(root) {
		return []ValidationError{{Code: "MISSING_ROOT", Message: "graph has no root", Node: root}}
	}
	if c := g.nodes[root].Module.Category(); c != CategoryCore {
		errs = append(errs, ValidationError{
			Code:    "ROOT_NOT_CORE",
			Message: fmt.Sprintf("root module is %s", c),
			Node:    root,
		})
	}

	reached := make(map[NodeID]bool, g.count)
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[id] {
			errs = append(errs, ValidationError{Code: "CYCLE", Message: "node reached twice", Node: id})
			continue
		}
		reached[id] = true

		n := g.nodes[id]
		stack = append(stack, n.Children...)
		used := make(map[string]bool, len(n.Children))
		for _, c := range n.Children {
			child := g.nodes[c]
			if child.Parent != id {
				errs = append(errs, ValidationError{
					Code:    "PARENT_MISMATCH",
					Message: fmt.Sprintf("child lists parent %d, expected %d", child.Parent, id),
					Node:    c,
				})
			}
			if used[child.Socket] {
				errs = append(errs, ValidationError{
					Code:    "SOCKET_SHARED",
					Message: fmt.Sprintf("socket %q holds more than one child", child.Socket),
					Node:    c,
				})
			}
			used[child.Socket] = true

			point, ok := n.Module.Socket(child.Socket)
			if !ok {
				errs = append(errs, ValidationError{
					Code:    "UNKNOWN_SOCKET",
					Message: fmt.Sprintf("parent has no socket %q", child.Socket),
					Node:    c,
				})
				continue
			}
			if reason := rejectReason(point, child.Module); reason != "" {
				errs = append(errs, ValidationError{Code: "SOCKET_REJECTS", Message: reason, Node: c})
			}
		}
	}

	if len(reached) != g.count {
		errs = append(errs, ValidationError{
			Code:    "UNREACHABLE",
			Message: fmt.Sprintf("%d live nodes, %d reachable from root", g.count, len(reached)),
			Node:    root,
		})
	}
	return errs
}
