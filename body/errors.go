package body

import (
	"errors"
	"fmt"
)

var (
	// ErrAttachment matches any *AttachmentError via errors.Is.
	ErrAttachment = errors.New("attachment rejected")
	// ErrStructural matches any *StructuralMutationError via errors.Is.
	ErrStructural = errors.New("structural mutation rejected")
)

// AttachmentError reports a module that could not be attached. The graph is
// unchanged when it is returned.
type AttachmentError struct {
	Parent NodeID
	Socket string
	Module string // catalog key of the rejected module
	Reason string
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attach %q to node %d socket %q: %s", e.Module, e.Parent, e.Socket, e.Reason)
}

func (e *AttachmentError) Is(target error) bool {
	return target == ErrAttachment
}

// StructuralMutationError reports an edit that would break the tree, such as
// removing the root or introducing a cycle.
type StructuralMutationError struct {
	Op     string
	Node   NodeID
	Reason string
}

func (e *StructuralMutationError) Error() string {
	return fmt.Sprintf("%s node %d: %s", e.Op, e.Node, e.Reason)
}

func (e *StructuralMutationError) Is(target error) bool {
	return target == ErrStructural
}
