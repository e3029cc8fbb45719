package body

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// JointKind enumerates the mechanical joint between a parent and its child.
type JointKind uint8

const (
	JointFixed JointKind = iota
	JointHinge
	JointBall
	JointMuscle
)

func (k JointKind) String() string {
	switch k {
	case JointFixed:
		return "fixed"
	case JointHinge:
		return "hinge"
	case JointBall:
		return "ball"
	case JointMuscle:
		return "muscle"
	default:
		return "unknown"
	}
}

// AngleRange is a min/max angular range in degrees. The zero value means unconstrained.
type AngleRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// IsZero reports whether no limit is set.
func (l AngleRange) IsZero() bool {
	return l.Min == 0 && l.Max == 0
}

// Joint describes how an attached module may move relative to its parent.
// It is consumed by the movement/animation collaborator and never simulated here.
type Joint struct {
	Kind      JointKind  `json:"kind" yaml:"kind"`
	Swing     AngleRange `json:"swing" yaml:"swing"`
	Twist     AngleRange `json:"twist" yaml:"twist"`
	MaxTorque float64    `json:"max_torque" yaml:"max_torque"` // 0 = unlimited
}

// Describe returns a human readable summary of the joint limits.
func (j Joint) Describe() string {
	parts := []string{j.Kind.String()}
	if !j.Swing.IsZero() {
		parts = append(parts, fmt.Sprintf("swing=%.1f/%.1f", j.Swing.Min, j.Swing.Max))
	}
	if !j.Twist.IsZero() {
		parts = append(parts, fmt.Sprintf("twist=%.1f/%.1f", j.Twist.Min, j.Twist.Max))
	}
	if j.MaxTorque > 0 {
		parts = append(parts, fmt.Sprintf("torque<=%.1f", j.MaxTorque))
	}
	return strings.Join(parts, ", ")
}

// AttachmentPoint is a typed, capacity-limited socket a module exposes to children.
//
// Offset is measured in fractions of the parent's width and height in the
// parent's frame. Angle (degrees) is the direction the child extends in,
// relative to the parent's heading, and Clearance is the gap left between
// the socket and the child's edge.
type AttachmentPoint struct {
	ID           string
	Accepts      []Category
	Materials    []string
	MaxChildMass float64
	Joint        Joint

	Offset    r2.Vec
	Angle     float64
	Clearance float64
}

// CanAccept reports whether m may occupy point: its category and material must be
// accepted and its mass must not exceed the socket's cap.
func CanAccept(point AttachmentPoint, m Module) bool {
	return rejectReason(point, m) == ""
}

// rejectReason explains why point refuses m, or returns "" if it fits.
func rejectReason(point AttachmentPoint, m Module) string {
	if !slices.Contains(point.Accepts, m.Category()) {
		return fmt.Sprintf("category %s not accepted", m.Category())
	}
	if !slices.Contains(point.Materials, m.Material) {
		return fmt.Sprintf("material %q not accepted", m.Material)
	}
	if m.Stats.Mass > point.MaxChildMass {
		return fmt.Sprintf("mass %.2f exceeds cap %.2f", m.Stats.Mass, point.MaxChildMass)
	}
	return ""
}
