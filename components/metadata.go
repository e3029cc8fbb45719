package components

import (
	"fmt"

	"github.com/pthm-cable/bodygraph/physics"
)

// FieldDescriptor describes a component field for display.
type FieldDescriptor struct {
	ID     string // Unique identifier
	Label  string // Display name
	Format string // Printf format (e.g., "%.2f")
	Group  string // Logical grouping
}

// Field is one formatted value ready for display.
type Field struct {
	FieldDescriptor
	Value string
}

// PhysicsFieldDescriptors returns metadata for PhysicsBody fields.
func PhysicsFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "mass", Label: "Mass", Format: "%.2f", Group: "body"},
		{ID: "volume", Label: "Volume", Format: "%.2f", Group: "body"},
		{ID: "density", Label: "Density", Format: "%.3f", Group: "body"},
		{ID: "drag", Label: "Drag Coeff", Format: "%.3f", Group: "hydro"},
		{ID: "thrust", Label: "Max Thrust", Format: "%.1f", Group: "hydro"},
		{ID: "lift", Label: "Lift/Fin", Format: "%.1f", Group: "hydro"},
		{ID: "turn", Label: "Turn Authority", Format: "%.2f", Group: "hydro"},
		{ID: "bias", Label: "Steering Bias", Format: "%+.2f", Group: "hydro"},
		{ID: "radius", Label: "Radius", Format: "%.2f", Group: "body"},
		{ID: "buoyancy", Label: "Buoyancy", Format: "%+.3f", Group: "hydro"},
		{ID: "grip", Label: "Grip", Format: "%.1f", Group: "stats"},
		{ID: "power", Label: "Power", Format: "%.1f", Group: "stats"},
		{ID: "energy", Label: "Energy Cost", Format: "%.2f", Group: "stats"},
	}
}

// physicsValue returns the raw value for a descriptor id.
func physicsValue(p physics.PhysicsBody, id string) (float64, bool) {
	switch id {
	case "mass":
		return p.Mass, true
	case "volume":
		return p.Volume, true
	case "density":
		return p.Density, true
	case "drag":
		return p.DragCoefficient, true
	case "thrust":
		return p.MaxThrust, true
	case "lift":
		return p.LiftPerFin, true
	case "turn":
		return p.TurnAuthority, true
	case "bias":
		return p.SteeringBias, true
	case "radius":
		return p.CollisionRadius, true
	case "buoyancy":
		return p.BuoyancyOffset, true
	case "grip":
		return p.Grip, true
	case "power":
		return p.PowerOutput, true
	case "energy":
		return p.EnergyCost, true
	}
	return 0, false
}

// DescribePhysics formats p using PhysicsFieldDescriptors.
func DescribePhysics(p physics.PhysicsBody) []Field {
	descs := PhysicsFieldDescriptors()
	out := make([]Field, 0, len(descs))
	for _, d := range descs {
		v, ok := physicsValue(p, d.ID)
		if !ok {
			continue
		}
		out = append(out, Field{FieldDescriptor: d, Value: fmt.Sprintf(d.Format, v)})
	}
	return out
}
