// Package physics turns a body graph into the compact hydrodynamic and
// sensing parameters the simulation consumes every tick.
package physics

import (
	"log/slog"

	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/config"
)

// PhysicsBody is the hydrodynamic summary of one body.
type PhysicsBody struct {
	Mass            float64
	Volume          float64
	Density         float64
	FrontalArea     float64
	LateralArea     float64
	DorsalArea      float64
	CollisionRadius float64
	DragCoefficient float64
	MaxThrust       float64
	Grip            float64
	PowerOutput     float64
	EnergyCost      float64
	LiftPerFin      float64

	// TurnAuthority is the summed moment of every steering surface per unit
	// mass; SteeringBias in [-1, 1] is how much of it sits on one flank.
	TurnAuthority float64
	SteeringBias  float64

	BuoyancyPositive float64
	BuoyancyNegative float64
	BuoyancyOffset   float64 // (positive - negative) per unit volume
}

// Derive builds the PhysicsBody of g from its cached aggregation and layout.
func Derive(g *body.Graph, cfg config.PhysicsConfig) PhysicsBody {
	b := FromAggregation(g.Aggregate(), cfg)
	b.CollisionRadius = g.Geometry().CollisionRadius
	return b
}

// FromAggregation clamps raw sums into usable simulation parameters.
func FromAggregation(agg *body.PhysicsAggregation, cfg config.PhysicsConfig) PhysicsBody {
	mass := max(cfg.MinMass, agg.TotalMass)
	volume := max(cfg.MinVolume, agg.TotalVolume)

	b := PhysicsBody{
		Mass:             mass,
		Volume:           volume,
		Density:          mass / volume,
		FrontalArea:      agg.FrontalArea,
		LateralArea:      agg.LateralArea,
		DorsalArea:       agg.DorsalArea,
		DragCoefficient:  dragCoefficient(agg, cfg),
		MaxThrust:        max(cfg.MinThrust, agg.TotalThrust),
		Grip:             max(0, agg.TotalGrip),
		PowerOutput:      agg.TotalPower,
		EnergyCost:       agg.EnergyCost,
		BuoyancyPositive: agg.BuoyancyPositive,
		BuoyancyNegative: agg.BuoyancyNegative,
		BuoyancyOffset:   (agg.BuoyancyPositive - agg.BuoyancyNegative) / volume,
	}
	if agg.LiftModules > 0 {
		b.LiftPerFin = agg.LiftTotal / float64(agg.LiftModules)
	}

	var moment, signed float64
	for _, s := range agg.SteeringSurfaces {
		m := s.Leverage * (s.Thrust + s.Lift)
		moment += m
		signed += float64(s.Side) * m
	}
	if moment > 0 {
		b.TurnAuthority = moment / mass
		b.SteeringBias = signed / moment
	}
	return b
}

// dragCoefficient normalizes the summed drag area by a reference area and
// clamps it to the configured range.
func dragCoefficient(agg *body.PhysicsAggregation, cfg config.PhysicsConfig) float64 {
	ref := max(1, agg.FrontalArea*cfg.FrontalWeight+agg.LateralArea*cfg.LateralWeight)
	return clamp(agg.TotalDragArea/ref, cfg.DragMin, cfg.DragMax)
}

// PropulsionAcceleration returns the longitudinal acceleration for an effort
// in [-1, 1]. Effort outside the range is clamped.
func (b PhysicsBody) PropulsionAcceleration(effort float64) float64 {
	return b.MaxThrust * clamp(effort, -1, 1) / max(0.1, b.Mass)
}

// DragDeceleration returns the deceleration opposing motion at speed through
// a fluid of the given density.
func (b PhysicsBody) DragDeceleration(speed, fluidDensity float64) float64 {
	area := max(1, b.FrontalArea)
	return 0.5 * fluidDensity * b.DragCoefficient * area * speed * speed / max(0.1, b.Mass)
}

// LogValue implements slog.LogValuer for structured logging.
func (b PhysicsBody) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("mass", b.Mass),
		slog.Float64("density", b.Density),
		slog.Float64("drag", b.DragCoefficient),
		slog.Float64("max_thrust", b.MaxThrust),
		slog.Float64("lift_per_fin", b.LiftPerFin),
		slog.Float64("turn_authority", b.TurnAuthority),
		slog.Float64("radius", b.CollisionRadius),
	)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
