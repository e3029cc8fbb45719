// Package systems contains ECS systems for the creature world.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/bodygraph/components"
	"github.com/pthm-cable/bodygraph/config"
	"github.com/pthm-cable/bodygraph/physics"
)

// PhysicsSystem re-derives PhysicsBody and SensorSuite from each creature's
// current body graph.
type PhysicsSystem struct {
	filter ecs.Filter3[components.Morphology, components.Physics, components.Sensors]
	cfg    config.PhysicsConfig
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(w *ecs.World, cfg config.PhysicsConfig) *PhysicsSystem {
	return &PhysicsSystem{
		filter: *ecs.NewFilter3[components.Morphology, components.Physics, components.Sensors](w),
		cfg:    cfg,
	}
}

// Update runs the physics system and returns how many bodies were re-derived.
// Graphs are loaded once per creature per tick; a body whose graph has not
// been swapped or edited keeps its previous derivation.
func (s *PhysicsSystem) Update(w *ecs.World) int {
	derived := 0
	query := s.filter.Query()
	for query.Next() {
		morph, phys, sens := query.Get()
		g := morph.Body.Load()
		if !phys.Stale(g) {
			continue
		}
		phys.Body = physics.Derive(g, s.cfg)
		sens.Suite = physics.DeriveSensors(g)
		phys.MarkDerived(g)
		derived++
	}
	return derived
}
