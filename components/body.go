// Package components defines ECS components for the creature world.
package components

import (
	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/genome"
	"github.com/pthm-cable/bodygraph/physics"
)

// Morphology links a creature to its body graph and the genome it grew from.
// Body is swapped atomically when the body is rebuilt.
type Morphology struct {
	Body      *body.Handle
	Genome    *genome.Genome
	Archetype string `inspect:"label"`
}

// Physics holds the hydrodynamic parameters derived from the current body.
type Physics struct {
	Body physics.PhysicsBody

	// source is the graph Body was derived from.
	source *body.Graph
}

// Stale reports whether Body must be re-derived from g.
func (p *Physics) Stale(g *body.Graph) bool {
	return p.source != g || g.Dirty()
}

// MarkDerived records g as the graph Body reflects.
func (p *Physics) MarkDerived(g *body.Graph) {
	p.source = g
}

// Sensors holds the sensor summary derived from the current body.
type Sensors struct {
	Suite physics.SensorSuite
}
