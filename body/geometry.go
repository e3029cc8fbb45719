package body

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// minExtent keeps every bounding dimension strictly positive.
const minExtent = 0.1

// Transform places a node in the body frame: the root sits at the origin
// facing +X, and Angle is the node's heading in degrees.
type Transform struct {
	Pos   r2.Vec
	Angle float64
}

// SteeringSurface is a module that can push the body sideways or turn it:
// a propulsion or limb module producing thrust, or any lifting surface.
type SteeringSurface struct {
	Category    Category
	Key         string
	Side        int     // -1 left of the midline, 1 right, 0 on it
	Leverage    float64 // moment arm about the core
	Thrust      float64
	Lift        float64
	PhaseOffset float64 // radians, stable for a given walk position
}

// Geometry summarizes the assembled body's bounding box.
type Geometry struct {
	Extent          r3.Vec // width, height, depth
	FrontalArea     float64
	LateralArea     float64
	DorsalArea      float64
	CollisionRadius float64
}

// sideDeadband is how far from the midline a module must sit to count as
// being on one side.
const sideDeadband = 0.05

// phaseStep spreads phase offsets by the golden ratio so neighbouring
// surfaces never beat in unison.
const phaseStep = 0.6180339887498949

// place computes the transform of a child sitting in point on a parent with
// transform parent and size parentSize.
func place(parent Transform, parentSize r3.Vec, point AttachmentPoint, child Module) Transform {
	local := r2.Vec{X: point.Offset.X * parentSize.X, Y: point.Offset.Y * parentSize.Y}
	pos := r2.Add(parent.Pos, r2.Rotate(local, radians(parent.Angle), r2.Vec{}))

	dir := parent.Angle + point.Angle
	reach := point.Clearance + max(child.Size.X, child.Size.Y)/2
	sin, cos := math.Sincos(radians(dir))
	pos = r2.Add(pos, r2.Vec{X: reach * cos, Y: reach * sin})
	return Transform{Pos: pos, Angle: dir}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// steering returns the steering surface for m placed at t, if it is one.
func steering(m Module, t Transform, walkIndex int) (SteeringSurface, bool) {
	cat := m.Category()
	s := m.Stats
	if cat != CategoryPropulsion && cat != CategoryLimb && s.Lift <= 0 {
		return SteeringSurface{}, false
	}
	if s.Thrust <= 0 && s.Lift <= 0 {
		return SteeringSurface{}, false
	}
	side := 0
	switch {
	case t.Pos.X > sideDeadband:
		side = 1
	case t.Pos.X < -sideDeadband:
		side = -1
	}
	_, frac := math.Modf(float64(walkIndex) * phaseStep)
	return SteeringSurface{
		Category:    cat,
		Key:         m.Key,
		Side:        side,
		Leverage:    max(0.1, math.Abs(t.Pos.X)+0.15*math.Abs(t.Pos.Y)),
		Thrust:      max(0, s.Thrust),
		Lift:        max(0, s.Lift),
		PhaseOffset: frac * 2 * math.Pi,
	}, true
}

// Transform returns the placement of id in the body frame.
func (g *Graph) Transform(id NodeID) (Transform, bool) {
	if !g.Has(id) {
		return Transform{}, false
	}
	g.Aggregate()
	return g.layout[id], true
}

// Bounds returns the width, height and depth of the box enclosing every
// module centred on its transform. The box always contains the origin and
// no dimension is smaller than 0.1.
func (g *Graph) Bounds() r3.Vec {
	g.Aggregate()
	var lo, hi r3.Vec
	for _, id := range g.subtree(g.Root()) {
		half := r3.Scale(0.5, g.nodes[id].Module.Size)
		p := g.layout[id].Pos
		lo.X, hi.X = min(lo.X, p.X-half.X), max(hi.X, p.X+half.X)
		lo.Y, hi.Y = min(lo.Y, p.Y-half.Y), max(hi.Y, p.Y+half.Y)
		lo.Z, hi.Z = min(lo.Z, -half.Z), max(hi.Z, half.Z)
	}
	ext := r3.Sub(hi, lo)
	return r3.Vec{X: max(minExtent, ext.X), Y: max(minExtent, ext.Y), Z: max(minExtent, ext.Z)}
}

// Geometry derives cross-sections and a collision radius from Bounds.
func (g *Graph) Geometry() Geometry {
	ext := g.Bounds()
	return Geometry{
		Extent:          ext,
		FrontalArea:     ext.X * ext.Y,
		LateralArea:     ext.Y * ext.Z,
		DorsalArea:      ext.X * ext.Z,
		CollisionRadius: max(ext.X, ext.Y, ext.Z) / 2,
	}
}

// NodesAtDepth returns the nodes exactly depth hops from the root, level by
// level in attachment order. Negative depths yield nil.
func (g *Graph) NodesAtDepth(depth int) []NodeID {
	if depth < 0 {
		return nil
	}
	level := []NodeID{g.Root()}
	for d := 0; d < depth && len(level) > 0; d++ {
		var next []NodeID
		for _, id := range level {
			next = append(next, g.nodes[id].Children...)
		}
		level = next
	}
	return level
}
