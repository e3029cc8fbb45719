package body

import "log/slog"

// PhysicsAggregation holds pure sums of module quantities over a whole graph.
// A value returned by Aggregate is shared and must be treated as read-only.
type PhysicsAggregation struct {
	TotalMass     float64
	TotalVolume   float64
	TotalDragArea float64
	TotalThrust   float64
	TotalGrip     float64
	TotalPower    float64

	EnergyCost       float64
	NerveLoad        float64
	FrontalArea      float64
	LateralArea      float64
	DorsalArea       float64
	BuoyancyPositive float64
	BuoyancyNegative float64
	LiftTotal        float64
	LiftModules      int
	ModuleCount      int

	// SteeringSurfaces lists thrusting and lifting modules in walk order.
	SteeringSurfaces []SteeringSurface
}

// Aggregate returns the physics summary of the graph. While no structural edit
// happens the same cached value is returned; otherwise one depth-first pass
// recomputes it together with every node's Transform.
func (g *Graph) Aggregate() *PhysicsAggregation {
	if g.cache != nil {
		return g.cache
	}
	agg := &PhysicsAggregation{}
	layout := make([]Transform, len(g.nodes))
	for i, id := range g.subtree(g.Root()) {
		n := g.nodes[id]
		if n.Parent != NoNode {
			parent := g.nodes[n.Parent].Module
			point, _ := parent.Socket(n.Socket)
			layout[id] = place(layout[n.Parent], parent.Size, point, n.Module)
		}
		agg.add(n.Module)
		if s, ok := steering(n.Module, layout[id], i); ok {
			agg.SteeringSurfaces = append(agg.SteeringSurfaces, s)
		}
	}
	g.cache = agg
	g.layout = layout
	return agg
}

// Dirty reports whether the next Aggregate call will recompute.
func (g *Graph) Dirty() bool {
	return g.cache == nil
}

func (a *PhysicsAggregation) add(m Module) {
	s := m.Stats
	a.TotalMass += s.Mass
	a.TotalVolume += s.Volume
	a.TotalDragArea += s.DragArea
	a.TotalThrust += s.Thrust
	a.TotalGrip += s.Grip
	a.TotalPower += s.PowerOutput

	a.EnergyCost += s.EnergyCost
	a.NerveLoad += s.NerveLoad
	a.FrontalArea += m.FrontalArea()
	a.LateralArea += m.LateralArea()
	a.DorsalArea += m.DorsalArea()
	if s.BuoyancyBias >= 0 {
		a.BuoyancyPositive += s.BuoyancyBias
	} else {
		a.BuoyancyNegative -= s.BuoyancyBias
	}
	if s.Lift > 0 {
		a.LiftTotal += s.Lift
		a.LiftModules++
	}
	a.ModuleCount++
}

// LogValue implements slog.LogValuer for structured logging.
func (a PhysicsAggregation) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("mass", a.TotalMass),
		slog.Float64("volume", a.TotalVolume),
		slog.Float64("drag_area", a.TotalDragArea),
		slog.Float64("thrust", a.TotalThrust),
		slog.Float64("grip", a.TotalGrip),
		slog.Float64("power", a.TotalPower),
		slog.Float64("nerve_load", a.NerveLoad),
		slog.Int("modules", a.ModuleCount),
		slog.Int("steering_surfaces", len(a.SteeringSurfaces)),
	)
}
