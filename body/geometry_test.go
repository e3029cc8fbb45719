package body_test

import (
	"math"
	"slices"
	"testing"

	"github.com/pthm-cable/bodygraph/body"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ---------- Layout ----------

func TestTransform_Layout(t *testing.T) {
	g := newSwimmer(t)
	head, err := g.AddModule(g.Root(), "head_socket", mustModule(t, "head", body.Params{}))
	if err != nil {
		t.Fatal(err)
	}
	eye, err := g.AddModule(head, "cranial_sensor", mustModule(t, "sensor", body.Params{}))
	if err != nil {
		t.Fatal(err)
	}

	at := func(id body.NodeID) body.Transform {
		t.Helper()
		tr, ok := g.Transform(id)
		if !ok {
			t.Fatalf("no transform for node %d", id)
		}
		return tr
	}
	root, thruster, left, right := at(0), at(1), at(2), at(3)
	if root.Pos.X != 0 || root.Pos.Y != 0 || root.Angle != 0 {
		t.Errorf("expected root at the origin facing 0, got %+v", root)
	}
	if !near(thruster.Pos.Y, -1.95) || thruster.Angle != -90 {
		t.Errorf("expected thruster below the core, got %+v", thruster)
	}
	if !near(left.Pos.X, -2.6) || left.Angle != 180 {
		t.Errorf("expected left fin at x=-2.6 facing 180, got %+v", left)
	}
	if !near(right.Pos.X, 2.6) || right.Angle != 0 {
		t.Errorf("expected right fin at x=2.6 facing 0, got %+v", right)
	}
	h, e := at(head), at(eye)
	if !near(h.Pos.Y, 1.7) || h.Angle != 90 {
		t.Errorf("expected head above the core, got %+v", h)
	}
	if e.Pos.Y < h.Pos.Y || !near(e.Pos.Y, 2.95) {
		t.Errorf("expected cranial sensor above the head, got %+v", e)
	}

	if _, ok := g.Transform(99); ok {
		t.Error("expected no transform for an unknown node")
	}
}

func TestTransform_FollowsMove(t *testing.T) {
	g := newSwimmer(t)
	if err := g.MoveModule(3, 2, "proximal_joint"); err != nil {
		t.Fatal(err)
	}
	left, _ := g.Transform(2)
	moved, _ := g.Transform(3)
	if moved.Pos.X >= left.Pos.X || moved.Angle != 180 {
		t.Errorf("expected moved fin outboard of the left fin, got %+v vs %+v", moved, left)
	}
}

// ---------- Steering & geometry ----------

func TestAggregate_SteeringSurfaces(t *testing.T) {
	g := newSwimmer(t)
	agg := g.Aggregate()
	if len(agg.SteeringSurfaces) != 3 {
		t.Fatalf("expected thruster and two fins to steer, got %+v", agg.SteeringSurfaces)
	}
	var sides []int
	for _, s := range agg.SteeringSurfaces {
		sides = append(sides, s.Side)
		if s.Leverage < 0.1 {
			t.Errorf("%s: leverage %v below floor", s.Key, s.Leverage)
		}
		if s.PhaseOffset < 0 || s.PhaseOffset >= 2*math.Pi {
			t.Errorf("%s: phase offset %v out of range", s.Key, s.PhaseOffset)
		}
	}
	if !slices.Equal(sides, []int{0, -1, 1}) {
		t.Errorf("expected sides [0 -1 1], got %v", sides)
	}
	fin := agg.SteeringSurfaces[1]
	if fin.Category != body.CategoryLimb || fin.Thrust != 45 || fin.Lift != 36 || !near(fin.Leverage, 2.6) {
		t.Errorf("unexpected fin surface %+v", fin)
	}
	if agg.SteeringSurfaces[1].PhaseOffset == agg.SteeringSurfaces[2].PhaseOffset {
		t.Error("expected fins to get distinct phase offsets")
	}

	var dorsal float64
	for _, m := range g.IterModules() {
		dorsal += m.DorsalArea()
	}
	if !near(agg.DorsalArea, dorsal) {
		t.Errorf("expected dorsal area %v, got %v", dorsal, agg.DorsalArea)
	}
}

func TestGeometry_Bounds(t *testing.T) {
	g := newSwimmer(t)
	geo := g.Geometry()
	if !near(geo.Extent.X, 7.6) || !near(geo.Extent.Y, 3.45) || !near(geo.Extent.Z, 7.2) {
		t.Errorf("unexpected extent %+v", geo.Extent)
	}
	if !near(geo.CollisionRadius, 3.8) {
		t.Errorf("expected collision radius 3.8, got %v", geo.CollisionRadius)
	}
	if !near(geo.FrontalArea, 7.6*3.45) || !near(geo.DorsalArea, 7.6*7.2) {
		t.Errorf("unexpected areas %+v", geo)
	}
}

func TestGeometry_MinimumExtent(t *testing.T) {
	g, err := body.New(mustModule(t, "core", body.Params{SizeScale: 0.01}))
	if err != nil {
		t.Fatal(err)
	}
	ext := g.Bounds()
	if ext.X < 0.1 || ext.Y < 0.1 || ext.Z < 0.1 {
		t.Errorf("expected every dimension at least 0.1, got %+v", ext)
	}
}

func TestNodesAtDepth(t *testing.T) {
	g := newSwimmer(t)
	tip, err := g.AddModule(2, "proximal_joint", mustModule(t, "fin", body.Params{SizeScale: 0.5}))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		depth int
		want  []body.NodeID
	}{
		{0, []body.NodeID{0}},
		{1, []body.NodeID{1, 2, 3}},
		{2, []body.NodeID{tip}},
		{3, nil},
		{-1, nil},
	}
	for _, tt := range tests {
		got := g.NodesAtDepth(tt.depth)
		if !slices.Equal(got, tt.want) {
			t.Errorf("depth %d: expected %v, got %v", tt.depth, tt.want, got)
		}
		for _, id := range got {
			if g.Depth(id) != tt.depth {
				t.Errorf("node %d reports depth %d, listed at %d", id, g.Depth(id), tt.depth)
			}
		}
	}
}
