package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/catalog"
	"github.com/pthm-cable/bodygraph/components"
	"github.com/pthm-cable/bodygraph/config"
	"github.com/pthm-cable/bodygraph/physics"
)

func swimmer(t *testing.T) *body.Graph {
	t.Helper()
	cat := catalog.Default()
	core, err := cat.Create("core", body.Params{})
	if err != nil {
		t.Fatal(err)
	}
	g, err := body.New(core)
	if err != nil {
		t.Fatal(err)
	}
	thruster, err := cat.Create("thruster", body.Params{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddModule(g.Root(), "ventral_core", thruster); err != nil {
		t.Fatal(err)
	}
	return g
}

// ---------- PhysicsSystem ----------

func TestPhysicsSystem_DerivesOnlyWhenGraphChanges(t *testing.T) {
	cfg := config.Default()
	w := ecs.NewWorld()
	mapper := ecs.NewMap3[components.Morphology, components.Physics, components.Sensors](w)

	g := swimmer(t)
	morph := components.Morphology{Body: body.NewHandle(g), Archetype: "test"}
	e := mapper.NewEntity(&morph, &components.Physics{}, &components.Sensors{})

	sys := NewPhysicsSystem(w, cfg.Physics)
	if n := sys.Update(w); n != 1 {
		t.Fatalf("expected first update to derive 1 body, got %d", n)
	}
	if n := sys.Update(w); n != 0 {
		t.Errorf("expected unchanged body to be skipped, got %d derivations", n)
	}

	physMap := ecs.NewMap1[components.Physics](w)
	want := physics.Derive(g, cfg.Physics)
	if got := physMap.Get(e).Body; got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	// Publishing a new graph triggers a re-derivation.
	next := g.Clone()
	fin, _ := catalog.Default().Create("fin", body.Params{})
	if _, err := next.AddModule(next.Root(), "lateral_mount_left", fin); err != nil {
		t.Fatal(err)
	}
	morphMap := ecs.NewMap1[components.Morphology](w)
	morphMap.Get(e).Body.Swap(next)

	if n := sys.Update(w); n != 1 {
		t.Fatalf("expected swapped body to be re-derived, got %d", n)
	}
	if got := physMap.Get(e).Body.Mass; got <= want.Mass {
		t.Errorf("expected mass to grow after adding a fin, got %v <= %v", got, want.Mass)
	}
}

// ---------- MovementSystem ----------

func newMover(t *testing.T, pos components.Position, vel components.Velocity, heading float32, pb physics.PhysicsBody, throttle float32) (*ecs.World, ecs.Entity) {
	t.Helper()
	w := ecs.NewWorld()
	mapper := ecs.NewMap5[components.Position, components.Velocity, components.Rotation, components.Physics, components.Organism](w)
	rot := components.Rotation{Heading: heading}
	phys := components.Physics{Body: pb}
	org := components.Organism{Throttle: throttle}
	e := mapper.NewEntity(&pos, &vel, &rot, &phys, &org)
	return w, e
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestMovementSystem_ThrustAlongHeading(t *testing.T) {
	w, e := newMover(t, components.Position{X: 10, Y: 10}, components.Velocity{}, 0,
		physics.PhysicsBody{Mass: 10, MaxThrust: 100}, 1)

	NewMovementSystem(w, Bounds{Width: 100, Height: 100}, 1).Update(w, 0.1)

	vel := ecs.NewMap1[components.Velocity](w).Get(e)
	pos := ecs.NewMap1[components.Position](w).Get(e)
	org := ecs.NewMap1[components.Organism](w).Get(e)
	if !near(vel.X, 1) || !near(vel.Y, 0) {
		t.Errorf("expected velocity (1, 0), got (%v, %v)", vel.X, vel.Y)
	}
	if !near(pos.X, 10.1) {
		t.Errorf("expected x 10.1, got %v", pos.X)
	}
	if !near(org.Age, 0.1) {
		t.Errorf("expected age 0.1, got %v", org.Age)
	}
}

func TestMovementSystem_DragNeverReverses(t *testing.T) {
	w, e := newMover(t, components.Position{X: 50, Y: 50}, components.Velocity{X: 5}, 0,
		physics.PhysicsBody{Mass: 1, DragCoefficient: 2.5, FrontalArea: 10}, 0)

	NewMovementSystem(w, Bounds{Width: 100, Height: 100}, 1).Update(w, 1)

	vel := ecs.NewMap1[components.Velocity](w).Get(e)
	if vel.X < 0 || vel.X >= 5 {
		t.Errorf("expected drag to slow without reversing, got %v", vel.X)
	}
}

func TestMovementSystem_Bounds(t *testing.T) {
	w, e := newMover(t, components.Position{X: 99.5, Y: 0.5}, components.Velocity{X: 1, Y: -1}, 0,
		physics.PhysicsBody{Mass: 1}, 0)

	NewMovementSystem(w, Bounds{Width: 100, Height: 100}, 1).Update(w, 1)

	pos := ecs.NewMap1[components.Position](w).Get(e)
	vel := ecs.NewMap1[components.Velocity](w).Get(e)
	if !near(pos.X, 0.5) {
		t.Errorf("expected horizontal wrap to 0.5, got %v", pos.X)
	}
	if pos.Y != 0 || vel.Y <= 0 {
		t.Errorf("expected bounce off the floor, got y=%v vy=%v", pos.Y, vel.Y)
	}
}

// ---------- SpatialGrid ----------

func TestSpatialGrid_QueryRadiusWrapsHorizontally(t *testing.T) {
	w := ecs.NewWorld()
	posMap := ecs.NewMap1[components.Position](w)
	bounds := Bounds{Width: 200, Height: 200}
	grid := NewSpatialGrid(bounds, 32)

	place := func(x, y float32) ecs.Entity {
		e := posMap.NewEntity(&components.Position{X: x, Y: y})
		grid.Insert(e, x, y)
		return e
	}
	origin := place(2, 100)
	across := place(198, 100) // 4 units away through the wrap
	above := place(2, 190)    // no vertical wrap
	place(100, 100)

	got := grid.QueryRadiusInto(nil, 2, 100, 10, origin, posMap)
	if len(got) != 1 || got[0].E != across {
		t.Fatalf("expected only the wrapped neighbour, got %+v", got)
	}
	if !near(got[0].DistSq, 16) {
		t.Errorf("expected squared distance 16, got %v", got[0].DistSq)
	}
	for _, n := range grid.QueryRadiusInto(nil, 2, 100, 50, origin, posMap) {
		if n.E == above {
			t.Error("vertical distance must not wrap")
		}
	}

	grid.Clear()
	if got := grid.QueryRadiusInto(nil, 2, 100, 500, origin, posMap); len(got) != 0 {
		t.Errorf("expected empty grid after Clear, got %d", len(got))
	}
}

func TestSpatialGrid_LargeRadiusVisitsEachCellOnce(t *testing.T) {
	w := ecs.NewWorld()
	posMap := ecs.NewMap1[components.Position](w)
	grid := NewSpatialGrid(Bounds{Width: 64, Height: 64}, 32)
	e := posMap.NewEntity(&components.Position{X: 40, Y: 40})
	grid.Insert(e, 40, 40)

	got := grid.QueryRadiusInto(nil, 10, 10, 1000, ecs.Entity{}, posMap)
	if len(got) != 1 {
		t.Errorf("expected a single hit, got %d", len(got))
	}
}

func TestSpatialGrid_CapOnlyOnCappedQuery(t *testing.T) {
	w := ecs.NewWorld()
	posMap := ecs.NewMap1[components.Position](w)
	grid := NewSpatialGrid(Bounds{Width: 200, Height: 200}, 32)
	for range MaxQueryResults + 10 {
		e := posMap.NewEntity(&components.Position{X: 50, Y: 50})
		grid.Insert(e, 50, 50)
	}

	if got := grid.QueryRadiusInto(nil, 50, 50, 5, ecs.Entity{}, posMap); len(got) != MaxQueryResults {
		t.Errorf("expected capped query to return %d, got %d", MaxQueryResults, len(got))
	}
	if got := grid.QueryRadiusAllInto(nil, 50, 50, 5, ecs.Entity{}, posMap); len(got) != MaxQueryResults+10 {
		t.Errorf("expected uncapped query to return %d, got %d", MaxQueryResults+10, len(got))
	}
}
