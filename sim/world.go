// Package sim hosts a population of creatures whose bodies are built from
// genomes and stepped through the ECS systems.
package sim

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"
	"strings"

	"github.com/mlange-42/ark/ecs"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/bodygraph/blueprint"
	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/catalog"
	"github.com/pthm-cable/bodygraph/components"
	"github.com/pthm-cable/bodygraph/config"
	"github.com/pthm-cable/bodygraph/genome"
	"github.com/pthm-cable/bodygraph/mutation"
	"github.com/pthm-cable/bodygraph/physics"
	"github.com/pthm-cable/bodygraph/systems"
	"github.com/pthm-cable/bodygraph/telemetry"
)

// ErrNotCreature is returned for entities that are dead or carry no body.
var ErrNotCreature = errors.New("entity is not a live creature")

// SpawnSpec describes one creature to place in the world.
type SpawnSpec struct {
	Genome     genome.Genome
	Archetype  string
	X, Y       float32
	Heading    float32
	Throttle   float32
	Generation uint32
}

// Creature is a copy of one creature's identity and genome.
type Creature struct {
	ID         uint32
	Archetype  string
	Generation uint32
	Genome     genome.Genome
}

// World holds the complete simulation state.
type World struct {
	world  *ecs.World
	cfg    *config.Config
	rng    *rand.Rand
	logger *slog.Logger

	factory    *genome.Factory
	blueprints *blueprint.Generator
	mutator    *mutation.Mutator

	// Entity mappers
	entityMapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Morphology,
		components.Physics,
		components.Sensors,
		components.Organism,
	]
	entityFilter *ecs.Filter7[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Morphology,
		components.Physics,
		components.Sensors,
		components.Organism,
	]

	// Individual component mappers for lookups
	posMap   *ecs.Map1[components.Position]
	morphMap *ecs.Map1[components.Morphology]
	orgMap   *ecs.Map1[components.Organism]
	physMap  *ecs.Map1[components.Physics]

	// Systems
	physicsSystem  *systems.PhysicsSystem
	movementSystem *systems.MovementSystem

	perf     *telemetry.PerfCollector
	remodels []ecs.Entity
	grid     *systems.SpatialGrid

	bounds systems.Bounds
	tick   int32
	nextID uint32
}

// New creates an empty world. A nil logger uses slog.Default().
func New(cfg *config.Config, cat *catalog.Registry, bounds systems.Bounds, seed uint64, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	world := ecs.NewWorld()
	factory := genome.NewFactory(cat, cfg.Genome, logger)
	bp := blueprint.NewGenerator(cat, cfg)

	return &World{
		world:      world,
		cfg:        cfg,
		rng:        rand.New(rand.NewPCG(seed, seed+1)),
		logger:     logger,
		factory:    factory,
		blueprints: bp,
		mutator:    mutation.NewMutator(factory, bp, cfg.Mutation, seed, logger),
		entityMapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Morphology,
			components.Physics,
			components.Sensors,
			components.Organism,
		](world),
		entityFilter: ecs.NewFilter7[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Morphology,
			components.Physics,
			components.Sensors,
			components.Organism,
		](world),
		posMap:         ecs.NewMap1[components.Position](world),
		morphMap:       ecs.NewMap1[components.Morphology](world),
		orgMap:         ecs.NewMap1[components.Organism](world),
		physMap:        ecs.NewMap1[components.Physics](world),
		physicsSystem:  systems.NewPhysicsSystem(world, cfg.Physics),
		movementSystem: systems.NewMovementSystem(world, bounds, cfg.Physics.WaterDensity),
		perf:           telemetry.NewPerfCollector(60),
		bounds:         bounds,
	}
}

// Factory returns the genome factory bodies are built with.
func (w *World) Factory() *genome.Factory {
	return w.factory
}

// Archetypes returns the configured archetype names in order.
func (w *World) Archetypes() []string {
	return w.blueprints.Archetypes()
}

// Tick returns the number of completed steps.
func (w *World) Tick() int32 {
	return w.tick
}

// Len returns the number of live creatures.
func (w *World) Len() int {
	n := 0
	query := w.entityFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Perf returns step timings over the recent window.
func (w *World) Perf() telemetry.PerfStats {
	return w.perf.Stats()
}

// Spawn builds spec's genome and places the creature in the world.
func (w *World) Spawn(spec SpawnSpec) (ecs.Entity, error) {
	graph, report, err := w.factory.BuildWithReport(spec.Genome)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("spawn %s: %w", spec.Archetype, err)
	}
	if len(report.Skipped) > 0 {
		w.logger.Debug("genes_skipped", "archetype", spec.Archetype, "report", report)
	}
	return w.place(spec, graph), nil
}

// SpawnPopulation validates and builds every spec's body in parallel, bounded
// by the configured worker count, then places all creatures. Nothing is
// placed when any genome is malformed, any build fails or ctx is cancelled.
func (w *World) SpawnPopulation(ctx context.Context, specs []SpawnSpec) ([]ecs.Entity, error) {
	workers := w.cfg.Sim.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	graphs := make([]*body.Graph, len(specs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range specs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := w.factory.Check(specs[i].Genome); err != nil {
				return fmt.Errorf("spec %d (%s): malformed genome: %w", i, specs[i].Archetype, err)
			}
			graph, err := w.factory.Build(specs[i].Genome)
			if err != nil {
				return fmt.Errorf("spec %d (%s): %w", i, specs[i].Archetype, err)
			}
			graphs[i] = graph
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	entities := make([]ecs.Entity, len(specs))
	for i, spec := range specs {
		entities[i] = w.place(spec, graphs[i])
	}
	w.logger.Info("population_spawned", "count", len(specs), "workers", workers)
	return entities, nil
}

// Populate spawns n fresh blueprint creatures, cycling through the configured
// archetypes, at random positions.
func (w *World) Populate(ctx context.Context, n int) ([]ecs.Entity, error) {
	archetypes := w.Archetypes()
	if len(archetypes) == 0 {
		return nil, errors.New("populate: no archetypes configured")
	}
	specs := make([]SpawnSpec, n)
	for i := range specs {
		name := archetypes[i%len(archetypes)]
		g, err := w.blueprints.Generate(name, w.rng.Uint64())
		if err != nil {
			return nil, err
		}
		specs[i] = w.RandomSpec(g, name, 0)
	}
	return w.SpawnPopulation(ctx, specs)
}

// RandomSpec places g at a random position, heading and throttle.
func (w *World) RandomSpec(g genome.Genome, archetype string, generation uint32) SpawnSpec {
	return SpawnSpec{
		Genome:     g,
		Archetype:  archetype,
		X:          w.rng.Float32() * w.bounds.Width,
		Y:          w.rng.Float32() * w.bounds.Height,
		Heading:    w.rng.Float32() * 2 * math.Pi,
		Throttle:   0.5 + 0.5*w.rng.Float32(),
		Generation: generation,
	}
}

// place creates the entity for an already built graph.
func (w *World) place(spec SpawnSpec, graph *body.Graph) ecs.Entity {
	g := spec.Genome.Clone()

	pos := components.Position{X: spec.X, Y: spec.Y}
	vel := components.Velocity{}
	rot := components.Rotation{Heading: spec.Heading}
	morph := components.Morphology{Body: body.NewHandle(graph), Genome: &g, Archetype: spec.Archetype}
	phys := components.Physics{Body: physics.Derive(graph, w.cfg.Physics)}
	phys.MarkDerived(graph)
	sens := components.Sensors{Suite: physics.DeriveSensors(graph)}
	org := components.Organism{ID: w.nextID, Generation: spec.Generation, Throttle: spec.Throttle}
	w.nextID++

	return w.entityMapper.NewEntity(&pos, &vel, &rot, &morph, &phys, &sens, &org)
}

// Step advances the world by one tick: queued remodels are applied, bodies
// whose graph changed are re-derived, then everything moves.
func (w *World) Step() {
	w.perf.StartTick()

	w.perf.StartPhase(telemetry.PhaseRemodel)
	pending := w.remodels
	w.remodels = nil
	for _, e := range pending {
		if _, err := w.Remodel(e); err != nil {
			w.logger.Debug("remodel_failed", "entity", e, "error", err)
		}
	}

	w.perf.StartPhase(telemetry.PhaseDerive)
	w.physicsSystem.Update(w.world)

	w.perf.StartPhase(telemetry.PhaseMovement)
	w.movementSystem.Update(w.world, w.cfg.Derived.DT32)

	w.tick++
	w.perf.EndTick()
}

// creature returns e's morphology after checking it is a live creature.
func (w *World) creature(e ecs.Entity) (*components.Morphology, error) {
	if !w.world.Alive(e) || !w.morphMap.HasAll(e) {
		return nil, ErrNotCreature
	}
	return w.morphMap.Get(e), nil
}

// Reproduce breeds a child from two live creatures and spawns it between
// them. The child is one generation past the older lineage.
func (w *World) Reproduce(a, b ecs.Entity) (ecs.Entity, error) {
	ma, err := w.creature(a)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("reproduce: parent a: %w", err)
	}
	mb, err := w.creature(b)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("reproduce: parent b: %w", err)
	}

	child, err := w.mutator.Reproduce([]genome.Genome{*ma.Genome, *mb.Genome}, ma.Archetype)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("reproduce: %w", err)
	}

	pa, pb := w.posMap.Get(a), w.posMap.Get(b)
	spec := w.RandomSpec(child, ma.Archetype, max(w.orgMap.Get(a).Generation, w.orgMap.Get(b).Generation)+1)
	spec.X, spec.Y = (pa.X+pb.X)/2, (pa.Y+pb.Y)/2
	return w.Spawn(spec)
}

// Remodel mutates a live creature's genome, builds the new body off to the
// side and publishes it through the creature's handle. Readers holding the
// previous graph keep a consistent view; physics is re-derived on the next
// Step. It returns a description of the mutation.
func (w *World) Remodel(e ecs.Entity) (string, error) {
	morph, err := w.creature(e)
	if err != nil {
		return "", fmt.Errorf("remodel: %w", err)
	}
	child, desc, err := w.mutator.Mutate(*morph.Genome)
	if err != nil {
		return "", fmt.Errorf("remodel: %w", err)
	}
	graph, err := w.factory.Build(child)
	if err != nil {
		return "", fmt.Errorf("remodel: %w", err)
	}
	morph.Body.Swap(graph)
	morph.Genome = &child
	w.logger.Debug("remodeled", "id", w.orgMap.Get(e).ID, "mutation", desc)
	return desc, nil
}

// QueueRemodel schedules e to be remodelled at the start of the next Step.
func (w *World) QueueRemodel(e ecs.Entity) {
	w.remodels = append(w.remodels, e)
}

// Inspect describes a live creature's identity and derived physics.
func (w *World) Inspect(e ecs.Entity) ([]components.Field, error) {
	morph, err := w.creature(e)
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	fields := components.DescribeComponent(w.orgMap.Get(e))
	fields = append(fields, components.DescribeComponent(morph)...)
	phys := w.physMap.Get(e)
	return append(fields, components.DescribePhysics(phys.Body)...), nil
}

// Despawn removes a creature from the world.
func (w *World) Despawn(e ecs.Entity) error {
	if _, err := w.creature(e); err != nil {
		return fmt.Errorf("despawn: %w", err)
	}
	w.world.RemoveEntity(e)
	return nil
}

// Creatures returns every live creature ordered by id.
func (w *World) Creatures() []Creature {
	var out []Creature
	query := w.entityFilter.Query()
	for query.Next() {
		_, _, _, morph, _, _, org := query.Get()
		out = append(out, Creature{
			ID:         org.ID,
			Archetype:  morph.Archetype,
			Generation: org.Generation,
			Genome:     morph.Genome.Clone(),
		})
	}
	slices.SortFunc(out, func(a, b Creature) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Entities returns every live creature entity ordered by creature id.
func (w *World) Entities() []ecs.Entity {
	type entry struct {
		e  ecs.Entity
		id uint32
	}
	var entries []entry
	query := w.entityFilter.Query()
	for query.Next() {
		_, _, _, _, _, _, org := query.Get()
		entries = append(entries, entry{e: query.Entity(), id: org.ID})
	}
	slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.id, b.id) })
	out := make([]ecs.Entity, len(entries))
	for i, en := range entries {
		out[i] = en.e
	}
	return out
}

// Genomes returns every live creature's genome ordered by creature id.
func (w *World) Genomes() []genome.Genome {
	creatures := w.Creatures()
	out := make([]genome.Genome, len(creatures))
	for i, c := range creatures {
		out[i] = c.Genome
	}
	return out
}

// Records summarizes every live creature's body for telemetry, ordered by id.
func (w *World) Records() []telemetry.BodyRecord {
	var out []telemetry.BodyRecord
	query := w.entityFilter.Query()
	for query.Next() {
		_, vel, _, morph, phys, sens, org := query.Get()
		g := morph.Body.Load()
		b := phys.Body
		out = append(out, telemetry.BodyRecord{
			Tick:        w.tick,
			ID:          org.ID,
			Archetype:   morph.Archetype,
			Generation:  org.Generation,
			Modules:     g.Len(),
			Mass:        b.Mass,
			Volume:      b.Volume,
			Density:     b.Density,
			Drag:        b.DragCoefficient,
			Thrust:      b.MaxThrust,
			Turn:        b.TurnAuthority,
			Radius:      b.CollisionRadius,
			NerveLoad:   g.Aggregate().NerveLoad,
			SensorRange: sens.Suite.MaxRange,
			Spectra:     strings.Join(sens.Suite.Spectra, "|"),
			Speed:       math.Hypot(float64(vel.X), float64(vel.Y)),
		})
	}
	slices.SortFunc(out, func(a, b telemetry.BodyRecord) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
