package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"reflect"
	"time"

	"github.com/pthm-cable/bodygraph/blueprint"
	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/catalog"
	"github.com/pthm-cable/bodygraph/components"
	"github.com/pthm-cable/bodygraph/config"
	"github.com/pthm-cable/bodygraph/genome"
	"github.com/pthm-cable/bodygraph/physics"
	"github.com/pthm-cable/bodygraph/sim"
	"github.com/pthm-cable/bodygraph/storage"
	"github.com/pthm-cable/bodygraph/systems"
	"github.com/pthm-cable/bodygraph/telemetry"
)

func main() {
	var env config.Env
	if err := config.ParseEnv(&env); err != nil {
		slog.Error("failed to read environment", "error", err)
		os.Exit(1)
	}

	// CLI flags (environment supplies the defaults)
	configPath := flag.String("config", env.ConfigPath, "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", env.OutputDir, "Output directory for CSV logs, genomes and config snapshot")
	storeKind := flag.String("store", env.Store, "Genome store backend: memory or sqlite")
	dbPath := flag.String("db", env.DBPath, "SQLite database path for -store=sqlite")
	inspect := flag.String("inspect", "", "Print the blueprint genome of this archetype and exit")
	load := flag.String("load", "", "Spawn the population from a genome snapshot instead of blueprints")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	population := flag.Int("population", 40, "Initial population size")
	maxTicks := flag.Int("max-ticks", 600, "Stop after N ticks")
	statsEvery := flag.Int("stats-every", 60, "Write body records every N ticks")
	breedEvery := flag.Int("breed-every", 120, "Run a breeding pass every N ticks (0 = never)")
	maxBirths := flag.Int("max-births", 8, "Births per breeding pass (0 = unlimited)")
	remodelEvery := flag.Int("remodel-every", 30, "Remodel one random creature every N ticks (0 = never)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if err := env.Apply(cfg); err != nil {
		slog.Error("failed to apply environment", "error", err)
		os.Exit(1)
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Derived.LogLevel}))
	slog.SetDefault(logger)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	cat, err := catalog.NewDefault(cfg.Catalog)
	if err != nil {
		logger.Error("failed to build catalog", "error", err)
		os.Exit(1)
	}

	if *inspect != "" {
		if err := runInspect(cfg, cat, *inspect, rngSeed, logger); err != nil {
			logger.Error("inspect failed", "archetype", *inspect, "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := runOptions{
		outputDir:    *outputDir,
		storeKind:    *storeKind,
		dbPath:       *dbPath,
		load:         *load,
		seed:         rngSeed,
		population:   *population,
		maxTicks:     *maxTicks,
		statsEvery:   *statsEvery,
		breedEvery:   *breedEvery,
		maxBirths:    *maxBirths,
		remodelEvery: *remodelEvery,
	}
	if err := run(ctx, cfg, cat, opts, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runInspect prints a blueprint genome and logs the physics of its body.
func runInspect(cfg *config.Config, cat *catalog.Registry, archetype string, seed uint64, logger *slog.Logger) error {
	g, err := blueprint.NewGenerator(cat, cfg).Generate(archetype, seed)
	if err != nil {
		return err
	}
	factory := genome.NewFactory(cat, cfg.Genome, logger)
	graph, report, err := factory.BuildWithReport(g)
	if err != nil {
		return err
	}

	// A genome rebuilt from its own graph must describe the same body.
	again, err := factory.Build(factory.Serialize(graph))
	if err != nil {
		return fmt.Errorf("round trip: %w", err)
	}
	if !reflect.DeepEqual(again.Aggregate(), graph.Aggregate()) {
		return fmt.Errorf("round trip changed the body")
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	if err := out.Encode(g); err != nil {
		return err
	}

	types := g.Types()
	for i, id := range report.Nodes {
		if id == body.NoNode {
			continue
		}
		n, _ := graph.Node(id)
		joint := "root"
		if n.Parent != body.NoNode {
			parent, _ := graph.Module(n.Parent)
			point, _ := parent.Socket(n.Socket)
			joint = point.Joint.Describe()
		}
		tr, _ := graph.Transform(id)
		logger.Info("node",
			"gene", i,
			"type", types[i],
			"depth", graph.Depth(id),
			"socket", n.Socket,
			"joint", joint,
			"x", tr.Pos.X,
			"y", tr.Pos.Y,
			"angle", tr.Angle,
		)
	}
	var levels []int
	for d := 0; ; d++ {
		ids := graph.NodesAtDepth(d)
		if len(ids) == 0 {
			break
		}
		levels = append(levels, len(ids))
	}

	pb := physics.Derive(graph, cfg.Physics)
	geo := graph.Geometry()
	attrs := []any{
		"archetype", archetype,
		"seed", seed,
		"report", report,
		"sensors", physics.DeriveSensors(graph),
		"levels", levels,
		"extent", []float64{geo.Extent.X, geo.Extent.Y, geo.Extent.Z},
		"steering_surfaces", len(graph.Aggregate().SteeringSurfaces),
	}
	for _, f := range components.DescribePhysics(pb) {
		attrs = append(attrs, f.ID, f.Value)
	}
	logger.Info("body", attrs...)
	return nil
}

type runOptions struct {
	outputDir    string
	storeKind    string
	dbPath       string
	load         string
	seed         uint64
	population   int
	maxTicks     int
	statsEvery   int
	breedEvery   int
	maxBirths    int
	remodelEvery int
}

// run simulates a population headlessly and persists the surviving genomes.
func run(ctx context.Context, cfg *config.Config, cat *catalog.Registry, opts runOptions, logger *slog.Logger) error {
	om, err := telemetry.NewOutputManager(opts.outputDir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}

	store, err := storage.NewStore(opts.storeKind, opts.dbPath)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("init %s store: %w", opts.storeKind, err)
	}
	defer store.Close()

	world := sim.New(cfg, cat, systems.Bounds{Width: 1280, Height: 720}, opts.seed, logger)
	if err := seedPopulation(ctx, world, opts); err != nil {
		return err
	}

	logger.Info("starting simulation",
		"seed", opts.seed,
		"population", world.Len(),
		"max_ticks", opts.maxTicks,
		"store", opts.storeKind,
	)

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x5bd1e995))
	for int(world.Tick()) < opts.maxTicks {
		if err := ctx.Err(); err != nil {
			logger.Info("interrupted", "tick", world.Tick())
			break
		}
		tick := int(world.Tick()) + 1

		if opts.remodelEvery > 0 && tick%opts.remodelEvery == 0 {
			if entities := world.Entities(); len(entities) > 0 {
				world.QueueRemodel(entities[rng.IntN(len(entities))])
			}
		}
		world.Step()

		if opts.breedEvery > 0 && tick%opts.breedEvery == 0 {
			if _, err := world.Breed(opts.maxBirths); err != nil {
				return err
			}
		}
		if opts.statsEvery > 0 && tick%opts.statsEvery == 0 {
			records := world.Records()
			if err := om.WriteBodies(records); err != nil {
				return err
			}
			if err := om.WritePerf(world.Perf(), world.Tick()); err != nil {
				return err
			}
			telemetry.Summarize(world.Tick(), records).LogStats(logger)
		}
	}

	if _, err := om.WriteGenomes(world.Genomes(), world.Tick()); err != nil {
		return err
	}
	if entities := world.Entities(); len(entities) > 0 {
		fields, err := world.Inspect(entities[0])
		if err != nil {
			return err
		}
		attrs := make([]any, 0, 2*len(fields))
		for _, f := range fields {
			attrs = append(attrs, f.ID, f.Value)
		}
		logger.Info("eldest_creature", attrs...)
	}
	return persist(ctx, store, world.Creatures(), logger)
}

// seedPopulation spawns the initial creatures from a snapshot or blueprints.
func seedPopulation(ctx context.Context, world *sim.World, opts runOptions) error {
	if opts.load == "" {
		_, err := world.Populate(ctx, opts.population)
		return err
	}
	snapshot, err := telemetry.LoadGenomes(opts.load)
	if err != nil {
		return err
	}
	// Snapshots carry no lineage; archetypes only pick the breeding fallback.
	archetypes := world.Archetypes()
	specs := make([]sim.SpawnSpec, len(snapshot.Genomes))
	for i, g := range snapshot.Genomes {
		specs[i] = world.RandomSpec(g, archetypes[i%len(archetypes)], 0)
	}
	_, err = world.SpawnPopulation(ctx, specs)
	return err
}

// persist saves every creature's genome to the store.
func persist(ctx context.Context, store storage.Store, creatures []sim.Creature, logger *slog.Logger) error {
	for _, c := range creatures {
		record := storage.GenomeRecord{
			ID:         fmt.Sprintf("creature-%06d", c.ID),
			Archetype:  c.Archetype,
			Generation: c.Generation,
			Genome:     c.Genome,
		}
		if err := store.SaveGenome(ctx, record); err != nil {
			return fmt.Errorf("save %s: %w", record.ID, err)
		}
	}
	logger.Info("genomes_stored", "count", len(creatures))
	return nil
}
