// Package mutation edits genomes through structural operations on the body
// graph they encode, and breeds children with a blueprint fallback.
package mutation

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/pthm-cable/bodygraph/blueprint"
	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/catalog"
	"github.com/pthm-cable/bodygraph/config"
	"github.com/pthm-cable/bodygraph/genome"
)

// ErrNoMutation is returned when every attempt failed to produce a genome
// that builds.
var ErrNoMutation = errors.New("no viable mutation")

// Operator applies one in-place edit to a graph and describes it.
type Operator struct {
	Name  string
	Apply func(m *Mutator, g *body.Graph) (string, error)
}

// Operators lists the built-in mutation operators.
var Operators = []Operator{
	{Name: "add_module", Apply: (*Mutator).addModule},
	{Name: "remove_subtree", Apply: (*Mutator).removeSubtree},
	{Name: "scale_module", Apply: (*Mutator).scaleModule},
	{Name: "swap_material", Apply: (*Mutator).swapMaterial},
	{Name: "reattach", Apply: (*Mutator).reattach},
}

// Mutator mutates and breeds genomes. It owns a random stream and is not
// safe for concurrent use.
type Mutator struct {
	factory    *genome.Factory
	catalog    *catalog.Registry
	blueprints *blueprint.Generator
	cfg        config.MutationConfig
	rng        *rand.Rand
	logger     *slog.Logger
}

// NewMutator creates a mutator seeded with seed. A nil logger uses slog.Default().
func NewMutator(f *genome.Factory, bp *blueprint.Generator, cfg config.MutationConfig, seed uint64, logger *slog.Logger) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Mutator{
		factory:    f,
		catalog:    f.Catalog(),
		blueprints: bp,
		cfg:        cfg,
		rng:        rand.New(rand.NewPCG(seed, ^seed)),
		logger:     logger,
	}
}

// Mutate applies one randomly chosen operator to g. Operators are tried in
// shuffled order until one yields a genome that builds under g's constraints.
// It returns the child genome and a description of the edit.
func (m *Mutator) Mutate(g genome.Genome) (genome.Genome, string, error) {
	graph, err := m.factory.Build(g)
	if err != nil {
		return genome.Genome{}, "", fmt.Errorf("mutate: parent does not build: %w", err)
	}

	ops := slices.Clone(Operators)
	m.rng.Shuffle(len(ops), func(i, j int) { ops[i], ops[j] = ops[j], ops[i] })

	for attempt := range m.cfg.MaxAttempts {
		op := ops[attempt%len(ops)]
		next := graph.Clone()
		desc, err := op.Apply(m, next)
		if err != nil {
			m.logger.Debug("mutation_rejected", "op", op.Name, "attempt", attempt, "error", err)
			continue
		}
		if errs := next.Validate(); len(errs) > 0 {
			m.logger.Warn("mutation_corrupted_graph", "op", op.Name, "attempt", attempt, "problems", len(errs), "first", errs[0].Error())
			continue
		}

		child := m.factory.Serialize(next)
		child.Constraints = g.Constraints
		if _, err := m.factory.Build(child); err != nil {
			m.logger.Debug("mutation_rejected", "op", op.Name, "attempt", attempt, "error", err)
			continue
		}
		return child, op.Name + ": " + desc, nil
	}
	return genome.Genome{}, "", ErrNoMutation
}

// Reproduce breeds a child from two parents that both build. The child takes
// the gene list of one parent, the larger of both budgets, and one mutation.
// With fewer than two viable parents a fresh blueprint of archetype is
// returned instead.
func (m *Mutator) Reproduce(parents []genome.Genome, archetype string) (genome.Genome, error) {
	var viable []genome.Genome
	for i, p := range parents {
		if _, err := m.factory.Build(p); err != nil {
			m.logger.Debug("parent_rejected", "parent", i, "error", err)
			continue
		}
		viable = append(viable, p)
	}
	if len(viable) < 2 {
		m.logger.Info("reproduce_fallback", "archetype", archetype, "viable_parents", len(viable))
		return m.blueprints.Generate(archetype, m.rng.Uint64())
	}

	a, b := viable[0], viable[1]
	child := a.Clone()
	if m.rng.IntN(2) == 1 {
		child = b.Clone()
	}
	child.Constraints = genome.GenomeConstraints{
		MaxMass:       max(a.Constraints.MaxMass, b.Constraints.MaxMass),
		NerveCapacity: max(a.Constraints.NerveCapacity, b.Constraints.NerveCapacity),
	}

	mutated, desc, err := m.Mutate(child)
	if errors.Is(err, ErrNoMutation) {
		return child, nil
	}
	if err != nil {
		return genome.Genome{}, err
	}
	m.logger.Debug("child_mutated", "mutation", desc)
	return mutated, nil
}
