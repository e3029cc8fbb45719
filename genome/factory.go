package genome

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/catalog"
	"github.com/pthm-cable/bodygraph/config"
)

// Factory converts genomes to graphs and back. A Factory holds no mutable
// state, so separate genomes may be built from several goroutines at once.
type Factory struct {
	catalog *catalog.Registry
	cfg     config.GenomeConfig
	logger  *slog.Logger
}

// NewFactory creates a factory. A nil logger uses slog.Default().
func NewFactory(cat *catalog.Registry, cfg config.GenomeConfig, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SafetyMargin < 1 {
		cfg.SafetyMargin = 1
	}
	return &Factory{catalog: cat, cfg: cfg, logger: logger}
}

// Catalog returns the registry modules are instantiated from.
func (f *Factory) Catalog() *catalog.Registry {
	return f.catalog
}

// Build realizes g as a graph. Genes that cannot be attached are skipped; use
// BuildWithReport to see which.
func (f *Factory) Build(g Genome) (*body.Graph, error) {
	graph, _, err := f.BuildWithReport(g)
	return graph, err
}

// BuildWithReport realizes g and reports which genes were skipped.
//
// Malformed genomes fail with *InvariantError. Genes whose module is rejected
// by its parent socket are skipped along with their descendants. Budgets are
// checked against every instantiated gene, skipped ones included: when the
// summed mass or nerve load exceeds them no graph is returned and the error
// is a *GenomeValidationError naming every violation.
func (f *Factory) BuildWithReport(g Genome) (*body.Graph, Report, error) {
	report := Report{Nodes: make([]body.NodeID, len(g.Genes))}
	if len(g.Genes) == 0 {
		return nil, report, &InvariantError{Gene: -1, Reason: "genome has no genes"}
	}
	if !finite(g.Constraints.MaxMass) || !finite(g.Constraints.NerveCapacity) {
		return nil, report, &InvariantError{
			Gene: -1,
			Reason: fmt.Sprintf("non-finite budget (max mass %v, nerve capacity %v)",
				g.Constraints.MaxMass, g.Constraints.NerveCapacity),
		}
	}

	first := g.Genes[0]
	if first.Parent != nil {
		return nil, report, &InvariantError{Gene: 0, Reason: "root gene must not have a parent"}
	}
	root, err := f.catalog.Create(first.Type, first.Params)
	if err != nil {
		return nil, report, &InvariantError{Gene: 0, Reason: "cannot instantiate module", Err: err}
	}
	graph, err := body.New(root)
	if err != nil {
		return nil, report, &InvariantError{Gene: 0, Reason: "invalid root", Err: err}
	}
	report.Nodes[0] = graph.Root()
	rawMass, rawNerve := root.Stats.Mass, root.Stats.NerveLoad

	for i := 1; i < len(g.Genes); i++ {
		gene := g.Genes[i]
		if gene.Parent == nil {
			return nil, report, &InvariantError{Gene: i, Reason: "only the first gene may omit its parent"}
		}
		idx := gene.Parent.Index
		if idx < 0 || idx >= i {
			return nil, report, &InvariantError{
				Gene:   i,
				Reason: fmt.Sprintf("parent index %d must refer to an earlier gene", idx),
			}
		}
		m, err := f.catalog.Create(gene.Type, gene.Params)
		if err != nil {
			return nil, report, &InvariantError{Gene: i, Reason: "cannot instantiate module", Err: err}
		}
		rawMass += m.Stats.Mass
		rawNerve += m.Stats.NerveLoad

		parent := report.Nodes[idx]
		if parent == body.NoNode {
			f.skip(&report, i, gene, &body.AttachmentError{
				Parent: body.NoNode,
				Socket: gene.Parent.Socket,
				Module: gene.Type,
				Reason: fmt.Sprintf("parent gene %d was skipped", idx),
			})
			continue
		}
		id, err := graph.AddModule(parent, gene.Parent.Socket, m)
		if err != nil {
			var ae *body.AttachmentError
			if !errors.As(err, &ae) {
				return nil, report, fmt.Errorf("gene %d: %w", i, err)
			}
			f.skip(&report, i, gene, ae)
			continue
		}
		report.Nodes[i] = id
	}

	limits := f.limits(g.Constraints)
	graph.SetLimits(limits)

	var violations []string
	if rawMass > limits.MaxMass {
		violations = append(violations,
			fmt.Sprintf("%s (%.2f > %.2f)", ViolationMaxMass, rawMass, limits.MaxMass))
	}
	if rawNerve > limits.NerveCapacity {
		violations = append(violations,
			fmt.Sprintf("%s (%.2f > %.2f)", ViolationNerveCapacity, rawNerve, limits.NerveCapacity))
	}
	if len(violations) > 0 {
		return nil, report, &GenomeValidationError{Violations: violations}
	}
	return graph, report, nil
}

func (f *Factory) skip(r *Report, i int, gene ModuleGene, err *body.AttachmentError) {
	r.Nodes[i] = body.NoNode
	r.Skipped = append(r.Skipped, SkippedGene{Index: i, Type: gene.Type, Err: err})
	f.logger.Debug("gene_skipped", "gene", i, "type", gene.Type, "reason", err.Reason)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// limits resolves constraints against the configured defaults.
func (f *Factory) limits(c GenomeConstraints) body.Limits {
	l := body.Limits{MaxMass: c.MaxMass, NerveCapacity: c.NerveCapacity}
	if l.MaxMass <= 0 {
		l.MaxMass = f.cfg.DefaultMaxMass
	}
	if l.NerveCapacity <= 0 {
		l.NerveCapacity = f.cfg.DefaultNerveCapacity
	}
	return l
}

// Serialize encodes graph as a genome. Genes are emitted in walk order, so
// every parent precedes its children, and constraints grow to cover the
// realized body with the configured safety margin.
func (f *Factory) Serialize(graph *body.Graph) Genome {
	var g Genome
	index := make(map[body.NodeID]int, graph.Len())
	for n := range graph.Walk() {
		gene := ModuleGene{Type: n.Module.Key, Params: n.Module.Params.Clone()}
		if n.Parent != body.NoNode {
			gene.Parent = &SlotRef{Index: index[n.Parent], Socket: n.Socket}
		}
		index[n.ID] = len(g.Genes)
		g.Genes = append(g.Genes, gene)
	}

	agg := graph.Aggregate()
	l := graph.Limits()
	existing := f.limits(GenomeConstraints{MaxMass: l.MaxMass, NerveCapacity: l.NerveCapacity})
	g.Constraints = GenomeConstraints{
		MaxMass:       max(existing.MaxMass, agg.TotalMass*f.cfg.SafetyMargin),
		NerveCapacity: max(existing.NerveCapacity, agg.NerveLoad*f.cfg.SafetyMargin),
	}
	return g
}
