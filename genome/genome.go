// Package genome maps the flat genetic encoding of a body to and from a
// body.Graph.
//
// A genome is an ordered gene list. The first gene is the core root; every
// later gene names an earlier gene and one of its sockets as its parent slot.
package genome

import (
	"log/slog"

	"github.com/pthm-cable/bodygraph/body"
)

// GeneParams are the module instantiation parameters carried by a gene.
type GeneParams = body.Params

// SlotRef points at a socket on the module built from an earlier gene.
type SlotRef struct {
	Index  int    `json:"index" yaml:"index"`
	Socket string `json:"socket" yaml:"socket"`
}

// ModuleGene encodes one module.
type ModuleGene struct {
	Type   string     `json:"type" yaml:"type"`
	Params GeneParams `json:"params" yaml:"params"`
	Parent *SlotRef   `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// GenomeConstraints are the budgets a built body must respect.
// Zero values fall back to the configured defaults.
type GenomeConstraints struct {
	MaxMass       float64 `json:"max_mass" yaml:"max_mass"`
	NerveCapacity float64 `json:"nerve_capacity" yaml:"nerve_capacity"`
}

// Genome is a complete body encoding.
type Genome struct {
	Genes       []ModuleGene      `json:"genes" yaml:"genes"`
	Constraints GenomeConstraints `json:"constraints" yaml:"constraints"`
}

// Clone returns a deep copy of g.
func (g Genome) Clone() Genome {
	out := Genome{Constraints: g.Constraints, Genes: make([]ModuleGene, len(g.Genes))}
	for i, gene := range g.Genes {
		gene.Params = gene.Params.Clone()
		if gene.Parent != nil {
			p := *gene.Parent
			gene.Parent = &p
		}
		out.Genes[i] = gene
	}
	return out
}

// Types returns the module type of every gene, in order.
func (g Genome) Types() []string {
	out := make([]string, len(g.Genes))
	for i, gene := range g.Genes {
		out[i] = gene.Type
	}
	return out
}

// SkippedGene records a gene that could not be attached during a build.
type SkippedGene struct {
	Index int
	Type  string
	Err   *body.AttachmentError
}

// Report describes how a genome was realized.
type Report struct {
	// Nodes maps gene index to the node built from it, or body.NoNode if skipped.
	Nodes   []body.NodeID
	Skipped []SkippedGene
}

// SkippedIndices returns the indices of skipped genes.
func (r Report) SkippedIndices() []int {
	out := make([]int, len(r.Skipped))
	for i, s := range r.Skipped {
		out[i] = s.Index
	}
	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (r Report) LogValue() slog.Value {
	built := len(r.Nodes) - len(r.Skipped)
	return slog.GroupValue(
		slog.Int("genes", len(r.Nodes)),
		slog.Int("built", built),
		slog.Any("skipped", r.SkippedIndices()),
	)
}
