// Package blueprint generates deterministic starter genomes for the
// configured archetypes.
package blueprint

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/catalog"
	"github.com/pthm-cable/bodygraph/config"
	"github.com/pthm-cable/bodygraph/genome"
)

// scaleJitter is the relative spread applied to archetype size scales.
const scaleJitter = 0.1

// Generator produces starter genomes.
type Generator struct {
	catalog *catalog.Registry
	cfg     *config.Config
}

// NewGenerator creates a generator over the given catalog and configuration.
func NewGenerator(cat *catalog.Registry, cfg *config.Config) *Generator {
	return &Generator{catalog: cat, cfg: cfg}
}

// Archetypes returns the configured archetype names in config order.
func (g *Generator) Archetypes() []string {
	names := make([]string, len(g.cfg.Blueprint.Archetypes))
	for i, a := range g.cfg.Blueprint.Archetypes {
		names[i] = a.Name
	}
	return names
}

// plan accumulates genes alongside the graph they realize, so sockets and
// budgets are known while generating.
type plan struct {
	cat   *catalog.Registry
	graph *body.Graph
	genes []genome.ModuleGene
	nodes []body.NodeID
}

func (p *plan) add(parentGene int, socket, key string, params body.Params) (int, error) {
	m, err := p.cat.Create(key, params)
	if err != nil {
		return 0, err
	}
	gene := genome.ModuleGene{Type: key, Params: params}
	if parentGene < 0 {
		if p.graph, err = body.New(m); err != nil {
			return 0, err
		}
		p.nodes = append(p.nodes, p.graph.Root())
	} else {
		id, err := p.graph.AddModule(p.nodes[parentGene], socket, m)
		if err != nil {
			return 0, err
		}
		gene.Parent = &genome.SlotRef{Index: parentGene, Socket: socket}
		p.nodes = append(p.nodes, id)
	}
	p.genes = append(p.genes, gene)
	return len(p.genes) - 1, nil
}

// geneOf maps a node back to the gene that produced it.
func (p *plan) geneOf(id body.NodeID) int {
	return slices.Index(p.nodes, id)
}

// Generate returns the starter genome for archetype. The same archetype and
// seed always produce the same genome, and the result builds without
// skipping any gene.
func (g *Generator) Generate(archetype string, seed uint64) (genome.Genome, error) {
	arch, ok := g.cfg.Archetype(archetype)
	if !ok {
		return genome.Genome{}, fmt.Errorf("blueprint: unknown archetype %q", archetype)
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	jitter := func(base float64) float64 {
		v := base * (1 - scaleJitter + 2*scaleJitter*rng.Float64())
		return math.Round(v*1000) / 1000
	}

	p := &plan{cat: g.catalog}
	if _, err := p.add(-1, "", "core", body.Params{SizeScale: jitter(arch.CoreScale)}); err != nil {
		return genome.Genome{}, fmt.Errorf("blueprint %s: core: %w", archetype, err)
	}
	if _, err := p.add(0, "ventral_core", arch.Propulsion, body.Params{SizeScale: jitter(arch.PropulsionScale)}); err != nil {
		return genome.Genome{}, fmt.Errorf("blueprint %s: propulsion: %w", archetype, err)
	}
	// Fins are a symmetric pair and share one scale.
	limb := body.Params{SizeScale: jitter(arch.LimbScale)}
	for _, socket := range []string{"lateral_mount_left", "lateral_mount_right"} {
		if _, err := p.add(0, socket, arch.Limb, limb.Clone()); err != nil {
			return genome.Genome{}, fmt.Errorf("blueprint %s: %s: %w", archetype, socket, err)
		}
	}
	if arch.Head {
		if _, err := p.add(0, "head_socket", "head", body.Params{}); err != nil {
			return genome.Genome{}, fmt.Errorf("blueprint %s: head: %w", archetype, err)
		}
	}
	if err := g.addSensors(p, arch, src); err != nil {
		return genome.Genome{}, fmt.Errorf("blueprint %s: sensors: %w", archetype, err)
	}

	agg := p.graph.Aggregate()
	margin := max(1, g.cfg.Genome.SafetyMargin)
	return genome.Genome{
		Genes: p.genes,
		Constraints: genome.GenomeConstraints{
			MaxMass:       max(g.cfg.Blueprint.MaxMass, agg.TotalMass*margin),
			NerveCapacity: max(g.cfg.Blueprint.NerveCapacity, agg.NerveLoad*margin),
		},
	}, nil
}

// addSensors draws a sensor count from the archetype weights and fills that
// many free sensory sockets, each with a spectrum drawn from the archetype's
// weighted options.
func (g *Generator) addSensors(p *plan, arch *config.ArchetypeConfig, src rand.Source) error {
	if len(arch.Spectra) == 0 {
		return nil
	}
	count, ok := sampleuv.NewWeighted(arch.SensorWeights, src).Take()
	if !ok || count == 0 {
		return nil
	}

	var free []body.SocketRef
	for _, ref := range p.graph.FreeSockets() {
		if slices.Contains(ref.Point.Accepts, body.CategorySensory) {
			free = append(free, ref)
		}
	}
	if len(free) == 0 {
		return nil
	}
	socketWeights := make([]float64, len(free))
	for i := range socketWeights {
		socketWeights[i] = 1
	}
	sockets := sampleuv.NewWeighted(socketWeights, src)

	spectrumWeights := make([]float64, len(arch.Spectra))
	for i, opt := range arch.Spectra {
		spectrumWeights[i] = opt.Weight
	}

	for range count {
		si, ok := sockets.Take()
		if !ok {
			break
		}
		oi, ok := sampleuv.NewWeighted(spectrumWeights, src).Take()
		if !ok {
			return fmt.Errorf("spectrum weights sum to zero")
		}
		opt := arch.Spectra[oi]
		ref := free[si]
		params := body.Params{Spectrum: slices.Clone(opt.Spectrum)}
		if _, err := p.add(p.geneOf(ref.Node), ref.Point.ID, opt.Sensor, params); err != nil {
			return err
		}
	}
	return nil
}
