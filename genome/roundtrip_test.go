package genome_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/pthm-cable/bodygraph/blueprint"
	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/catalog"
	"github.com/pthm-cable/bodygraph/config"
	"github.com/pthm-cable/bodygraph/genome"
	"github.com/pthm-cable/bodygraph/mutation"
)

// placement is a node described by walk positions instead of node ids, so
// two graphs built from equivalent genomes compare equal.
type placement struct {
	Key    string
	Params body.Params
	Parent int
	Socket string
}

func shape(g *body.Graph) []placement {
	pos := make(map[body.NodeID]int, g.Len())
	var out []placement
	for n := range g.Walk() {
		p := placement{Key: n.Module.Key, Params: n.Module.Params, Parent: -1, Socket: n.Socket}
		if n.Parent != body.NoNode {
			p.Parent = pos[n.Parent]
		}
		pos[n.ID] = len(out)
		out = append(out, p)
	}
	return out
}

func assertRoundTrip(t *testing.T, f *genome.Factory, g genome.Genome) {
	t.Helper()
	first, err := f.Build(g)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	encoded := f.Serialize(first)
	second, report, err := f.BuildWithReport(encoded)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if len(report.Skipped) != 0 {
		t.Errorf("serialized genome skipped genes %v", report.SkippedIndices())
	}
	if !reflect.DeepEqual(first.Aggregate(), second.Aggregate()) {
		t.Errorf("aggregation differs after round trip:\n%+v\n%+v", *first.Aggregate(), *second.Aggregate())
	}
	if !reflect.DeepEqual(shape(first), shape(second)) {
		t.Errorf("parent/slot relations differ after round trip:\n%+v\n%+v", shape(first), shape(second))
	}
	if again := f.Serialize(second); !reflect.DeepEqual(again.Genes, encoded.Genes) {
		t.Error("serializing the rebuilt graph changed the genes")
	}
}

func newStack(seed uint64) (*genome.Factory, *blueprint.Generator, *mutation.Mutator) {
	cfg := config.Default()
	cat := catalog.Default()
	f := genome.NewFactory(cat, cfg.Genome, nil)
	bp := blueprint.NewGenerator(cat, cfg)
	return f, bp, mutation.NewMutator(f, bp, cfg.Mutation, seed, nil)
}

// ---------- Round trips ----------

func TestRoundTrip_Blueprints(t *testing.T) {
	f, bp, _ := newStack(1)
	for _, name := range bp.Archetypes() {
		for _, seed := range []uint64{0, 1, 2, 17, 42, 1234} {
			t.Run(fmt.Sprintf("%s/%d", name, seed), func(t *testing.T) {
				g, err := bp.Generate(name, seed)
				if err != nil {
					t.Fatal(err)
				}
				assertRoundTrip(t, f, g)
			})
		}
	}
}

func TestRoundTrip_MutatedLineages(t *testing.T) {
	for _, name := range []string{"driftFeeder", "starterSwimmer", "grazer", "hunter"} {
		t.Run(name, func(t *testing.T) {
			f, bp, m := newStack(9)
			g, err := bp.Generate(name, 5)
			if err != nil {
				t.Fatal(err)
			}
			for round := range 12 {
				child, desc, err := m.Mutate(g)
				if err != nil {
					t.Fatalf("round %d: %v", round, err)
				}
				t.Logf("round %d: %s", round, desc)
				assertRoundTrip(t, f, child)
				g = child
			}
		})
	}
}

func TestRoundTrip_SkippedGenes(t *testing.T) {
	f, _, _ := newStack(1)
	at := func(i int, socket string) *genome.SlotRef { return &genome.SlotRef{Index: i, Socket: socket} }
	g := genome.Genome{
		Genes: []genome.ModuleGene{
			{Type: "core"},
			{Type: "fin", Parent: at(0, "head_socket")},       // wrong category
			{Type: "sensor", Parent: at(1, "proximal_joint")}, // parent skipped
			{Type: "thruster", Parent: at(0, "ventral_core")},
			{Type: "fin", Parent: at(0, "lateral_mount_left")},
			{Type: "fin", Parent: at(0, "lateral_mount_left")}, // occupied
			{Type: "sonar", Parent: at(3, "tail_sensors")},
		},
		Constraints: genome.GenomeConstraints{MaxMass: 240, NerveCapacity: 36},
	}
	_, report, err := f.BuildWithReport(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Skipped) != 3 {
		t.Fatalf("expected 3 skipped genes, got %v", report.SkippedIndices())
	}
	assertRoundTrip(t, f, g)
}
