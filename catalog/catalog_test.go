package catalog

import (
	"math"
	"slices"
	"testing"

	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/config"
)

func TestDefault_RegistersPresetsAndAliases(t *testing.T) {
	r := Default()
	want := []string{"core", "fin", "head", "limb", "propulsion", "sensor", "sonar", "thruster"}
	if got := r.Keys(); !slices.Equal(got, want) {
		t.Errorf("expected keys %v, got %v", want, got)
	}
}

func TestCreate_Categories(t *testing.T) {
	r := Default()
	tests := []struct {
		key  string
		want body.Category
	}{
		{"core", body.CategoryCore},
		{"head", body.CategoryHead},
		{"fin", body.CategoryLimb},
		{"limb", body.CategoryLimb},
		{"thruster", body.CategoryPropulsion},
		{"propulsion", body.CategoryPropulsion},
		{"sensor", body.CategorySensory},
		{"sonar", body.CategorySensory},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, err := r.Create(tt.key, body.Params{})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if m.Category() != tt.want {
				t.Errorf("expected category %s, got %s", tt.want, m.Category())
			}
			if m.Key != tt.key {
				t.Errorf("expected key %q, got %q", tt.key, m.Key)
			}
			if m.Stats.NerveLoad != r.NerveLoad(tt.want) {
				t.Errorf("expected nerve load %v, got %v", r.NerveLoad(tt.want), m.Stats.NerveLoad)
			}
		})
	}
}

func TestCreate_CoreSockets(t *testing.T) {
	m, err := Default().Create("core", body.Params{})
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"head_socket", "dorsal_mount", "ventral_core", "lateral_mount_left", "lateral_mount_right"} {
		if _, ok := m.Socket(id); !ok {
			t.Errorf("core missing socket %q", id)
		}
	}
}

func TestCreate_SizeScaleDoesNotChangeMass(t *testing.T) {
	r := Default()
	base, _ := r.Create("fin", body.Params{})
	big, err := r.Create("fin", body.Params{SizeScale: 2})
	if err != nil {
		t.Fatal(err)
	}
	if big.Stats.Mass != base.Stats.Mass {
		t.Errorf("size scale changed mass: %v -> %v", base.Stats.Mass, big.Stats.Mass)
	}
	if math.Abs(big.Stats.Volume-8*base.Stats.Volume) > 1e-9 {
		t.Errorf("expected volume x8, got %v -> %v", base.Stats.Volume, big.Stats.Volume)
	}
	if math.Abs(big.Stats.DragArea-4*base.Stats.DragArea) > 1e-9 {
		t.Errorf("expected drag area x4, got %v -> %v", base.Stats.DragArea, big.Stats.DragArea)
	}
}

func TestCreate_QualityScalesPerformance(t *testing.T) {
	r := Default()
	base, _ := r.Create("thruster", body.Params{})
	good, err := r.Create("thruster", body.Params{Quality: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	if good.Stats.Thrust != base.Stats.Thrust*1.5 {
		t.Errorf("expected thrust %v, got %v", base.Stats.Thrust*1.5, good.Stats.Thrust)
	}
	if good.Stats.Integrity != base.Stats.Integrity*1.5 {
		t.Errorf("expected integrity %v, got %v", base.Stats.Integrity*1.5, good.Stats.Integrity)
	}
	traits, ok := good.Traits.(body.PropulsionTraits)
	if !ok {
		t.Fatalf("expected PropulsionTraits, got %T", good.Traits)
	}
	if traits.ThrustPower != good.Stats.Thrust {
		t.Errorf("traits thrust %v does not follow stats %v", traits.ThrustPower, good.Stats.Thrust)
	}
}

func TestCreate_Overrides(t *testing.T) {
	r := Default()
	m, err := r.Create("sensor", body.Params{
		Material: BioAlloy,
		Spectrum: []string{"thermal"},
		Stats:    map[string]float64{"mass": 10, "bioluminescence": 0.4},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m.Stats.Mass != 10 {
		t.Errorf("expected mass 10, got %v", m.Stats.Mass)
	}
	if m.Stats.Bioluminescence != 0.4 {
		t.Errorf("expected bioluminescence 0.4, got %v", m.Stats.Bioluminescence)
	}
	if m.Material != BioAlloy {
		t.Errorf("expected material %q, got %q", BioAlloy, m.Material)
	}
	if !slices.Equal(m.Stats.SensorSpectrum, []string{"thermal"}) {
		t.Errorf("expected thermal spectrum, got %v", m.Stats.SensorSpectrum)
	}
}

func TestCreate_Errors(t *testing.T) {
	r := Default()
	tests := []struct {
		name   string
		key    string
		params body.Params
	}{
		{"unknown key", "tentacle", body.Params{}},
		{"negative size", "fin", body.Params{SizeScale: -1}},
		{"negative quality", "fin", body.Params{Quality: -0.5}},
		{"unknown stat", "core", body.Params{Stats: map[string]float64{"charisma": 1}}},
		{"negative mass", "core", body.Params{Stats: map[string]float64{"mass": -1}}},
		{"spectrum on core", "core", body.Params{Spectrum: []string{"sonar"}}},
		{"nan stat", "core", body.Params{Stats: map[string]float64{"grip": math.NaN()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Create(tt.key, tt.params); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCreate_ParamsAreCopied(t *testing.T) {
	r := Default()
	p := body.Params{Stats: map[string]float64{"mass": 3}}
	m, err := r.Create("fin", p)
	if err != nil {
		t.Fatal(err)
	}
	p.Stats["mass"] = 99
	if m.Params.Stats["mass"] != 3 {
		t.Errorf("module params alias caller map: got %v", m.Params.Stats["mass"])
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := Default()
	if err := r.Register("core", nil); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if err := r.Alias("x", "missing"); err == nil {
		t.Error("expected alias to unknown key to fail")
	}
}

func TestNew_RejectsUnknownCategory(t *testing.T) {
	_, err := New(config.CatalogConfig{NerveLoad: map[string]float64{"wing": 1}})
	if err == nil {
		t.Error("expected unknown category to fail")
	}
}

func TestCandidates_LateralMountTakesLimbs(t *testing.T) {
	r := Default()
	core, _ := r.Create("core", body.Params{})
	point, _ := core.Socket("lateral_mount_left")
	got := r.Candidates(point)
	if !slices.Equal(got, []string{"fin", "limb"}) {
		t.Errorf("expected [fin limb], got %v", got)
	}
}
