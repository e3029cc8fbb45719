package physics

import (
	"math"
	"slices"
	"testing"

	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/catalog"
	"github.com/pthm-cable/bodygraph/config"
)

type step struct {
	parent body.NodeID
	socket string
	key    string
}

func buildGraph(t *testing.T, steps ...step) *body.Graph {
	t.Helper()
	cat := catalog.Default()
	root, err := cat.Create("core", body.Params{})
	if err != nil {
		t.Fatal(err)
	}
	g, err := body.New(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range steps {
		m, err := cat.Create(s.key, body.Params{})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := g.AddModule(s.parent, s.socket, m); err != nil {
			t.Fatalf("attach %s: %v", s.key, err)
		}
	}
	return g
}

func TestDerive_ClampsAndRatios(t *testing.T) {
	cfg := config.Default().Physics
	g := buildGraph(t,
		step{0, "ventral_core", "thruster"},
		step{0, "lateral_mount_left", "fin"},
		step{0, "lateral_mount_right", "fin"},
	)
	agg := g.Aggregate()
	b := Derive(g, cfg)

	if b.Mass != agg.TotalMass {
		t.Errorf("expected mass %v, got %v", agg.TotalMass, b.Mass)
	}
	if math.Abs(b.Density-b.Mass/b.Volume) > 1e-12 {
		t.Errorf("density %v != mass/volume", b.Density)
	}
	if b.DragCoefficient < cfg.DragMin || b.DragCoefficient > cfg.DragMax {
		t.Errorf("drag coefficient %v outside [%v, %v]", b.DragCoefficient, cfg.DragMin, cfg.DragMax)
	}
	if b.MaxThrust != agg.TotalThrust {
		t.Errorf("expected thrust %v, got %v", agg.TotalThrust, b.MaxThrust)
	}
	if b.LiftPerFin != 36 {
		t.Errorf("expected lift per fin 36, got %v", b.LiftPerFin)
	}
	if b.DorsalArea != agg.DorsalArea || b.DorsalArea <= 0 {
		t.Errorf("expected dorsal area %v, got %v", agg.DorsalArea, b.DorsalArea)
	}
	if want := g.Geometry().CollisionRadius; b.CollisionRadius != want {
		t.Errorf("expected collision radius %v, got %v", want, b.CollisionRadius)
	}
	if b.TurnAuthority <= 0 {
		t.Errorf("expected positive turn authority, got %v", b.TurnAuthority)
	}
	// Mirrored fins cancel; the thruster sits on the midline.
	if math.Abs(b.SteeringBias) > 1e-12 {
		t.Errorf("expected a symmetric body to have no steering bias, got %v", b.SteeringBias)
	}
}

func TestDerive_LopsidedSteering(t *testing.T) {
	g := buildGraph(t, step{0, "lateral_mount_right", "fin"})
	b := Derive(g, config.Default().Physics)
	if b.SteeringBias != 1 {
		t.Errorf("expected all steering on the right flank, got %v", b.SteeringBias)
	}
}

func TestFromAggregation_Minimums(t *testing.T) {
	cfg := config.Default().Physics
	b := FromAggregation(&body.PhysicsAggregation{}, cfg)
	if b.Mass != cfg.MinMass {
		t.Errorf("expected min mass %v, got %v", cfg.MinMass, b.Mass)
	}
	if b.Volume != cfg.MinVolume {
		t.Errorf("expected min volume %v, got %v", cfg.MinVolume, b.Volume)
	}
	if b.MaxThrust != cfg.MinThrust {
		t.Errorf("expected min thrust %v, got %v", cfg.MinThrust, b.MaxThrust)
	}
	if b.DragCoefficient != cfg.DragMin {
		t.Errorf("expected drag clamped to %v, got %v", cfg.DragMin, b.DragCoefficient)
	}
	if b.LiftPerFin != 0 {
		t.Errorf("expected no lift without fins, got %v", b.LiftPerFin)
	}
}

func TestPropulsionAcceleration(t *testing.T) {
	b := PhysicsBody{Mass: 10, MaxThrust: 50}
	tests := []struct {
		effort float64
		want   float64
	}{
		{0, 0},
		{0.5, 2.5},
		{1, 5},
		{3, 5},
		{-2, -5},
	}
	for _, tt := range tests {
		if got := b.PropulsionAcceleration(tt.effort); got != tt.want {
			t.Errorf("effort %v: expected %v, got %v", tt.effort, tt.want, got)
		}
	}
}

func TestDeriveSensors(t *testing.T) {
	g := buildGraph(t,
		step{0, "dorsal_mount", "sensor"},
		step{0, "ventral_core", "thruster"},
		step{2, "tail_sensors", "sonar"},
		step{0, "head_socket", "head"},
	)
	s := DeriveSensors(g)
	if len(s.Sensors) != 2 {
		t.Fatalf("expected 2 sensors, got %d", len(s.Sensors))
	}
	if want := []string{"colour", "light", "sonar"}; !slices.Equal(s.Spectra, want) {
		t.Errorf("expected spectra %v, got %v", want, s.Spectra)
	}
	if s.MaxRange != 110 {
		t.Errorf("expected max range 110, got %v", s.MaxRange)
	}
	if !s.Senses("light") || s.Senses("thermal") {
		t.Error("Senses does not match the spectra")
	}
	if s.RangeFor("light") != 75 {
		t.Errorf("expected light range 75, got %v", s.RangeFor("light"))
	}
	if s.VisionBonus != 45 {
		t.Errorf("expected vision bonus 45, got %v", s.VisionBonus)
	}
}
