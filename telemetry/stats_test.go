package telemetry

import (
	"math"
	"testing"
)

func TestDistribute(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Distribution
	}{
		{"empty", nil, Distribution{}},
		{"single", []float64{5}, Distribution{Mean: 5, P10: 5, P50: 5, P90: 5}},
		{"unsorted ten", []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5}, Distribution{Mean: 5.5, Std: math.Sqrt(82.5 / 9), P10: 1, P50: 5, P90: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distribute(tt.values)
			for _, c := range []struct {
				field     string
				got, want float64
			}{
				{"mean", got.Mean, tt.want.Mean},
				{"std", got.Std, tt.want.Std},
				{"p10", got.P10, tt.want.P10},
				{"p50", got.P50, tt.want.P50},
				{"p90", got.P90, tt.want.P90},
			} {
				if math.Abs(c.got-c.want) > 1e-9 {
					t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
				}
			}
		})
	}
}

func TestDistribute_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Distribute(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}

func TestSummarize(t *testing.T) {
	records := []BodyRecord{
		{Archetype: "grazer", Modules: 4, Mass: 40, Thrust: 120},
		{Archetype: "grazer", Modules: 6, Mass: 60, Thrust: 120},
		{Archetype: "hunter", Modules: 8, Mass: 80, Thrust: 240},
	}

	s := Summarize(7, records)

	if s.Tick != 7 || s.Count != 3 {
		t.Errorf("expected tick 7 count 3, got tick %d count %d", s.Tick, s.Count)
	}
	if s.ByArchetype["grazer"] != 2 || s.ByArchetype["hunter"] != 1 {
		t.Errorf("unexpected archetype counts %v", s.ByArchetype)
	}
	if math.Abs(s.Mass.Mean-60) > 1e-9 {
		t.Errorf("expected mean mass 60, got %v", s.Mass.Mean)
	}
	if s.Thrust.P90 != 240 {
		t.Errorf("expected thrust p90 240, got %v", s.Thrust.P90)
	}
	if s.Modules.P50 != 6 {
		t.Errorf("expected median modules 6, got %v", s.Modules.P50)
	}
}
