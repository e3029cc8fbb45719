package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes one body statistic across a population.
type Distribution struct {
	Mean float64 `csv:"mean"`
	Std  float64 `csv:"std"`
	P10  float64 `csv:"p10"`
	P50  float64 `csv:"p50"`
	P90  float64 `csv:"p90"`
}

// Distribute computes mean, sample standard deviation and empirical
// percentiles of values. It returns the zero Distribution for no values.
func Distribute(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var d Distribution
	if len(sorted) == 1 {
		d.Mean = sorted[0]
	} else {
		d.Mean, d.Std = stat.MeanStdDev(sorted, nil)
	}
	d.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	d.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	d.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (d Distribution) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("mean", d.Mean),
		slog.Float64("std", d.Std),
		slog.Float64("p10", d.P10),
		slog.Float64("p50", d.P50),
		slog.Float64("p90", d.P90),
	)
}

// PopulationStats summarizes the bodies alive at one tick.
type PopulationStats struct {
	Tick        int32
	Count       int
	Modules     Distribution
	Mass        Distribution
	Thrust      Distribution
	Drag        Distribution
	ByArchetype map[string]int
}

// Summarize aggregates body records into population statistics.
func Summarize(tick int32, records []BodyRecord) PopulationStats {
	s := PopulationStats{
		Tick:        tick,
		Count:       len(records),
		ByArchetype: make(map[string]int),
	}
	modules := make([]float64, len(records))
	mass := make([]float64, len(records))
	thrust := make([]float64, len(records))
	drag := make([]float64, len(records))
	for i, r := range records {
		modules[i] = float64(r.Modules)
		mass[i] = r.Mass
		thrust[i] = r.Thrust
		drag[i] = r.Drag
		s.ByArchetype[r.Archetype]++
	}
	s.Modules = Distribute(modules)
	s.Mass = Distribute(mass)
	s.Thrust = Distribute(thrust)
	s.Drag = Distribute(drag)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s PopulationStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("tick", int(s.Tick)),
		slog.Int("count", s.Count),
		slog.Any("modules", s.Modules),
		slog.Any("mass", s.Mass),
		slog.Any("thrust", s.Thrust),
		slog.Any("drag", s.Drag),
	}
	names := make([]string, 0, len(s.ByArchetype))
	for name := range s.ByArchetype {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		attrs = append(attrs, slog.Int("n_"+name, s.ByArchetype[name]))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the population stats using slog.
func (s PopulationStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("population", "stats", s)
}
