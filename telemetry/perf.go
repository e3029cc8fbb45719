package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for the simulation step.
const (
	PhaseDerive   = "derive_physics"
	PhaseMovement = "movement"
	PhaseRemodel  = "remodel"
)

// perfSample holds timing data for a single tick.
type perfSample struct {
	tick   time.Duration
	phases map[string]time.Duration
}

// PerfCollector tracks step timings over a rolling window.
type PerfCollector struct {
	windowSize  int
	samples     []perfSample
	writeIndex  int
	sampleCount int

	current    map[string]time.Duration
	tickStart  time.Time
	phaseStart time.Time
	lastPhase  string
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]perfSample, windowSize),
		current:    make(map[string]time.Duration),
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase closes the running phase and begins timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.current[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.current[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.samples[p.writeIndex] = perfSample{tick: now.Sub(p.tickStart), phases: p.current}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated step timings.
type PerfStats struct {
	Ticks           int
	AvgTickDuration time.Duration
	P90TickDuration time.Duration
	MaxTickDuration time.Duration

	// Average duration and share of tick time per phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		Ticks:    p.sampleCount,
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p.sampleCount == 0 {
		return s
	}

	ticks := make([]float64, p.sampleCount)
	phaseSum := make(map[string]time.Duration)
	for i := range p.sampleCount {
		ticks[i] = float64(p.samples[i].tick)
		for phase, d := range p.samples[i].phases {
			phaseSum[phase] += d
		}
	}
	slices.Sort(ticks)

	s.AvgTickDuration = time.Duration(stat.Mean(ticks, nil))
	s.P90TickDuration = time.Duration(stat.Quantile(0.9, stat.Empirical, ticks, nil))
	s.MaxTickDuration = time.Duration(ticks[len(ticks)-1])
	for phase, sum := range phaseSum {
		avg := sum / time.Duration(p.sampleCount)
		s.PhaseAvg[phase] = avg
		if s.AvgTickDuration > 0 {
			s.PhasePct[phase] = float64(avg) / float64(s.AvgTickDuration) * 100
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("p90_tick_us", s.P90TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for _, phase := range []string{PhaseDerive, PhaseMovement, PhaseRemodel} {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Tick        int32   `csv:"tick"`
	AvgTickUS   int64   `csv:"avg_tick_us"`
	P90TickUS   int64   `csv:"p90_tick_us"`
	MaxTickUS   int64   `csv:"max_tick_us"`
	TicksPerSec float64 `csv:"ticks_per_sec"`
	DerivePct   float64 `csv:"derive_physics_pct"`
	MovementPct float64 `csv:"movement_pct"`
	RemodelPct  float64 `csv:"remodel_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(tick int32) PerfStatsCSV {
	return PerfStatsCSV{
		Tick:        tick,
		AvgTickUS:   s.AvgTickDuration.Microseconds(),
		P90TickUS:   s.P90TickDuration.Microseconds(),
		MaxTickUS:   s.MaxTickDuration.Microseconds(),
		TicksPerSec: s.TicksPerSecond,
		DerivePct:   s.PhasePct[PhaseDerive],
		MovementPct: s.PhasePct[PhaseMovement],
		RemodelPct:  s.PhasePct[PhaseRemodel],
	}
}
