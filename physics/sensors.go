package physics

import (
	"log/slog"
	"slices"

	"github.com/pthm-cable/bodygraph/body"
)

// Sensor is one sensing organ in the body.
type Sensor struct {
	Node     body.NodeID
	Range    float64
	Spectrum []string
}

// SensorSuite summarizes what a body can perceive.
type SensorSuite struct {
	Sensors         []Sensor
	MaxRange        float64
	Spectra         []string // sorted, unique
	VisionBonus     float64  // summed head vision bonus
	Bioluminescence float64
}

// DeriveSensors collects every module with a sensor range, in walk order.
func DeriveSensors(g *body.Graph) SensorSuite {
	var s SensorSuite
	for id, m := range g.IterModules() {
		s.Bioluminescence += m.Stats.Bioluminescence
		if h, ok := m.Traits.(body.HeadTraits); ok {
			s.VisionBonus += h.VisionBonus
		}
		if m.Stats.SensorRange <= 0 {
			continue
		}
		s.Sensors = append(s.Sensors, Sensor{
			Node:     id,
			Range:    m.Stats.SensorRange,
			Spectrum: slices.Clone(m.Stats.SensorSpectrum),
		})
		s.MaxRange = max(s.MaxRange, m.Stats.SensorRange)
		s.Spectra = append(s.Spectra, m.Stats.SensorSpectrum...)
	}
	slices.Sort(s.Spectra)
	s.Spectra = slices.Compact(s.Spectra)
	return s
}

// Senses reports whether any sensor covers the given spectrum.
func (s SensorSuite) Senses(spectrum string) bool {
	_, found := slices.BinarySearch(s.Spectra, spectrum)
	return found
}

// RangeFor returns the longest range among sensors covering spectrum.
func (s SensorSuite) RangeFor(spectrum string) float64 {
	var r float64
	for _, sn := range s.Sensors {
		if slices.Contains(sn.Spectrum, spectrum) {
			r = max(r, sn.Range)
		}
	}
	return r
}

// LogValue implements slog.LogValuer for structured logging.
func (s SensorSuite) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("sensors", len(s.Sensors)),
		slog.Float64("max_range", s.MaxRange),
		slog.Any("spectra", s.Spectra),
	)
}
