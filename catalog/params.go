package catalog

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/bodygraph/body"
)

// Drag weights applied to the three cross-sections of a module.
const (
	frontalDragWeight = 1.0
	lateralDragWeight = 0.5
	dorsalDragWeight  = 0.35
)

// statSetters maps override names accepted in Params.Stats to the field they set.
var statSetters = map[string]func(s *body.ModuleStats, v float64){
	"mass":            func(s *body.ModuleStats, v float64) { s.Mass = v },
	"volume":          func(s *body.ModuleStats, v float64) { s.Volume = v },
	"drag_area":       func(s *body.ModuleStats, v float64) { s.DragArea = v },
	"energy_cost":     func(s *body.ModuleStats, v float64) { s.EnergyCost = v },
	"integrity":       func(s *body.ModuleStats, v float64) { s.Integrity = v },
	"power_output":    func(s *body.ModuleStats, v float64) { s.PowerOutput = v },
	"thrust":          func(s *body.ModuleStats, v float64) { s.Thrust = v },
	"grip":            func(s *body.ModuleStats, v float64) { s.Grip = v },
	"sensor_range":    func(s *body.ModuleStats, v float64) { s.SensorRange = v },
	"bioluminescence": func(s *body.ModuleStats, v float64) { s.Bioluminescence = v },
	"nerve_load":      func(s *body.ModuleStats, v float64) { s.NerveLoad = v },
	"buoyancy_bias":   func(s *body.ModuleStats, v float64) { s.BuoyancyBias = v },
	"lift":            func(s *body.ModuleStats, v float64) { s.Lift = v },
}

// StatNames returns the names accepted as stat overrides, sorted.
func StatNames() []string {
	return slices.Sorted(maps.Keys(statSetters))
}

// scaleOrDefault treats zero as "unset". Negative or non-finite values are invalid.
func scaleOrDefault(name string, v float64) (float64, error) {
	switch {
	case v == 0:
		return 1, nil
	case v < 0 || math.IsNaN(v) || math.IsInf(v, 0):
		return 0, fmt.Errorf("%s must be positive, got %v", name, v)
	}
	return v, nil
}

// presetFactory returns the factory closure instantiating p.
func (r *Registry) presetFactory(p preset) Factory {
	return func(key string, params body.Params) (body.Module, error) {
		scale, err := scaleOrDefault("size_scale", params.SizeScale)
		if err != nil {
			return body.Module{}, err
		}
		quality, err := scaleOrDefault("quality", params.Quality)
		if err != nil {
			return body.Module{}, err
		}

		m := body.Module{
			Key:      key,
			Name:     p.name,
			Material: p.material,
			Size:     r3.Scale(scale, p.size),
			Stats:    p.stats,
			Sockets:  slices.Clone(p.sockets),
			Params:   params.Clone(),
		}
		m.Stats.SensorSpectrum = slices.Clone(p.stats.SensorSpectrum)

		m.Stats.Integrity *= quality
		m.Stats.Thrust *= quality
		m.Stats.PowerOutput *= quality
		m.Stats.SensorRange *= quality

		if params.Material != "" {
			m.Material = params.Material
		}
		if len(params.Spectrum) > 0 {
			if p.stats.SensorRange == 0 {
				return body.Module{}, fmt.Errorf("spectrum given for non-sensing module %s", p.name)
			}
			m.Stats.SensorSpectrum = slices.Clone(params.Spectrum)
		}

		cat := p.traits(m.Stats, quality).Category()
		m.Stats.Volume = m.Size.X * m.Size.Y * m.Size.Z
		m.Stats.DragArea = r.Streamlining(cat) * (frontalDragWeight*m.FrontalArea() +
			lateralDragWeight*m.LateralArea() +
			dorsalDragWeight*m.DorsalArea())
		m.Stats.NerveLoad = r.NerveLoad(cat)

		for _, name := range slices.Sorted(maps.Keys(params.Stats)) {
			set, ok := statSetters[name]
			if !ok {
				return body.Module{}, fmt.Errorf("unknown stat override %q (known: %s)", name, strings.Join(StatNames(), ", "))
			}
			v := params.Stats[name]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return body.Module{}, fmt.Errorf("stat override %q is not finite", name)
			}
			set(&m.Stats, v)
		}
		if m.Stats.Mass < 0 {
			return body.Module{}, fmt.Errorf("mass must not be negative, got %v", m.Stats.Mass)
		}

		m.Traits = p.traits(m.Stats, quality)
		return m, nil
	}
}
