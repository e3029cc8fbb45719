package telemetry

import "log/slog"

// BodyRecord is one creature's body summary, written as a row of bodies.csv.
type BodyRecord struct {
	Tick        int32   `csv:"tick"`
	ID          uint32  `csv:"id"`
	Archetype   string  `csv:"archetype"`
	Generation  uint32  `csv:"generation"`
	Modules     int     `csv:"modules"`
	Mass        float64 `csv:"mass"`
	Volume      float64 `csv:"volume"`
	Density     float64 `csv:"density"`
	Drag        float64 `csv:"drag"`
	Thrust      float64 `csv:"thrust"`
	Turn        float64 `csv:"turn_authority"`
	Radius      float64 `csv:"radius"`
	NerveLoad   float64 `csv:"nerve_load"`
	SensorRange float64 `csv:"sensor_range"`
	Spectra     string  `csv:"spectra"` // '|' separated
	Speed       float64 `csv:"speed"`
}

// LogValue implements slog.LogValuer for structured logging.
func (r BodyRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("id", int(r.ID)),
		slog.String("archetype", r.Archetype),
		slog.Int("modules", r.Modules),
		slog.Float64("mass", r.Mass),
		slog.Float64("thrust", r.Thrust),
		slog.Float64("drag", r.Drag),
	)
}
