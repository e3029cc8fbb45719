package components

// Organism bundles identity, lineage and control state.
type Organism struct {
	ID         uint32  `inspect:"label"`
	Generation uint32  `inspect:"label"`
	Age        float32 `inspect:"label,fmt:%.1fs"` // seconds alive
	Throttle   float32 `inspect:"bar"`             // propulsion effort, -1..1

	ReproCooldown float32 // seconds until the creature may breed again
}
