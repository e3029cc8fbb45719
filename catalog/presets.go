package catalog

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/bodygraph/body"
)

// Materials used by the preset parts.
const (
	BioAlloy    = "bio-alloy"
	Chitin      = "chitin"
	Ceramic     = "ceramic"
	FlexPolymer = "flex-polymer"
	Titanium    = "titanium"
)

// preset is the template a factory closure instantiates.
type preset struct {
	key      string
	name     string
	material string
	size     r3.Vec
	stats    body.ModuleStats
	sockets  []body.AttachmentPoint
	traits   func(s body.ModuleStats, quality float64) body.Traits
}

func presets() []preset {
	return []preset{
		{
			key:      "core",
			name:     "TrunkCore",
			material: BioAlloy,
			size:     r3.Vec{X: 2.8, Y: 1.8, Z: 7.2},
			stats: body.ModuleStats{
				Mass:         34,
				EnergyCost:   3.5,
				Integrity:    140,
				PowerOutput:  60,
				BuoyancyBias: 6,
			},
			sockets: []body.AttachmentPoint{
				{
					ID:           "head_socket",
					Accepts:      []body.Category{body.CategoryHead},
					Materials:    []string{BioAlloy, Chitin},
					MaxChildMass: 18,
					Offset:       r2.Vec{Y: 0.5},
					Angle:        90,
					Joint:        body.Joint{Kind: body.JointFixed},
				},
				{
					ID:           "dorsal_mount",
					Accepts:      []body.Category{body.CategorySensory},
					Materials:    []string{Ceramic, BioAlloy},
					MaxChildMass: 5,
					Offset:       r2.Vec{Y: 0.25},
					Angle:        90,
					Joint: body.Joint{
						Kind:  body.JointBall,
						Swing: body.AngleRange{Min: -35, Max: 35},
						Twist: body.AngleRange{Min: -35, Max: 35},
					},
				},
				{
					ID:           "ventral_core",
					Accepts:      []body.Category{body.CategoryPropulsion, body.CategoryLimb},
					Materials:    []string{FlexPolymer, Titanium},
					MaxChildMass: 25,
					Offset:       r2.Vec{Y: -0.5},
					Angle:        -90,
					Joint:        body.Joint{Kind: body.JointHinge, Swing: body.AngleRange{Min: -20, Max: 20}},
				},
				lateralMount("lateral_mount_left", -1),
				lateralMount("lateral_mount_right", 1),
			},
			traits: func(_ body.ModuleStats, q float64) body.Traits {
				return body.CoreTraits{EnergyCapacity: 200 * q, CargoSlots: 2}
			},
		},
		{
			key:      "head",
			name:     "CephalonHead",
			material: BioAlloy,
			size:     r3.Vec{X: 1.6, Y: 1.2, Z: 4.2},
			stats: body.ModuleStats{
				Mass:         7.5,
				EnergyCost:   1.2,
				Integrity:    60,
				BuoyancyBias: 2,
			},
			sockets: []body.AttachmentPoint{
				{
					ID:           "cranial_sensor",
					Accepts:      []body.Category{body.CategorySensory},
					Materials:    []string{Ceramic},
					MaxChildMass: 4,
					Offset:       r2.Vec{X: 0.5},
					Joint:        body.Joint{Kind: body.JointFixed},
				},
			},
			traits: func(_ body.ModuleStats, q float64) body.Traits {
				return body.HeadTraits{VisionBonus: 45 * q, CognitionBonus: 12 * q}
			},
		},
		{
			key:      "fin",
			name:     "HydroFin",
			material: FlexPolymer,
			size:     r3.Vec{X: 2.4, Y: 0.6, Z: 5.2},
			stats: body.ModuleStats{
				Mass:         4.2,
				EnergyCost:   0.6,
				Integrity:    38,
				Thrust:       45,
				Grip:         5,
				Lift:         36,
				BuoyancyBias: 5,
			},
			sockets: []body.AttachmentPoint{
				{
					ID:           "proximal_joint",
					Accepts:      []body.Category{body.CategoryLimb},
					Materials:    []string{FlexPolymer},
					MaxChildMass: 6,
					Offset:       r2.Vec{X: 0.5},
					Clearance:    0.1,
					Joint:        body.Joint{Kind: body.JointHinge, Swing: body.AngleRange{Min: -30, Max: 30}},
				},
			},
			traits: func(s body.ModuleStats, _ float64) body.Traits {
				return body.LimbTraits{Thrust: s.Thrust, Grip: s.Grip, Lift: s.Lift}
			},
		},
		{
			key:      "thruster",
			name:     "TailThruster",
			material: Titanium,
			size:     r3.Vec{X: 2.1, Y: 1.2, Z: 6.0},
			stats: body.ModuleStats{
				Mass:         16,
				EnergyCost:   2.8,
				Integrity:    55,
				PowerOutput:  30,
				Thrust:       120,
				BuoyancyBias: -4,
			},
			sockets: []body.AttachmentPoint{
				{
					ID:           "tail_sensors",
					Accepts:      []body.Category{body.CategorySensory},
					Materials:    []string{Ceramic},
					MaxChildMass: 4,
					Offset:       r2.Vec{X: 0.5},
					Joint:        body.Joint{Kind: body.JointFixed},
				},
			},
			traits: func(s body.ModuleStats, _ float64) body.Traits {
				return body.PropulsionTraits{ThrustPower: s.Thrust, FuelEfficiency: 0.8}
			},
		},
		{
			key:      "sensor",
			name:     "SensorPod",
			material: Ceramic,
			size:     r3.Vec{X: 0.9, Y: 0.8, Z: 2.5},
			stats: body.ModuleStats{
				Mass:           1.4,
				EnergyCost:     0.4,
				Integrity:      22,
				SensorRange:    75,
				SensorSpectrum: []string{"light", "colour"},
				BuoyancyBias:   1,
			},
			traits: sensoryTraits,
		},
		{
			key:      "sonar",
			name:     "SonarPod",
			material: Ceramic,
			size:     r3.Vec{X: 1.0, Y: 0.9, Z: 2.8},
			stats: body.ModuleStats{
				Mass:           1.8,
				EnergyCost:     0.6,
				Integrity:      24,
				SensorRange:    110,
				SensorSpectrum: []string{"sonar"},
				BuoyancyBias:   1,
			},
			traits: sensoryTraits,
		},
	}
}

// lateralMount builds a flank socket; side is -1 for left and 1 for right.
func lateralMount(id string, side float64) body.AttachmentPoint {
	angle := 0.0
	if side < 0 {
		angle = 180
	}
	return body.AttachmentPoint{
		ID:           id,
		Accepts:      []body.Category{body.CategoryLimb},
		Materials:    []string{FlexPolymer},
		MaxChildMass: 12,
		Offset:       r2.Vec{X: 0.5 * side},
		Angle:        angle,
		Joint: body.Joint{
			Kind:      body.JointMuscle,
			Swing:     body.AngleRange{Min: -50, Max: 50},
			MaxTorque: 120,
		},
	}
}

func sensoryTraits(s body.ModuleStats, _ float64) body.Traits {
	return body.SensoryTraits{DetectionRange: s.SensorRange, Spectrum: s.SensorSpectrum}
}
