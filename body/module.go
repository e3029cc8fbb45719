package body

import (
	"fmt"
	"maps"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Category identifies a module variant.
type Category uint8

const (
	CategoryCore Category = iota
	CategoryHead
	CategoryLimb
	CategoryPropulsion
	CategorySensory

	CategoryUnknown Category = 255
)

// Categories lists every category in declaration order.
var Categories = []Category{CategoryCore, CategoryHead, CategoryLimb, CategoryPropulsion, CategorySensory}

func (c Category) String() string {
	switch c {
	case CategoryCore:
		return "core"
	case CategoryHead:
		return "head"
	case CategoryLimb:
		return "limb"
	case CategoryPropulsion:
		return "propulsion"
	case CategorySensory:
		return "sensory"
	default:
		return "unknown"
	}
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown module category %q", s)
}

// ModuleStats is the physical stat record shared by every module variant.
type ModuleStats struct {
	Mass            float64
	Volume          float64
	DragArea        float64
	EnergyCost      float64
	Integrity       float64
	PowerOutput     float64
	Thrust          float64
	Grip            float64
	SensorRange     float64
	SensorSpectrum  []string
	Bioluminescence float64

	NerveLoad    float64 // nerve capacity consumed by this module
	BuoyancyBias float64 // >0 floats, <0 sinks
	Lift         float64 // lift coefficient for fin-like surfaces
}

// Params are the instantiation inputs a module was built from. They are plain
// values so a genome can carry them without referencing module internals.
type Params struct {
	SizeScale float64            `json:"size_scale,omitempty" yaml:"size_scale,omitempty"`
	Quality   float64            `json:"quality,omitempty" yaml:"quality,omitempty"`
	Material  string             `json:"material,omitempty" yaml:"material,omitempty"`
	Spectrum  []string           `json:"spectrum,omitempty" yaml:"spectrum,omitempty"`
	Stats     map[string]float64 `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	out := p
	out.Spectrum = slices.Clone(p.Spectrum)
	out.Stats = maps.Clone(p.Stats)
	return out
}

// Traits is the variant-specific payload of a module.
type Traits interface {
	Category() Category
	traits() // restricts implementations to this package
}

// CoreTraits belong to the torso that anchors the body.
type CoreTraits struct {
	EnergyCapacity float64
	CargoSlots     int
}

// HeadTraits belong to the sensory and control hub.
type HeadTraits struct {
	VisionBonus    float64
	CognitionBonus float64
}

// LimbTraits belong to appendages used for locomotion or manipulation.
type LimbTraits struct {
	Thrust float64
	Grip   float64
	Lift   float64
}

// PropulsionTraits belong to modules providing directional thrust.
type PropulsionTraits struct {
	ThrustPower    float64
	FuelEfficiency float64
}

// SensoryTraits belong to dedicated detection organs.
type SensoryTraits struct {
	DetectionRange float64
	Spectrum       []string
}

func (CoreTraits) Category() Category       { return CategoryCore }
func (HeadTraits) Category() Category       { return CategoryHead }
func (LimbTraits) Category() Category       { return CategoryLimb }
func (PropulsionTraits) Category() Category { return CategoryPropulsion }
func (SensoryTraits) Category() Category    { return CategorySensory }

func (CoreTraits) traits()       {}
func (HeadTraits) traits()       {}
func (LimbTraits) traits()       {}
func (PropulsionTraits) traits() {}
func (SensoryTraits) traits()    {}

// Module is one body part: a shared stats record, the sockets it offers to
// children, and a variant payload.
type Module struct {
	Key      string // catalog key used to instantiate it
	Name     string
	Material string
	Size     r3.Vec // width, height, length
	Stats    ModuleStats
	Sockets  []AttachmentPoint
	Params   Params
	Traits   Traits
}

// Category returns the module variant, or CategoryUnknown when Traits is unset.
func (m Module) Category() Category {
	if m.Traits == nil {
		return CategoryUnknown
	}
	return m.Traits.Category()
}

// Socket returns the attachment point with the given id.
func (m Module) Socket(id string) (AttachmentPoint, bool) {
	for _, p := range m.Sockets {
		if p.ID == id {
			return p, true
		}
	}
	return AttachmentPoint{}, false
}

// FrontalArea is the width x height cross-section.
func (m Module) FrontalArea() float64 {
	return max(0, m.Size.X*m.Size.Y)
}

// LateralArea is the height x length cross-section.
func (m Module) LateralArea() float64 {
	return max(0, m.Size.Y*m.Size.Z)
}

// DorsalArea is the width x length cross-section.
func (m Module) DorsalArea() float64 {
	return max(0, m.Size.X*m.Size.Z)
}
