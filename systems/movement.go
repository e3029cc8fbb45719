package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/bodygraph/components"
)

// Bounds represents the world bounds.
type Bounds struct {
	Width, Height float32
}

// MovementSystem integrates velocity from thrust and hydrodynamic drag.
type MovementSystem struct {
	filter       ecs.Filter5[components.Position, components.Velocity, components.Rotation, components.Physics, components.Organism]
	bounds       Bounds
	fluidDensity float64
}

// NewMovementSystem creates a new movement system.
func NewMovementSystem(w *ecs.World, bounds Bounds, fluidDensity float64) *MovementSystem {
	return &MovementSystem{
		filter:       *ecs.NewFilter5[components.Position, components.Velocity, components.Rotation, components.Physics, components.Organism](w),
		bounds:       bounds,
		fluidDensity: fluidDensity,
	}
}

// Update advances every creature by dt seconds.
func (s *MovementSystem) Update(w *ecs.World, dt float32) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, rot, phys, org := query.Get()
		org.Age += dt
		org.ReproCooldown = max(0, org.ReproCooldown-dt)

		// Thrust along heading
		accel := float32(phys.Body.PropulsionAcceleration(float64(org.Throttle)))
		sin, cos := math.Sincos(float64(rot.Heading))
		vel.X += float32(cos) * accel * dt
		vel.Y += float32(sin) * accel * dt

		// Drag opposes motion and never reverses it
		speed := float32(math.Hypot(float64(vel.X), float64(vel.Y)))
		if speed > 0 {
			decel := float32(phys.Body.DragDeceleration(float64(speed), s.fluidDensity)) * dt
			scale := max(0, speed-decel) / speed
			vel.X *= scale
			vel.Y *= scale
		}

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt

		// Horizontal wrap-around
		if pos.X < 0 {
			pos.X += s.bounds.Width
		}
		if pos.X > s.bounds.Width {
			pos.X -= s.bounds.Width
		}

		// Vertical bounds (no wrap - top and bottom are walls)
		if pos.Y < 0 {
			pos.Y = 0
			vel.Y *= -0.3
		}
		if pos.Y > s.bounds.Height {
			pos.Y = s.bounds.Height
			vel.Y *= -0.3
		}
	}
}
