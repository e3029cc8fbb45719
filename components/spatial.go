package components

// Position represents a creature's world position.
type Position struct {
	X, Y float32
}

// Velocity represents a creature's velocity in world units per second.
type Velocity struct {
	X, Y float32
}

// Rotation represents a creature's heading.
type Rotation struct {
	Heading float32 // radians
}
