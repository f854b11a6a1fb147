package component

import "github.com/jakecoffman/cp"

// ShapeDef describes one collision shape relative to the body origin.
// Radius > 0 selects a circle, otherwise a Width x Height box.
type ShapeDef struct {
	Radius float64
	Width  float64
	Height float64
	Offset cp.Vector
}

// Collision describes an entity's collision volume and carries its event
// registry. An entity with a Collision and no RigidBody is a trigger
// volume: a kinematic sensor that reports overlap without response.
type Collision struct {
	Shape ShapeDef

	// Children adds further shapes to the same body, making it compound.
	// Offsets are body-local.
	Children []ShapeDef

	// Trigger marks the volume as a sensor even when the entity also
	// carries a RigidBody.
	Trigger bool

	// Dirty asks the next compound sync to rebuild the backend shapes.
	Dirty bool

	Events *CollisionEvents
}

// Compound reports whether the volume has child shapes.
func (c *Collision) Compound() bool {
	return c != nil && len(c.Children) > 0
}

var CollisionComponent = New[*Collision]()
