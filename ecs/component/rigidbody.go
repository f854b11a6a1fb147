package component

import "github.com/jakecoffman/cp"

// BodyKind selects how the backend integrates a body.
type BodyKind int

const (
	// BodyDynamic bodies are integrated by the simulation.
	BodyDynamic BodyKind = iota
	// BodyKinematic bodies are driven by their entity transform and never
	// integrated.
	BodyKinematic
	// BodyStatic bodies never move.
	BodyStatic
)

func (k BodyKind) String() string {
	switch k {
	case BodyDynamic:
		return "dynamic"
	case BodyKinematic:
		return "kinematic"
	case BodyStatic:
		return "static"
	}
	return "unknown"
}

// RigidBody configures an entity's backend body and carries its collision
// event registry. Zero Mass defaults to 1 for dynamic bodies. Zero
// Category and Mask mean "collide with everything".
type RigidBody struct {
	Kind       BodyKind
	Mass       float64
	Friction   float64
	Elasticity float64

	// Trigger marks the body no-collision-response: it reports overlap
	// through triggerenter/triggerleave instead of contacts.
	Trigger bool

	Group    uint
	Category uint
	Mask     uint

	// Initial velocity passthrough, applied when the backend body is
	// created.
	Velocity        cp.Vector
	AngularVelocity float64

	Events *CollisionEvents
}

var RigidBodyComponent = New[*RigidBody]()
