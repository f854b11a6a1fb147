package component

import "github.com/jakecoffman/cp"

// Transform is an entity's world-space pose.
type Transform struct {
	Position cp.Vector
	Angle    float64
}

var TransformComponent = New[*Transform]()
