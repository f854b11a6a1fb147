// Package contact holds the record types handed to collision event
// listeners and ray queries.
package contact

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/impulse/ecs"
)

// Point describes one discrete contact between two bodies.
//
// Point values are pooled and overwritten every step: listeners may read
// them during their own synchronous invocation but must not retain them.
// Local fields are body-local, the rest are world space. Normal points
// away from the other body's surface. Impulse is the accumulated
// constraint impulse for the last sub-step, never negative.
type Point struct {
	LocalPoint      cp.Vector
	LocalPointOther cp.Vector
	Point           cp.Vector
	PointOther      cp.Vector
	Normal          cp.Vector
	Impulse         float64
}

// Result aggregates one entity's contact points against a single other
// entity for the current sub-step. Pooled and ephemeral, like Point.
type Result struct {
	Other  ecs.Entity
	Points []*Point
}

// Reset re-targets a pooled Result and drops its points.
func (r *Result) Reset(other ecs.Entity) {
	if r == nil {
		return
	}
	r.Other = other
	r.Points = r.Points[:0]
}

// SingleResult carries one representative contact for the global pairwise
// event. Pooled. The zero value is the reusable sentinel: no entities,
// zero impulse, all vectors zero.
type SingleResult struct {
	A ecs.Entity
	B ecs.Entity

	LocalPoint      cp.Vector
	LocalPointOther cp.Vector
	Point           cp.Vector
	PointOther      cp.Vector
	Normal          cp.Vector
	Impulse         float64
}

// RaycastResult reports one intersection of a ray segment with an
// entity's collision volume. Not pooled; callers may retain it.
// HitFraction is the fractional distance along the segment in [0, 1].
type RaycastResult struct {
	Entity      ecs.Entity
	Point       cp.Vector
	Normal      cp.Vector
	HitFraction float64
}
