package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/impulse/contact"
	"github.com/milk9111/impulse/ecs"
	"github.com/milk9111/impulse/ecs/component"
)

// ChipmunkBackend is the registered name of the Chipmunk2D backend.
const ChipmunkBackend = "chipmunk"

// Every shape we create shares one collision type so a single handler
// pair observes every arbiter.
const collisionTypeEntity cp.CollisionType = 1

func init() {
	RegisterBackend(ChipmunkBackend, newChipmunkBackend)
}

// chipmunkBody ties a cp body and its shapes back to the owning entity.
// Stored in cp's UserData so arbiters and ray hits resolve to entities.
type chipmunkBody struct {
	entity  ecs.Entity
	body    *cp.Body
	shapes  []*cp.Shape
	trigger bool
	static  bool
	filter  cp.ShapeFilter

	friction   float64
	elasticity float64
}

type chipmunkBackend struct {
	space   *cp.Space
	gravity cp.Vector // last value pushed into the space

	accum     float64
	onSubStep func()

	manifolds []Manifold
}

func newChipmunkBackend(cfg Config) (Backend, error) {
	space := cp.NewSpace()
	space.Iterations = cfg.Iterations
	space.SetGravity(cfg.Gravity)

	b := &chipmunkBackend{
		space:   space,
		gravity: cfg.Gravity,
	}

	handler := space.NewCollisionHandler(collisionTypeEntity, collisionTypeEntity)
	handler.UserData = b
	handler.PreSolveFunc = func(arb *cp.Arbiter, _ *cp.Space, userData interface{}) bool {
		be, ok := userData.(*chipmunkBackend)
		if !ok || be == nil {
			return true
		}
		be.recordSensorPair(arb)
		return true
	}
	handler.PostSolveFunc = func(arb *cp.Arbiter, _ *cp.Space, userData interface{}) {
		// cp v1.2.1 passes the *CollisionHandler itself (not its
		// UserData) to PostSolve on the contact-solve path.
		if h, ok := userData.(*cp.CollisionHandler); ok && h != nil {
			userData = h.UserData
		}
		be, ok := userData.(*chipmunkBackend)
		if !ok || be == nil {
			return
		}
		be.recordContactPair(arb)
	}

	return b, nil
}

func bodyRef(body *cp.Body) *chipmunkBody {
	if body == nil {
		return nil
	}
	ref, _ := body.UserData.(*chipmunkBody)
	return ref
}

// recordSensorPair snapshots a trigger overlap. PreSolve fires once per
// sub-step for every touching pair; physical pairs are left for
// PostSolve, where impulses are valid.
func (b *chipmunkBackend) recordSensorPair(arb *cp.Arbiter) {
	bodyA, bodyB := arb.Bodies()
	refA, refB := bodyRef(bodyA), bodyRef(bodyB)
	if refA == nil || refB == nil {
		// Orphaned native body, nothing to resolve.
		return
	}
	if !refA.trigger && !refB.trigger {
		return
	}
	b.manifolds = append(b.manifolds, Manifold{
		A:        refA.entity,
		B:        refB.entity,
		TriggerA: refA.trigger,
		TriggerB: refB.trigger,
	})
}

// recordContactPair snapshots a physical contact manifold. A manifold
// with zero discrete points is not recorded: exit edges come from the
// transient-map diff, never from an empty-but-present manifold.
func (b *chipmunkBackend) recordContactPair(arb *cp.Arbiter) {
	bodyA, bodyB := arb.Bodies()
	refA, refB := bodyRef(bodyA), bodyRef(bodyB)
	if refA == nil || refB == nil {
		return
	}
	set := arb.ContactPointSet()
	if set.Count == 0 {
		return
	}

	// cp's normal points from A toward B; listeners expect it pointing
	// away from the other body's surface.
	normal := set.Normal.Neg()
	share := arb.TotalImpulse().Length() / float64(set.Count)

	m := Manifold{
		A:        refA.entity,
		B:        refB.entity,
		TriggerA: refA.trigger,
		TriggerB: refB.trigger,
		Count:    set.Count,
	}
	for i := 0; i < set.Count && i < len(m.Points); i++ {
		p := set.Points[i]
		m.Points[i] = ManifoldPoint{
			WorldA:  p.PointA,
			WorldB:  p.PointB,
			LocalA:  bodyA.WorldToLocal(p.PointA),
			LocalB:  bodyB.WorldToLocal(p.PointB),
			Normal:  normal,
			Impulse: share,
		}
	}
	b.manifolds = append(b.manifolds, m)
}

func (b *chipmunkBackend) CreateBody(e ecs.Entity, rb *component.RigidBody, col *component.Collision, pos cp.Vector, angle float64) (BodyHandle, error) {
	if b == nil || b.space == nil {
		return nil, fmt.Errorf("physics: chipmunk backend not initialized")
	}
	if col == nil {
		return nil, fmt.Errorf("physics: entity %v has no collision volume", e)
	}

	trigger := rb == nil || rb.Trigger || col.Trigger
	kind := component.BodyKinematic // collision-only volumes are kinematic sensors
	if rb != nil {
		kind = rb.Kind
	}

	ref := &chipmunkBody{
		entity:     e,
		trigger:    trigger,
		friction:   0.6,
		elasticity: 0,
		filter:     cp.SHAPE_FILTER_ALL,
	}
	if rb != nil {
		if rb.Friction > 0 {
			ref.friction = rb.Friction
		}
		ref.elasticity = rb.Elasticity
		ref.filter = bodyFilter(rb)
	}

	var body *cp.Body
	switch kind {
	case component.BodyStatic:
		body = cp.NewStaticBody()
		ref.static = true
	case component.BodyKinematic:
		body = cp.NewKinematicBody()
	default:
		mass := 1.0
		if rb != nil && rb.Mass > 0 {
			mass = rb.Mass
		}
		body = cp.NewBody(mass, volumeMoment(mass, col))
	}

	body.SetPosition(pos)
	body.SetAngle(angle)
	if rb != nil && kind != component.BodyStatic {
		body.SetVelocityVector(rb.Velocity)
		body.SetAngularVelocity(rb.AngularVelocity)
	}
	body.UserData = ref

	b.space.AddBody(body)
	ref.body = body
	b.buildShapes(ref, col)
	return ref, nil
}

// buildShapes attaches the volume's shapes to the body. Existing shapes
// are removed first, so compound syncs can reuse it.
func (b *chipmunkBackend) buildShapes(ref *chipmunkBody, col *component.Collision) {
	for _, shape := range ref.shapes {
		b.space.RemoveShape(shape)
	}
	ref.shapes = ref.shapes[:0]

	defs := append([]component.ShapeDef{col.Shape}, col.Children...)
	for _, def := range defs {
		shape := buildShape(ref.body, def)
		if shape == nil {
			continue
		}
		shape.SetFriction(ref.friction)
		shape.SetElasticity(ref.elasticity)
		shape.SetCollisionType(collisionTypeEntity)
		shape.SetSensor(ref.trigger)
		shape.SetFilter(ref.filter)
		b.space.AddShape(shape)
		ref.shapes = append(ref.shapes, shape)
	}
}

func buildShape(body *cp.Body, def component.ShapeDef) *cp.Shape {
	if body == nil {
		return nil
	}
	if def.Radius > 0 {
		return cp.NewCircle(body, def.Radius, def.Offset)
	}
	w, h := def.Width, def.Height
	if w <= 0 || h <= 0 {
		return nil
	}
	bb := cp.BB{
		L: def.Offset.X - w/2,
		B: def.Offset.Y - h/2,
		R: def.Offset.X + w/2,
		T: def.Offset.Y + h/2,
	}
	return cp.NewBox2(body, bb, 0)
}

// volumeMoment sums per-shape moments; homogeneous mass split across the
// main shape and children.
func volumeMoment(mass float64, col *component.Collision) float64 {
	defs := append([]component.ShapeDef{col.Shape}, col.Children...)
	per := mass / float64(len(defs))
	moment := 0.0
	for _, def := range defs {
		if def.Radius > 0 {
			moment += cp.MomentForCircle(per, 0, def.Radius, def.Offset)
			continue
		}
		w, h := def.Width, def.Height
		if w <= 0 || h <= 0 {
			continue
		}
		moment += cp.MomentForBox(per, w, h)
	}
	if moment <= 0 {
		moment = cp.MomentForBox(mass, 1, 1)
	}
	return moment
}

func bodyFilter(rb *component.RigidBody) cp.ShapeFilter {
	cat := rb.Category
	if cat == 0 {
		cat = cp.ALL_CATEGORIES
	}
	mask := rb.Mask
	if mask == 0 {
		mask = cp.ALL_CATEGORIES
	}
	return cp.NewShapeFilter(rb.Group, cat, mask)
}

func (b *chipmunkBackend) DestroyBody(h BodyHandle) {
	ref, ok := h.(*chipmunkBody)
	if !ok || ref == nil || b == nil || b.space == nil {
		return
	}
	for _, shape := range ref.shapes {
		b.space.RemoveShape(shape)
	}
	ref.shapes = nil
	if ref.body != nil {
		b.space.RemoveBody(ref.body)
		ref.body.UserData = nil
		ref.body = nil
	}
}

func (b *chipmunkBackend) Gravity() cp.Vector {
	if b == nil {
		return cp.Vector{}
	}
	return b.gravity
}

// SetGravity pushes the vector into the space only when it changed.
func (b *chipmunkBackend) SetGravity(g cp.Vector) {
	if b == nil || b.space == nil {
		return
	}
	if g.X == b.gravity.X && g.Y == b.gravity.Y {
		return
	}
	b.gravity = g
	b.space.SetGravity(g)
}

func (b *chipmunkBackend) Transform(h BodyHandle) (cp.Vector, float64) {
	ref, ok := h.(*chipmunkBody)
	if !ok || ref == nil || ref.body == nil {
		return cp.Vector{}, 0
	}
	return ref.body.Position(), ref.body.Angle()
}

func (b *chipmunkBackend) SetTransform(h BodyHandle, pos cp.Vector, angle float64) {
	ref, ok := h.(*chipmunkBody)
	if !ok || ref == nil || ref.body == nil {
		return
	}
	ref.body.SetPosition(pos)
	ref.body.SetAngle(angle)
	if ref.static {
		for _, shape := range ref.shapes {
			shape.CacheBB()
		}
	}
}

func (b *chipmunkBackend) Velocity(h BodyHandle) (cp.Vector, float64) {
	ref, ok := h.(*chipmunkBody)
	if !ok || ref == nil || ref.body == nil {
		return cp.Vector{}, 0
	}
	return ref.body.Velocity(), ref.body.AngularVelocity()
}

func (b *chipmunkBackend) SetVelocity(h BodyHandle, linear cp.Vector, angular float64) {
	ref, ok := h.(*chipmunkBody)
	if !ok || ref == nil || ref.body == nil {
		return
	}
	ref.body.SetVelocityVector(linear)
	ref.body.SetAngularVelocity(angular)
}

func (b *chipmunkBackend) SyncCompound(h BodyHandle, col *component.Collision) {
	ref, ok := h.(*chipmunkBody)
	if !ok || ref == nil || ref.body == nil || col == nil || b == nil || b.space == nil {
		return
	}
	b.buildShapes(ref, col)
}

// Step runs the fixed sub-step loop, invoking the registered detection
// callback after each internal step. Leftover time carries over; the
// accumulator is clamped so a long frame cannot snowball.
func (b *chipmunkBackend) Step(dt float64, maxSubSteps int, fixedTimeStep float64) {
	if b == nil || b.space == nil || dt <= 0 {
		return
	}
	if fixedTimeStep <= 0 {
		fixedTimeStep = dt
	}
	if maxSubSteps <= 0 {
		maxSubSteps = 1
	}

	b.accum += dt
	steps := 0
	for b.accum >= fixedTimeStep && steps < maxSubSteps {
		b.space.Step(fixedTimeStep)
		b.accum -= fixedTimeStep
		steps++
		if b.onSubStep != nil {
			b.onSubStep()
		}
	}
	if max := fixedTimeStep * float64(maxSubSteps); b.accum > max {
		b.accum = max
	}
}

// OnSubStep registers the per-sub-step detection callback.
func (b *chipmunkBackend) OnSubStep(fn func()) {
	if b == nil {
		return
	}
	b.onSubStep = fn
}

// DrainManifolds moves the pending snapshots into buf and clears the
// internal buffer for the next sub-step.
func (b *chipmunkBackend) DrainManifolds(buf []Manifold) []Manifold {
	if b == nil {
		return buf[:0]
	}
	buf = append(buf[:0], b.manifolds...)
	b.manifolds = b.manifolds[:0]
	return buf
}

func rayFilter(group, mask uint) cp.ShapeFilter {
	if group == 0 {
		group = cp.ALL_CATEGORIES
	}
	if mask == 0 {
		mask = cp.ALL_CATEGORIES
	}
	return cp.NewShapeFilter(cp.NO_GROUP, group, mask)
}

func (b *chipmunkBackend) RayCastFirst(start, end cp.Vector, group, mask uint) (contact.RaycastResult, bool) {
	if b == nil || b.space == nil {
		return contact.RaycastResult{}, false
	}
	info := b.space.SegmentQueryFirst(start, end, 0, rayFilter(group, mask))
	if info.Shape == nil {
		return contact.RaycastResult{}, false
	}
	ref := bodyRef(info.Shape.Body())
	if ref == nil || !ref.entity.Valid() {
		// A body nothing owns is treated as a miss.
		return contact.RaycastResult{}, false
	}
	return contact.RaycastResult{
		Entity:      ref.entity,
		Point:       info.Point,
		Normal:      info.Normal,
		HitFraction: info.Alpha,
	}, true
}

func (b *chipmunkBackend) RayCastAll(start, end cp.Vector, group, mask uint, visit func(hit contact.RaycastResult)) {
	if b == nil || b.space == nil || visit == nil {
		return
	}
	b.space.SegmentQuery(start, end, 0, rayFilter(group, mask), func(shape *cp.Shape, point, normal cp.Vector, alpha float64, _ interface{}) {
		ref := bodyRef(shape.Body())
		if ref == nil || !ref.entity.Valid() {
			return
		}
		visit(contact.RaycastResult{
			Entity:      ref.entity,
			Point:       point,
			Normal:      normal,
			HitFraction: alpha,
		})
	}, nil)
}
