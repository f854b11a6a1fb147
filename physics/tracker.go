package physics

import (
	"github.com/milk9111/impulse/contact"
	"github.com/milk9111/impulse/ecs"
	"github.com/milk9111/impulse/ecs/component"
)

// collisionRecord lists the entities currently touching one owner.
type collisionRecord struct {
	entity ecs.Entity
	others []ecs.Entity
}

func (r *collisionRecord) contains(e ecs.Entity) bool {
	if r == nil {
		return false
	}
	for _, o := range r.others {
		if o == e {
			return true
		}
	}
	return false
}

// ContactTracker owns the per-step collision bookkeeping and the pooled
// contact records. It is backend-agnostic: the persistent map survives
// across steps to detect enter/exit edges, while the transient map is
// fully rebuilt every step solely for that step's diff.
type ContactTracker struct {
	persistent map[ecs.Entity]*collisionRecord
	transient  map[ecs.Entity]*collisionRecord
	spare      []*collisionRecord

	points  pool[contact.Point]
	results pool[contact.Result]
	singles pool[contact.SingleResult]

	// isTrigger classifies an entity for exit-event routing. Injected by
	// the orchestrator so the tracker needs no registry of its own.
	isTrigger func(e ecs.Entity) bool
}

// NewContactTracker builds a tracker. isTrigger may be nil, in which case
// no entity is treated as a trigger volume.
func NewContactTracker(isTrigger func(e ecs.Entity) bool) *ContactTracker {
	return &ContactTracker{
		persistent: map[ecs.Entity]*collisionRecord{},
		transient:  map[ecs.Entity]*collisionRecord{},
		isTrigger:  isTrigger,
	}
}

// HasContactEvent reports whether the entity's collision-volume or
// rigid-body component has at least one contact, collisionstart or
// collisionend listener. Pure query, no side effect.
func (t *ContactTracker) HasContactEvent(w *ecs.World, e ecs.Entity) bool {
	if t == nil || w == nil {
		return false
	}
	if col, ok := component.Get(w, e, component.CollisionComponent); ok && col != nil && col.Events.HasContactEvents() {
		return true
	}
	if rb, ok := component.Get(w, e, component.RigidBodyComponent); ok && rb != nil && rb.Events.HasContactEvents() {
		return true
	}
	return false
}

// StoreCollision records that entity touches other this step. It inserts
// other into the persistent record only if absent and reports whether the
// insert was fresh; the transient record gets an unconditional append
// (duplicates allowed there, only containment matters for the diff).
func (t *ContactTracker) StoreCollision(entity, other ecs.Entity) bool {
	if t == nil {
		return false
	}
	isNew := false
	rec := t.persistent[entity]
	if rec == nil {
		rec = &collisionRecord{entity: entity}
		t.persistent[entity] = rec
	}
	if !rec.contains(other) {
		rec.others = append(rec.others, other)
		isNew = true
	}

	fr := t.transient[entity]
	if fr == nil {
		fr = t.spareRecord(entity)
		t.transient[entity] = fr
	}
	fr.others = append(fr.others, other)
	return isNew
}

// ResetTransient clears this step's observation map, recycling its
// records for the next step.
func (t *ContactTracker) ResetTransient() {
	if t == nil {
		return
	}
	for k, rec := range t.transient {
		rec.others = rec.others[:0]
		t.spare = append(t.spare, rec)
		delete(t.transient, k)
	}
}

func (t *ContactTracker) spareRecord(entity ecs.Entity) *collisionRecord {
	if n := len(t.spare); n > 0 {
		rec := t.spare[n-1]
		t.spare = t.spare[:n-1]
		rec.entity = entity
		return rec
	}
	return &collisionRecord{entity: entity}
}

// CleanOldCollisions diffs the persistent map against this step's
// transient map and fires exit notifications for every pair that
// disappeared. Safe to call with an empty transient map, which means
// "everything ended". Persistent records left with no others are deleted.
func (t *ContactTracker) CleanOldCollisions(w *ecs.World) {
	if t == nil {
		return
	}
	for owner, rec := range t.persistent {
		frame := t.transient[owner]
		for i := len(rec.others) - 1; i >= 0; i-- {
			other := rec.others[i]
			if frame.contains(other) {
				continue
			}
			rec.others = append(rec.others[:i], rec.others[i+1:]...)
			t.fireSeparation(w, owner, other)
		}
		if len(rec.others) == 0 {
			delete(t.persistent, owner)
		}
	}
}

// fireSeparation routes one exit edge. Trigger owners get triggerleave on
// their collision volume and on the other entity's rigid body; plain
// pairs get collisionend on the owner's components, unless the other side
// is itself a trigger. Component presence is re-checked on every access
// because listeners may have mutated the world.
func (t *ContactTracker) fireSeparation(w *ecs.World, owner, other ecs.Entity) {
	if w == nil {
		return
	}
	if t.isTrigger != nil && t.isTrigger(owner) {
		if col, ok := component.Get(w, owner, component.CollisionComponent); ok && col != nil {
			col.Events.FireTriggerLeave(other)
		}
		if rb, ok := component.Get(w, other, component.RigidBodyComponent); ok && rb != nil {
			rb.Events.FireTriggerLeave(owner)
		}
		return
	}
	if t.isTrigger != nil && t.isTrigger(other) {
		// Trigger pairs never see collisionend.
		return
	}
	if rb, ok := component.Get(w, owner, component.RigidBodyComponent); ok && rb != nil {
		rb.Events.FireCollisionEnd(other)
	}
	if col, ok := component.Get(w, owner, component.CollisionComponent); ok && col != nil {
		col.Events.FireCollisionEnd(other)
	}
}

// Touching reports whether other is in entity's persistent record.
func (t *ContactTracker) Touching(entity, other ecs.Entity) bool {
	if t == nil {
		return false
	}
	return t.persistent[entity].contains(other)
}

// AcquirePoint hands out a pooled contact point for this step.
func (t *ContactTracker) AcquirePoint() *contact.Point {
	return t.points.get()
}

// AcquireResult hands out a pooled contact result for this step.
func (t *ContactTracker) AcquireResult() *contact.Result {
	return t.results.get()
}

// AcquireSingle hands out a pooled single-pair result for this step.
func (t *ContactTracker) AcquireSingle() *contact.SingleResult {
	return t.singles.get()
}

// FreeFrame releases every pooled record handed out this step. Called
// exactly once per simulation step, after all synchronous dispatch.
func (t *ContactTracker) FreeFrame() {
	if t == nil {
		return
	}
	t.points.reset()
	t.results.reset()
	t.singles.reset()
}
