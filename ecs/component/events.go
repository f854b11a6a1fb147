package component

import (
	"github.com/milk9111/impulse/contact"
	"github.com/milk9111/impulse/ecs"
)

// ContactListener receives the aggregated contact data for one pair edge.
type ContactListener func(result *contact.Result)

// PairListener receives the other entity of a collision pair edge.
type PairListener func(other ecs.Entity)

// CollisionEvents holds explicit per-event-kind subscriber lists, one per
// collision event. Listener presence is an O(1) emptiness check, which is
// what the per-manifold "does anyone care" gates rely on.
type CollisionEvents struct {
	contactFns     []ContactListener
	collisionStart []ContactListener
	collisionEnd   []PairListener
	triggerEnter   []PairListener
	triggerLeave   []PairListener
}

// NewCollisionEvents returns an empty registry.
func NewCollisionEvents() *CollisionEvents {
	return &CollisionEvents{}
}

// OnContact subscribes to per-step contact reports.
func (ev *CollisionEvents) OnContact(fn ContactListener) {
	if ev == nil || fn == nil {
		return
	}
	ev.contactFns = append(ev.contactFns, fn)
}

// OnCollisionStart subscribes to new-collision edges.
func (ev *CollisionEvents) OnCollisionStart(fn ContactListener) {
	if ev == nil || fn == nil {
		return
	}
	ev.collisionStart = append(ev.collisionStart, fn)
}

// OnCollisionEnd subscribes to collision-separation edges.
func (ev *CollisionEvents) OnCollisionEnd(fn PairListener) {
	if ev == nil || fn == nil {
		return
	}
	ev.collisionEnd = append(ev.collisionEnd, fn)
}

// OnTriggerEnter subscribes to trigger-volume entry edges.
func (ev *CollisionEvents) OnTriggerEnter(fn PairListener) {
	if ev == nil || fn == nil {
		return
	}
	ev.triggerEnter = append(ev.triggerEnter, fn)
}

// OnTriggerLeave subscribes to trigger-volume exit edges.
func (ev *CollisionEvents) OnTriggerLeave(fn PairListener) {
	if ev == nil || fn == nil {
		return
	}
	ev.triggerLeave = append(ev.triggerLeave, fn)
}

// HasContactEvents reports whether any contact, collisionstart or
// collisionend listener is registered.
func (ev *CollisionEvents) HasContactEvents() bool {
	if ev == nil {
		return false
	}
	return len(ev.contactFns) > 0 || len(ev.collisionStart) > 0 || len(ev.collisionEnd) > 0
}

// HasTriggerEvents reports whether any triggerenter or triggerleave
// listener is registered.
func (ev *CollisionEvents) HasTriggerEvents() bool {
	if ev == nil {
		return false
	}
	return len(ev.triggerEnter) > 0 || len(ev.triggerLeave) > 0
}

func (ev *CollisionEvents) FireContact(r *contact.Result) {
	if ev == nil {
		return
	}
	for _, fn := range ev.contactFns {
		fn(r)
	}
}

func (ev *CollisionEvents) FireCollisionStart(r *contact.Result) {
	if ev == nil {
		return
	}
	for _, fn := range ev.collisionStart {
		fn(r)
	}
}

func (ev *CollisionEvents) FireCollisionEnd(other ecs.Entity) {
	if ev == nil {
		return
	}
	for _, fn := range ev.collisionEnd {
		fn(other)
	}
}

func (ev *CollisionEvents) FireTriggerEnter(other ecs.Entity) {
	if ev == nil {
		return
	}
	for _, fn := range ev.triggerEnter {
		fn(other)
	}
}

func (ev *CollisionEvents) FireTriggerLeave(other ecs.Entity) {
	if ev == nil {
		return
	}
	for _, fn := range ev.triggerLeave {
		fn(other)
	}
}
