package component

import (
	"testing"

	"github.com/milk9111/impulse/contact"
	"github.com/milk9111/impulse/ecs"
)

func TestCollisionEventsDispatch(t *testing.T) {
	ev := NewCollisionEvents()

	var contacts, starts int
	var ends, enters, leaves []ecs.Entity

	ev.OnContact(func(*contact.Result) { contacts++ })
	ev.OnCollisionStart(func(*contact.Result) { starts++ })
	ev.OnCollisionEnd(func(other ecs.Entity) { ends = append(ends, other) })
	ev.OnTriggerEnter(func(other ecs.Entity) { enters = append(enters, other) })
	ev.OnTriggerLeave(func(other ecs.Entity) { leaves = append(leaves, other) })

	r := &contact.Result{Other: 7}
	ev.FireContact(r)
	ev.FireContact(r)
	ev.FireCollisionStart(r)
	ev.FireCollisionEnd(7)
	ev.FireTriggerEnter(8)
	ev.FireTriggerLeave(8)

	if contacts != 2 || starts != 1 {
		t.Fatalf("contacts=%d starts=%d", contacts, starts)
	}
	if len(ends) != 1 || ends[0] != 7 {
		t.Fatalf("ends=%v", ends)
	}
	if len(enters) != 1 || enters[0] != 8 || len(leaves) != 1 {
		t.Fatalf("enters=%v leaves=%v", enters, leaves)
	}
}

func TestCollisionEventsPresenceChecks(t *testing.T) {
	cases := []struct {
		name        string
		setup       func(ev *CollisionEvents)
		wantContact bool
		wantTrigger bool
	}{
		{"empty", func(*CollisionEvents) {}, false, false},
		{"contact_only", func(ev *CollisionEvents) { ev.OnContact(func(*contact.Result) {}) }, true, false},
		{"start_only", func(ev *CollisionEvents) { ev.OnCollisionStart(func(*contact.Result) {}) }, true, false},
		{"end_only", func(ev *CollisionEvents) { ev.OnCollisionEnd(func(ecs.Entity) {}) }, true, false},
		{"enter_only", func(ev *CollisionEvents) { ev.OnTriggerEnter(func(ecs.Entity) {}) }, false, true},
		{"leave_only", func(ev *CollisionEvents) { ev.OnTriggerLeave(func(ecs.Entity) {}) }, false, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ev := NewCollisionEvents()
			c.setup(ev)
			if got := ev.HasContactEvents(); got != c.wantContact {
				t.Fatalf("HasContactEvents = %v, want %v", got, c.wantContact)
			}
			if got := ev.HasTriggerEvents(); got != c.wantTrigger {
				t.Fatalf("HasTriggerEvents = %v, want %v", got, c.wantTrigger)
			}
		})
	}
}

func TestCollisionEventsNilReceiver(t *testing.T) {
	var ev *CollisionEvents
	ev.OnContact(func(*contact.Result) {})
	ev.FireContact(nil)
	ev.FireCollisionEnd(1)
	if ev.HasContactEvents() || ev.HasTriggerEvents() {
		t.Fatalf("nil registry should report no listeners")
	}
}
