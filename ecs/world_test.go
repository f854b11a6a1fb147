package ecs

import "testing"

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_destroy_middle", 3, 1},
		{"none_destroyed", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, w.CreateEntity())
			}
			for _, e := range ents {
				if !w.IsAlive(e) {
					t.Fatalf("entity %v should be alive after create", e)
				}
			}
			if c.destroyIndex >= 0 {
				w.DestroyEntity(ents[c.destroyIndex])
				if w.IsAlive(ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destroy")
				}
				for i, e := range ents {
					if i == c.destroyIndex {
						continue
					}
					if !w.IsAlive(e) {
						t.Fatalf("unrelated entity %v died", e)
					}
				}
			}
		})
	}
}

func TestWorldStaleHandleAfterReuse(t *testing.T) {
	w := NewWorld()
	first := w.CreateEntity()
	w.DestroyEntity(first)

	// Reusing the slot bumps the generation, so the old handle is dead.
	second := w.CreateEntity()
	if w.IsAlive(first) {
		t.Fatalf("stale handle %v should be dead", first)
	}
	if !w.IsAlive(second) {
		t.Fatalf("reused handle %v should be alive", second)
	}
	if first == second {
		t.Fatalf("reused handle must differ from the stale one")
	}
}

func TestWorldComponents(t *testing.T) {
	const health ComponentID = 1
	const name ComponentID = 2

	w := NewWorld()
	e := w.CreateEntity()

	if err := w.AddComponent(e, health, 10); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	v, ok := w.GetComponent(e, health)
	if !ok || v.(int) != 10 {
		t.Fatalf("expected health 10, got %v (ok=%v)", v, ok)
	}
	if w.HasComponent(e, name) {
		t.Fatalf("unexpected name component")
	}

	// Replace keeps a single row.
	if err := w.AddComponent(e, health, 20); err != nil {
		t.Fatalf("AddComponent replace: %v", err)
	}
	v, _ = w.GetComponent(e, health)
	if v.(int) != 20 {
		t.Fatalf("expected replaced health 20, got %v", v)
	}

	if !w.RemoveComponent(e, health) {
		t.Fatalf("RemoveComponent should report removal")
	}
	if _, ok := w.GetComponent(e, health); ok {
		t.Fatalf("component should be gone")
	}
}

func TestWorldAddComponentToDeadEntity(t *testing.T) {
	const health ComponentID = 1
	w := NewWorld()
	e := w.CreateEntity()
	w.DestroyEntity(e)
	if err := w.AddComponent(e, health, 1); err == nil {
		t.Fatalf("expected error adding to dead entity")
	}
}

func TestWorldDestroyRemovesComponents(t *testing.T) {
	const health ComponentID = 1
	w := NewWorld()
	e := w.CreateEntity()
	if err := w.AddComponent(e, health, 5); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	w.DestroyEntity(e)

	// A reused slot must not see the old component.
	e2 := w.CreateEntity()
	if _, ok := w.GetComponent(e2, health); ok {
		t.Fatalf("reused entity inherited a component")
	}
}

func TestWorldQuery(t *testing.T) {
	const a ComponentID = 1
	const b ComponentID = 2

	w := NewWorld()
	both := w.CreateEntity()
	onlyA := w.CreateEntity()

	for _, pair := range []struct {
		e  Entity
		id ComponentID
	}{{both, a}, {both, b}, {onlyA, a}} {
		if err := w.AddComponent(pair.e, pair.id, struct{}{}); err != nil {
			t.Fatalf("AddComponent: %v", err)
		}
	}

	got := w.Query(a, b)
	if len(got) != 1 || got[0] != both {
		t.Fatalf("expected [%v], got %v", both, got)
	}
	if got := w.Query(a); len(got) != 2 {
		t.Fatalf("expected 2 entities with a, got %v", got)
	}

	e, ok := w.First(b)
	if !ok || e != both {
		t.Fatalf("First(b) = %v, %v", e, ok)
	}
}
