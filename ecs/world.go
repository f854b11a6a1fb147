package ecs

import "errors"

// ComponentID identifies a registered component type.
type ComponentID uint32

var (
	ErrEntityNotAlive = errors.New("ecs: entity not alive")
	ErrInvalidKind    = errors.New("ecs: invalid component kind")
)

// World owns entities and their component storages.
type World struct {
	entities entityStore
	storages map[ComponentID]*SparseSet
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{storages: map[ComponentID]*SparseSet{}}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	if w == nil {
		return None
	}
	return w.entities.create()
}

// DestroyEntity kills an entity and drops all of its components.
func (w *World) DestroyEntity(e Entity) {
	if w == nil || !w.entities.destroy(e) {
		return
	}
	for _, s := range w.storages {
		s.Remove(e.id())
	}
}

// IsAlive reports whether an entity handle is current.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

func (w *World) storage(id ComponentID, create bool) *SparseSet {
	if w == nil || id == 0 {
		return nil
	}
	if w.storages == nil {
		if !create {
			return nil
		}
		w.storages = map[ComponentID]*SparseSet{}
	}
	s := w.storages[id]
	if s == nil && create {
		s = &SparseSet{}
		w.storages[id] = s
	}
	return s
}

// AddComponent attaches or replaces a component value on a live entity.
func (w *World) AddComponent(e Entity, id ComponentID, v any) error {
	if w == nil || id == 0 {
		return ErrInvalidKind
	}
	if !w.IsAlive(e) {
		return ErrEntityNotAlive
	}
	w.storage(id, true).Set(e.id(), v)
	return nil
}

// GetComponent returns the stored component value, if present.
func (w *World) GetComponent(e Entity, id ComponentID) (any, bool) {
	if w == nil || !w.IsAlive(e) {
		return nil, false
	}
	s := w.storage(id, false)
	if s == nil || !s.Has(e.id()) {
		return nil, false
	}
	return s.Get(e.id()), true
}

// HasComponent reports component presence on a live entity.
func (w *World) HasComponent(e Entity, id ComponentID) bool {
	_, ok := w.GetComponent(e, id)
	return ok
}

// RemoveComponent detaches a component if present.
func (w *World) RemoveComponent(e Entity, id ComponentID) bool {
	if w == nil || !w.IsAlive(e) {
		return false
	}
	s := w.storage(id, false)
	if s == nil {
		return false
	}
	return s.Remove(e.id())
}

// Query returns every live entity holding all of the given components.
// The first id drives iteration, so put the rarest component first.
func (w *World) Query(ids ...ComponentID) []Entity {
	if w == nil || len(ids) == 0 {
		return nil
	}
	base := w.storage(ids[0], false)
	if base == nil {
		return nil
	}
	out := make([]Entity, 0, base.Len())
	for _, id := range base.denseIDs {
		match := true
		for _, cid := range ids[1:] {
			s := w.storage(cid, false)
			if s == nil || !s.Has(id) {
				match = false
				break
			}
		}
		if match {
			out = append(out, w.entities.handle(id))
		}
	}
	return out
}

// First returns any one entity holding the component, if one exists.
func (w *World) First(id ComponentID) (Entity, bool) {
	es := w.Query(id)
	if len(es) == 0 {
		return None, false
	}
	return es[0], true
}
