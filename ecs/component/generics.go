package component

import "github.com/milk9111/impulse/ecs"

// Add attaches or replaces a typed component on an entity.
func Add[T any](w *ecs.World, e ecs.Entity, h Handle[T], value T) error {
	if w == nil {
		return ecs.ErrEntityNotAlive
	}
	return w.AddComponent(e, h.ID(), value)
}

// Remove detaches a typed component.
func Remove[T any](w *ecs.World, e ecs.Entity, h Handle[T]) bool {
	if w == nil {
		return false
	}
	return w.RemoveComponent(e, h.ID())
}

// Has reports typed component presence.
func Has[T any](w *ecs.World, e ecs.Entity, h Handle[T]) bool {
	if w == nil {
		return false
	}
	return w.HasComponent(e, h.ID())
}

// Get returns a copy of the stored component value.
func Get[T any](w *ecs.World, e ecs.Entity, h Handle[T]) (T, bool) {
	var zero T
	if w == nil {
		return zero, false
	}
	value, ok := w.GetComponent(e, h.ID())
	if !ok {
		return zero, false
	}
	cast, ok := value.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}
