package component

import (
	"sync/atomic"

	"github.com/milk9111/impulse/ecs"
)

var nextID atomic.Uint32

// Handle is a typed key for one registered component type.
type Handle[T any] struct {
	id ecs.ComponentID
}

// New registers a component type and returns its handle. Handles are
// created once at package init and shared.
func New[T any]() Handle[T] {
	return Handle[T]{id: ecs.ComponentID(nextID.Add(1))}
}

func (h Handle[T]) ID() ecs.ComponentID {
	return h.id
}

func (h Handle[T]) Valid() bool {
	return h.id != 0
}
