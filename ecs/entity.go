package ecs

import "strconv"

// Entity is a generational handle to an entity slot. The zero value is
// never alive.
type Entity uint64

// None is the zero Entity.
const None Entity = 0

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e), 10)
}

// Valid reports whether e refers to an entity slot at all. A valid handle
// may still be dead; see World.IsAlive.
func (e Entity) Valid() bool {
	return e.id() != 0
}
