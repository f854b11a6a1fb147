package ecs

// entityStore tracks entity generations and recycles freed ids.
type entityStore struct {
	gens []generation // index 0 reserved so id 0 stays invalid
	free []entityID
}

func (s *entityStore) create() Entity {
	if s == nil {
		return None
	}
	if len(s.gens) == 0 {
		s.gens = append(s.gens, 0)
	}
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		id = entityID(len(s.gens))
		s.gens = append(s.gens, 0)
	}
	return makeEntity(id, s.gens[id])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	id := e.id()
	s.gens[id]++
	s.free = append(s.free, id)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if s == nil || !e.Valid() {
		return false
	}
	id := e.id()
	if int(id) >= len(s.gens) {
		return false
	}
	return s.gens[id] == e.generation()
}

// handle rebuilds the Entity for a raw slot id at its current generation.
// Only meaningful for ids known to be live (storage rows are removed on
// destroy, so every stored id qualifies).
func (s *entityStore) handle(id entityID) Entity {
	if s == nil || id == 0 || int(id) >= len(s.gens) {
		return None
	}
	return makeEntity(id, s.gens[id])
}
