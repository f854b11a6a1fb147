package physics

// pool is an index-addressed arena of reusable records. get hands out the
// next free slot, growing storage only when every slot is occupied; reset
// clears logical occupancy without releasing storage. Pools are scoped to
// a single step: not safe for concurrent use, and nothing handed out
// before a reset may be referenced after it.
type pool[T any] struct {
	items []*T
	used  int
}

func (p *pool[T]) get() *T {
	if p.used < len(p.items) {
		v := p.items[p.used]
		p.used++
		return v
	}
	v := new(T)
	p.items = append(p.items, v)
	p.used++
	return v
}

func (p *pool[T]) reset() {
	p.used = 0
}

// inUse returns the number of slots handed out since the last reset.
func (p *pool[T]) inUse() int {
	return p.used
}

// capacity returns the number of allocated slots.
func (p *pool[T]) capacity() int {
	return len(p.items)
}
