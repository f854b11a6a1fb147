package physics

import (
	"testing"

	"github.com/milk9111/impulse/contact"
)

func TestPoolReusesStorage(t *testing.T) {
	var p pool[contact.Point]

	first := p.get()
	second := p.get()
	if first == second {
		t.Fatalf("distinct gets must return distinct slots")
	}
	if p.inUse() != 2 || p.capacity() != 2 {
		t.Fatalf("inUse=%d capacity=%d", p.inUse(), p.capacity())
	}

	p.reset()
	if p.inUse() != 0 {
		t.Fatalf("reset should clear occupancy")
	}
	if p.capacity() != 2 {
		t.Fatalf("reset must keep storage, capacity=%d", p.capacity())
	}

	if got := p.get(); got != first {
		t.Fatalf("after reset the first slot should be handed out again")
	}
}

func TestPoolGrowsOnlyWhenExhausted(t *testing.T) {
	var p pool[contact.Result]
	for i := 0; i < 4; i++ {
		p.get()
	}
	p.reset()
	for i := 0; i < 4; i++ {
		p.get()
	}
	if p.capacity() != 4 {
		t.Fatalf("steady-state reuse must not allocate, capacity=%d", p.capacity())
	}
	p.get()
	if p.capacity() != 5 {
		t.Fatalf("exhausted pool should grow by one, capacity=%d", p.capacity())
	}
}
