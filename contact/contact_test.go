package contact

import (
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/impulse/ecs"
)

func TestResultReset(t *testing.T) {
	r := &Result{Other: ecs.Entity(1)}
	r.Points = append(r.Points, &Point{Impulse: 3})

	r.Reset(ecs.Entity(2))
	if r.Other != ecs.Entity(2) {
		t.Fatalf("Other = %v, want 2", r.Other)
	}
	if len(r.Points) != 0 {
		t.Fatalf("points should be dropped on reset")
	}
	if cap(r.Points) == 0 {
		t.Fatalf("reset should keep point storage")
	}

	var nilResult *Result
	nilResult.Reset(ecs.Entity(3)) // must not panic
}

func TestSingleResultZeroValueIsSentinel(t *testing.T) {
	var s SingleResult
	if s.A != ecs.None || s.B != ecs.None {
		t.Fatalf("zero value should reference no entities")
	}
	if s.Impulse != 0 || s.Normal != (cp.Vector{}) || s.Point != (cp.Vector{}) {
		t.Fatalf("zero value should carry no contact data")
	}
}
