package physics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/impulse/contact"
	"github.com/milk9111/impulse/ecs"
	"github.com/milk9111/impulse/ecs/component"
)

// BodyHandle is an opaque reference to one backend body.
type BodyHandle interface{}

// ManifoldPoint is one translated discrete contact point. World and local
// coordinates are given for both bodies; Normal points away from body B.
type ManifoldPoint struct {
	LocalA  cp.Vector
	LocalB  cp.Vector
	WorldA  cp.Vector
	WorldB  cp.Vector
	Normal  cp.Vector
	Impulse float64
}

// Manifold is a per-pair contact snapshot for one sub-step, translated
// out of the backend's native arbiter representation.
type Manifold struct {
	A        ecs.Entity
	B        ecs.Entity
	TriggerA bool
	TriggerB bool

	Count  int
	Points [cp.MAX_CONTACTS_PER_ARBITER]ManifoldPoint
}

// Backend is the capability surface every physics backend provides. The
// orchestrator depends only on this interface plus the optional
// capabilities below, selected by type assertion.
type Backend interface {
	// CreateBody builds a backend body and shapes for an entity. rb may
	// be nil: a collision volume without a rigid body becomes a trigger
	// volume (kinematic sensor).
	CreateBody(e ecs.Entity, rb *component.RigidBody, col *component.Collision, pos cp.Vector, angle float64) (BodyHandle, error)
	DestroyBody(h BodyHandle)

	Gravity() cp.Vector
	SetGravity(g cp.Vector)

	Transform(h BodyHandle) (cp.Vector, float64)
	SetTransform(h BodyHandle, pos cp.Vector, angle float64)
	Velocity(h BodyHandle) (cp.Vector, float64)
	SetVelocity(h BodyHandle, linear cp.Vector, angular float64)

	// SyncCompound rebuilds a compound body's shapes from its collision
	// volume definition.
	SyncCompound(h BodyHandle, col *component.Collision)

	// Step advances the simulation by dt, splitting it into at most
	// maxSubSteps internal sub-steps of fixedTimeStep each.
	Step(dt float64, maxSubSteps int, fixedTimeStep float64)

	// RayCastFirst returns the closest hit owned by a resolvable entity.
	// group/mask follow filter semantics: zero means "everything".
	RayCastFirst(start, end cp.Vector, group, mask uint) (contact.RaycastResult, bool)
}

// SubStepNotifier is implemented by backends that can invoke a detection
// callback once per internal sub-step. Backends without it degrade to a
// single post-step detection pass.
type SubStepNotifier interface {
	OnSubStep(fn func())
}

// ManifoldSource yields the contact snapshots observed since the last
// drain. buf is reused: implementations append into buf[:0].
type ManifoldSource interface {
	DrainManifolds(buf []Manifold) []Manifold
}

// AllHitsRayCaster is implemented by backends whose ray queries can
// report every hit along a segment, not only the closest. RaycastAll
// requires this capability.
type AllHitsRayCaster interface {
	RayCastAll(start, end cp.Vector, group, mask uint, visit func(hit contact.RaycastResult))
}

// BackendFactory builds a concrete backend from config.
type BackendFactory func(cfg Config) (Backend, error)

var (
	backendMu        sync.Mutex
	backendFactories = map[string]BackendFactory{}
)

// RegisterBackend makes a backend available to NewBackend. Concrete
// backends register themselves from init.
func RegisterBackend(name string, f BackendFactory) {
	if name == "" || f == nil {
		return
	}
	backendMu.Lock()
	defer backendMu.Unlock()
	backendFactories[name] = f
}

// NewBackend builds the named backend, or an error listing the known
// names when it is not registered.
func NewBackend(name string, cfg Config) (Backend, error) {
	backendMu.Lock()
	f := backendFactories[name]
	backendMu.Unlock()
	if f == nil {
		return nil, fmt.Errorf("physics: unknown backend %q (have %v)", name, backendNames())
	}
	return f(cfg)
}

func backendNames() []string {
	backendMu.Lock()
	defer backendMu.Unlock()
	names := make([]string, 0, len(backendFactories))
	for n := range backendFactories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
