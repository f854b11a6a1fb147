package physics

import (
	"log"
	"sort"
	"sync"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/impulse/contact"
	"github.com/milk9111/impulse/ecs"
	"github.com/milk9111/impulse/ecs/component"
)

// bodyRecord is the system's bookkeeping for one simulated entity.
type bodyRecord struct {
	entity   ecs.Entity
	handle   BodyHandle
	kind     component.BodyKind
	trigger  bool
	compound bool
}

// RaycastOptions narrows and orders raycast results. Zero options hit
// everything the backend reports.
type RaycastOptions struct {
	FilterCollisionGroup uint
	FilterCollisionMask  uint

	// FilterTags is an OR of AND-groups matched against the Tags
	// component of the hit entity.
	FilterTags [][]string

	// FilterCallback vetoes individual hits. Returning false drops the
	// hit before it reaches the caller.
	FilterCallback func(hit *contact.RaycastResult) bool

	// Sort orders results by ascending hit fraction. Forced on when
	// tag or callback filtering is requested through RaycastFirst.
	Sort bool
}

// System steps an opaque physics backend and synthesizes contact and
// trigger events for the entities registered with it.
type System struct {
	backend Backend
	cfg     Config

	bodies map[ecs.Entity]*bodyRecord

	// Registries split by role so each per-frame pass walks only the
	// bodies it needs.
	dynamic   map[ecs.Entity]*bodyRecord
	kinematic map[ecs.Entity]*bodyRecord
	triggers  map[ecs.Entity]*bodyRecord
	compounds map[ecs.Entity]*bodyRecord

	tracker *ContactTracker

	globalContact []func(*contact.SingleResult)

	manifoldBuf []Manifold
	activeWorld *ecs.World

	// Scratch slices reused across manifolds so the dispatch path
	// allocates nothing once warm. Valid only inside handleContacts.
	pointScratch  []*contact.Point
	mirrorScratch []*contact.Point

	warnFallback sync.Once
}

// NewSystem builds a System for cfg. An unknown backend degrades to a
// no-op system so the rest of the frame loop keeps running.
func NewSystem(cfg Config) *System {
	cfg = cfg.withDefaults()
	s := &System{
		cfg:       cfg,
		bodies:    map[ecs.Entity]*bodyRecord{},
		dynamic:   map[ecs.Entity]*bodyRecord{},
		kinematic: map[ecs.Entity]*bodyRecord{},
		triggers:  map[ecs.Entity]*bodyRecord{},
		compounds: map[ecs.Entity]*bodyRecord{},
	}
	s.tracker = NewContactTracker(func(e ecs.Entity) bool {
		rec, ok := s.bodies[e]
		return ok && rec.trigger
	})

	backend, err := NewBackend(cfg.Backend, cfg)
	if err != nil {
		log.Printf("physics: %v; system disabled", err)
		return s
	}
	s.backend = backend
	if notifier, ok := backend.(SubStepNotifier); ok {
		notifier.OnSubStep(s.detectActive)
	}
	return s
}

// OnContact registers a global listener invoked once per discrete
// contact point each frame.
func (s *System) OnContact(fn func(*contact.SingleResult)) {
	if s == nil || fn == nil {
		return
	}
	s.globalContact = append(s.globalContact, fn)
}

// Add mirrors an entity's rigid body and collision volume into the
// backend. Entities with neither component are ignored.
func (s *System) Add(w *ecs.World, e ecs.Entity) error {
	if s == nil || s.backend == nil {
		return nil
	}
	if _, ok := s.bodies[e]; ok {
		return nil
	}

	rb, _ := component.Get(w, e, component.RigidBodyComponent)
	col, _ := component.Get(w, e, component.CollisionComponent)
	if rb == nil && col == nil {
		return nil
	}

	pos := cp.Vector{}
	angle := 0.0
	if t, ok := component.Get(w, e, component.TransformComponent); ok && t != nil {
		pos = t.Position
		angle = t.Angle
	}

	handle, err := s.backend.CreateBody(e, rb, col, pos, angle)
	if err != nil {
		return err
	}

	rec := &bodyRecord{
		entity:  e,
		handle:  handle,
		kind:    component.BodyStatic,
		trigger: rb == nil || rb.Trigger || (col != nil && col.Trigger),
	}
	if rb != nil {
		rec.kind = rb.Kind
	}
	if col != nil && col.Compound() {
		rec.compound = true
		s.compounds[e] = rec
	}

	s.bodies[e] = rec
	switch {
	case rec.trigger:
		s.triggers[e] = rec
	case rec.kind == component.BodyDynamic:
		s.dynamic[e] = rec
	case rec.kind == component.BodyKinematic:
		s.kinematic[e] = rec
	}
	return nil
}

// Remove destroys the entity's backend body. Contact records involving
// it drain naturally on the next frame's exit pass.
func (s *System) Remove(e ecs.Entity) {
	if s == nil {
		return
	}
	rec, ok := s.bodies[e]
	if !ok {
		return
	}
	if s.backend != nil {
		s.backend.DestroyBody(rec.handle)
	}
	delete(s.bodies, e)
	delete(s.dynamic, e)
	delete(s.kinematic, e)
	delete(s.triggers, e)
	delete(s.compounds, e)
}

// Tracked reports whether the entity currently has a backend body.
func (s *System) Tracked(e ecs.Entity) bool {
	if s == nil {
		return false
	}
	_, ok := s.bodies[e]
	return ok
}

// Touching reports whether a and b were in contact on the last frame.
func (s *System) Touching(a, b ecs.Entity) bool {
	if s == nil {
		return false
	}
	return s.tracker.Touching(a, b)
}

func (s *System) Gravity() cp.Vector {
	if s == nil || s.backend == nil {
		return cp.Vector{}
	}
	return s.backend.Gravity()
}

func (s *System) SetGravity(g cp.Vector) {
	if s == nil {
		return
	}
	s.cfg.Gravity = g
	if s.backend != nil {
		s.backend.SetGravity(g)
	}
}

func (s *System) FixedTimeStep() float64 {
	if s == nil {
		return 0
	}
	return s.cfg.FixedTimeStep
}

func (s *System) MaxSubSteps() int {
	if s == nil {
		return 0
	}
	return s.cfg.MaxSubSteps
}

// ApplyConfig adopts the stepping and gravity settings of a freshly
// loaded config. The backend choice is fixed at construction.
func (s *System) ApplyConfig(cfg Config) {
	if s == nil {
		return
	}
	cfg = cfg.withDefaults()
	s.cfg.FixedTimeStep = cfg.FixedTimeStep
	s.cfg.MaxSubSteps = cfg.MaxSubSteps
	s.SetGravity(cfg.Gravity)
}

// Step advances the simulation by dt and fires contact events. Writes
// kinematic and trigger transforms into the backend before stepping,
// reads dynamic transforms back after.
func (s *System) Step(w *ecs.World, dt float64) {
	if s == nil || s.backend == nil || w == nil {
		return
	}

	s.backend.SetGravity(s.cfg.Gravity)
	s.pushKinematic(w)
	s.syncCompounds(w)

	s.activeWorld = w
	s.backend.Step(dt, s.cfg.MaxSubSteps, s.cfg.FixedTimeStep)
	if _, ok := s.backend.(SubStepNotifier); !ok {
		// Without sub-step callbacks enter/exit edges inside a single
		// frame collapse into one observation.
		s.warnFallback.Do(func() {
			log.Printf("physics: backend %q has no sub-step notifications; contact edges are per-frame", s.cfg.Backend)
		})
		s.detectActive()
	}
	s.activeWorld = nil

	s.pullDynamic(w)
}

func (s *System) pushKinematic(w *ecs.World) {
	for e, rec := range s.kinematic {
		s.pushTransform(w, e, rec)
	}
	for e, rec := range s.triggers {
		s.pushTransform(w, e, rec)
	}
}

func (s *System) pushTransform(w *ecs.World, e ecs.Entity, rec *bodyRecord) {
	t, ok := component.Get(w, e, component.TransformComponent)
	if !ok || t == nil {
		return
	}
	s.backend.SetTransform(rec.handle, t.Position, t.Angle)
	if rb, ok := component.Get(w, e, component.RigidBodyComponent); ok && rb != nil {
		s.backend.SetVelocity(rec.handle, rb.Velocity, rb.AngularVelocity)
	}
}

func (s *System) syncCompounds(w *ecs.World) {
	for e, rec := range s.compounds {
		col, ok := component.Get(w, e, component.CollisionComponent)
		if !ok || col == nil || !col.Dirty {
			continue
		}
		s.backend.SyncCompound(rec.handle, col)
		col.Dirty = false
	}
}

func (s *System) pullDynamic(w *ecs.World) {
	for e, rec := range s.dynamic {
		pos, angle := s.backend.Transform(rec.handle)
		if t, ok := component.Get(w, e, component.TransformComponent); ok && t != nil {
			t.Position = pos
			t.Angle = angle
		}
		if rb, ok := component.Get(w, e, component.RigidBodyComponent); ok && rb != nil {
			rb.Velocity, rb.AngularVelocity = s.backend.Velocity(rec.handle)
		}
	}
}

// detectActive runs one detection pass against the world captured by
// the current Step call.
func (s *System) detectActive() {
	if s == nil || s.activeWorld == nil {
		return
	}
	s.detect(s.activeWorld)
}

// detect diffs this sub-step's manifolds against the persistent contact
// map: new pairs fire enter events, surviving pairs fire stay events,
// and pairs missing from the transient map fire exit events.
func (s *System) detect(w *ecs.World) {
	s.tracker.ResetTransient()

	source, ok := s.backend.(ManifoldSource)
	if ok {
		s.manifoldBuf = source.DrainManifolds(s.manifoldBuf)
	} else {
		s.manifoldBuf = s.manifoldBuf[:0]
	}

	for i := range s.manifoldBuf {
		m := &s.manifoldBuf[i]
		if !w.IsAlive(m.A) || !w.IsAlive(m.B) {
			continue
		}
		if m.TriggerA || m.TriggerB {
			s.handleTriggerSide(w, m.A, m.B, m.TriggerB)
			s.handleTriggerSide(w, m.B, m.A, m.TriggerA)
			continue
		}
		s.handleContacts(w, m)
	}

	s.tracker.CleanOldCollisions(w)
	s.tracker.FreeFrame()
}

// handleTriggerSide fires triggerenter for one orientation of a trigger
// overlap. The collision volume's listeners see the event first; the
// rigid body's listeners share the same new-pair edge, so the pair is
// stored at most once.
func (s *System) handleTriggerSide(w *ecs.World, owner, other ecs.Entity, otherIsTrigger bool) {
	isNew := false
	stored := false

	if col, ok := component.Get(w, owner, component.CollisionComponent); ok && col != nil && col.Events.HasTriggerEvents() {
		isNew = s.tracker.StoreCollision(owner, other)
		stored = true
		if isNew && !otherIsTrigger {
			col.Events.FireTriggerEnter(other)
		}
	}
	if rb, ok := component.Get(w, owner, component.RigidBodyComponent); ok && rb != nil && rb.Events.HasTriggerEvents() {
		if !stored {
			isNew = s.tracker.StoreCollision(owner, other)
		}
		if isNew && !otherIsTrigger {
			rb.Events.FireTriggerEnter(other)
		}
	}
}

// handleContacts fans a physical manifold out to global point listeners
// and to each side's per-entity contact listeners.
func (s *System) handleContacts(w *ecs.World, m *Manifold) {
	if m.Count == 0 {
		return
	}

	aCares := len(s.globalContact) > 0 || s.tracker.HasContactEvent(w, m.A)
	bCares := s.tracker.HasContactEvent(w, m.B)
	if !aCares && !bCares {
		// Nothing is listening; skip without touching the pools.
		return
	}

	forward := s.pointScratch[:0]
	for i := 0; i < m.Count; i++ {
		mp := &m.Points[i]
		p := s.tracker.AcquirePoint()
		p.LocalPoint = mp.LocalA
		p.LocalPointOther = mp.LocalB
		p.Point = mp.WorldA
		p.PointOther = mp.WorldB
		p.Normal = mp.Normal
		p.Impulse = mp.Impulse
		forward = append(forward, p)
	}
	s.pointScratch = forward

	for _, p := range forward {
		s.fireGlobal(m.A, m.B, p)
	}

	if s.tracker.HasContactEvent(w, m.A) {
		s.fireEntityContacts(w, m.A, m.B, forward)
	}
	if bCares {
		// Mirrored view: point roles swap, the normal keeps pointing
		// away from the second body's surface.
		reverse := s.mirrorScratch[:0]
		for _, fp := range forward {
			p := s.tracker.AcquirePoint()
			p.LocalPoint = fp.LocalPointOther
			p.LocalPointOther = fp.LocalPoint
			p.Point = fp.PointOther
			p.PointOther = fp.Point
			p.Normal = fp.Normal
			p.Impulse = fp.Impulse
			reverse = append(reverse, p)
		}
		s.mirrorScratch = reverse
		s.fireEntityContacts(w, m.B, m.A, reverse)
	}
}

func (s *System) fireGlobal(a, b ecs.Entity, p *contact.Point) {
	if len(s.globalContact) == 0 {
		return
	}
	single := s.tracker.AcquireSingle()
	single.A = a
	single.B = b
	single.LocalPoint = p.LocalPoint
	single.LocalPointOther = p.LocalPointOther
	single.Point = p.Point
	single.PointOther = p.PointOther
	single.Normal = p.Normal
	single.Impulse = p.Impulse
	for _, fn := range s.globalContact {
		fn(single)
	}
}

func (s *System) fireEntityContacts(w *ecs.World, owner, other ecs.Entity, points []*contact.Point) {
	result := s.tracker.AcquireResult()
	result.Reset(other)
	result.Points = append(result.Points, points...)

	isNew := s.tracker.StoreCollision(owner, other)

	if col, ok := component.Get(w, owner, component.CollisionComponent); ok && col != nil {
		col.Events.FireContact(result)
		if isNew {
			col.Events.FireCollisionStart(result)
		}
	}
	if rb, ok := component.Get(w, owner, component.RigidBodyComponent); ok && rb != nil {
		rb.Events.FireContact(result)
		if isNew {
			rb.Events.FireCollisionStart(result)
		}
	}
}

// RaycastFirst returns the nearest hit along the segment. Tag and
// callback filters force a full sweep, since the backend's own nearest
// hit may be filtered out.
func (s *System) RaycastFirst(w *ecs.World, start, end cp.Vector, opts RaycastOptions) (contact.RaycastResult, bool) {
	if s == nil || s.backend == nil {
		return contact.RaycastResult{}, false
	}
	if len(opts.FilterTags) > 0 || opts.FilterCallback != nil {
		opts.Sort = true
		hits := s.RaycastAll(w, start, end, opts)
		if len(hits) == 0 {
			return contact.RaycastResult{}, false
		}
		return hits[0], true
	}

	hit, ok := s.backend.RayCastFirst(start, end, opts.FilterCollisionGroup, opts.FilterCollisionMask)
	if !ok || (w != nil && !w.IsAlive(hit.Entity)) {
		return contact.RaycastResult{}, false
	}
	return hit, true
}

// RaycastAll returns every hit along the segment, filtered and
// optionally sorted by ascending hit fraction.
func (s *System) RaycastAll(w *ecs.World, start, end cp.Vector, opts RaycastOptions) []contact.RaycastResult {
	if s == nil || s.backend == nil {
		return nil
	}
	caster, ok := s.backend.(AllHitsRayCaster)
	if !ok {
		panic("physics: backend cannot report multiple ray hits")
	}

	var hits []contact.RaycastResult
	caster.RayCastAll(start, end, opts.FilterCollisionGroup, opts.FilterCollisionMask, func(hit contact.RaycastResult) {
		if w != nil && !w.IsAlive(hit.Entity) {
			return
		}
		if len(opts.FilterTags) > 0 && !matchTags(w, hit.Entity, opts.FilterTags) {
			return
		}
		if opts.FilterCallback != nil && !opts.FilterCallback(&hit) {
			return
		}
		hits = append(hits, hit)
	})

	if opts.Sort {
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].HitFraction < hits[j].HitFraction
		})
	}
	return hits
}

func matchTags(w *ecs.World, e ecs.Entity, query [][]string) bool {
	if w == nil {
		return false
	}
	tags, ok := component.Get(w, e, component.TagsComponent)
	if !ok || tags == nil {
		return false
	}
	return tags.Match(query)
}
