package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/impulse/ecs"
	"github.com/milk9111/impulse/ecs/component"
	"github.com/milk9111/impulse/physics"
)

// scenarioRuntime drives a tengo script with two hooks: setup(api, state)
// runs once before the first frame, tick(api, state, frame, dt) runs
// every frame. Scripts must define both. The whole script re-runs per
// invocation, so anything that must survive between frames goes into
// the state map.
type scenarioRuntime struct {
	compiled  *tengo.Compiled
	stateData *tengo.Map
	world     *ecs.World
	system    *physics.System
}

const scenarioDispatchScript = `
if __phase == "setup" {
	setup(__api, __state)
} else if __phase == "tick" {
	tick(__api, __state, __frame, __dt)
}
`

func loadScenario(path string, w *ecs.World, s *physics.System) (*scenarioRuntime, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript(append(src, []byte("\n"+scenarioDispatchScript)...))
	_ = script.Add("__phase", "")
	_ = script.Add("__api", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__frame", 0)
	_ = script.Add("__dt", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	return &scenarioRuntime{
		compiled:  compiled,
		stateData: &tengo.Map{Value: map[string]tengo.Object{}},
		world:     w,
		system:    s,
	}, nil
}

func (rt *scenarioRuntime) setup() error {
	return rt.run("setup", 0, 0)
}

func (rt *scenarioRuntime) tick(frame int, dt float64) error {
	return rt.run("tick", frame, dt)
}

func (rt *scenarioRuntime) run(phase string, frame int, dt float64) error {
	if rt == nil || rt.compiled == nil {
		return nil
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__api", rt.buildAPI()); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	if err := rt.compiled.Set("__frame", int64(frame)); err != nil {
		return err
	}
	if err := rt.compiled.Set("__dt", dt); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func (rt *scenarioRuntime) buildAPI() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["spawn_box"] = &tengo.UserFunction{Name: "spawn_box", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 5 {
			return nil, tengo.ErrWrongNumArguments
		}
		kind := objectAsString(args[0])
		x, y := objectAsFloat(args[1]), objectAsFloat(args[2])
		w, h := objectAsFloat(args[3]), objectAsFloat(args[4])
		e, err := rt.spawn(kind, cp.Vector{X: x, Y: y}, component.ShapeDef{Width: w, Height: h})
		if err != nil {
			return nil, err
		}
		return &tengo.Int{Value: int64(e)}, nil
	}}

	values["spawn_circle"] = &tengo.UserFunction{Name: "spawn_circle", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 4 {
			return nil, tengo.ErrWrongNumArguments
		}
		kind := objectAsString(args[0])
		x, y := objectAsFloat(args[1]), objectAsFloat(args[2])
		r := objectAsFloat(args[3])
		e, err := rt.spawn(kind, cp.Vector{X: x, Y: y}, component.ShapeDef{Radius: r})
		if err != nil {
			return nil, err
		}
		return &tengo.Int{Value: int64(e)}, nil
	}}

	values["despawn"] = &tengo.UserFunction{Name: "despawn", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		e := ecs.Entity(objectAsInt(args[0]))
		rt.system.Remove(e)
		rt.world.DestroyEntity(e)
		return tengo.UndefinedValue, nil
	}}

	values["set_gravity"] = &tengo.UserFunction{Name: "set_gravity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		rt.system.SetGravity(cp.Vector{X: objectAsFloat(args[0]), Y: objectAsFloat(args[1])})
		return tengo.UndefinedValue, nil
	}}

	values["set_velocity"] = &tengo.UserFunction{Name: "set_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		e := ecs.Entity(objectAsInt(args[0]))
		if rb, ok := component.Get(rt.world, e, component.RigidBodyComponent); ok && rb != nil {
			rb.Velocity = cp.Vector{X: objectAsFloat(args[1]), Y: objectAsFloat(args[2])}
		}
		return tengo.UndefinedValue, nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		e := ecs.Entity(objectAsInt(args[0]))
		t, ok := component.Get(rt.world, e, component.TransformComponent)
		if !ok || t == nil {
			return tengo.UndefinedValue, nil
		}
		return &tengo.Map{Value: map[string]tengo.Object{
			"x": &tengo.Float{Value: t.Position.X},
			"y": &tengo.Float{Value: t.Position.Y},
		}}, nil
	}}

	values["touching"] = &tengo.UserFunction{Name: "touching", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		a := ecs.Entity(objectAsInt(args[0]))
		b := ecs.Entity(objectAsInt(args[1]))
		if rt.system.Touching(a, b) {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["raycast"] = &tengo.UserFunction{Name: "raycast", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 4 {
			return nil, tengo.ErrWrongNumArguments
		}
		start := cp.Vector{X: objectAsFloat(args[0]), Y: objectAsFloat(args[1])}
		end := cp.Vector{X: objectAsFloat(args[2]), Y: objectAsFloat(args[3])}
		hit, ok := rt.system.RaycastFirst(rt.world, start, end, physics.RaycastOptions{})
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return &tengo.Map{Value: map[string]tengo.Object{
			"entity":   &tengo.Int{Value: int64(hit.Entity)},
			"x":        &tengo.Float{Value: hit.Point.X},
			"y":        &tengo.Float{Value: hit.Point.Y},
			"fraction": &tengo.Float{Value: hit.HitFraction},
		}}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		fmt.Println("scenario:", strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func (rt *scenarioRuntime) spawn(kind string, pos cp.Vector, shape component.ShapeDef) (ecs.Entity, error) {
	spec := physics.SceneSpec{Bodies: []physics.BodySpec{{
		Name:     fmt.Sprintf("scripted-%s", kind),
		Kind:     kind,
		Position: physics.VectorSpec{X: pos.X, Y: pos.Y},
		Shape: physics.ShapeSpec{
			Radius: shape.Radius,
			Width:  shape.Width,
			Height: shape.Height,
		},
	}}}
	entities, err := physics.BuildScene(rt.world, rt.system, spec)
	if err != nil {
		return ecs.None, err
	}
	attachLoggers(rt.world, entities[0])
	return entities[0], nil
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectAsFloat(obj tengo.Object) float64 {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	default:
		return 0
	}
}

func objectAsInt(obj tengo.Object) int64 {
	switch v := obj.(type) {
	case *tengo.Int:
		return v.Value
	case *tengo.Float:
		return int64(v.Value)
	default:
		return 0
	}
}
