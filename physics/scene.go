package physics

import (
	"fmt"
	"os"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/impulse/ecs"
	"github.com/milk9111/impulse/ecs/component"
)

// SceneSpec is a YAML description of a set of bodies to spawn.
type SceneSpec struct {
	Name   string     `yaml:"name"`
	Bodies []BodySpec `yaml:"bodies"`
}

// VectorSpec is a 2D vector in YAML.
type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v VectorSpec) vec() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

// ShapeSpec mirrors component.ShapeDef: radius > 0 is a circle,
// otherwise a width x height box.
type ShapeSpec struct {
	Radius float64    `yaml:"radius"`
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Offset VectorSpec `yaml:"offset"`
}

func (s ShapeSpec) def() component.ShapeDef {
	return component.ShapeDef{
		Radius: s.Radius,
		Width:  s.Width,
		Height: s.Height,
		Offset: s.Offset.vec(),
	}
}

// BodySpec describes one entity. Kind is dynamic, kinematic, static or
// trigger; trigger spawns a collision-only volume with no rigid body.
type BodySpec struct {
	Name     string     `yaml:"name"`
	Kind     string     `yaml:"kind"`
	Position VectorSpec `yaml:"position"`
	Angle    float64    `yaml:"angle"`

	Mass       float64 `yaml:"mass"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`

	Group    uint `yaml:"group"`
	Category uint `yaml:"category"`
	Mask     uint `yaml:"mask"`

	Velocity VectorSpec `yaml:"velocity"`

	Shape    ShapeSpec   `yaml:"shape"`
	Children []ShapeSpec `yaml:"children"`

	Tags []string `yaml:"tags"`
}

// LoadScene reads a scene spec from a YAML file.
func LoadScene(path string) (SceneSpec, error) {
	var spec SceneSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("physics: read scene: %w", err)
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("physics: parse scene %s: %w", path, err)
	}
	return spec, nil
}

func parseKind(kind string) (component.BodyKind, bool, error) {
	switch kind {
	case "", "dynamic":
		return component.BodyDynamic, false, nil
	case "kinematic":
		return component.BodyKinematic, false, nil
	case "static":
		return component.BodyStatic, false, nil
	case "trigger":
		return component.BodyKinematic, true, nil
	default:
		return 0, false, fmt.Errorf("physics: unknown body kind %q", kind)
	}
}

// BuildScene spawns the spec's bodies into the world and registers each
// with the system. Returns the created entities in spec order.
func BuildScene(w *ecs.World, s *System, spec SceneSpec) ([]ecs.Entity, error) {
	if w == nil {
		return nil, fmt.Errorf("physics: build scene: nil world")
	}

	entities := make([]ecs.Entity, 0, len(spec.Bodies))
	for i, body := range spec.Bodies {
		kind, triggerOnly, err := parseKind(body.Kind)
		if err != nil {
			return entities, fmt.Errorf("physics: scene body %d (%s): %w", i, body.Name, err)
		}

		e := w.CreateEntity()
		if err := component.Add(w, e, component.TransformComponent, &component.Transform{
			Position: body.Position.vec(),
			Angle:    body.Angle,
		}); err != nil {
			return entities, err
		}

		col := &component.Collision{
			Shape:   body.Shape.def(),
			Trigger: triggerOnly,
			Events:  &component.CollisionEvents{},
		}
		for _, child := range body.Children {
			col.Children = append(col.Children, child.def())
		}
		if err := component.Add(w, e, component.CollisionComponent, col); err != nil {
			return entities, err
		}

		if !triggerOnly {
			rb := &component.RigidBody{
				Kind:       kind,
				Mass:       body.Mass,
				Friction:   body.Friction,
				Elasticity: body.Elasticity,
				Group:      body.Group,
				Category:   body.Category,
				Mask:       body.Mask,
				Velocity:   body.Velocity.vec(),
				Events:     &component.CollisionEvents{},
			}
			if err := component.Add(w, e, component.RigidBodyComponent, rb); err != nil {
				return entities, err
			}
		}

		if len(body.Tags) > 0 {
			if err := component.Add(w, e, component.TagsComponent, component.NewTags(body.Tags...)); err != nil {
				return entities, err
			}
		}

		if s != nil {
			if err := s.Add(w, e); err != nil {
				return entities, fmt.Errorf("physics: scene body %d (%s): %w", i, body.Name, err)
			}
		}
		entities = append(entities, e)
	}
	return entities, nil
}
