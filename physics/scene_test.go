package physics

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/impulse/ecs"
	"github.com/milk9111/impulse/ecs/component"
)

const sceneYAML = `
name: drop-test
bodies:
  - name: crate
    kind: dynamic
    position: {x: 0, y: 5}
    mass: 2
    friction: 0.4
    shape: {width: 1, height: 1}
    tags: [crate, wood]
  - name: floor
    kind: static
    shape: {width: 20, height: 1}
  - name: goal
    kind: trigger
    position: {x: 3, y: 0}
    shape: {radius: 0.5}
`

func TestLoadScene(t *testing.T) {
	path := writeFile(t, "scene.yaml", sceneYAML)
	spec, err := LoadScene(path)
	require.NoError(t, err)

	assert.Equal(t, "drop-test", spec.Name)
	require.Len(t, spec.Bodies, 3)
	assert.Equal(t, "crate", spec.Bodies[0].Name)
	assert.Equal(t, 2.0, spec.Bodies[0].Mass)
	assert.Equal(t, []string{"crate", "wood"}, spec.Bodies[0].Tags)
	assert.Equal(t, 0.5, spec.Bodies[2].Shape.Radius)
}

func TestBuildScene(t *testing.T) {
	path := writeFile(t, "scene.yaml", sceneYAML)
	spec, err := LoadScene(path)
	require.NoError(t, err)

	fb := newFakeBackend()
	s := NewSystem(registerFake(t, fb))
	w := ecs.NewWorld()

	entities, err := BuildScene(w, s, spec)
	require.NoError(t, err)
	require.Len(t, entities, 3)

	crate := entities[0]
	tr, ok := component.Get(w, crate, component.TransformComponent)
	require.True(t, ok)
	assert.Equal(t, cp.Vector{X: 0, Y: 5}, tr.Position)

	rb, ok := component.Get(w, crate, component.RigidBodyComponent)
	require.True(t, ok)
	assert.Equal(t, component.BodyDynamic, rb.Kind)
	assert.Equal(t, 2.0, rb.Mass)

	tags, ok := component.Get(w, crate, component.TagsComponent)
	require.True(t, ok)
	assert.True(t, tags.Has("wood"))

	goal := entities[2]
	assert.False(t, component.Has(w, goal, component.RigidBodyComponent), "trigger bodies carry no rigid body")
	goalCol, ok := component.Get(w, goal, component.CollisionComponent)
	require.True(t, ok)
	assert.True(t, goalCol.Trigger, "trigger kind flags the collision volume")
	assert.True(t, s.Tracked(goal))
	assert.True(t, fb.bodies[goal].trigger)
}

func TestBuildSceneUnknownKind(t *testing.T) {
	w := ecs.NewWorld()
	_, err := BuildScene(w, nil, SceneSpec{Bodies: []BodySpec{{Name: "x", Kind: "floaty"}}})
	assert.Error(t, err)
}
