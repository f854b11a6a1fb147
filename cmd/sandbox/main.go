package main

import (
	"flag"
	"log"

	"github.com/milk9111/impulse/contact"
	"github.com/milk9111/impulse/ecs"
	"github.com/milk9111/impulse/ecs/component"
	"github.com/milk9111/impulse/physics"
)

func main() {
	configPath := flag.String("config", "", "physics config YAML (optional)")
	scenePath := flag.String("scene", "", "scene YAML to spawn (optional)")
	scriptPath := flag.String("script", "", "tengo scenario script (optional)")
	frames := flag.Int("frames", 600, "number of frames to simulate")
	watch := flag.Bool("watch", false, "hot-reload the config file on change")
	verbose := flag.Bool("v", false, "log every discrete contact point")
	flag.Parse()

	cfg := physics.DefaultConfig()
	if *configPath != "" {
		loaded, err := physics.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	world := ecs.NewWorld()
	system := physics.NewSystem(cfg)

	if *verbose {
		system.OnContact(func(c *contact.SingleResult) {
			log.Printf("contact %v/%v at (%.2f, %.2f) impulse=%.3f", c.A, c.B, c.Point.X, c.Point.Y, c.Impulse)
		})
	}

	if *scenePath != "" {
		scene, err := physics.LoadScene(*scenePath)
		if err != nil {
			log.Fatal(err)
		}
		entities, err := physics.BuildScene(world, system, scene)
		if err != nil {
			log.Fatal(err)
		}
		for _, e := range entities {
			attachLoggers(world, e)
		}
		log.Printf("scene %q: %d bodies", scene.Name, len(entities))
	}

	var scenario *scenarioRuntime
	if *scriptPath != "" {
		rt, err := loadScenario(*scriptPath, world, system)
		if err != nil {
			log.Fatal(err)
		}
		if err := rt.setup(); err != nil {
			log.Fatal(err)
		}
		scenario = rt
	}

	var watcher *physics.ConfigWatcher
	if *watch && *configPath != "" {
		w, err := physics.WatchConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		defer w.Close()
		watcher = w
	}

	dt := system.FixedTimeStep()
	for frame := 0; frame < *frames; frame++ {
		if watcher != nil {
			select {
			case path := <-watcher.Events:
				reloaded, err := physics.LoadConfig(path)
				if err != nil {
					log.Printf("config reload: %v", err)
					break
				}
				system.ApplyConfig(reloaded)
				dt = system.FixedTimeStep()
				log.Printf("config reloaded: gravity=(%.2f, %.2f) step=%.4f", reloaded.Gravity.X, reloaded.Gravity.Y, reloaded.FixedTimeStep)
			case err := <-watcher.Errors:
				log.Printf("config watch: %v", err)
			default:
			}
		}

		if scenario != nil {
			if err := scenario.tick(frame, dt); err != nil {
				log.Fatal(err)
			}
		}
		system.Step(world, dt)
	}
}

// attachLoggers wires stdout logging onto every collision event of an
// entity, so scenes and scripts show their contact timelines.
func attachLoggers(w *ecs.World, e ecs.Entity) {
	if col, ok := component.Get(w, e, component.CollisionComponent); ok && col != nil && col.Events != nil {
		col.Events.OnTriggerEnter(func(other ecs.Entity) {
			log.Printf("%v triggerenter %v", e, other)
		})
		col.Events.OnTriggerLeave(func(other ecs.Entity) {
			log.Printf("%v triggerleave %v", e, other)
		})
		col.Events.OnCollisionStart(func(r *contact.Result) {
			log.Printf("%v collisionstart %v (%d points)", e, r.Other, len(r.Points))
		})
		col.Events.OnCollisionEnd(func(other ecs.Entity) {
			log.Printf("%v collisionend %v", e, other)
		})
	}
	if rb, ok := component.Get(w, e, component.RigidBodyComponent); ok && rb != nil && rb.Events != nil {
		rb.Events.OnCollisionStart(func(r *contact.Result) {
			log.Printf("%v collisionstart %v (body)", e, r.Other)
		})
		rb.Events.OnCollisionEnd(func(other ecs.Entity) {
			log.Printf("%v collisionend %v (body)", e, other)
		})
	}
}
