// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/pkg/profile"

	"github.com/TomBebbington/ecs"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	count := 50
	iters := 1000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(count, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	builder := ecs.BuilderFunc(func(ref ecs.EntityRef) {
		ecs.With(ecs.With(ref, comp1{}), comp2{V: 1, W: 2})
	})
	for range rounds {
		w := ecs.NewWorld(ecs.WithEntityCapacity(numEntities))
		if err := ecs.RegisterComponent[comp1](w, ecs.WithCapacity(numEntities)); err != nil {
			panic(err)
		}
		if err := ecs.RegisterComponent[comp2](w, ecs.WithCapacity(numEntities)); err != nil {
			panic(err)
		}
		w.RegisterProcessor(ecs.Each2(func(_ ecs.Entity, a *comp1, b *comp2, _ float64) {
			a.V += b.V
			a.W += b.W
		}), ecs.All(ecs.TypeOf[comp1](), ecs.TypeOf[comp2]()))
		reaper := w.RegisterProcessor(ecs.ProcessorFunc(func(w *ecs.World, entities []ecs.Entity, _ float64) {
			for _, e := range entities {
				w.DeleteEntity(e)
			}
		}), ecs.Everything())

		for range iters {
			w.BuildEntities(numEntities, builder)
			w.Update(1.0 / 60)
		}
		_ = w.Processors().Runs(reaper)
	}
}
