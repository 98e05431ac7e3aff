// Package world owns the simulation state: the ECS world holding creatures,
// food and corpses, spatial indexes, temperature zones, and the counters
// behind the stats surface.
package world

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/organism"
	"github.com/pthm-cable/critters/spatial"
	"github.com/pthm-cable/critters/species"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/traits"
)

// Recorder receives population events as they happen.
// telemetry.Collector implements it.
type Recorder interface {
	RecordBirth(diet traits.DietType)
	RecordDeath(diet traits.DietType, cause components.DeathCause)
	RecordEmigration(diet traits.DietType)
	RecordImmigration(n int)
	RecordKill()
	RecordEnergy(source telemetry.EnergySource, amount float64)
}

type nopRecorder struct{}

func (nopRecorder) RecordBirth(traits.DietType)                        {}
func (nopRecorder) RecordDeath(traits.DietType, components.DeathCause) {}
func (nopRecorder) RecordEmigration(traits.DietType)                   {}
func (nopRecorder) RecordImmigration(int)                              {}
func (nopRecorder) RecordKill()                                        {}
func (nopRecorder) RecordEnergy(telemetry.EnergySource, float64)       {}

// Organism anchors a creature to its ark entity. The creature itself stays a
// pointer so the spatial grid, pack targets and death callbacks can refer to
// it across ticks.
type Organism struct {
	*organism.Creature
}

// World holds the complete simulation state. It is not safe for concurrent
// use: one goroutine ticks it and readers must not overlap a tick.
type World struct {
	cfg      *config.Config
	controls *config.Controls
	rng      *rand.Rand
	ids      components.IDAllocator
	registry *species.Registry
	recorder Recorder

	alive int

	// Creatures, food and corpses live in the ECS world
	ecs            *ecs.World
	organismMapper *ecs.Map1[Organism]
	organismFilter *ecs.Filter1[Organism]
	foodMapper     *ecs.Map2[components.Position, components.Food]
	corpseMapper   *ecs.Map2[components.Position, components.Corpse]
	foodFilter     *ecs.Filter2[components.Position, components.Food]
	corpseFilter   *ecs.Filter2[components.Position, components.Corpse]

	// Creatures added while a query held the world locked
	born      []*organism.Creature
	removeBuf []ecs.Entity

	// Spatial indexes, rebuilt by UpdateSpatialHashes
	creatureGrid *spatial.Grid[*organism.Creature]
	foodGrid     *spatial.Grid[ecs.Entity]
	corpseGrid   *spatial.Grid[ecs.Entity]
	creatureBuf  []*organism.Creature

	zones []TemperatureZone

	// Timing
	time          float64
	foodAccum     float64
	migrationTime float64
	rescueTime    float64
	zoneTime      float64

	// Counters
	births        int
	deaths        int
	emigrations   int
	immigrants    int
	maxGeneration int
	deathsByCause [components.NumCauses]int
	foodCount     int
	corpseCount   int
}

// New creates an empty world. The registry is scoped to this world and is
// reset by Initialize.
func New(cfg *config.Config, controls *config.Controls, registry *species.Registry, rng *rand.Rand) *World {
	w := &World{
		cfg:          cfg,
		controls:     controls,
		rng:          rng,
		registry:     registry,
		recorder:     nopRecorder{},
		creatureGrid: spatial.NewGrid[*organism.Creature](cfg.Physics.GridCellSize),
		foodGrid:     spatial.NewGrid[ecs.Entity](cfg.Physics.GridCellSize),
		corpseGrid:   spatial.NewGrid[ecs.Entity](cfg.Physics.GridCellSize),
	}
	w.ecs = ecs.NewWorld()
	w.organismMapper = ecs.NewMap1[Organism](w.ecs)
	w.organismFilter = ecs.NewFilter1[Organism](w.ecs)
	w.foodMapper = ecs.NewMap2[components.Position, components.Food](w.ecs)
	w.corpseMapper = ecs.NewMap2[components.Position, components.Corpse](w.ecs)
	w.foodFilter = ecs.NewFilter2[components.Position, components.Food](w.ecs)
	w.corpseFilter = ecs.NewFilter2[components.Position, components.Corpse](w.ecs)
	return w
}

// SetRecorder installs an event recorder. nil restores the no-op recorder.
func (w *World) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	w.recorder = r
}

// Initialize discards all state and seeds n founder herbivores plus the
// initial food.
func (w *World) Initialize(n int) {
	w.registry.Reset()
	w.ecs.Reset()
	w.born = w.born[:0]
	w.alive = 0
	w.zones = nil
	w.time = 0
	w.foodAccum = 0
	w.migrationTime = 0
	w.rescueTime = 0
	w.zoneTime = 0
	w.births = 0
	w.deaths = 0
	w.emigrations = 0
	w.immigrants = 0
	w.maxGeneration = 0
	w.deathsByCause = [components.NumCauses]int{}
	w.foodCount = 0
	w.corpseCount = 0

	for i := 0; i < n; i++ {
		t := traits.Founder(w.rng, w.cfg)
		energy := traits.MaxEnergy(t, &w.cfg.Phenotype) * 0.7
		x := w.rng.Float64() * w.cfg.World.Width
		y := w.rng.Float64() * w.cfg.World.Height
		w.AddCreature(organism.New(w.ids.Next(), t, x, y, 0, energy, w.time, w.cfg, w.rng))
	}

	for i := 0; i < w.cfg.Food.Initial; i++ {
		w.spawnFoodAt(w.rng.Float64()*w.cfg.World.Width, w.rng.Float64()*w.cfg.World.Height)
	}

	w.UpdateSpatialHashes()
}

// AddCreature places a creature in the world and assigns its species.
// While a query is open the entity is created by the next FlushBirths.
func (w *World) AddCreature(c *organism.Creature) {
	c.OnDeath = w.handleDeath
	c.SpeciesID = w.registry.AssignSpecies(c.ID, c.Traits, c.Generation, w.time)
	if w.ecs.IsLocked() {
		w.born = append(w.born, c)
	} else {
		w.organismMapper.NewEntity(&Organism{c})
	}
	if c.Alive {
		w.alive++
	}
	if c.Generation > w.maxGeneration {
		w.maxGeneration = c.Generation
	}
}

// FlushBirths creates entities for creatures added during a query. Systems
// that can add creatures call it once their query is done.
func (w *World) FlushBirths() {
	for i, c := range w.born {
		w.organismMapper.NewEntity(&Organism{c})
		w.born[i] = nil
	}
	w.born = w.born[:0]
}

// CanAddCreatures reports whether the population is below its cap.
func (w *World) CanAddCreatures() bool {
	return w.alive < w.cfg.Population.Max
}

// Headroom returns how many more creatures the population cap allows.
func (w *World) Headroom() int {
	return max(w.cfg.Population.Max-w.alive, 0)
}

// AddOffspring adds newborns while the population cap allows and returns
// how many were added.
func (w *World) AddOffspring(children ...*organism.Creature) int {
	added := 0
	for _, c := range children {
		if c == nil || !w.CanAddCreatures() {
			continue
		}
		w.AddCreature(c)
		w.births++
		w.recorder.RecordBirth(c.Traits.Diet())
		added++
	}
	return added
}

// handleDeath keeps species and world accounting in step with deaths as
// they happen. Emigrants are not counted as deaths.
func (w *World) handleDeath(c *organism.Creature) {
	w.alive--
	diet := c.Traits.Diet()
	if c.Emigrated() {
		w.emigrations++
		w.deathsByCause[components.CauseEmigration]++
		w.registry.RecordEmigration(c.ID)
		w.recorder.RecordEmigration(diet)
		return
	}
	w.deaths++
	w.deathsByCause[c.Cause]++
	w.registry.RecordDeath(c.ID)
	w.recorder.RecordDeath(diet, c.Cause)
}

// AdvanceClock moves simulation time forward.
func (w *World) AdvanceClock(dt float64) {
	w.time += dt
}

// Accessors.

func (w *World) ECS() *ecs.World              { return w.ecs }
func (w *World) Time() float64                { return w.time }
func (w *World) Config() *config.Config       { return w.cfg }
func (w *World) Controls() *config.Controls   { return w.controls }
func (w *World) Rand() *rand.Rand             { return w.rng }
func (w *World) IDs() *components.IDAllocator { return &w.ids }
func (w *World) Registry() *species.Registry  { return w.registry }
func (w *World) Recorder() Recorder           { return w.recorder }
func (w *World) AliveCount() int              { return w.alive }
func (w *World) FoodCount() int               { return w.foodCount }
func (w *World) CorpseCount() int             { return w.corpseCount }

// Creatures returns a snapshot of all creatures in entity order. It may
// contain creatures that died this tick until Cleanup runs.
func (w *World) Creatures() []*organism.Creature {
	out := make([]*organism.Creature, 0, w.alive)
	query := w.organismFilter.Query()
	for query.Next() {
		out = append(out, query.Get().Creature)
	}
	return append(out, w.born...)
}
