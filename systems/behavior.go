// Package systems holds the per-tick simulation procedures: drive selection
// and movement intents for every creature, and collision resolution for
// feeding, scavenging and predation.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/organism"
	"github.com/pthm-cable/critters/traits"
	"github.com/pthm-cable/critters/world"
)

// Prey scoring weights.
const (
	scoreDistance = 1.0
	scoreWeakness = 0.5
	scoreFrailty  = 0.3
	scoreHerd     = 0.4
	scoreDanger   = 0.3
)

// Drive is the outcome of drive selection for one creature.
type Drive uint8

const (
	DriveThreat Drive = iota
	DriveHunger
	DriveReproduce
	DriveCourt
	DriveSocial
	DriveIdle
)

var driveNames = [...]string{"threat", "hunger", "reproduce", "court", "social", "idle"}

func (d Drive) String() string {
	if int(d) < len(driveNames) {
		return driveNames[d]
	}
	return "unknown"
}

// Behavior picks one drive per creature each tick, in priority order
// threat, hunger, reproduce, court, social, idle, issues the matching
// movement intent, and then integrates the creature.
type Behavior struct {
	world  *world.World
	filter *ecs.Filter1[world.Organism]

	// hunter ID -> current prey, shared so pack mates can join a chase
	targets map[uint64]*organism.Creature

	creatureBuf []*organism.Creature
	entityBuf   []ecs.Entity
}

// NewBehavior creates the behavior system for w.
func NewBehavior(w *world.World) *Behavior {
	return &Behavior{
		world:   w,
		filter:  ecs.NewFilter1[world.Organism](w.ECS()),
		targets: make(map[uint64]*organism.Creature),
	}
}

// Update runs drive selection and Creature.Update for every living
// creature. Offspring born during the pass are first updated next tick.
func (b *Behavior) Update(dt float64) {
	w := b.world
	now := w.Time()

	for id, prey := range b.targets {
		if !prey.Alive {
			delete(b.targets, id)
		}
	}

	query := b.filter.Query()
	for query.Next() {
		c := query.Get().Creature
		if !c.Alive {
			delete(b.targets, c.ID)
			continue
		}
		b.Decide(c, dt, now)
		c.Update(dt, now)
	}
	w.FlushBirths()
}

// Decide selects the creature's drive, sets its state and steers it.
func (b *Behavior) Decide(c *organism.Creature, dt, now float64) Drive {
	if b.respondToThreat(c, dt) {
		return DriveThreat
	}
	if c.IsHungry() {
		b.seekFood(c, dt)
		return DriveHunger
	}
	delete(b.targets, c.ID)

	if c.CanReproduce(now) && b.world.CanAddCreatures() {
		b.reproduce(c, dt, now)
		return DriveReproduce
	}
	if c.ReproductionReadiness(now) >= b.world.Config().Reproduction.ReadinessSeek {
		b.court(c, dt, now)
		return DriveCourt
	}
	if c.Traits.SocialBehavior > b.world.Config().Behavior.SocialThreshold && b.flock(c, dt) {
		return DriveSocial
	}

	c.State = components.StateWandering
	c.Wander(dt)
	return DriveIdle
}

// nearby returns living creatures other than c within radius. The result
// aliases an internal buffer valid until the next call.
func (b *Behavior) nearby(c *organism.Creature, radius float64) []*organism.Creature {
	b.creatureBuf = b.world.NearbyCreatures(b.creatureBuf[:0], c.Pos.X, c.Pos.Y, radius)
	out := b.creatureBuf[:0]
	for _, o := range b.creatureBuf {
		if o != c {
			out = append(out, o)
		}
	}
	b.creatureBuf = out
	return out
}

// respondToThreat flees the nearest capable hunter. A creature not already
// fleeing first rolls against its camouflage; if it believes itself hidden
// it freezes instead.
func (b *Behavior) respondToThreat(c *organism.Creature, dt float64) bool {
	cfg := b.world.Config()
	var threat *organism.Creature
	best := math.Inf(1)
	for _, o := range b.nearby(c, c.Vision()*cfg.Behavior.ThreatRange) {
		if !o.CanHunt(c) {
			continue
		}
		if d := c.DistanceTo(o.Pos.X, o.Pos.Y); d < best {
			threat, best = o, d
		}
	}
	if threat == nil {
		return false
	}

	delete(b.targets, c.ID)
	if c.State != components.StateFleeing &&
		b.world.Rand().Float64() < c.Traits.Camouflage*cfg.Behavior.CamouflageHide {
		c.Freeze()
		return true
	}
	c.State = components.StateFleeing
	c.FleeFrom(threat.Pos.X, threat.Pos.Y, dt)
	return true
}

// seekFood branches on diet.
func (b *Behavior) seekFood(c *organism.Creature, dt float64) {
	c.State = components.StateSeekingFood
	switch c.Traits.Diet() {
	case traits.Herbivore:
		delete(b.targets, c.ID)
		if pos, ok := b.nearestFood(c); ok {
			c.SeekTarget(pos.X, pos.Y, dt)
			return
		}
		c.Explore(dt)

	case traits.Carnivore:
		if pos, ok := b.nearestCorpse(c); ok {
			delete(b.targets, c.ID)
			c.SeekTarget(pos.X, pos.Y, dt)
			return
		}
		if prey := b.packTarget(c); prey != nil {
			b.chase(c, prey, dt)
			return
		}
		if prey := b.bestPrey(c); prey != nil {
			b.chase(c, prey, dt)
			return
		}
		delete(b.targets, c.ID)
		c.Explore(dt)

	default:
		b.omnivoreForage(c, dt)
	}
}

// omnivoreForage prefers plants, then a corpse that is much closer than the
// nearest plant, then vulnerable prey, then exploration.
func (b *Behavior) omnivoreForage(c *organism.Creature, dt float64) {
	cfg := b.world.Config()
	plant, hasPlant := b.nearestFood(c)
	corpse, hasCorpse := b.nearestCorpse(c)

	if hasCorpse {
		dc := c.DistanceTo(corpse.X, corpse.Y)
		if !hasPlant || dc < cfg.Behavior.OmnivoreCorpseProximity*c.DistanceTo(plant.X, plant.Y) {
			delete(b.targets, c.ID)
			c.SeekTarget(corpse.X, corpse.Y, dt)
			return
		}
	}
	if hasPlant {
		delete(b.targets, c.ID)
		c.SeekTarget(plant.X, plant.Y, dt)
		return
	}
	if prey := b.vulnerablePrey(c); prey != nil {
		b.chase(c, prey, dt)
		return
	}
	delete(b.targets, c.ID)
	c.Explore(dt)
}

func (b *Behavior) chase(c, prey *organism.Creature, dt float64) {
	c.State = components.StateHunting
	b.targets[c.ID] = prey
	c.HuntTarget(prey.Pos.X, prey.Pos.Y, dt)
}

func (b *Behavior) nearestFood(c *organism.Creature) (components.Position, bool) {
	b.entityBuf = b.world.NearbyFood(b.entityBuf[:0], c.Pos.X, c.Pos.Y, c.Vision())
	var best components.Position
	bestDist := math.Inf(1)
	for _, e := range b.entityBuf {
		pos, _ := b.world.Food(e)
		if d := c.DistanceTo(pos.X, pos.Y); d < bestDist {
			best, bestDist = *pos, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

func (b *Behavior) nearestCorpse(c *organism.Creature) (components.Position, bool) {
	b.entityBuf = b.world.NearbyCorpses(b.entityBuf[:0], c.Pos.X, c.Pos.Y, c.Vision())
	var best components.Position
	bestDist := math.Inf(1)
	for _, e := range b.entityBuf {
		pos, _ := b.world.Corpse(e)
		if d := c.DistanceTo(pos.X, pos.Y); d < bestDist {
			best, bestDist = *pos, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// packTarget returns prey already being chased by a nearby carnivore ally.
func (b *Behavior) packTarget(c *organism.Creature) *organism.Creature {
	var best *organism.Creature
	bestDist := math.Inf(1)
	for _, ally := range b.nearby(c, c.Vision()) {
		if !ally.Traits.IsCarnivore() || ally.State != components.StateHunting {
			continue
		}
		prey, ok := b.targets[ally.ID]
		if !ok || !c.CanHunt(prey) {
			continue
		}
		if d := c.DistanceTo(prey.Pos.X, prey.Pos.Y); d < bestDist && d <= c.Vision() {
			best, bestDist = prey, d
		}
	}
	return best
}

// bestPrey scores huntable creatures in view by proximity, weakness, frailty,
// herd cover and danger, and returns the highest scorer.
func (b *Behavior) bestPrey(c *organism.Creature) *organism.Creature {
	cfg := b.world.Config()
	vision := c.Vision()
	candidates := append([]*organism.Creature(nil), b.nearby(c, vision)...)

	var best *organism.Creature
	bestScore := math.Inf(-1)
	for _, p := range candidates {
		if !c.CanHunt(p) {
			continue
		}
		d := c.DistanceTo(p.Pos.X, p.Pos.Y)
		herd := math.Min(float64(b.herdSize(p, c))*cfg.Combat.HerdProtection, cfg.Combat.MaxHerdProtection)
		herdFrac := 0.0
		if cfg.Combat.MaxHerdProtection > 0 {
			herdFrac = herd / cfg.Combat.MaxHerdProtection
		}
		score := scoreDistance*(1-d/vision) +
			scoreWeakness*(1-p.EnergyFraction()) +
			scoreFrailty*(1-p.Traits.Strength) -
			scoreHerd*herdFrac -
			scoreDanger*math.Max(0, p.Traits.Strength-c.Traits.Strength)
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	return best
}

// vulnerablePrey returns the nearest huntable creature meeting enough
// weakness criteria: low energy, slow, small, or alone.
func (b *Behavior) vulnerablePrey(c *organism.Creature) *organism.Creature {
	cfg := b.world.Config()
	candidates := append([]*organism.Creature(nil), b.nearby(c, c.Vision())...)

	var best *organism.Creature
	bestDist := math.Inf(1)
	for _, p := range candidates {
		if !c.CanHunt(p) {
			continue
		}
		criteria := 0
		if p.EnergyFraction() < 0.3 {
			criteria++
		}
		if p.MaxSpeed() < c.MaxSpeed() {
			criteria++
		}
		if p.Radius() < 0.7*c.Radius() {
			criteria++
		}
		if b.herdSize(p, c) == 0 {
			criteria++
		}
		if criteria < cfg.Behavior.OmnivoreVulnerabilityCriteria {
			continue
		}
		if d := c.DistanceTo(p.Pos.X, p.Pos.Y); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// herdSize counts same-diet creatures around prey, excluding the hunter.
func (b *Behavior) herdSize(prey, hunter *organism.Creature) int {
	return countHerd(b.world, &b.creatureBuf, prey, hunter)
}

// reproduce handles a creature ready to breed. Crowding lowers the chance
// of trying at all.
func (b *Behavior) reproduce(c *organism.Creature, dt, now float64) {
	w := b.world
	cfg := w.Config()
	rate := w.Controls().MutationRate

	crowd := len(b.nearby(c, cfg.Behavior.CrowdingRadius))
	if w.Rand().Float64()*(1+cfg.Behavior.CrowdingPenalty*float64(crowd)) > 1 {
		c.State = components.StateWandering
		c.Wander(dt)
		return
	}

	if c.PrefersAsexual() {
		w.AddOffspring(c.ReproduceAsexual(w.IDs(), now, rate))
		c.State = components.StateWandering
		c.Wander(dt)
		return
	}

	if mate := b.nearestReadyMate(c, now); mate != nil {
		c.State = components.StateSeekingMate
		if c.DistanceTo(mate.Pos.X, mate.Pos.Y) <= c.Radius()+mate.Radius()+cfg.Combat.ContactMargin {
			w.AddOffspring(c.ReproduceSexual(mate, w.IDs(), now, rate, w.Headroom())...)
			return
		}
		c.SeekTarget(mate.Pos.X, mate.Pos.Y, dt)
		return
	}

	c.State = components.StateWandering
	c.Wander(dt)
	if w.Rand().Float64() < cfg.Behavior.FallbackAsexualRate*dt {
		w.AddOffspring(c.ReproduceAsexual(w.IDs(), now, rate))
	}
}

func (b *Behavior) nearestReadyMate(c *organism.Creature, now float64) *organism.Creature {
	var best *organism.Creature
	bestDist := math.Inf(1)
	for _, o := range b.nearby(c, c.Vision()) {
		if !c.IsCompatibleMate(o) || !o.CanReproduce(now) {
			continue
		}
		if d := c.DistanceTo(o.Pos.X, o.Pos.Y); d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

// court pursues the best partner by readiness*100 - distance among
// compatible creatures that are themselves ready enough. Without one the
// creature explores, pulled toward conspecifics by its sociability.
func (b *Behavior) court(c *organism.Creature, dt, now float64) {
	cfg := b.world.Config()
	c.State = components.StateSeekingMate

	var best *organism.Creature
	bestScore := math.Inf(-1)
	var sumX, sumY float64
	kin := 0
	for _, o := range b.nearby(c, c.Vision()) {
		if !c.IsCompatibleMate(o) {
			continue
		}
		sumX += o.Pos.X
		sumY += o.Pos.Y
		kin++
		readiness := o.ReproductionReadiness(now)
		if readiness < cfg.Reproduction.PartnerMinReadiness {
			continue
		}
		if score := readiness*100 - c.DistanceTo(o.Pos.X, o.Pos.Y); score > bestScore {
			best, bestScore = o, score
		}
	}

	if best != nil {
		c.SeekTarget(best.Pos.X, best.Pos.Y, dt)
		return
	}
	if kin > 0 {
		c.ExploreToward(sumX/float64(kin), sumY/float64(kin), c.Traits.SocialBehavior, dt)
		return
	}
	c.Explore(dt)
}

// flock steers toward the centroid of nearby creatures within the social
// diet band. Returns false when fewer than two are around.
func (b *Behavior) flock(c *organism.Creature, dt float64) bool {
	band := b.world.Config().Behavior.SocialDietBand
	var sumX, sumY float64
	n := 0
	for _, o := range b.nearby(c, c.Vision()) {
		if math.Abs(o.Traits.DietPreference-c.Traits.DietPreference) > band {
			continue
		}
		sumX += o.Pos.X
		sumY += o.Pos.Y
		n++
	}
	if n < 2 {
		return false
	}
	c.State = components.StateWandering
	c.SeekTarget(sumX/float64(n), sumY/float64(n), dt)
	return true
}
