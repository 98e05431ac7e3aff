package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/organism"
	"github.com/pthm-cable/critters/telemetry"
	"github.com/pthm-cable/critters/world"
)

// Collisions resolves contact between creatures and food, corpses, and
// each other. It rebuilds the world's spatial indexes before resolving.
type Collisions struct {
	world  *world.World
	filter *ecs.Filter1[world.Organism]

	creatureBuf []*organism.Creature
	herdBuf     []*organism.Creature
	entityBuf   []ecs.Entity
}

// NewCollisions creates the collision system for w.
func NewCollisions(w *world.World) *Collisions {
	return &Collisions{
		world:  w,
		filter: ecs.NewFilter1[world.Organism](w.ECS()),
	}
}

// Update runs the food, corpse, and predation passes.
func (s *Collisions) Update(dt float64) {
	s.world.UpdateSpatialHashes()
	s.FeedPlants(dt)
	s.Scavenge(dt)
	s.Predation(dt)
}

// FeedPlants lets non-carnivores bite the nearest food they touch.
func (s *Collisions) FeedPlants(dt float64) {
	w := s.world
	f := &w.Config().Feeding
	reach := w.Config().Food.Large.Size

	query := s.filter.Query()
	for query.Next() {
		c := query.Get().Creature
		if !c.Alive || c.Traits.IsCarnivore() {
			continue
		}
		room := c.MaxEnergy() - c.Energy
		if room <= 0 {
			continue
		}

		s.entityBuf = w.NearbyFood(s.entityBuf[:0], c.Pos.X, c.Pos.Y, c.Radius()+reach)
		var food *components.Food
		var foodPos *components.Position
		bestDist := math.Inf(1)
		for _, e := range s.entityBuf {
			pos, fd := w.Food(e)
			d := c.DistanceTo(pos.X, pos.Y)
			if d <= c.Radius()+fd.Size && d < bestDist {
				food, foodPos, bestDist = fd, pos, d
			}
		}
		if food == nil {
			continue
		}

		bite := f.BiteRate * dt * food.BiteFactor * (0.5 + c.Traits.Size)
		if c.Traits.IsHerbivore() {
			bite *= 1 + f.HerbivoreSizeBonus*c.Traits.Size
		} else {
			bite *= f.OmnivorePlantPenalty
		}
		bite /= 1 + f.CompetitionDiscount*float64(s.competitors(c, foodPos))

		gained := c.Eat(food.Bite(math.Min(bite, room)))
		w.Recorder().RecordEnergy(telemetry.SourcePlants, gained)
	}
}

// competitors counts other plant eaters crowding the same food.
func (s *Collisions) competitors(c *organism.Creature, pos *components.Position) int {
	s.creatureBuf = s.world.NearbyCreatures(s.creatureBuf[:0], pos.X, pos.Y, s.world.Config().Feeding.CompetitionRadius)
	n := 0
	for _, o := range s.creatureBuf {
		if o != c && !o.Traits.IsCarnivore() {
			n++
		}
	}
	return n
}

// Scavenge lets carnivores and omnivores feed on corpses they touch.
// Carnivores extract more from carrion than omnivores.
func (s *Collisions) Scavenge(dt float64) {
	w := s.world
	f := &w.Config().Feeding
	reach := w.Config().Phenotype.MaxSize

	query := s.filter.Query()
	for query.Next() {
		c := query.Get().Creature
		if !c.Alive || c.Traits.IsHerbivore() {
			continue
		}
		room := c.MaxEnergy() - c.Energy
		if room <= 0 {
			continue
		}

		s.entityBuf = w.NearbyCorpses(s.entityBuf[:0], c.Pos.X, c.Pos.Y, c.Radius()+reach)
		var corpse *components.Corpse
		bestDist := math.Inf(1)
		for _, e := range s.entityBuf {
			pos, cp := w.Corpse(e)
			d := c.DistanceTo(pos.X, pos.Y)
			if d <= c.Radius()+cp.Size && d < bestDist {
				corpse, bestDist = cp, d
			}
		}
		if corpse == nil {
			continue
		}

		extraction := f.OmnivoreScavengeExtraction
		if c.Traits.IsCarnivore() {
			extraction = f.CarnivoreScavengeExtraction
		}
		bite := math.Min(f.ScavengeRate*dt*(0.5+c.Traits.Size), room/extraction)
		gained := c.Eat(corpse.Bite(bite) * extraction)
		w.Recorder().RecordEnergy(telemetry.SourceCarrion, gained)
	}
}

// Predation lets every ready, aggressive non-herbivore strike one huntable
// creature in contact range.
func (s *Collisions) Predation(dt float64) {
	w := s.world
	cm := &w.Config().Combat
	reach := w.Config().Phenotype.MaxSize + cm.ContactMargin

	query := s.filter.Query()
	for query.Next() {
		c := query.Get().Creature
		if !c.Alive || c.Traits.IsHerbivore() || c.Traits.Aggression < cm.MinAggression || !c.CanAttack() {
			continue
		}

		s.creatureBuf = w.NearbyCreatures(s.creatureBuf[:0], c.Pos.X, c.Pos.Y, c.Radius()+reach)
		var prey *organism.Creature
		bestDist := math.Inf(1)
		for _, p := range s.creatureBuf {
			if p == c {
				continue
			}
			d := c.DistanceTo(p.Pos.X, p.Pos.Y)
			if d <= c.Radius()+p.Radius()+cm.ContactMargin && d < bestDist && c.CanHunt(p) {
				prey, bestDist = p, d
			}
		}
		if prey != nil {
			s.strike(c, prey)
		}
	}
}

// strike resolves one attack: damage with pack, herd, clumsiness and
// omnivore modifiers, the prey's counter-attack, and the predator's meal.
func (s *Collisions) strike(c, prey *organism.Creature) {
	w := s.world
	cm := &w.Config().Combat

	allies := s.packAllies(c, prey)
	herd := math.Min(float64(countHerd(w, &s.herdBuf, prey, c))*cm.HerdProtection, cm.MaxHerdProtection)
	if allies > 0 {
		herd *= cm.PackHerdReduction
	}

	damage := c.AttackDamage() * (1 + cm.PackBonus*float64(allies)) * (1 - herd)
	if c.Traits.Size > cm.ClumsySize {
		damage *= 1 - 0.5*(c.Traits.Size-cm.ClumsySize)/(1-cm.ClumsySize)
	}
	omnivore := c.Traits.IsOmnivore()
	if omnivore {
		damage *= cm.OmnivoreDamagePenalty
	}

	before := prey.Energy
	prey.TakeDamage(damage, components.CausePredation)
	c.ResetAttack()

	extraction := cm.OmnivoreExtraction
	if c.Traits.IsCarnivore() {
		extraction = cm.CarnivoreExtraction
	}

	if !prey.Alive {
		// Never more than the prey held
		share := 1 / (1 + 0.5*float64(allies))
		sizeEff := clamp(prey.Radius()/c.Radius(), 0.5, 1)
		gained := c.Eat(before * extraction * share * sizeEff)
		w.Recorder().RecordKill()
		w.Recorder().RecordEnergy(telemetry.SourcePrey, gained)
	} else {
		gained := c.Eat(math.Min(damage, before) * cm.WoundFeedFraction * extraction)
		w.Recorder().RecordEnergy(telemetry.SourcePrey, gained)
	}

	c.TakeDamage(s.counterDamage(c, prey, allies, omnivore), components.CauseCombat)
}

// counterDamage is what the prey inflicts back. Packs, a size advantage and
// carnivore stamina reduce it; omnivores are more exposed.
func (s *Collisions) counterDamage(c, prey *organism.Creature, allies int, omnivore bool) float64 {
	cm := &s.world.Config().Combat
	counter := cm.CounterBase * prey.Traits.Strength * (0.5 + prey.Traits.Aggression)
	counter /= 1 + float64(allies)
	if ratio := prey.Radius() / c.Radius(); ratio < 1 {
		counter *= ratio
	}
	if c.Traits.IsCarnivore() {
		counter *= 1 - 0.5*c.Traits.Stamina
	}
	if omnivore {
		counter *= 1.3
	}
	return counter
}

// packAllies counts up to MaxPackAllies same-diet hunters near a social
// predator. Solitary predators hunt alone.
func (s *Collisions) packAllies(c, prey *organism.Creature) int {
	cfg := s.world.Config()
	if c.Traits.SocialBehavior <= cfg.Behavior.SocialThreshold {
		return 0
	}
	s.herdBuf = s.world.NearbyCreatures(s.herdBuf[:0], c.Pos.X, c.Pos.Y, cfg.Combat.PackRadius)
	diet := c.Traits.Diet()
	n := 0
	for _, o := range s.herdBuf {
		if o == c || o == prey || o.Traits.Diet() != diet || o.Traits.Aggression < cfg.Combat.MinAggression {
			continue
		}
		n++
		if n == cfg.Combat.MaxPackAllies {
			break
		}
	}
	return n
}

// countHerd counts creatures sharing the prey's diet type within herd
// radius, excluding the hunter.
func countHerd(w *world.World, buf *[]*organism.Creature, prey, hunter *organism.Creature) int {
	*buf = w.NearbyCreatures((*buf)[:0], prey.Pos.X, prey.Pos.Y, w.Config().Combat.HerdRadius)
	diet := prey.Traits.Diet()
	n := 0
	for _, o := range *buf {
		if o != prey && o != hunter && o.Traits.Diet() == diet {
			n++
		}
	}
	return n
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
