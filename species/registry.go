// Package species clusters creatures into species by genetic distance.
package species

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/critters/traits"
)

// Species is a cluster of genetically similar creatures. Records persist
// after the population reaches zero so lineage statistics survive.
type Species struct {
	ID            int
	Name          string
	Prototype     traits.Traits // running average of member traits
	Population    int
	TotalBirths   int
	TotalDeaths   int
	Emigrations   int
	MaxGeneration int
	CreatedAt     float64
	Color         traits.RGB
}

// Extinct reports whether the species has no living members.
func (s *Species) Extinct() bool {
	return s.Population <= 0
}

// Registry owns the species collection and the creature to species mapping.
// One registry is scoped to one simulation run.
type Registry struct {
	threshold float64
	species   []*Species // ordered by ID
	byID      map[int]*Species
	members   map[uint64]int
	nextID    int
}

// NewRegistry creates an empty registry. Creatures join an existing species
// when their RMS distance to its prototype is below threshold.
func NewRegistry(threshold float64) *Registry {
	return &Registry{
		threshold: threshold,
		byID:      make(map[int]*Species),
		members:   make(map[uint64]int),
		nextID:    1,
	}
}

// Reset drops every species and membership.
func (r *Registry) Reset() {
	r.species = nil
	r.byID = make(map[int]*Species)
	r.members = make(map[uint64]int)
	r.nextID = 1
}

// FindMatchingSpecies returns the closest non-extinct species whose
// prototype lies within the threshold, or nil.
func (r *Registry) FindMatchingSpecies(t traits.Traits) *Species {
	var best *Species
	bestDist := r.threshold
	for _, sp := range r.species {
		if sp.Extinct() {
			continue
		}
		if d := traits.Distance(t, sp.Prototype); d < bestDist {
			best, bestDist = sp, d
		}
	}
	return best
}

// AssignSpecies places a newborn in a matching species or founds a new one,
// and returns the species ID. Existing members are never re-evaluated.
func (r *Registry) AssignSpecies(creatureID uint64, t traits.Traits, generation int, now float64) int {
	if id, ok := r.members[creatureID]; ok {
		return id
	}

	sp := r.FindMatchingSpecies(t)
	if sp == nil {
		sp = &Species{
			ID:        r.nextID,
			Name:      GenerateName(t),
			Prototype: t,
			CreatedAt: now,
			Color:     traits.Color(t),
		}
		r.nextID++
		r.species = append(r.species, sp)
		r.byID[sp.ID] = sp
		slog.Debug("species_created",
			"species", sp.ID,
			"name", sp.Name,
			"diet", t.DietPreference,
			"generation", generation,
		)
	}

	sp.Population++
	sp.TotalBirths++
	if generation > sp.MaxGeneration {
		sp.MaxGeneration = generation
	}

	// proto += (traits - proto) / population
	proto := sp.Prototype.Vector()
	diff := t.Vector()
	floats.Sub(diff, proto)
	floats.AddScaled(proto, 1/float64(sp.Population), diff)
	sp.Prototype = traits.FromVector(proto)

	r.members[creatureID] = sp.ID
	return sp.ID
}

// RecordDeath removes a dead creature from its species.
func (r *Registry) RecordDeath(creatureID uint64) {
	if sp := r.release(creatureID); sp != nil {
		sp.TotalDeaths++
	}
}

// RecordEmigration removes a creature that left the world. Emigrants are
// not counted as deaths.
func (r *Registry) RecordEmigration(creatureID uint64) {
	if sp := r.release(creatureID); sp != nil {
		sp.Emigrations++
	}
}

func (r *Registry) release(creatureID uint64) *Species {
	id, ok := r.members[creatureID]
	if !ok {
		return nil
	}
	delete(r.members, creatureID)
	sp := r.byID[id]
	if sp == nil {
		return nil
	}
	sp.Population--
	if sp.Population <= 0 {
		sp.Population = 0
		slog.Debug("species_extinct", "species", sp.ID, "name", sp.Name, "births", sp.TotalBirths)
	}
	return sp
}

// SpeciesOf returns the species ID of a creature.
func (r *Registry) SpeciesOf(creatureID uint64) (int, bool) {
	id, ok := r.members[creatureID]
	return id, ok
}

// AreSameSpecies reports whether both creatures are mapped to the same species.
func (r *Registry) AreSameSpecies(a, b uint64) bool {
	ia, okA := r.members[a]
	ib, okB := r.members[b]
	return okA && okB && ia == ib
}

// Get returns a species by ID, or nil.
func (r *Registry) Get(id int) *Species {
	return r.byID[id]
}

// All returns every species ever created, extinct included, ordered by ID.
func (r *Registry) All() []*Species {
	return r.species
}

// Active returns living species sorted by population, largest first.
func (r *Registry) Active() []*Species {
	out := make([]*Species, 0, len(r.species))
	for _, sp := range r.species {
		if !sp.Extinct() {
			out = append(out, sp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Population > out[j].Population
	})
	return out
}

// ActiveCount returns the number of living species.
func (r *Registry) ActiveCount() int {
	n := 0
	for _, sp := range r.species {
		if !sp.Extinct() {
			n++
		}
	}
	return n
}

// MemberCount returns the number of mapped creatures.
func (r *Registry) MemberCount() int {
	return len(r.members)
}
