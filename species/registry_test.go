package species

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/critters/traits"
)

func uniform(v float64) traits.Traits {
	vals := make([]float64, traits.Count)
	for i := range vals {
		vals[i] = v
	}
	return traits.FromVector(vals)
}

func TestRegistry(t *testing.T) {
	t.Run("Similar Traits Share Species", func(t *testing.T) {
		r := NewRegistry(0.15)

		a := r.AssignSpecies(1, uniform(0.5), 0, 0)
		b := r.AssignSpecies(2, uniform(0.55), 1, 1)
		require.Equal(t, a, b)
		require.True(t, r.AreSameSpecies(1, 2))

		sp := r.Get(a)
		require.NotNil(t, sp)
		assert.Equal(t, 2, sp.Population)
		assert.Equal(t, 2, sp.TotalBirths)
		assert.Equal(t, 1, sp.MaxGeneration)
		assert.InDelta(t, 0.525, sp.Prototype.Speed, 1e-9)
	})

	t.Run("Distant Traits Found New Species", func(t *testing.T) {
		r := NewRegistry(0.15)

		a := r.AssignSpecies(1, uniform(0.1), 0, 0)
		b := r.AssignSpecies(2, uniform(0.9), 0, 0)
		require.NotEqual(t, a, b)
		require.False(t, r.AreSameSpecies(1, 2))
		require.Len(t, r.All(), 2)
	})

	t.Run("Death Keeps Record", func(t *testing.T) {
		r := NewRegistry(0.15)

		id := r.AssignSpecies(1, uniform(0.3), 0, 0)
		r.RecordDeath(1)

		sp := r.Get(id)
		require.NotNil(t, sp)
		assert.True(t, sp.Extinct())
		assert.Equal(t, 1, sp.TotalDeaths)
		assert.Empty(t, r.Active())
		assert.Len(t, r.All(), 1)

		_, ok := r.SpeciesOf(1)
		assert.False(t, ok)

		// Double report is ignored.
		r.RecordDeath(1)
		assert.Equal(t, 1, sp.TotalDeaths)
	})

	t.Run("Extinct Species Not Matched", func(t *testing.T) {
		r := NewRegistry(0.15)

		first := r.AssignSpecies(1, uniform(0.3), 0, 0)
		r.RecordDeath(1)
		second := r.AssignSpecies(2, uniform(0.3), 0, 5)
		assert.NotEqual(t, first, second)
	})

	t.Run("Emigration Is Not Death", func(t *testing.T) {
		r := NewRegistry(0.15)

		id := r.AssignSpecies(1, uniform(0.3), 0, 0)
		r.AssignSpecies(2, uniform(0.3), 0, 0)
		r.RecordEmigration(1)

		sp := r.Get(id)
		assert.Equal(t, 1, sp.Population)
		assert.Equal(t, 0, sp.TotalDeaths)
		assert.Equal(t, 1, sp.Emigrations)
	})

	t.Run("Population Matches Members", func(t *testing.T) {
		r := NewRegistry(0.15)
		for i := uint64(1); i <= 30; i++ {
			r.AssignSpecies(i, uniform(float64(i%3)*0.4), 0, 0)
		}
		for i := uint64(1); i <= 30; i += 4 {
			r.RecordDeath(i)
		}

		total := 0
		for _, sp := range r.Active() {
			total += sp.Population
		}
		assert.Equal(t, r.MemberCount(), total)
		assert.Equal(t, 3, r.ActiveCount())
	})

	t.Run("Reassign Is Idempotent", func(t *testing.T) {
		r := NewRegistry(0.15)
		id := r.AssignSpecies(1, uniform(0.2), 0, 0)
		require.Equal(t, id, r.AssignSpecies(1, uniform(0.9), 0, 0))
		assert.Equal(t, 1, r.Get(id).Population)
	})
}

func TestActiveSortedByPopulation(t *testing.T) {
	r := NewRegistry(0.15)
	r.AssignSpecies(1, uniform(0.1), 0, 0)
	r.AssignSpecies(2, uniform(0.9), 0, 0)
	r.AssignSpecies(3, uniform(0.9), 0, 0)

	active := r.Active()
	require.Len(t, active, 2)
	assert.Equal(t, 2, active[0].Population)
}

func TestGenerateNameDeterministic(t *testing.T) {
	a := GenerateName(uniform(0.2))
	b := GenerateName(uniform(0.2))
	assert.Equal(t, a, b)
	assert.NotEqual(t, GenerateName(uniform(0)), GenerateName(uniform(1)))
	assert.NotEmpty(t, GenerateName(uniform(1)))
}
