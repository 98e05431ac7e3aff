package components

// State is a creature's current behavioral mode.
type State uint8

const (
	StateWandering State = iota
	StateSeekingFood
	StateSeekingMate
	StateHunting
	StateFleeing
)

func (s State) String() string {
	switch s {
	case StateWandering:
		return "wandering"
	case StateSeekingFood:
		return "seeking_food"
	case StateSeekingMate:
		return "seeking_mate"
	case StateHunting:
		return "hunting"
	case StateFleeing:
		return "fleeing"
	default:
		return "unknown"
	}
}

// Sprinting reports whether the state moves at pursuit or escape pace.
func (s State) Sprinting() bool {
	return s == StateHunting || s == StateFleeing
}

// DeathCause records why a creature left the simulation.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarvation
	CauseOldAge
	CausePredation
	CauseCombat // predator killed by prey counter-attack
	CauseTemperature
	CauseEmigration
)

// NumCauses is the number of DeathCause values including CauseNone.
const NumCauses = int(CauseEmigration) + 1

func (c DeathCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseStarvation:
		return "starvation"
	case CauseOldAge:
		return "old_age"
	case CausePredation:
		return "predation"
	case CauseCombat:
		return "combat"
	case CauseTemperature:
		return "temperature"
	case CauseEmigration:
		return "emigration"
	default:
		return "unknown"
	}
}
