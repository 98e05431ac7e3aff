package components

import "testing"

func TestFoodBite(t *testing.T) {
	f := Food{Energy: 10, MaxEnergy: 10}

	if got := f.Bite(4); got != 4 {
		t.Errorf("first bite = %v, want 4", got)
	}
	if f.Consumed {
		t.Error("food consumed after partial bite")
	}
	if got := f.Bite(100); got != 6 {
		t.Errorf("final bite = %v, want 6", got)
	}
	if !f.Consumed || f.Energy != 0 {
		t.Errorf("food should be consumed with zero energy, got %+v", f)
	}
	if got := f.Bite(1); got != 0 {
		t.Errorf("bite of consumed food = %v, want 0", got)
	}
}

func TestCorpseExpired(t *testing.T) {
	c := Corpse{Energy: 5, CreatedAt: 10}

	if c.Expired(20, 30) {
		t.Error("corpse expired early")
	}
	if !c.Expired(40, 30) {
		t.Error("corpse should expire at decay time")
	}
	c.Bite(10)
	if !c.Expired(11, 30) {
		t.Error("empty corpse should expire")
	}
}

func TestIDAllocator(t *testing.T) {
	var ids IDAllocator
	prev := ids.Peek()
	for i := 0; i < 5; i++ {
		id := ids.Next()
		if id <= prev {
			t.Fatalf("id %d not greater than %d", id, prev)
		}
		prev = id
	}
	if ids.Peek() != 5 {
		t.Errorf("Peek = %d, want 5", ids.Peek())
	}
}

func TestStateStrings(t *testing.T) {
	tests := map[State]string{
		StateWandering:   "wandering",
		StateSeekingFood: "seeking_food",
		StateSeekingMate: "seeking_mate",
		StateHunting:     "hunting",
		StateFleeing:     "fleeing",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
	if !StateHunting.Sprinting() || StateWandering.Sprinting() {
		t.Error("Sprinting classification wrong")
	}
}
