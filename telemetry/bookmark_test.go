package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_CarnivoreEmergence(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if bms := bd.Check(WindowStats{WindowEndTick: 600, Herbivores: 50, Carnivores: 1}); hasBookmark(bms, BookmarkCarnivoreEmergence) {
		t.Error("emergence fired with a single carnivore")
	}

	bms := bd.Check(WindowStats{WindowEndTick: 1200, SimTimeSec: 20, Herbivores: 50, Carnivores: 4})
	if !hasBookmark(bms, BookmarkCarnivoreEmergence) {
		t.Fatal("expected carnivore_emergence bookmark")
	}
	if bms[0].Tick != 1200 || bms[0].SimTime != 20 {
		t.Errorf("bookmark not stamped with window end: %+v", bms[0])
	}

	if bms := bd.Check(WindowStats{WindowEndTick: 1800, Herbivores: 50, Carnivores: 8}); hasBookmark(bms, BookmarkCarnivoreEmergence) {
		t.Error("emergence should fire only once")
	}
}

func TestBookmarkDetector_HerbivoreCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 600), Population: 100, Herbivores: 100})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 3000, Population: 50, Herbivores: 50})
	if !hasBookmark(bms, BookmarkHerbivoreCrash) {
		t.Error("expected herbivore_crash bookmark")
	}
}

func TestBookmarkDetector_HuntingSurge(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 600), Kills: 2})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 3000, Kills: 9})
	if !hasBookmark(bms, BookmarkHuntingSurge) {
		t.Error("expected hunting_surge bookmark")
	}
}

func TestBookmarkDetector_SpeciationBurst(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 4; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 600), ActiveSpecies: 4})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 3000, ActiveSpecies: 9})
	if !hasBookmark(bms, BookmarkSpeciationBurst) {
		t.Error("expected speciation_burst bookmark")
	}
}

func TestBookmarkDetector_StableEcosystem(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	for i := 0; i < 12; i++ {
		bms := bd.Check(WindowStats{
			WindowEndTick: int64(i * 600),
			Population:    120,
			Herbivores:    100,
			Omnivores:     15,
			Carnivores:    5,
		})
		if hasBookmark(bms, BookmarkStableEcosystem) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("stable_ecosystem fired %d times, want exactly once", fired)
	}
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if bms := bd.Check(WindowStats{Population: 0}); hasBookmark(bms, BookmarkExtinction) {
		t.Error("extinction fired before any population existed")
	}
	bd.Check(WindowStats{Population: 5})
	if bms := bd.Check(WindowStats{Population: 0}); !hasBookmark(bms, BookmarkExtinction) {
		t.Error("expected extinction bookmark")
	}
}
