package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCarnivoreEmergence BookmarkType = "carnivore_emergence"
	BookmarkHerbivoreCrash     BookmarkType = "herbivore_crash"
	BookmarkHuntingSurge       BookmarkType = "hunting_surge"
	BookmarkSpeciationBurst    BookmarkType = "speciation_burst"
	BookmarkStableEcosystem    BookmarkType = "stable_ecosystem"
	BookmarkExtinction         BookmarkType = "extinction"
)

// Bookmark is an automatically detected moment of interest.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	SimTime     float64      `csv:"sim_time"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"sim_time", b.SimTime,
		"description", b.Description,
	)
}

// stableWindows is how many consecutive calm windows make an ecosystem stable.
const stableWindows = 5

// BookmarkDetector watches successive windows for notable transitions.
type BookmarkDetector struct {
	history     []WindowStats // circular buffer
	historySize int
	historyIdx  int
	historyFull bool

	herbivorePeak int
	sawCarnivores bool
	sawPopulation bool
	stableCount   int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableWindows {
		historySize = stableWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest window and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(s WindowStats) []Bookmark {
	var out []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			b.Tick = s.WindowEndTick
			b.SimTime = s.SimTimeSec
			out = append(out, *b)
		}
	}

	add(bd.checkCarnivoreEmergence(s))
	add(bd.checkHerbivoreCrash(s))
	add(bd.checkHuntingSurge(s))
	add(bd.checkSpeciationBurst(s))
	add(bd.checkStableEcosystem(s))
	add(bd.checkExtinction(s))

	bd.addToHistory(s)
	if s.Herbivores > bd.herbivorePeak {
		bd.herbivorePeak = s.Herbivores
	}
	return out
}

func (bd *BookmarkDetector) addToHistory(s WindowStats) {
	bd.history[bd.historyIdx] = s
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	history := bd.getHistory()
	if n > len(history) {
		n = len(history)
	}
	out := make([]WindowStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkCarnivoreEmergence fires the first time a carnivore population of at
// least three appears.
func (bd *BookmarkDetector) checkCarnivoreEmergence(s WindowStats) *Bookmark {
	if bd.sawCarnivores || s.Carnivores < 3 {
		return nil
	}
	bd.sawCarnivores = true
	return &Bookmark{
		Type:        BookmarkCarnivoreEmergence,
		Description: fmt.Sprintf("%d carnivores evolved (diet mean %.2f)", s.Carnivores, s.DietMean),
	}
}

func (bd *BookmarkDetector) checkHerbivoreCrash(s WindowStats) *Bookmark {
	if bd.herbivorePeak == 0 {
		return nil
	}
	drop := 1 - float64(s.Herbivores)/float64(bd.herbivorePeak)
	if drop <= 0.30 || s.Herbivores >= bd.herbivorePeak-10 {
		return nil
	}
	peak := bd.herbivorePeak
	bd.herbivorePeak = s.Herbivores
	return &Bookmark{
		Type:        BookmarkHerbivoreCrash,
		Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", drop*100, peak, s.Herbivores),
	}
}

func (bd *BookmarkDetector) checkHuntingSurge(s WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || s.Kills < 3 {
		return nil
	}
	kills := make([]float64, len(history))
	for i, h := range history {
		kills[i] = float64(h.Kills)
	}
	avg := stat.Mean(kills, nil)
	if avg == 0 || float64(s.Kills) <= 2*avg {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkHuntingSurge,
		Description: fmt.Sprintf("%d kills is %.1fx average (%.1f)", s.Kills, float64(s.Kills)/avg, avg),
	}
}

func (bd *BookmarkDetector) checkSpeciationBurst(s WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}
	counts := make([]float64, len(history))
	for i, h := range history {
		counts[i] = float64(h.ActiveSpecies)
	}
	avg := stat.Mean(counts, nil)
	if float64(s.ActiveSpecies) < 1.5*avg || float64(s.ActiveSpecies) < avg+3 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSpeciationBurst,
		Description: fmt.Sprintf("%d active species vs average %.1f", s.ActiveSpecies, avg),
	}
}

// checkStableEcosystem fires once when herbivores and non-herbivores have
// both stayed within a 20% coefficient of variation for stableWindows windows.
func (bd *BookmarkDetector) checkStableEcosystem(s WindowStats) *Bookmark {
	if s.Herbivores < 10 || s.NonHerbivores() < 3 {
		bd.stableCount = 0
		return nil
	}
	recent := bd.recent(4)
	if len(recent) < 4 {
		return nil
	}

	herb := make([]float64, len(recent))
	other := make([]float64, len(recent))
	for i, h := range recent {
		herb[i] = float64(h.Herbivores)
		other[i] = float64(h.NonHerbivores())
	}

	if cv2(herb) < 0.04 && cv2(other) < 0.04 {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}

	if bd.stableCount != stableWindows {
		return nil
	}
	return &Bookmark{
		Type: BookmarkStableEcosystem,
		Description: fmt.Sprintf("Stable ecosystem with %d herbivores, %d others over %d windows",
			s.Herbivores, s.NonHerbivores(), stableWindows),
	}
}

// cv2 is the squared coefficient of variation.
func cv2(values []float64) float64 {
	mean, variance := stat.PopMeanVariance(values, nil)
	if mean == 0 {
		return 0
	}
	return variance / (mean * mean)
}

func (bd *BookmarkDetector) checkExtinction(s WindowStats) *Bookmark {
	if s.Population > 0 {
		bd.sawPopulation = true
		return nil
	}
	if !bd.sawPopulation {
		return nil
	}
	bd.sawPopulation = false
	return &Bookmark{
		Type:        BookmarkExtinction,
		Description: "Population reached zero",
	}
}
