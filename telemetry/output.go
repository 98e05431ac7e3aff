package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/critters/config"
)

// csvFile appends gocsv records, writing the header only once.
type csvFile struct {
	name          string
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{name: name, f: f}, nil
}

var errOutputClosed = errors.New("output closed")

// write marshals a slice of tagged structs.
func (c *csvFile) write(records any) error {
	if c == nil {
		return errOutputClosed
	}
	var err error
	if c.headerWritten {
		err = gocsv.MarshalWithoutHeaders(records, c.f)
	} else {
		err = gocsv.Marshal(records, c.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	c.headerWritten = true
	return nil
}

// SpeciesRow is one line of species.csv.
type SpeciesRow struct {
	WindowEnd     int64   `csv:"window_end"`
	SimTime       float64 `csv:"sim_time"`
	ID            int     `csv:"species_id"`
	Name          string  `csv:"name"`
	Population    int     `csv:"population"`
	TotalBirths   int     `csv:"births"`
	TotalDeaths   int     `csv:"deaths"`
	Emigrations   int     `csv:"emigrations"`
	MaxGeneration int     `csv:"max_generation"`
	Diet          float64 `csv:"diet"`
}

// OutputManager writes experiment output: a config snapshot plus
// stats.csv, species.csv, perf.csv and bookmarks.csv. After a reset the
// files move to a numbered subdirectory so that every run has its own
// snapshot and its tick columns never restart mid-file.
type OutputManager struct {
	root      string
	dir       string
	resets    int
	stats     *csvFile
	species   *csvFile
	perf      *csvFile
	bookmarks *csvFile
}

// NewOutputManager creates the output directory and files. Returns nil if
// dir is empty (output disabled); all methods are no-ops on nil.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	om := &OutputManager{root: dir}
	if err := om.open(dir); err != nil {
		return nil, err
	}
	return om, nil
}

func (om *OutputManager) open(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	om.dir = dir
	for _, slot := range []struct {
		dst  **csvFile
		name string
	}{
		{&om.stats, "stats.csv"},
		{&om.species, "species.csv"},
		{&om.perf, "perf.csv"},
		{&om.bookmarks, "bookmarks.csv"},
	} {
		f, err := createCSV(dir, slot.name)
		if err != nil {
			om.Close()
			return err
		}
		*slot.dst = f
	}
	return nil
}

// Rotate closes the current files and opens a fresh set under
// <root>/reset-NNN, writing cfg as that run's config.yaml.
func (om *OutputManager) Rotate(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	if err := om.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	om.resets++
	if err := om.open(filepath.Join(om.root, fmt.Sprintf("reset-%03d", om.resets))); err != nil {
		return err
	}
	return om.WriteConfig(cfg)
}

// WriteConfig saves the configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStats appends a window to stats.csv.
func (om *OutputManager) WriteStats(s WindowStats) error {
	if om == nil {
		return nil
	}
	return om.stats.write([]WindowStats{s})
}

// WriteSpecies appends one row per living species to species.csv.
func (om *OutputManager) WriteSpecies(windowEnd int64, simTime float64, species []SpeciesStats) error {
	if om == nil || len(species) == 0 {
		return nil
	}
	rows := make([]SpeciesRow, len(species))
	for i, sp := range species {
		rows[i] = SpeciesRow{
			WindowEnd:     windowEnd,
			SimTime:       simTime,
			ID:            sp.ID,
			Name:          sp.Name,
			Population:    sp.Population,
			TotalBirths:   sp.TotalBirths,
			TotalDeaths:   sp.TotalDeaths,
			Emigrations:   sp.Emigrations,
			MaxGeneration: sp.MaxGeneration,
			Diet:          sp.Diet,
		}
	}
	return om.species.write(rows)
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(s PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{s.ToCSV(windowEnd)})
}

// WriteBookmark appends a bookmark to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write([]Bookmark{b})
}

// Dir returns the directory the current run writes to.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files. Closing twice is a no-op.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var errs []error
	for _, c := range []**csvFile{&om.stats, &om.species, &om.perf, &om.bookmarks} {
		if *c != nil {
			errs = append(errs, (*c).f.Close())
			*c = nil
		}
	}
	return errors.Join(errs...)
}
