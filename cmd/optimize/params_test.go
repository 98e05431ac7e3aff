package main

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/telemetry"
)

func TestDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	for i, spec := range pv.Specs {
		if math.Abs(got[i]-spec.Default) > 1e-9 {
			t.Errorf("%s: config has %v, table default %v", spec.Path, got[i], spec.Default)
		}
		if spec.Default < spec.Min || spec.Default > spec.Max {
			t.Errorf("%s: default %v outside [%v, %v]", spec.Name, spec.Default, spec.Min, spec.Max)
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	values := make([]float64, pv.Dim())
	for i := range values {
		values[i] = 1e6
	}

	cfg := config.Default()
	pv.ApplyToConfig(cfg, values)

	for i, v := range pv.ExtractFromConfig(cfg) {
		if v != pv.Specs[i].Max {
			t.Errorf("%s = %v, want clamped to %v", pv.Specs[i].Name, v, pv.Specs[i].Max)
		}
	}
}

func TestNormalizeInverse(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-9 {
			t.Errorf("%s: %v != %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestComputeQuality(t *testing.T) {
	if q := computeQuality(nil); q != 0 {
		t.Errorf("no windows: quality = %v, want 0", q)
	}

	healthy := make([]telemetry.WindowStats, 10)
	for i := range healthy {
		healthy[i] = telemetry.WindowStats{Population: 100, DietStd: 0.25, ActiveSpecies: 8, EnergyP50: 0.5}
	}
	collapsed := make([]telemetry.WindowStats, 10)
	for i := range collapsed {
		collapsed[i] = telemetry.WindowStats{Population: 10 + 90*(i%2), DietStd: 0.02, ActiveSpecies: 1, EnergyP50: 0.1}
	}

	qh, qc := computeQuality(healthy), computeQuality(collapsed)
	if qh <= qc {
		t.Errorf("healthy quality %v should beat collapsed %v", qh, qc)
	}
	if qh < 0 || qh > 1 {
		t.Errorf("quality %v outside [0,1]", qh)
	}

	long := computeFitness(&runResult{survivalTicks: 1000, windowStats: healthy})
	short := computeFitness(&runResult{survivalTicks: 500, windowStats: healthy})
	if long >= short {
		t.Errorf("longer survival should have lower fitness: %v vs %v", long, short)
	}
}

func TestEvalLog(t *testing.T) {
	pv := NewParamVector()
	path := filepath.Join(t.TempDir(), "log.csv")
	l, err := newEvalLog(path, pv)
	if err != nil {
		t.Fatalf("newEvalLog: %v", err)
	}
	if err := l.Append(1, -1200, 0.5, pv.DefaultVector()); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if len(rows[0]) != 3+pv.Dim() || len(rows[1]) != len(rows[0]) {
		t.Errorf("column count mismatch: header %d, row %d", len(rows[0]), len(rows[1]))
	}
	if rows[1][0] != "1" || rows[1][1] != "-1200.000000" {
		t.Errorf("row = %v", rows[1][:3])
	}
}

func TestProgressTracksBest(t *testing.T) {
	p := newProgress(10, 60)
	p.record(-100, []float64{1})
	p.record(-300, []float64{3})
	p.record(-200, []float64{2})

	if p.evals != 3 {
		t.Errorf("evals = %d, want 3", p.evals)
	}
	if p.bestFitness != -300 || p.best[0] != 3 {
		t.Errorf("best = %v %v, want -300 [3]", p.bestFitness, p.best)
	}

	fitness := computeFitness(&runResult{survivalTicks: 600})
	if got := p.survivalSec(fitness, 0); math.Abs(got-10) > 1e-9 {
		t.Errorf("survivalSec = %v, want 10", got)
	}
}
