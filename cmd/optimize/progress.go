package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"
)

// evalLog appends one CSV row per evaluation. Columns depend on the
// parameter set, so rows are written positionally.
type evalLog struct {
	f *os.File
	w *csv.Writer
}

func newEvalLog(path string, params *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	l := &evalLog{f: f, w: csv.NewWriter(f)}
	if err := l.write(header); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

// Append writes a row and flushes so partial runs leave a usable log.
func (l *evalLog) Append(eval int, fitness, quality float64, values []float64) error {
	row := make([]string, 0, 3+len(values))
	row = append(row,
		strconv.Itoa(eval),
		strconv.FormatFloat(fitness, 'f', 6, 64),
		strconv.FormatFloat(quality, 'f', 4, 64),
	)
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	return l.write(row)
}

func (l *evalLog) write(row []string) error {
	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("writing eval log: %w", err)
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *evalLog) Close() error {
	l.w.Flush()
	return l.f.Close()
}

// progress tracks the best point seen and estimates time remaining.
type progress struct {
	maxEvals int
	tickRate float64
	start    time.Time

	evals       int
	bestFitness float64
	best        []float64
}

func newProgress(maxEvals int, tickRate float64) *progress {
	return &progress{
		maxEvals:    maxEvals,
		tickRate:    tickRate,
		start:       time.Now(),
		bestFitness: math.Inf(1),
	}
}

// record counts an evaluation and returns its 1-based index.
func (p *progress) record(fitness float64, values []float64) int {
	p.evals++
	if fitness < p.bestFitness {
		p.bestFitness = fitness
		p.best = append(p.best[:0], values...)
	}
	return p.evals
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Second)
}

func (p *progress) eta() time.Duration {
	if p.evals == 0 {
		return 0
	}
	per := time.Since(p.start) / time.Duration(p.evals)
	return (time.Duration(p.maxEvals-p.evals) * per).Round(time.Second)
}

// survivalSec inverts computeFitness to recover the mean survival time.
func (p *progress) survivalSec(fitness, quality float64) float64 {
	return -fitness / (1 + 0.2*quality) / p.tickRate
}

func (p *progress) log(eval int, fitness, quality float64) {
	slog.Info("eval",
		"n", eval,
		"of", p.maxEvals,
		"survived_sec", math.Round(p.survivalSec(fitness, quality)),
		"quality", quality,
		"best_fitness", p.bestFitness,
		"elapsed", p.elapsed().String(),
		"eta", p.eta().String(),
	)
}
