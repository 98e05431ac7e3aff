package game

import "log/slog"

// flushTelemetry closes the stats window when due: it logs, writes CSV
// output, runs bookmark detection, and notifies the window callback.
func (e *Engine) flushTelemetry() {
	w := e.world
	if !e.collector.ShouldFlush(w.Time()) {
		return
	}

	stats := e.collector.Flush(e.tick, w.Time(), w.Sample())
	perfStats := e.perf.Stats()

	if e.onWindow != nil {
		e.onWindow(stats)
	}

	if e.opts.LogStats {
		stats.LogStats()
		slog.Info("perf", "stats", perfStats)
	}

	if e.output != nil {
		if err := e.output.WriteStats(stats); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if err := e.output.WriteSpecies(stats.WindowEndTick, stats.SimTimeSec, w.Stats().Species); err != nil {
			slog.Error("failed to write species", "error", err)
		}
		if err := e.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range e.bookmarks.Check(stats) {
		if e.opts.LogStats {
			bm.LogBookmark()
		}
		if e.output != nil {
			if err := e.output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}
