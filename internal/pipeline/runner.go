// Package pipeline runs the batch state machine: collect the sources,
// transform each item with the codec, persist the outputs, and report.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/backmassage/cloak/internal/config"
	"github.com/backmassage/cloak/internal/display"
	"github.com/backmassage/cloak/internal/logging"
	"github.com/backmassage/cloak/internal/report"
)

// Run is the top-level batch entry point. It collects items from src,
// applies op to each one, writes the outputs, and returns aggregate stats.
// A missing source is returned as a *SourceUnavailableError before any
// processing; item failures are counted and logged, never returned.
func Run(ctx context.Context, cfg *config.Config, op Operation, src Source, log *logging.Logger) (RunStats, error) {
	var rs RunStats

	c, err := cfg.Codec()
	if err != nil {
		return rs, err
	}
	if !op.Valid() {
		return rs, fmt.Errorf("invalid operation %q", string(op))
	}

	// --- Collecting ---
	logStage(cfg, log, StageCollecting)
	items, err := Collect(src, cfg.Extension)
	if err != nil {
		log.Error("Source unavailable: %v", err)
		return rs, err
	}
	rs.Total = len(items)
	if rs.Total == 0 {
		log.Warn("No %s files found in %s", cfg.Extension, src)
		return rs, nil
	}

	dir := OutputDir(cfg, src)
	logBatchHeader(cfg, log, op, src, dir, rs.Total)

	// --- Processing ---
	logStage(cfg, log, StageProcessing)
	p := &Processor{Codec: c, Mode: cfg.Mode, Op: op, Workers: cfg.Workers}
	res := p.Process(ctx, items)
	rs.Succeeded = len(res.Succeeded)
	for _, out := range res.Succeeded {
		rs.BytesIn += int64(out.InBytes)
		rs.BytesOut += int64(len(out.Content))
		if op == OpEncode {
			rs.MarkersInserted += out.Stats.CharactersInserted
		} else {
			rs.MarkersRemoved += out.Stats.CharactersInserted
		}
	}

	// --- Persisting ---
	for _, path := range Overwrites(res, items, dir) {
		log.Warn("%s is also an input and will be overwritten", path)
	}
	var persisted Persisted
	var persistErr error
	if cfg.DryRun {
		persisted = Persisted{Dir: dir, Failed: res.Failed}
		for _, out := range res.Succeeded {
			log.Success("[DRY] Would write %s", filepath.Join(dir, out.Name))
		}
	} else {
		logStage(cfg, log, StagePersisting)
		persisted, persistErr = Persist(ctx, res, dir)
		if persistErr != nil {
			log.Error("%v", persistErr)
		}
		for _, path := range persisted.Written {
			log.Success("Wrote %s", path)
		}
	}
	for _, f := range persisted.Failed {
		log.Error("%s: %s", f.Source, f.Message)
	}
	rs.Written = persisted.WrittenCount()
	rs.Failed = persisted.FailedCount()

	// --- Reported ---
	logStage(cfg, log, StageReported)
	if cfg.ReportPath != "" {
		m := buildManifest(cfg, op, c.Marker(), dir, res, persisted)
		if err := m.Write(cfg.ReportPath); err != nil {
			log.Error("Cannot write report: %v", err)
			if persistErr == nil {
				persistErr = err
			}
		} else {
			log.Info("Report: %s (run %s)", cfg.ReportPath, m.RunID)
		}
	}

	if ctx.Err() != nil {
		log.Warn("Interrupted")
	}
	logSummary(cfg, log, op, &rs)
	return rs, persistErr
}

// OutputDir returns where a batch from src is written: the configured
// output directory, else the source directory, else the working directory
// for explicit file lists.
func OutputDir(cfg *config.Config, src Source) string {
	switch {
	case cfg.OutputDir != "":
		return cfg.OutputDir
	case len(src.Files) == 0 && src.Dir != "":
		return src.Dir
	default:
		return "."
	}
}

// buildManifest lists what actually landed on disk. In a dry run every
// succeeded output is listed at its planned path.
func buildManifest(cfg *config.Config, op Operation, marker rune, dir string, res Result, persisted Persisted) *report.Manifest {
	m := report.New(string(op), string(cfg.Mode), marker)
	m.OutputDir = dir
	m.DryRun = cfg.DryRun

	written := make(map[string]bool, len(persisted.Written))
	for _, path := range persisted.Written {
		written[path] = true
	}
	for _, out := range res.Succeeded {
		path := filepath.Join(dir, out.Name)
		if cfg.DryRun || written[path] {
			m.AddItem(out.Source, path, out.Content, out.Stats)
		}
	}
	for _, f := range persisted.Failed {
		m.AddFailure(f.Source, f.Message)
	}
	return m
}

// --- Logging helpers ---

func logStage(cfg *config.Config, log *logging.Logger, stage Stage) {
	log.Debug(cfg.Verbose, "Stage: %s", stage)
}

func logBatchHeader(cfg *config.Config, log *logging.Logger, op Operation, src Source, dir string, total int) {
	log.Info("Found %d files in %s", total, src)
	if op == OpEncode {
		log.Info("Operation: encode (%s mode), marker %s", cfg.Mode, display.FormatMarker(cfg.Marker))
	} else {
		log.Info("Operation: decode, marker %s", display.FormatMarker(cfg.Marker))
	}
	log.Info("Output: %s", dir)
	if cfg.Workers > 1 {
		log.Info("Workers: %d", cfg.Workers)
	}
	if cfg.DryRun {
		log.Info("Dry run: nothing will be written")
	}
	log.Blank()
}

func logSummary(cfg *config.Config, log *logging.Logger, op Operation, rs *RunStats) {
	log.Blank()
	log.Info("==============================")
	log.Info("Done: %d written, %d failed (of %d)", rs.Written, rs.Failed, rs.Total)
	if op == OpEncode {
		log.Info("  Markers inserted: %d", rs.MarkersInserted)
	} else {
		log.Info("  Markers removed: %d", rs.MarkersRemoved)
	}

	if cfg.DryRun {
		log.Info("  Size change: n/a (dry run)")
		return
	}
	log.Info("  Size change: %s (input %s -> output %s)",
		display.FormatBytesWithSign(rs.SizeDelta()),
		display.FormatBytes(rs.BytesIn),
		display.FormatBytes(rs.BytesOut))
	if rs.Failed > 0 {
		log.Warn("  %d item(s) failed; see errors above", rs.Failed)
	}
}
