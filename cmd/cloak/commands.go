package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/backmassage/cloak/internal/check"
	"github.com/backmassage/cloak/internal/clipboard"
	"github.com/backmassage/cloak/internal/codec"
	"github.com/backmassage/cloak/internal/config"
	"github.com/backmassage/cloak/internal/display"
	"github.com/backmassage/cloak/internal/pipeline"
	"github.com/backmassage/cloak/internal/stats"
	"github.com/backmassage/cloak/internal/watch"
)

// TextInput selects where a text command reads from: arguments, a file,
// or stdin.
type TextInput struct {
	Text []string `arg:"" optional:"" help:"Text to transform (default: stdin)."`
	File string   `short:"f" help:"Read text from a file." type:"existingfile"`
}

func (in *TextInput) read(r io.Reader) (string, error) {
	var text, from string
	switch {
	case in.File != "":
		data, err := os.ReadFile(in.File)
		if err != nil {
			return "", err
		}
		text, from = string(data), in.File
	case len(in.Text) > 0:
		text, from = strings.Join(in.Text, " "), "arguments"
	default:
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text, from = string(data), "stdin"
	}
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%s: %w", from, codec.ErrInvalidUTF8)
	}
	return text, nil
}

// EncodeCmd encodes one text.
type EncodeCmd struct {
	TextInput
	Stats  bool   `short:"s" help:"Print statistics after encoding."`
	Copy   bool   `help:"Copy the result to the clipboard."`
	Output string `short:"o" help:"Also save the result to this file." type:"path"`
}

func (c *EncodeCmd) Run(app *App) error {
	text, err := c.read(app.In)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		app.Log.Error("Nothing to encode")
		return errReported
	}
	cd, err := app.Cfg.Codec()
	if err != nil {
		return err
	}
	enc, err := cd.Encode(text, app.Cfg.Mode)
	if err != nil {
		return err
	}
	writeText(app.Out, enc)
	if err := saveText(app, c.Output, enc); err != nil {
		return err
	}
	if c.Stats {
		logStats(app, stats.NewReport(text, enc, cd.Marker()))
	}
	if c.Copy {
		copyText(app, enc)
	}
	return nil
}

// DecodeCmd removes markers from one text.
type DecodeCmd struct {
	TextInput
	Stats  bool   `short:"s" help:"Print statistics after decoding."`
	Copy   bool   `help:"Copy the result to the clipboard."`
	Output string `short:"o" help:"Also save the result to this file." type:"path"`
}

func (c *DecodeCmd) Run(app *App) error {
	text, err := c.read(app.In)
	if err != nil {
		return err
	}
	cd, err := app.Cfg.Codec()
	if err != nil {
		return err
	}
	dec := cd.Decode(text)
	if cd.Count(text) == 0 {
		app.Log.Warn("No %s markers found", display.FormatMarker(cd.Marker()))
	}
	writeText(app.Out, dec)
	if err := saveText(app, c.Output, dec); err != nil {
		return err
	}
	if c.Stats {
		logStats(app, stats.NewReport(dec, text, cd.Marker()))
	}
	if c.Copy {
		copyText(app, dec)
	}
	return nil
}

// StatsCmd reports on a text. Marker-free input is compared with its
// encoding; input that already carries markers is compared with its
// decoding.
type StatsCmd struct {
	TextInput
	JSON bool `help:"Print the report as JSON."`
}

func (c *StatsCmd) Run(app *App) error {
	text, err := c.read(app.In)
	if err != nil {
		return err
	}
	cd, err := app.Cfg.Codec()
	if err != nil {
		return err
	}
	original, modified := text, text
	if cd.Count(text) > 0 {
		original = cd.Decode(text)
	} else {
		modified, err = cd.Encode(text, app.Cfg.Mode)
		if err != nil {
			return err
		}
	}
	r := stats.NewReport(original, modified, cd.Marker())

	if c.JSON {
		enc := json.NewEncoder(app.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	for _, line := range display.FormatStats(r) {
		fmt.Fprintln(app.Out, line)
	}
	return nil
}

// BatchOptions are the flags shared by batch and watch.
type BatchOptions struct {
	Op     string `help:"Operation: encode or decode." enum:"encode,decode" default:"encode"`
	Out    string `short:"o" help:"Output directory (default: next to the inputs)." type:"path"`
	Ext    string `short:"e" help:"Extension of directory files to process (default .txt)."`
	DryRun bool   `help:"Process but write nothing." name:"dry-run"`
	Report string `help:"Write a JSON manifest of the run to this path." type:"path"`
}

func (o *BatchOptions) overrides(ov *config.Overrides) {
	ov.OutputDir = o.Out
	ov.Extension = o.Ext
	ov.DryRun = o.DryRun
	ov.Report = o.Report
}

// BatchCmd runs the pipeline once.
type BatchCmd struct {
	Sources []string `arg:"" help:"A directory, or one or more files."`
	BatchOptions
	Workers int `short:"j" help:"Files processed in parallel (default 1)."`
}

func (c *BatchCmd) overrides(ov *config.Overrides) {
	c.BatchOptions.overrides(ov)
	ov.Workers = c.Workers
}

func (c *BatchCmd) Run(app *App) error {
	op, err := pipeline.ParseOperation(c.Op)
	if err != nil {
		return err
	}
	if err := check.CheckDeps(app.Cfg); err != nil {
		return err
	}
	rs, err := pipeline.Run(app.Ctx, app.Cfg, op, sourceOf(c.Sources), app.Log)
	if err != nil {
		return errReported
	}
	if rs.Failed > 0 || app.Ctx.Err() != nil {
		return errReported
	}
	return nil
}

// AnalyzeCmd prints the per-file analysis table.
type AnalyzeCmd struct {
	Sources []string `arg:"" help:"A directory, or one or more files."`
	Ext     string   `short:"e" help:"Extension of directory files to analyze (default .txt)."`
}

func (c *AnalyzeCmd) overrides(ov *config.Overrides) {
	ov.Extension = c.Ext
}

func (c *AnalyzeCmd) Run(app *App) error {
	if _, err := pipeline.Analyze(app.Ctx, app.Cfg, sourceOf(c.Sources), app.Log, app.Out); err != nil {
		return errReported
	}
	return nil
}

// WatchCmd runs a single-file batch whenever a matching file changes.
type WatchCmd struct {
	Dir string `arg:"" help:"Directory to watch." type:"existingdir"`
	BatchOptions
	Debounce int `help:"Quiet period in milliseconds before a changed file is processed (default 500)."`
}

func (c *WatchCmd) overrides(ov *config.Overrides) {
	c.BatchOptions.overrides(ov)
	ov.Debounce = c.Debounce
}

func (c *WatchCmd) Run(app *App) error {
	op, err := pipeline.ParseOperation(c.Op)
	if err != nil {
		return err
	}
	if err := check.CheckDeps(app.Cfg); err != nil {
		return err
	}

	// Each event runs a one-file batch; its outputs land next to the
	// watched files unless an output directory was given.
	cfg := *app.Cfg
	if cfg.OutputDir == "" {
		cfg.OutputDir = c.Dir
	}
	cfg.ReportPath = ""

	w, err := watch.New(c.Dir, cfg.Extension, time.Duration(cfg.DebounceMillis)*time.Millisecond)
	if err != nil {
		return err
	}
	w.OnError = func(err error) { app.Log.Warn("Watcher: %v", err) }

	app.Log.Info("Watching %s for *%s changes (Ctrl+C to stop)", c.Dir, cfg.Extension)
	return w.Run(app.Ctx, func(ctx context.Context, path string) {
		app.Log.Info("Changed: %s", filepath.Base(path))
		// Run logs its own failures; watching continues regardless.
		_, _ = pipeline.Run(ctx, &cfg, op, pipeline.Source{Files: []string{path}}, app.Log)
	})
}

// CheckCmd prints diagnostics.
type CheckCmd struct{}

func (c *CheckCmd) Run(app *App) error {
	check.RunCheck(app.Ctx, app.Cfg, app.Log)
	return nil
}

// sourceOf maps positional arguments to a batch source: a single directory
// (or a single missing path, reported as unavailable) is a directory
// source; anything else is a file list.
func sourceOf(args []string) pipeline.Source {
	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil || info.IsDir() {
			return pipeline.Source{Dir: config.NormalizeDirArg(args[0])}
		}
	}
	return pipeline.Source{Files: args}
}

// writeText prints s, adding a final newline when s has none.
func writeText(w io.Writer, s string) {
	fmt.Fprint(w, s)
	if !strings.HasSuffix(s, "\n") {
		fmt.Fprintln(w)
	}
}

// saveText writes s to path when path is set. The file holds the result
// exactly, without the newline added on stdout.
func saveText(app *App, path, s string) error {
	if path == "" {
		return nil
	}
	if err := pipeline.WriteAtomic(path, []byte(s)); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	app.Log.Success("Result saved to %s", path)
	return nil
}

func logStats(app *App, r stats.Report) {
	for _, line := range display.FormatStats(r) {
		app.Log.Info("%s", line)
	}
}

// copyText never fails the command: a missing clipboard is a warning.
func copyText(app *App, text string) {
	cb := app.Clipboard
	if cb == nil {
		cb = clipboard.Detect(app.Ctx)
	}
	if err := cb.Copy(app.Ctx, text); err != nil {
		if errors.Is(err, clipboard.ErrNoClipboard) {
			app.Log.Warn("Clipboard unavailable; result not copied")
			return
		}
		app.Log.Warn("Copy failed: %v", err)
		return
	}
	app.Log.Success("Copied to clipboard (%s)", cb.Name())
}
