package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/backmassage/cloak/internal/config"
	"github.com/backmassage/cloak/internal/logging"
	"github.com/backmassage/cloak/internal/stats"
	"github.com/backmassage/cloak/internal/term"
)

// FileAnalysis is the per-file row of an analysis table.
type FileAnalysis struct {
	Name       string
	CodePoints int
	Markers    int
	Entropy    float64
	Class      string // "", "outlier" or "extreme" on entropy.
}

// Encoded reports whether the file already carries markers.
func (f FileAnalysis) Encoded() bool { return f.Markers > 0 }

// Analyze collects items from src, measures each one, and prints a table of
// code-point counts, marker counts, and entropies with IQR outlier
// highlighting. Files that already contain markers are flagged so they are
// not encoded twice by accident. Unreadable items are skipped with a
// warning.
func Analyze(ctx context.Context, cfg *config.Config, src Source, log *logging.Logger, w io.Writer) ([]FileAnalysis, error) {
	c, err := cfg.Codec()
	if err != nil {
		return nil, err
	}
	items, err := Collect(src, cfg.Extension)
	if err != nil {
		log.Error("Source unavailable: %v", err)
		return nil, err
	}
	if len(items) == 0 {
		log.Warn("No %s files found in %s", cfg.Extension, src)
		return nil, nil
	}
	log.Info("Analyzing %d files in %s", len(items), src)

	var rows []FileAnalysis
	var entropies []float64
	for _, item := range items {
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			return rows, ctx.Err()
		}
		name := filepath.Base(item.Source)
		if item.Err != nil {
			log.Warn("Skip (unreadable): %s", name)
			continue
		}
		if !utf8.ValidString(item.Content) {
			log.Warn("Skip (not UTF-8): %s", name)
			continue
		}
		h, err := stats.Entropy(item.Content)
		if err != nil {
			h = 0
		}
		rows = append(rows, FileAnalysis{
			Name:       name,
			CodePoints: utf8.RuneCountInString(item.Content),
			Markers:    c.Count(item.Content),
			Entropy:    h,
		})
		if h > 0 {
			entropies = append(entropies, h)
		}
	}

	if len(rows) == 0 {
		log.Warn("No files could be read")
		return nil, nil
	}

	bounds := computeStats(entropies)
	for i := range rows {
		rows[i].Class = bounds.classify(rows[i].Entropy)
	}

	printAnalysisTable(w, rows)
	printAnalysisSummary(log, rows, bounds)
	return rows, nil
}

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1

	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

func printAnalysisTable(w io.Writer, rows []FileAnalysis) {
	nameW := len("File")
	cpW := len("Chars")
	mkW := len("Markers")
	enW := len("Entropy")

	for _, r := range rows {
		if n := utf8.RuneCountInString(r.Name); n > nameW {
			nameW = n
		}
		if n := len(fmt.Sprint(r.CodePoints)); n > cpW {
			cpW = n
		}
		if n := len(fmt.Sprint(r.Markers)); n > mkW {
			mkW = n
		}
	}
	if nameW > 50 {
		nameW = 50
	}

	header := fmt.Sprintf("  %-*s  %*s  %*s  %*s",
		nameW, "File",
		cpW, "Chars",
		mkW, "Markers",
		enW, "Entropy",
	)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("-", len(header)-2))

	for _, r := range rows {
		name := r.Name
		if utf8.RuneCountInString(name) > nameW {
			name = string([]rune(name)[:nameW-3]) + "..."
		}
		// Pad the plain text first, then wrap in ANSI color, so escape
		// bytes do not count toward the column width.
		entropyCell := colorPad(fmt.Sprintf("%*.4f", enW, r.Entropy), enW, r.Class)

		fmt.Fprintf(w, "  %-*s  %*d  %*d  %s  %s\n",
			nameW, name,
			cpW, r.CodePoints,
			mkW, r.Markers,
			entropyCell,
			formatFlags(r),
		)
	}
	fmt.Fprintln(w)
}

func printAnalysisSummary(log *logging.Logger, rows []FileAnalysis, b iqrBounds) {
	var outliers, extremes, encoded int
	for _, r := range rows {
		switch r.Class {
		case "extreme":
			extremes++
		case "outlier":
			outliers++
		}
		if r.Encoded() {
			encoded++
		}
	}

	log.Info("Analyzed %d files", len(rows))
	if b.valid {
		log.Info("  Entropy IQR: %.4f - %.4f bits (outlier < %.4f or > %.4f)",
			b.q1, b.q3, b.outlierLo, b.outlierHi)
	}
	if encoded > 0 {
		log.Warn("  %d file(s) already contain markers [enc]", encoded)
	}
	if outliers > 0 {
		log.Warn("  %d outlier(s) flagged [*]", outliers)
	}
	if extremes > 0 {
		log.Error("  %d extreme outlier(s) flagged [!]", extremes)
	}
	if outliers == 0 && extremes == 0 {
		log.Success("  No outliers detected")
	}
}

func formatFlags(r FileAnalysis) string {
	var flags []string
	switch r.Class {
	case "extreme":
		flags = append(flags, term.Red.Paint("[!]"))
	case "outlier":
		flags = append(flags, term.Yellow.Paint("[*]"))
	}
	if r.Encoded() {
		flags = append(flags, term.Magenta.Paint("[enc]"))
	}
	return strings.Join(flags, " ")
}

// colorPad pads a plain string to width, then wraps in ANSI color.
func colorPad(s string, width int, class string) string {
	padded := fmt.Sprintf("%-*s", width, s)
	switch class {
	case "extreme":
		return term.Red.Paint(padded)
	case "outlier":
		return term.Yellow.Paint(padded)
	default:
		return padded
	}
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
