package stats

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Report summarizes the difference between an original string and its
// modified form. It is a plain value computed once by NewReport.
type Report struct {
	CharactersInserted int     `json:"characters_inserted"`
	OriginalLength     int     `json:"original_length"`
	ModifiedLength     int     `json:"modified_length"`
	EntropyOriginal    float64 `json:"entropy_original"`
	EntropyModified    float64 `json:"entropy_modified"`
}

// NewReport builds a Report. CharactersInserted counts marker occurrences in
// modified; lengths are in code points. The entropy of an empty argument is
// reported as 0 so a report is always complete.
func NewReport(original, modified string, marker rune) Report {
	return Report{
		CharactersInserted: strings.Count(modified, string(marker)),
		OriginalLength:     utf8.RuneCountInString(original),
		ModifiedLength:     utf8.RuneCountInString(modified),
		EntropyOriginal:    entropyOrZero(original),
		EntropyModified:    entropyOrZero(modified),
	}
}

func entropyOrZero(s string) float64 {
	h, err := Entropy(s)
	if err != nil {
		return 0
	}
	return h
}

// EntropyDelta is EntropyModified minus EntropyOriginal, rounded like the
// entropies themselves.
func (r Report) EntropyDelta() float64 {
	return round4(r.EntropyModified - r.EntropyOriginal)
}

// Line is one labelled value of a rendered report.
type Line struct {
	Label string
	Value string
}

// Lines returns the report as ordered label/value pairs for display.
func (r Report) Lines() []Line {
	return []Line{
		{"Characters Inserted", fmt.Sprintf("%d", r.CharactersInserted)},
		{"Original Length", fmt.Sprintf("%d", r.OriginalLength)},
		{"Modified Length", fmt.Sprintf("%d", r.ModifiedLength)},
		{"Entropy Original", formatEntropy(r.EntropyOriginal)},
		{"Entropy Modified", formatEntropy(r.EntropyModified)},
	}
}

// formatEntropy prints up to 4 decimals without trailing zeros ("1", "2.5").
func formatEntropy(v float64) string {
	s := strings.TrimRight(fmt.Sprintf("%.4f", v), "0")
	return strings.TrimSuffix(s, ".")
}
