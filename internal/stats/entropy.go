// Package stats computes information-theoretic statistics over an original
// string and its transformed counterpart.
package stats

import (
	"errors"
	"math"
	"sort"
	"unicode/utf8"
)

// ErrEmptyInput is returned by Entropy for the empty string, whose symbol
// distribution is undefined.
var ErrEmptyInput = errors.New("entropy of empty input is undefined")

// Entropy returns the empirical Shannon entropy of s in bits per code point,
// rounded to 4 decimal places.
//
// Symbol counts are summed in sorted order so the floating-point result
// depends only on the multiset of code points, never on their order.
func Entropy(s string) (float64, error) {
	if s == "" {
		return 0, ErrEmptyInput
	}

	freq := make(map[rune]int)
	for _, r := range s {
		freq[r]++
	}
	counts := make([]int, 0, len(freq))
	for _, n := range freq {
		counts = append(counts, n)
	}
	sort.Ints(counts)

	total := float64(utf8.RuneCountInString(s))
	var h float64
	for _, n := range counts {
		p := float64(n) / total
		h += p * math.Log2(1/p)
	}
	return round4(h), nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
