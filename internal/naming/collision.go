package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver tracks output names claimed by sources and resolves
// duplicates by appending " - dupN" suffixes. Two sources named notes.txt in
// different directories would otherwise both map to encoded_notes.txt in a
// flat output directory. All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // output name → source that owns it
	counters map[string]int    // requested name → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final output name for source. If requested is
// unclaimed (or already owned by source), it is returned as-is. Otherwise a
// " - dupN" variant is generated.
func (cr *CollisionResolver) Resolve(source, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	owner, exists := cr.owners[requested]
	if !exists || owner == source {
		cr.owners[requested] = source
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := cr.counters[requested]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := fmt.Sprintf("%s - dup%d%s", stem, counter, ext)
		if dir != "." {
			candidate = filepath.Join(dir, candidate)
		}
		cOwner, cExists := cr.owners[candidate]
		if !cExists || cOwner == source {
			cr.counters[requested] = counter + 1
			cr.owners[candidate] = source
			return candidate
		}
		counter++
	}
}
