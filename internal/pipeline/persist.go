package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Persisted reports what Persist wrote.
type Persisted struct {
	Dir     string
	Written []string  // Paths written, in result order.
	Failed  []Failure // Processing failures followed by write failures.
}

// WrittenCount returns the number of files written.
func (p Persisted) WrittenCount() int { return len(p.Written) }

// FailedCount returns the number of failed items, processing and writing combined.
func (p Persisted) FailedCount() int { return len(p.Failed) }

// Persist writes every succeeded output to dir/<name>. The directory is
// created if absent; when nothing succeeded it is not created at all. A
// failed write is recorded and the remaining outputs are still written.
// The returned error is non-nil only when dir itself cannot be created, in
// which case every output is also recorded as failed.
func Persist(ctx context.Context, res Result, dir string) (Persisted, error) {
	p := Persisted{Dir: dir, Failed: append([]Failure(nil), res.Failed...)}
	if len(res.Succeeded) == 0 {
		return p, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		for _, out := range res.Succeeded {
			p.Failed = append(p.Failed, writeFailure(out.Source, err))
		}
		return p, fmt.Errorf("create output directory: %w", err)
	}

	for _, out := range res.Succeeded {
		dest := filepath.Join(dir, out.Name)
		if err := ctx.Err(); err != nil {
			p.Failed = append(p.Failed, writeFailure(out.Source, err))
			continue
		}
		if err := WriteAtomic(dest, []byte(out.Content)); err != nil {
			p.Failed = append(p.Failed, writeFailure(out.Source, err))
			continue
		}
		p.Written = append(p.Written, dest)
	}
	return p, nil
}

// Overwrites returns the destinations in dir that are also the source of a
// collected item, in result order. Writing them replaces an input of the
// same run.
func Overwrites(res Result, items []Item, dir string) []string {
	sources := make(map[string]bool, len(items))
	for _, it := range items {
		sources[absPath(it.Source)] = true
	}
	var hits []string
	for _, out := range res.Succeeded {
		dest := filepath.Join(dir, out.Name)
		if sources[absPath(dest)] {
			hits = append(hits, dest)
		}
	}
	return hits
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func writeFailure(source string, err error) Failure {
	ie := &ItemError{Source: source, Stage: StagePersisting, Err: err}
	return Failure{Source: source, Message: ie.Error()}
}

// WriteAtomic writes data to a temp file beside dest and renames it into
// place, so readers never observe a half-written output.
func WriteAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".cloak-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
