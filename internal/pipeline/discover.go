package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Item is one unit of batch work. Err is set when the source could not be
// read; such items fail at process time instead of aborting collection.
type Item struct {
	Source  string
	Content string
	Err     error
}

// Source selects batch inputs: either every matching file of a directory or
// an explicit list of files. Files wins when both are set.
type Source struct {
	Dir   string
	Files []string
}

func (s Source) String() string {
	if len(s.Files) > 0 {
		if len(s.Files) == 1 {
			return s.Files[0]
		}
		return fmt.Sprintf("%d files", len(s.Files))
	}
	return s.Dir
}

// Collect gathers items from src. Directory sources are filtered by ext;
// explicit files are taken regardless of extension.
func Collect(src Source, ext string) ([]Item, error) {
	if len(src.Files) > 0 {
		return CollectFiles(src.Files), nil
	}
	return CollectDir(src.Dir, ext)
}

// CollectDir lists dir (non-recursively) and reads every regular file whose
// name ends in ext, compared case-sensitively. Other entries are skipped
// silently. Items are returned sorted by name for deterministic processing
// order. A missing, unreadable or non-directory path yields a
// *SourceUnavailableError and no items.
func CollectDir(dir, ext string) ([]Item, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &SourceUnavailableError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &SourceUnavailableError{Path: dir, Err: fmt.Errorf("not a directory")}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &SourceUnavailableError{Path: dir, Err: err}
	}

	var paths []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !isRegular(e.Type(), path) {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return CollectFiles(paths), nil
}

// isRegular reports whether the entry is a regular file, following symlinks.
func isRegular(mode os.FileMode, path string) bool {
	if mode.IsRegular() {
		return true
	}
	if mode&os.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// CollectFiles reads each path in order. Read failures are attached to the
// item rather than returned.
func CollectFiles(paths []string) []Item {
	items := make([]Item, 0, len(paths))
	for _, p := range paths {
		item := Item{Source: p}
		data, err := os.ReadFile(p)
		if err != nil {
			item.Err = &ItemError{Source: p, Stage: StageCollecting, Err: err}
		} else {
			item.Content = string(data)
		}
		items = append(items, item)
	}
	return items
}
