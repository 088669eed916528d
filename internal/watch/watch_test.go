package watch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) handle(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, filepath.Base(path))
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestIgnored(t *testing.T) {
	assert.True(t, Ignored("encoded_a.txt"))
	assert.True(t, Ignored("decoded_a.txt"))
	assert.True(t, Ignored(".cloak-12345"))
	assert.False(t, Ignored("a.txt"))
	assert.False(t, Ignored("my_encoded_a.txt"))
}

func TestMatches(t *testing.T) {
	w, err := New(t.TempDir(), ".txt", time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.Matches("/x/a.txt"))
	assert.False(t, w.Matches("/x/A.TXT"))
	assert.False(t, w.Matches("/x/a.md"))
	assert.False(t, w.Matches("/x/encoded_a.txt"))
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), ".txt", time.Millisecond)
	assert.Error(t, err)
}

func TestRun_DebouncesAndFilters(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, ".txt", 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rec recorder
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, rec.handle) }()

	path := filepath.Join(dir, "note.txt")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("draft"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "encoded_note.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		return len(rec.seen()) > 0
	}, 2*time.Second, 10*time.Millisecond)

	// Give any stray events time to arrive before checking the total.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{"note.txt"}, rec.seen())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ReturnsOnClose(t *testing.T) {
	w, err := New(t.TempDir(), ".txt", time.Millisecond)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background(), func(context.Context, string) {}) }()

	require.NoError(t, w.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestRun_CloseReleasesPendingTimers(t *testing.T) {
	before := runtime.NumGoroutine()

	dir := t.TempDir()
	w, err := New(dir, ".txt", 50*time.Millisecond)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	handle := func(context.Context, string) {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background(), handle) }()

	// Both timers are armed before either fires. The first fire blocks
	// Run in the handler, so the second fires with no reader.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0o644))
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}
	time.Sleep(150 * time.Millisecond)

	require.NoError(t, w.Close())
	close(release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}
