package term

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/cloak/internal/config"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever) })

	Configure(config.ColorAlways)
	assert.True(t, Enabled())
	assert.Equal(t, "\033[1;92mok\033[0m", Green.Paint("ok"))

	Configure(config.ColorNever)
	assert.False(t, Enabled())
	assert.Equal(t, "ok", Red.Paint("ok"))
}

func TestPaint_NoneIsPlain(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever) })
	Configure(config.ColorAlways)

	assert.Equal(t, "x", None.Paint("x"))
	assert.Equal(t, "x", Color(200).Paint("x"))
}

func TestResolve_Auto(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()

	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	assert.False(t, resolve(config.ColorAuto, f, env(nil)), "regular file is not a terminal")
	assert.False(t, resolve(config.ColorAuto, nil, env(nil)))
	assert.False(t, resolve(config.ColorAuto, f, env(map[string]string{"NO_COLOR": "1"})))
	assert.False(t, resolve(config.ColorAuto, f, env(map[string]string{"TERM": "DUMB"})))
	assert.True(t, resolve(config.ColorAlways, nil, env(map[string]string{"NO_COLOR": "1"})))
	assert.False(t, resolve(config.ColorNever, f, env(nil)))
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
	assert.False(t, IsTerminal(nil))
}
