package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/cloak/internal/clipboard"
	"github.com/backmassage/cloak/internal/config"
	"github.com/backmassage/cloak/internal/logging"
	"github.com/backmassage/cloak/internal/stats"
)

const lrm = "\u200E"

func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(append([]string{"--no-color"}, args...), strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestEncode_Args(t *testing.T) {
	code, out, _ := runCLI(t, "", "encode", "hi", "cat")
	assert.Equal(t, 0, code)
	assert.Equal(t, "h"+lrm+"i"+lrm+" c"+lrm+"a"+lrm+"t"+lrm+"\n", out)
}

func TestEncode_MidWordStdin(t *testing.T) {
	code, out, _ := runCLI(t, "hi  cat\n", "--mode", "mid", "encode")
	assert.Equal(t, 0, code)
	assert.Equal(t, "h"+lrm+"i c"+lrm+"at\n", out)
}

func TestEncode_Empty(t *testing.T) {
	code, out, errOut := runCLI(t, "  \n", "encode")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Nothing to encode")
}

func TestEncode_StatsGoToStderr(t *testing.T) {
	code, out, errOut := runCLI(t, "", "encode", "--stats", "abc")
	assert.Equal(t, 0, code)
	assert.Equal(t, "a"+lrm+"b"+lrm+"c"+lrm+"\n", out)
	assert.Contains(t, errOut, "Characters Inserted: 3")
}

func TestDecode_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("h"+lrm+"i"+lrm+"\n"), 0o644))

	code, out, _ := runCLI(t, "", "decode", "-f", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hi\n", out)
}

func TestDecode_CustomMarker(t *testing.T) {
	code, out, _ := runCLI(t, "a\u2060b\u2060", "--marker", "U+2060", "decode")
	assert.Equal(t, 0, code)
	assert.Equal(t, "ab\n", out)
}

func TestEncode_InvalidUTF8File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("ab\xffc"), 0o644))

	code, out, errOut := runCLI(t, "", "encode", "-f", path)
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "not valid UTF-8")
}

func TestDecode_InvalidUTF8Stdin(t *testing.T) {
	code, out, errOut := runCLI(t, "a"+lrm+"\xfe", "decode")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "stdin: text is not valid UTF-8")
}

func TestEncode_SaveOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	code, out, errOut := runCLI(t, "", "encode", "hi", "-o", path)
	require.Equal(t, 0, code)
	assert.Equal(t, "h"+lrm+"i"+lrm+"\n", out)
	assert.Contains(t, errOut, "Result saved to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "h"+lrm+"i"+lrm, string(data))
}

func TestDecode_SaveOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	code, _, _ := runCLI(t, "c"+lrm+"at", "decode", "--output", path)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cat", string(data))
}

func TestEncode_SaveOutputMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.txt")

	code, _, errOut := runCLI(t, "", "encode", "hi", "-o", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "save result")
}

func TestStats_JSON(t *testing.T) {
	code, out, _ := runCLI(t, "", "stats", "--json", "abc")
	require.Equal(t, 0, code)

	var r stats.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 3, r.CharactersInserted)
	assert.Equal(t, 3, r.OriginalLength)
	assert.Equal(t, 6, r.ModifiedLength)
}

func TestStats_EncodedInput(t *testing.T) {
	code, out, _ := runCLI(t, "a"+lrm+"b"+lrm+"c"+lrm, "stats")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Original Length")
	assert.Regexp(t, `Characters Inserted:\s+3`, out)
}

func TestInvalidMarker(t *testing.T) {
	code, _, errOut := runCLI(t, "", "--marker", "x", "encode", "hi")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invisible")
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "", "rot13")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, errOut)
}

func TestConfigFilePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloak.toml")
	require.NoError(t, os.WriteFile(path, []byte("mode = \"mid\"\n"), 0o644))

	_, out, _ := runCLI(t, "", "--config", path, "encode", "cat")
	assert.Equal(t, "c"+lrm+"at\n", out)

	_, out, _ = runCLI(t, "", "--config", path, "--mode", "char", "encode", "cat")
	assert.Equal(t, "c"+lrm+"a"+lrm+"t"+lrm+"\n", out)
}

func TestBatch_Directory(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "b.md"), []byte("skip"), 0o644))
	out := filepath.Join(t.TempDir(), "out")
	manifest := filepath.Join(t.TempDir(), "run.json")

	code, stdout, _ := runCLI(t, "", "batch", in, "-o", out, "--report", manifest)
	require.Equal(t, 0, code, stdout)

	data, err := os.ReadFile(filepath.Join(out, "encoded_a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "h"+lrm+"i"+lrm, string(data))
	assert.NoFileExists(t, filepath.Join(out, "encoded_b.md"))
	assert.FileExists(t, manifest)

	code, _, _ = runCLI(t, "", "batch", "--op", "decode", filepath.Join(out, "encoded_a.txt"), "-o", out)
	require.Equal(t, 0, code)
	data, err = os.ReadFile(filepath.Join(out, "decoded_encoded_a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestBatch_MissingSource(t *testing.T) {
	code, _, errOut := runCLI(t, "", "batch", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "source unavailable")
}

func TestBatch_ItemFailureExitCode(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(good, []byte("ok"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte{0xff}, 0o644))

	code, _, _ := runCLI(t, "", "batch", good, bad, "-o", dir)
	assert.Equal(t, 1, code)
	assert.FileExists(t, filepath.Join(dir, "encoded_good.txt"))
}

func TestSourceOf(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.Equal(t, dir, sourceOf([]string{dir + "/"}).Dir)
	assert.Equal(t, []string{file}, sourceOf([]string{file}).Files)
	assert.Equal(t, "nope", sourceOf([]string{"nope"}).Dir)
	assert.Equal(t, []string{file, dir}, sourceOf([]string{file, dir}).Files)
}

type fakeClipboard struct {
	got string
	err error
}

func (f *fakeClipboard) Name() string { return "fake" }

func (f *fakeClipboard) Copy(_ context.Context, text string) error {
	f.got = text
	return f.err
}

func TestCopyText(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	var logOut bytes.Buffer
	log, err := logging.NewWithWriters(&cfg, &logOut, &logOut)
	require.NoError(t, err)

	cb := &fakeClipboard{}
	app := &App{Ctx: context.Background(), Cfg: &cfg, Log: log, Clipboard: cb}
	copyText(app, "x"+lrm)
	assert.Equal(t, "x"+lrm, cb.got)
	assert.Contains(t, logOut.String(), "Copied to clipboard (fake)")

	logOut.Reset()
	cb.err = clipboard.ErrNoClipboard
	copyText(app, "x")
	assert.Contains(t, logOut.String(), "Clipboard unavailable")

	logOut.Reset()
	cb.err = errors.New("boom")
	copyText(app, "x")
	assert.Contains(t, logOut.String(), "Copy failed: boom")
}
