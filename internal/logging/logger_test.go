package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/cloak/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFile = ""
	cfg.ColorMode = config.ColorNever
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.LogFile = filepath.Join(dir, "logs", "cloak.log")
	var out, errOut bytes.Buffer
	l, err := NewWithWriters(&cfg, &out, &errOut)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("to file")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(cfg.LogFile)
	if !bytes.Contains(b, []byte("INFO")) || !bytes.Contains(b, []byte("to file")) {
		t.Errorf("log file content: %s", string(b))
	}
}

func TestLogger_RoutesErrorsAndDebug(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	var out, errOut bytes.Buffer
	l, err := NewWithWriters(&cfg, &out, &errOut)
	if err != nil {
		t.Fatal(err)
	}

	l.Warn("careful")
	l.Error("broken %d", 7)
	l.Debug(false, "hidden")
	l.Debug(true, "shown")

	if !strings.Contains(out.String(), "[WARN] careful") {
		t.Errorf("stdout missing warn line: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "[ERROR] broken 7") {
		t.Errorf("stderr missing error line: %q", errOut.String())
	}
	if strings.Contains(out.String(), "hidden") {
		t.Error("debug line printed without verbose")
	}
	if !strings.Contains(out.String(), "[DEBUG] shown") {
		t.Errorf("verbose debug line missing: %q", out.String())
	}
}
