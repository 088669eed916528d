package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Command copies by piping text into a clipboard tool's stdin.
type Command struct {
	Tool string
	Args []string
	Env  string // Required environment variable, e.g. DISPLAY; empty for none.
}

func (c *Command) Name() string { return c.Tool }

// Available reports whether the tool is on PATH and its display is set.
func (c *Command) Available(context.Context) bool {
	if c.Env != "" && getenv(c.Env) == "" {
		return false
	}
	_, err := lookPath(c.Tool)
	return err == nil
}

// Copy runs the tool with text on stdin.
func (c *Command) Copy(ctx context.Context, text string) error {
	path, err := lookPath(c.Tool)
	if err != nil {
		return fmt.Errorf("%w: %s not found", ErrNoClipboard, c.Tool)
	}
	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", c.Tool, err, msg)
		}
		return fmt.Errorf("%s: %w", c.Tool, err)
	}
	return nil
}
