// Command cloak is the CLI entrypoint for the cloak text codec.
//
// It hides text from automated matchers by interleaving an invisible
// marker between visible characters, reverses the transform, reports
// statistics, and runs the same codec over whole directories.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/backmassage/cloak/internal/clipboard"
	"github.com/backmassage/cloak/internal/config"
	"github.com/backmassage/cloak/internal/display"
	"github.com/backmassage/cloak/internal/logging"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

// exit is kong's exit hook for --help and --version.
var exit = os.Exit

// errReported means the failure was already logged; the CLI only sets the
// exit code.
var errReported = errors.New("failed")

// Globals are flags accepted by every command.
type Globals struct {
	Config  string           `help:"Config file (.toml, .yaml, .yml or .json)." short:"c" type:"path"`
	Mode    string           `help:"Insertion mode: char (every character) or mid (one marker per word)." short:"m"`
	Marker  string           `help:"Marker code point, e.g. U+200E or U+2060."`
	Color   string           `help:"Color output: auto, always or never."`
	NoColor bool             `help:"Disable colored output." name:"no-color"`
	Log     string           `help:"Append log lines to this file." type:"path"`
	Verbose bool             `help:"Show debug output." short:"v"`
	Version kong.VersionFlag `help:"Print version and exit."`
}

// CLI is the command tree.
type CLI struct {
	Globals

	Encode  EncodeCmd  `cmd:"" help:"Insert invisible markers into text."`
	Decode  DecodeCmd  `cmd:"" help:"Remove markers from text."`
	Stats   StatsCmd   `cmd:"" help:"Show statistics for a text and its encoded form."`
	Batch   BatchCmd   `cmd:"" help:"Encode or decode every file of a directory or file list."`
	Analyze AnalyzeCmd `cmd:"" help:"Report code points, markers and entropy per file."`
	Watch   WatchCmd   `cmd:"" help:"Re-encode files in a directory as they change."`
	Check   CheckCmd   `cmd:"" help:"Run system diagnostics."`
}

// App carries what every command needs once bootstrap is done.
type App struct {
	Ctx       context.Context
	Cfg       *config.Config
	Log       *logging.Logger
	In        io.Reader
	Out       io.Writer
	Clipboard clipboard.Clipboard // nil means detect on first use.
}

// overrider is implemented by commands with flags of their own.
type overrider interface {
	overrides(*config.Overrides)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("cloak"),
		kong.Description("Reversible invisible-character text codec."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("cloak %s (%s)", version, commit)},
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
	)
	if err != nil {
		fmt.Fprintf(stderr, "cloak: %v\n", err)
		return 1
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "cloak: %v\n", err)
		return 1
	}
	command := strings.Fields(kctx.Command())[0]

	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr. Precedence is defaults < config file < flags.
	cfg := config.DefaultConfig()
	if cli.Config != "" {
		if err := config.LoadFile(cli.Config, &cfg); err != nil {
			fmt.Fprintf(stderr, "cloak: %v\n", err)
			return 1
		}
	}
	ov := config.Overrides{
		Mode:    cli.Mode,
		Marker:  cli.Marker,
		Color:   cli.Color,
		NoColor: cli.NoColor,
		LogFile: cli.Log,
		Verbose: cli.Verbose,
	}
	if o, ok := selectedCommand(&cli, command).(overrider); ok {
		o.overrides(&ov)
	}
	if err := ov.Apply(&cfg); err != nil {
		fmt.Fprintf(stderr, "cloak: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "cloak: %v\n", err)
		return 1
	}

	// Text commands keep stdout for their result; logs go to stderr.
	logOut := stdout
	if isTextCommand(command) {
		logOut = stderr
	}
	log, err := logging.NewWithWriters(&cfg, logOut, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "cloak: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available; all output goes through log from here on.
	if !isTextCommand(command) {
		display.PrintBanner(stdout)
	}

	// Phase 3: Signal handling. Cancel on SIGINT/SIGTERM so batches stop
	// between files without leaving partial output.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, finishing current file...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Phase 4: Run the selected command.
	app := &App{Ctx: ctx, Cfg: &cfg, Log: log, In: stdin, Out: stdout}
	if err := kctx.Run(app); err != nil {
		if !errors.Is(err, errReported) {
			log.Error("%v", err)
		}
		return 1
	}
	return 0
}

func selectedCommand(cli *CLI, command string) interface{} {
	switch command {
	case "encode":
		return &cli.Encode
	case "decode":
		return &cli.Decode
	case "stats":
		return &cli.Stats
	case "batch":
		return &cli.Batch
	case "analyze":
		return &cli.Analyze
	case "watch":
		return &cli.Watch
	case "check":
		return &cli.Check
	default:
		return nil
	}
}

func isTextCommand(command string) bool {
	switch command {
	case "encode", "decode", "stats":
		return true
	default:
		return false
	}
}
