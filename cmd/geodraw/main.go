// Command geodraw renders constraint-driven geometry diagrams to SVG.
//
// Usage:
//
//	geodraw render -in triangle.yaml -out triangle.svg
//	geodraw watch -in triangle.yaml -out triangle.svg
//	geodraw serve -addr :8080
//	geodraw check-solver
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/geodraw"
	"github.com/gogpu/geodraw/internal/config"
)

const usage = `usage: geodraw <command> [flags]

commands:
  render        solve and render one diagram
  watch         re-render a diagram whenever its file changes
  serve         run the HTTP render service
  check-solver  report the configured solver and its version

run "geodraw <command> -h" for the flags of a command
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	var cmd func(context.Context, []string, io.Writer, io.Writer) error
	switch args[0] {
	case "render":
		cmd = renderCmd
	case "watch":
		cmd = watchCmd
	case "serve":
		cmd = serveCmd
	case "check-solver":
		cmd = checkSolverCmd
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "geodraw: unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err := cmd(ctx, args[1:], stdout, stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "geodraw: %v\n", err)
		return 1
	}
	return 0
}

// common holds the flags shared by every command.
type common struct {
	config  string
	backend string
	verbose bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "config file (default "+config.DefaultPath+")")
	fs.StringVar(&c.backend, "backend", "", "solver backend: smt or numeric (overrides the config file)")
	fs.BoolVar(&c.verbose, "v", false, "log debug output")
}

// setup installs the logger and loads the configuration.
func (c *common) setup(stderr io.Writer) (config.Config, error) {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	geodraw.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(c.config)
	if err != nil {
		return config.Config{}, err
	}
	if c.backend != "" {
		return cfg.WithBackend(c.backend)
	}
	return cfg, nil
}
