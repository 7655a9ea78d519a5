package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/gogpu/geodraw/internal/server"
	"github.com/gogpu/geodraw/solver"
)

func serveCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	addr := fs.String("addr", "", "listen address (overrides server.addr)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := c.setup(stderr)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Listen() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}

func checkSolverCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("check-solver", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := c.setup(stderr)
	if err != nil {
		return err
	}
	b, err := cfg.Backend()
	if err != nil {
		return err
	}

	smt, ok := b.(*solver.SMTBackend)
	if !ok {
		fmt.Fprintf(stdout, "backend: %s (built in)\n", b.Name())
		return nil
	}
	v, err := smt.Version(ctx)
	if err != nil {
		return fmt.Errorf("solver %q: %w", cfg.Solver.Command, err)
	}
	fmt.Fprintf(stdout, "backend: %s\ncommand: %q\nversion: %s\n", b.Name(), smt.Command(), v)
	if cfg.Solver.MinVersion != "" {
		if err := smt.CheckVersion(ctx); err != nil {
			return fmt.Errorf("version gate: %w", err)
		}
		fmt.Fprintf(stdout, "satisfies: %s\n", cfg.Solver.MinVersion)
	}
	return nil
}
