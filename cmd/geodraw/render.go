package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/geodraw"
	"github.com/gogpu/geodraw/diagram"
	"github.com/gogpu/geodraw/internal/config"
)

// job is one input/output pair to render.
type job struct {
	in     string
	out    string
	format string
}

func (j *job) register(fs *flag.FlagSet) {
	fs.StringVar(&j.in, "in", "", "input diagram, - for stdin (required)")
	fs.StringVar(&j.out, "out", "", "output SVG file (default stdout)")
	fs.StringVar(&j.format, "format", "", "input format: json or yaml (default from the file extension)")
}

func (j *job) check() error {
	if j.in == "" {
		return errors.New("-in is required")
	}
	if j.format != "" {
		if _, err := diagram.ParseFormat(j.format); err != nil {
			return err
		}
	}
	return nil
}

func (j *job) inputFormat() diagram.Format {
	if j.format != "" {
		f, _ := diagram.ParseFormat(j.format)
		return f
	}
	if j.in == "-" {
		return diagram.FormatJSON
	}
	return diagram.FormatForPath(j.in)
}

// render decodes, solves and writes one diagram. Nothing is written to
// the output when any step fails.
func (j *job) render(ctx context.Context, cfg config.Config, stdin io.Reader, stdout io.Writer) (*diagram.Result, error) {
	var src io.Reader = stdin
	if j.in != "-" {
		f, err := os.Open(j.in)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
	}
	in, err := diagram.Decode(src, j.inputFormat())
	if err != nil {
		return nil, err
	}
	opts, err := cfg.DiagramOptions()
	if err != nil {
		return nil, err
	}
	if d := cfg.SolverTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	res, err := diagram.GenerateResult(ctx, in, opts...)
	if err != nil {
		return nil, err
	}

	if j.out == "" || j.out == "-" {
		_, err = io.WriteString(stdout, res.SVG)
		return res, err
	}
	return res, writeFileAtomic(j.out, []byte(res.SVG))
}

// writeFileAtomic replaces path so that watchers never see a partial
// document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".geodraw-*.svg")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func renderCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	var j job
	c.register(fs)
	j.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := j.check(); err != nil {
		return err
	}
	cfg, err := c.setup(stderr)
	if err != nil {
		return err
	}
	res, err := j.render(ctx, cfg, os.Stdin, stdout)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "warning: %s: %s\n", w.Code, w.Message)
	}
	return nil
}

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

func watchCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	var j job
	c.register(fs)
	j.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := j.check(); err != nil {
		return err
	}
	if j.in == "-" {
		return errors.New("watch needs a file for -in")
	}
	if j.out == "" {
		return errors.New("watch needs -out")
	}
	cfg, err := c.setup(stderr)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(j.in)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Editors often replace the file, so watch its directory.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	log := geodraw.Logger()
	once := func() {
		start := time.Now()
		res, err := j.render(ctx, cfg, nil, stdout)
		if err != nil {
			log.Error("watch: render failed", "in", j.in, "err", err)
			return
		}
		log.Info("watch: rendered", "in", j.in, "out", j.out,
			"warnings", len(res.Warnings), "elapsed", time.Since(start))
	}
	once()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch: watcher error", "err", err)
		case <-timer.C:
			once()
		}
	}
}
