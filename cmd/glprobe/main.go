// Command glprobe runs the OpenGL driver defect probes on the default GPU
// and prints a PASS/FAIL line per check.
//
// Individual FAIL lines do not change the exit status; only a broken
// environment (no context, shader compile errors, a failed sanity check)
// exits non-zero.
//
// Set GLPROBE_DEBUG to log object creation and readbacks to stderr.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/go-theft-auto/glprobe"
	"github.com/go-theft-auto/glprobe/backend/opengl"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	level := slog.LevelWarn
	if os.Getenv("GLPROBE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	glprobe.SetLogger(logger)

	ctx, err := opengl.NewContext(opengl.DefaultContextConfig())
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	dev := ctx.Device()
	reporter := glprobe.NewReporter(os.Stdout)
	reporter.Renderer(dev.Renderer())

	runner := glprobe.NewRunner(dev, glprobe.WithReporter(reporter), glprobe.WithLogger(logger))
	sum, err := runner.Run(glprobe.DefaultSuite()...)
	runner.Drain()
	if err != nil {
		return fmt.Errorf("probe aborted: %w", err)
	}

	reporter.Summary(sum)
	reporter.Done()
	return nil
}
