package glprobe

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
)

// debugExtension enables the driver debug message log.
const debugExtension = "GL_KHR_debug"

// maxDebugMessages bounds how much of the debug log Drain fetches.
const maxDebugMessages = 10

// Summary totals the results of a run.
type Summary struct {
	Passed  int
	Failed  int
	Results []Result
}

// Runner executes scenarios one after another on a single device.
type Runner struct {
	dev        Device
	reporter   *Reporter
	logger     *slog.Logger
	extensions []string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithReporter sets where results are printed. The default reports to
// standard output.
func WithReporter(r *Reporter) RunnerOption {
	return func(rn *Runner) { rn.reporter = r }
}

// WithLogger sets the logger for runner events. The default is the
// package logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(rn *Runner) { rn.logger = l }
}

// WithExtensions supplies the extension list instead of querying the
// device for it.
func WithExtensions(exts []string) RunnerOption {
	return func(rn *Runner) { rn.extensions = exts }
}

// NewRunner creates a Runner for dev.
func NewRunner(dev Device, opts ...RunnerOption) *Runner {
	r := &Runner{dev: dev}
	for _, opt := range opts {
		opt(r)
	}
	if r.reporter == nil {
		r.reporter = NewReporter(os.Stdout)
	}
	if r.logger == nil {
		r.logger = Logger()
	}
	if r.extensions == nil {
		r.extensions = dev.Extensions()
	}
	return r
}

// Extensions returns the extensions the runner filters against.
func (r *Runner) Extensions() []string {
	return r.extensions
}

// Run executes scenarios in order and reports every result.
//
// A failing probe is recorded and the run continues. An error from a
// scenario stops the run: it means the environment or the scenario is
// broken, and later results could not be trusted. Results reported before
// the error are included in the returned Summary.
func (r *Runner) Run(scenarios ...Scenario) (Summary, error) {
	var sum Summary
	for _, sc := range scenarios {
		r.reporter.Scenario(sc.Name())
		if filter := sc.ExtensionFilter(); filter != "" {
			r.reporter.Extensions(filterExtensions(r.extensions, filter))
		}
		r.logger.Info("scenario start", slog.String("scenario", sc.Name()))

		results, err := sc.Run(r.dev)
		for _, res := range results {
			r.reporter.Result(res)
			sum.Results = append(sum.Results, res)
			if res.Passed() {
				sum.Passed++
				continue
			}
			sum.Failed++
			r.logger.Warn("probe failed",
				slog.String("scenario", sc.Name()),
				slog.String("check", res.Name),
				slog.String("actual", res.Actual.String()),
				slog.String("expected", res.Expected.String()))
		}
		if err != nil {
			return sum, fmt.Errorf("%s: %w", sc.Name(), err)
		}
		r.logger.Info("scenario done", slog.String("scenario", sc.Name()), slog.Int("checks", len(results)))
	}
	return sum, nil
}

// Drain reports whatever the driver has queued since the context was
// created: the debug message log when GL_KHR_debug is available, the
// pending error code otherwise.
func (r *Runner) Drain() {
	if slices.Contains(r.extensions, debugExtension) {
		msgs := r.dev.DebugMessages(maxDebugMessages)
		for _, m := range msgs {
			r.logger.Warn("driver debug message", slog.Uint64("id", uint64(m.ID)), slog.String("message", m.Message))
		}
		r.reporter.DebugMessages(msgs)
		return
	}
	r.reporter.LastError(r.dev.Error())
}
