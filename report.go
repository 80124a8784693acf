package glprobe

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Reporter prints harness progress and probe outcomes.
type Reporter struct {
	w io.Writer

	renderer  *color.Color
	scenario  *color.Color
	label     *color.Color
	extension *color.Color
	pass      *color.Color
	fail      *color.Color
}

// NewReporter returns a Reporter writing to w. Output is colored only when
// w is a terminal and NO_COLOR is unset.
func NewReporter(w io.Writer) *Reporter {
	r := &Reporter{
		w:         w,
		renderer:  color.New(color.FgHiMagenta),
		scenario:  color.New(color.FgBlue),
		label:     color.New(color.FgHiBlue),
		extension: color.New(color.FgYellow),
		pass:      color.New(color.FgGreen),
		fail:      color.New(color.FgRed),
	}
	r.SetColor(!color.NoColor && isTerminal(w))
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColor forces colored output on or off.
func (r *Reporter) SetColor(enabled bool) {
	for _, c := range []*color.Color{r.renderer, r.scenario, r.label, r.extension, r.pass, r.fail} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// Renderer prints the driver's renderer string.
func (r *Reporter) Renderer(name string) {
	fmt.Fprintf(r.w, "Init with renderer: %s\n", r.renderer.Sprint(name))
}

// Scenario prints the header of a scenario.
func (r *Reporter) Scenario(name string) {
	fmt.Fprintf(r.w, "Test: %s\n", r.scenario.Sprint(name))
}

// Extensions prints the extensions relevant to the current scenario.
func (r *Reporter) Extensions(exts []string) {
	var b strings.Builder
	b.WriteString("\tRelevant extensions:")
	for _, ext := range exts {
		b.WriteByte(' ')
		b.WriteString(r.extension.Sprint(ext))
	}
	fmt.Fprintln(r.w, b.String())
}

// Result prints one PASS/FAIL line. Failed sanity checks print BROKEN so a
// harness fault can't be mistaken for a driver defect. The expected value
// is implied by the label and not repeated.
func (r *Reporter) Result(res Result) {
	fmt.Fprintf(r.w, "\t%s: ", r.label.Sprint(res.Name))
	switch {
	case res.Passed():
		fmt.Fprintln(r.w, r.pass.Sprint("PASS"))
	case res.Kind == KindSanity:
		fmt.Fprintf(r.w, "%s %v\n", r.fail.Sprint("BROKEN"), res.Actual)
	default:
		fmt.Fprintf(r.w, "%s %v\n", r.fail.Sprint("FAIL"), res.Actual)
	}
}

// DebugMessages prints the driver debug log, if it has any entries.
func (r *Reporter) DebugMessages(msgs []DebugMessage) {
	if len(msgs) == 0 {
		return
	}
	fmt.Fprintln(r.w, "Debug messages:")
	for _, m := range msgs {
		fmt.Fprintf(r.w, "\t%+v\n", m)
	}
}

// LastError prints a pending GL error code. Zero is not printed.
func (r *Reporter) LastError(code uint32) {
	if code == 0 {
		return
	}
	fmt.Fprintf(r.w, "Last %s: 0x%04X\n", r.fail.Sprint("ERROR"), code)
}

// Summary prints the totals of a run.
func (r *Reporter) Summary(s Summary) {
	fmt.Fprintf(r.w, "%d passed, %d failed\n", s.Passed, s.Failed)
}

// Done prints the final status line.
func (r *Reporter) Done() {
	fmt.Fprintln(r.w, "Done")
}
