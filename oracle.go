package glprobe

import "fmt"

// TexelSize is the byte size of one RGBA8 texel.
const TexelSize = 4

// Pixel is one RGBA8 sample.
type Pixel [4]byte

func (p Pixel) String() string {
	return fmt.Sprintf("[%d %d %d %d]", p[0], p[1], p[2], p[3])
}

// FillPattern returns texels copies of p laid out back to back.
func FillPattern(p Pixel, texels int) []byte {
	data := make([]byte, texels*TexelSize)
	for i := 0; i < len(data); i += TexelSize {
		copy(data[i:i+TexelSize], p[:])
	}
	return data
}

// Kind separates driver findings from harness self-checks.
type Kind int

const (
	// KindDefect is a probe of driver behavior. A failure is a finding.
	KindDefect Kind = iota
	// KindSanity checks the harness itself. A failure means the probe
	// results that follow cannot be trusted.
	KindSanity
)

// Result is the outcome of one pixel comparison.
type Result struct {
	Name     string
	Kind     Kind
	Actual   Pixel
	Expected Pixel
}

// Passed reports whether the readback matched exactly.
func (r Result) Passed() bool {
	return r.Actual == r.Expected
}

// Check compares a readback against the expected value. There is no
// tolerance: the defects probed either corrupt the value or leave it alone.
func Check(name string, kind Kind, actual, expected Pixel) Result {
	return Result{Name: name, Kind: kind, Actual: actual, Expected: expected}
}
