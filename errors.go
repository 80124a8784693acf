package glprobe

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHandle is returned when the driver hands back a zero object name.
	ErrNoHandle = errors.New("driver returned no object")

	// ErrBadSize is returned for a probe configured with a non-positive
	// texture or render target size.
	ErrBadSize = errors.New("size must be positive")

	// ErrSanity marks a failed sanity readback. The harness, not the
	// driver, is at fault when this happens.
	ErrSanity = errors.New("sanity readback mismatch")
)

// Upload precondition failures.
var (
	ErrEmptyCopy       = errors.New("copy size must be positive")
	ErrStrideTooSmall  = errors.New("copy width exceeds row stride")
	ErrOutOfBoundsX    = errors.New("copy exceeds texture width")
	ErrOutOfBoundsY    = errors.New("copy exceeds texture height")
	ErrLayerOutOfRange = errors.New("copy layer out of range")
	ErrUnalignedOffset = errors.New("buffer offset negative or not a multiple of the texel size")
	ErrBufferTooSmall  = errors.New("pixel buffer too small for copy")
)

// SetupError reports a failure to build the state a probe needs, such as
// an object that could not be created or a shader that did not compile.
// It is never a driver finding.
type SetupError struct {
	Op  string
	Log string // compiler or linker output, if any
	Err error
}

func (e *SetupError) Error() string {
	msg := e.Op
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Log != "" {
		msg += "\n" + e.Log
	}
	return msg
}

func (e *SetupError) Unwrap() error { return e.Err }

// PreconditionError reports an upload region that does not fit its texture
// or source buffer.
type PreconditionError struct {
	Region UploadRegion
	Err    error
	Detail string
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("upload at (%d, %d, %d) size %dx%d offset %d stride %d: %v",
		e.Region.Origin.X, e.Region.Origin.Y, e.Region.Origin.Layer,
		e.Region.Width, e.Region.Height, e.Region.Offset, e.Region.StrideTexels, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *PreconditionError) Unwrap() error { return e.Err }
