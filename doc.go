/*
Package glprobe probes an OpenGL driver for specific implementation defects.

Each probe is a small, deterministic scenario: it configures GPU state,
issues a draw or an upload, reads back a pixel and compares it byte for byte
with the value a conforming driver must produce.

# Probes

Swizzle corruption: a 2D array texture gets a red/blue swizzle, then a
vertex shader writes textureSize(tex, 0) into its output color. Setting the
swizzle must not change the size the shader sees. Affected drivers return
stale metadata (seen on Intel HD 4000 under macOS).

Buffer-backed uploads: a texture filled with a background color is partly
overwritten from a pixel unpack buffer, using a byte offset into the buffer,
a row length wider than the copy, and a destination layer. The texel at the
copy origin must hold the buffer's color and texels outside the copies must
keep the background.

# Quick Start

	ctx, err := opengl.NewContext(opengl.DefaultContextConfig())
	if err != nil {
	    return err
	}
	defer ctx.Destroy()

	runner := glprobe.NewRunner(ctx.Device())
	sum, err := runner.Run(glprobe.DefaultSuite()...)
	runner.Drain()

# Failures

Two kinds of failure are kept apart:

  - A probe that reads back the wrong value is a driver finding. It is
    reported as a FAIL line with the bytes actually read, and the run goes
    on.
  - Anything that prevents a probe from running is an error: an object the
    driver would not create ([ErrNoHandle]), a shader that did not compile
    or link ([SetupError]), an upload region that does not fit its texture or
    buffer ([PreconditionError]), or a sanity readback that came back wrong
    ([ErrSanity], printed as BROKEN). The run stops at the first one.

# Threading

The Device must be used from the thread that owns the GL context. Commands
run one at a time in program order; scenarios share no objects.
*/
package glprobe
