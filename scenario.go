package glprobe

import (
	"fmt"
	"log/slog"
	"strings"
)

// Scenario is one self-contained driver probe. Run creates every object it
// needs on dev and releases them before returning.
//
// A returned error means the probe could not be carried out (setup failure,
// misconfiguration or a failed sanity check). Driver defects are reported
// through failing Results, never through the error.
type Scenario interface {
	Name() string
	// ExtensionFilter returns a substring selecting the extensions worth
	// printing before the scenario runs, or "" for none.
	ExtensionFilter() string
	Run(dev Device) ([]Result, error)
}

// create calls fn and turns a failure or a zero handle into a *SetupError.
func create[H ~uint32](op string, fn func() (H, error)) (H, error) {
	h, err := fn()
	if err != nil {
		return 0, &SetupError{Op: op, Err: err}
	}
	if h == 0 {
		return 0, &SetupError{Op: op, Err: ErrNoHandle}
	}
	Logger().Debug(op, slog.Uint64("handle", uint64(h)))
	return h, nil
}

// SizeProbeColor is what the size probe shader writes when textureSize
// reports the true dimensions: red and green at full scale, blue zero,
// alpha opaque.
var SizeProbeColor = Pixel{0xFF, 0xFF, 0x00, 0xFF}

// SwizzleScenario checks that setting a texture swizzle does not corrupt
// the size a shader reads back with textureSize.
//
// The vertex stage encodes textureSize(tex, 0).xy / TextureSize into the
// output color, so a conforming driver always produces SizeProbeColor.
// Affected: Intel HD 4000 on macOS.
type SwizzleScenario struct {
	Label       string
	TextureSize int32
	Layers      int32
	// Swizzle is applied to the texture before the program is linked.
	// Nil leaves the default mapping in place.
	Swizzle  *Swizzle
	DrawSize int32
	// Expected overrides SizeProbeColor when non-nil.
	Expected *Pixel
}

func (s SwizzleScenario) Name() string            { return s.Label }
func (s SwizzleScenario) ExtensionFilter() string { return "swizzle" }

func (s SwizzleScenario) expected() Pixel {
	if s.Expected == nil {
		return SizeProbeColor
	}
	return *s.Expected
}

func (s SwizzleScenario) validate() error {
	if s.TextureSize <= 0 || s.Layers <= 0 || s.DrawSize <= 0 {
		return &SetupError{
			Op:  fmt.Sprintf("size probe %dx%dx%d drawn at %d", s.TextureSize, s.TextureSize, s.Layers, s.DrawSize),
			Err: ErrBadSize,
		}
	}
	return nil
}

// Run draws a full-viewport quad with the size probe program and reads
// back the center of the render target.
func (s SwizzleScenario) Run(dev Device) ([]Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	size := Extent3D{Width: s.TextureSize, Height: s.TextureSize, Layers: s.Layers}

	texture, err := create("create texture", dev.CreateTexture)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteTexture(texture)
	dev.BindTexture(texture)
	defer dev.BindTexture(0)
	dev.TexStorage3D(1, size)
	if s.Swizzle != nil {
		dev.TexSwizzle(*s.Swizzle)
	}

	program, err := LinkProgram(dev, sizeProbeVertexSource(s.TextureSize), passthroughFragmentSource)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteProgram(program)

	vertexArray, err := create("create vertex array", dev.CreateVertexArray)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteVertexArray(vertexArray)
	dev.BindVertexArray(vertexArray)
	defer dev.BindVertexArray(0)

	renderbuf, err := create("create renderbuffer", dev.CreateRenderbuffer)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteRenderbuffer(renderbuf)
	dev.BindRenderbuffer(renderbuf)
	defer dev.BindRenderbuffer(0)
	dev.RenderbufferStorage(s.DrawSize, s.DrawSize)

	framebuf, err := create("create framebuffer", dev.CreateFramebuffer)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteFramebuffer(framebuf)
	dev.BindFramebuffer(framebuf)
	defer dev.BindFramebuffer(0)
	dev.FramebufferRenderbuffer(renderbuf)

	dev.Clear()
	dev.Viewport(0, 0, s.DrawSize, s.DrawSize)
	dev.UseProgram(program)
	defer dev.UseProgram(0)
	dev.DrawTriangleStrip(0, 4)

	texel := dev.ReadPixel(s.DrawSize/2, s.DrawSize/2)
	Logger().Debug("size probe readback",
		slog.String("scenario", s.Label), slog.String("texel", texel.String()))

	return []Result{Check("textureSize", KindDefect, texel, s.expected())}, nil
}

// sizeProbeVertexSource returns a vertex shader that writes the bound array
// texture's size, normalized by size, into its output color.
func sizeProbeVertexSource(size int32) string {
	return fmt.Sprintf(`#version 410 core
uniform sampler2DArray tex;
const float probeSize = %d.0;
out vec4 color;
void main() {
	vec2 tc = vec2(ivec2(gl_VertexID / 2, gl_VertexID %% 2));
	vec2 texSize = vec2(textureSize(tex, 0).xy);
	color = vec4(texSize / probeSize, 0.0, 1.0);
	gl_Position = vec4(2.0 * tc - 1.0, 0.0, 1.0);
}
`, size)
}

const passthroughFragmentSource = `#version 410 core
in vec4 color;
out vec4 fragColor;
void main() {
	fragColor = color;
}
`

// UploadRegion is one buffer-sourced sub-image upload.
type UploadRegion struct {
	Origin        Origin3D
	Width, Height int32
	// Offset is the byte offset into the pixel unpack buffer.
	Offset int
	// StrideTexels is the unpack row length, in texels.
	StrideTexels int32
}

func (r UploadRegion) String() string {
	return fmt.Sprintf("copy at (%d, %d, %d) by offset %d with stride %d",
		r.Origin.X, r.Origin.Y, r.Origin.Layer, r.Offset, r.StrideTexels)
}

// RequiredTexels returns how many texels of the source buffer the upload
// may touch.
func (r UploadRegion) RequiredTexels() int {
	return r.Offset/TexelSize + int(r.StrideTexels)*int(r.Height)
}

// Validate checks that the region fits inside a texture of the given size
// and inside a source buffer holding bufferTexels texels. It must pass
// before the upload is issued.
func (r UploadRegion) Validate(texture Extent3D, bufferTexels int) error {
	fail := func(err error, detail string) error {
		return &PreconditionError{Region: r, Err: err, Detail: detail}
	}
	// Sums are taken in int so int32 extents cannot wrap.
	switch {
	case r.Width <= 0 || r.Height <= 0:
		return fail(ErrEmptyCopy, "")
	case r.Width > r.StrideTexels:
		return fail(ErrStrideTooSmall, "")
	case r.Origin.X < 0 || int(r.Origin.X)+int(r.Width) > int(texture.Width):
		return fail(ErrOutOfBoundsX, fmt.Sprintf("texture width %d", texture.Width))
	case r.Origin.Y < 0 || int(r.Origin.Y)+int(r.Height) > int(texture.Height):
		return fail(ErrOutOfBoundsY, fmt.Sprintf("texture height %d", texture.Height))
	case r.Origin.Layer < 0 || r.Origin.Layer >= texture.Layers:
		return fail(ErrLayerOutOfRange, fmt.Sprintf("%d layers", texture.Layers))
	case r.Offset < 0:
		return fail(ErrUnalignedOffset, "negative offset")
	case r.Offset%TexelSize != 0:
		return fail(ErrUnalignedOffset, "")
	}
	if required := r.RequiredTexels(); required > bufferTexels {
		return fail(ErrBufferTooSmall,
			fmt.Sprintf("required %d texels, but only have space for %d", required, bufferTexels))
	}
	return nil
}

// UploadScenario checks that sub-image uploads sourced from a pixel unpack
// buffer honor the buffer offset, the row length and the destination layer.
//
// The texture is first filled with Background from host memory, then each
// region in Copies is uploaded from a buffer filled with Fill and the
// texel at the region origin is read back. Texels in Untouched must still
// hold Background afterwards.
type UploadScenario struct {
	Label       string
	TextureSize Extent3D
	Background  Pixel
	Fill        Pixel
	Copies      []UploadRegion
	Untouched   []Origin3D
}

func (s UploadScenario) Name() string            { return s.Label }
func (s UploadScenario) ExtensionFilter() string { return "" }

// BufferTexels returns the capacity of the source buffer, which covers the
// whole texture.
func (s UploadScenario) BufferTexels() int {
	return s.TextureSize.Texels()
}

// Validate checks every region in s.Copies.
func (s UploadScenario) Validate() error {
	for _, c := range s.Copies {
		if err := c.Validate(s.TextureSize, s.BufferTexels()); err != nil {
			return err
		}
	}
	return nil
}

// Run performs the uploads and readbacks. Results collected before a
// failed sanity check are returned alongside the error.
func (s UploadScenario) Run(dev Device) ([]Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var results []Result

	texture, err := create("create texture", dev.CreateTexture)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteTexture(texture)
	dev.BindTexture(texture)
	defer dev.BindTexture(0)
	dev.TexStorage3D(1, s.TextureSize)
	dev.TexSubImage3D(Origin3D{}, s.TextureSize, FillPattern(s.Background, s.TextureSize.Texels()))

	framebuf, err := create("create framebuffer", dev.CreateFramebuffer)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteFramebuffer(framebuf)
	dev.BindFramebuffer(framebuf)
	defer dev.BindFramebuffer(0)
	dev.FramebufferTextureLayer(texture, 0, 0)

	sanity := Check("sanity copy at the origin", KindSanity, dev.ReadPixel(0, 0), s.Background)
	results = append(results, sanity)
	if !sanity.Passed() {
		return results, fmt.Errorf("%w: read %v, uploaded %v", ErrSanity, sanity.Actual, sanity.Expected)
	}

	pixelbuf, err := create("create pixel buffer", dev.CreateBuffer)
	if err != nil {
		return results, err
	}
	defer dev.DeleteBuffer(pixelbuf)
	dev.BindPixelUnpackBuffer(pixelbuf)
	defer dev.BindPixelUnpackBuffer(0)
	dev.PixelUnpackBufferData(FillPattern(s.Fill, s.BufferTexels()))
	defer dev.PixelStore(4, 0)

	for _, c := range s.Copies {
		dev.PixelStore(1, c.StrideTexels)
		dev.FramebufferTextureLayer(texture, 0, c.Origin.Layer)
		dev.TexSubImage3DFromBuffer(c.Origin, Extent3D{Width: c.Width, Height: c.Height, Layers: 1}, c.Offset)

		texel := dev.ReadPixel(c.Origin.X, c.Origin.Y)
		Logger().Debug("upload readback",
			slog.String("scenario", s.Label),
			slog.String("region", c.String()),
			slog.String("texel", texel.String()))
		results = append(results, Check(c.String(), KindDefect, texel, s.Fill))
	}

	for _, o := range s.Untouched {
		dev.FramebufferTextureLayer(texture, 0, o.Layer)
		texel := dev.ReadPixel(o.X, o.Y)
		name := fmt.Sprintf("untouched texel at (%d, %d, %d)", o.X, o.Y, o.Layer)
		results = append(results, Check(name, KindDefect, texel, s.Background))
	}

	return results, nil
}

// filterExtensions returns the entries of extensions containing substr.
func filterExtensions(extensions []string, substr string) []string {
	if substr == "" {
		return nil
	}
	var out []string
	for _, ext := range extensions {
		if strings.Contains(ext, substr) {
			out = append(out, ext)
		}
	}
	return out
}
