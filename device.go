package glprobe

// Object handles. Zero is never a valid object.
type (
	Texture      uint32
	Buffer       uint32
	Framebuffer  uint32
	Renderbuffer uint32
	VertexArray  uint32
	Shader       uint32
	Program      uint32
)

// ShaderStage selects the pipeline stage of a shader object.
type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// DebugMessage is one entry of the driver debug log (GL_KHR_debug).
type DebugMessage struct {
	Source   uint32
	Type     uint32
	ID       uint32
	Severity uint32
	Message  string
}

// Device is the graphics command interface the probes are written against.
//
// Every method maps to a single driver call on the current context. Calls
// must be made from the thread that owns the context. Texture, buffer and
// target methods operate on the currently bound object, the same way the
// underlying API does: 2D array textures, the pixel unpack buffer binding,
// and the draw/read framebuffer.
type Device interface {
	CreateTexture() (Texture, error)
	CreateBuffer() (Buffer, error)
	CreateFramebuffer() (Framebuffer, error)
	CreateRenderbuffer() (Renderbuffer, error)
	CreateVertexArray() (VertexArray, error)
	CreateShader(stage ShaderStage) (Shader, error)
	CreateProgram() (Program, error)

	DeleteTexture(t Texture)
	DeleteBuffer(b Buffer)
	DeleteFramebuffer(f Framebuffer)
	DeleteRenderbuffer(r Renderbuffer)
	DeleteVertexArray(v VertexArray)
	DeleteShader(s Shader)
	DeleteProgram(p Program)

	ShaderSource(s Shader, source string)
	CompileShader(s Shader)
	ShaderCompiled(s Shader) bool
	ShaderInfoLog(s Shader) string
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	ProgramLinked(p Program) bool
	ProgramInfoLog(p Program) string
	UseProgram(p Program)

	// BindTexture binds t to the 2D array texture target.
	BindTexture(t Texture)
	// TexStorage3D allocates immutable RGBA8 storage for the bound texture.
	TexStorage3D(levels int32, size Extent3D)
	TexSwizzle(s Swizzle)
	// TexSubImage3D uploads RGBA8 texels from host memory. No pixel
	// unpack buffer may be bound.
	TexSubImage3D(origin Origin3D, size Extent3D, pixels []byte)
	// TexSubImage3DFromBuffer uploads RGBA8 texels from the bound pixel
	// unpack buffer, starting offset bytes into it.
	TexSubImage3DFromBuffer(origin Origin3D, size Extent3D, offset int)

	// BindPixelUnpackBuffer binds b as the upload source. Zero unbinds.
	BindPixelUnpackBuffer(b Buffer)
	PixelUnpackBufferData(data []byte)
	// PixelStore sets the unpack alignment (bytes) and row length (texels).
	PixelStore(alignment, rowLength int32)

	BindFramebuffer(f Framebuffer)
	// FramebufferTextureLayer attaches one layer of t to color attachment 0
	// of the bound framebuffer.
	FramebufferTextureLayer(t Texture, level, layer int32)
	BindRenderbuffer(r Renderbuffer)
	RenderbufferStorage(width, height int32)
	// FramebufferRenderbuffer attaches r to color attachment 0 of the bound
	// framebuffer.
	FramebufferRenderbuffer(r Renderbuffer)
	BindVertexArray(v VertexArray)

	Viewport(x, y, width, height int32)
	Clear()
	DrawTriangleStrip(first, count int32)

	// ReadPixel reads one RGBA8 pixel from color attachment 0 of the bound
	// framebuffer.
	ReadPixel(x, y int32) Pixel

	Renderer() string
	Extensions() []string
	DebugMessages(max int) []DebugMessage
	Error() uint32
}

// Extent3D is the size of a 2D array texture or upload region.
type Extent3D struct {
	Width, Height, Layers int32
}

// Texels returns the number of texels covered by the extent.
func (e Extent3D) Texels() int {
	return int(e.Width) * int(e.Height) * int(e.Layers)
}

// Origin3D addresses a texel inside a 2D array texture.
type Origin3D struct {
	X, Y, Layer int32
}

// SwizzleSource is the value a swizzled channel reads from.
type SwizzleSource int

const (
	SwizzleRed SwizzleSource = iota
	SwizzleGreen
	SwizzleBlue
	SwizzleAlpha
	SwizzleZero
	SwizzleOne
)

// Swizzle maps each output channel to a source.
type Swizzle struct {
	R, G, B, A SwizzleSource
}

var (
	// IdentitySwizzle is the default texture swizzle.
	IdentitySwizzle = Swizzle{R: SwizzleRed, G: SwizzleGreen, B: SwizzleBlue, A: SwizzleAlpha}

	// RedBlueSwap exchanges red and blue. This exact mapping triggers the
	// size corruption on affected drivers.
	RedBlueSwap = Swizzle{R: SwizzleBlue, G: SwizzleGreen, B: SwizzleRed, A: SwizzleAlpha}
)

// IsIdentity reports whether s leaves every channel in place.
func (s Swizzle) IsIdentity() bool {
	return s == IdentitySwizzle
}
