// Package opengl implements glprobe.Device on OpenGL 4.1 core.
package opengl

import (
	"log/slog"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/go-theft-auto/glprobe"
)

// Device issues glprobe commands on the current OpenGL context.
// Create it only after gl.Init has succeeded (see NewContext).
type Device struct{}

var _ glprobe.Device = (*Device)(nil)

// NewDevice returns a Device for the current context.
func NewDevice() *Device {
	return &Device{}
}

func (d *Device) CreateTexture() (glprobe.Texture, error) {
	var t uint32
	gl.GenTextures(1, &t)
	return glprobe.Texture(t), nil
}

func (d *Device) CreateBuffer() (glprobe.Buffer, error) {
	var b uint32
	gl.GenBuffers(1, &b)
	return glprobe.Buffer(b), nil
}

func (d *Device) CreateFramebuffer() (glprobe.Framebuffer, error) {
	var f uint32
	gl.GenFramebuffers(1, &f)
	return glprobe.Framebuffer(f), nil
}

func (d *Device) CreateRenderbuffer() (glprobe.Renderbuffer, error) {
	var r uint32
	gl.GenRenderbuffers(1, &r)
	return glprobe.Renderbuffer(r), nil
}

func (d *Device) CreateVertexArray() (glprobe.VertexArray, error) {
	var v uint32
	gl.GenVertexArrays(1, &v)
	return glprobe.VertexArray(v), nil
}

func (d *Device) CreateShader(stage glprobe.ShaderStage) (glprobe.Shader, error) {
	return glprobe.Shader(gl.CreateShader(shaderType(stage))), nil
}

func (d *Device) CreateProgram() (glprobe.Program, error) {
	return glprobe.Program(gl.CreateProgram()), nil
}

func (d *Device) DeleteTexture(t glprobe.Texture) {
	name := uint32(t)
	gl.DeleteTextures(1, &name)
}

func (d *Device) DeleteBuffer(b glprobe.Buffer) {
	name := uint32(b)
	gl.DeleteBuffers(1, &name)
}

func (d *Device) DeleteFramebuffer(f glprobe.Framebuffer) {
	name := uint32(f)
	gl.DeleteFramebuffers(1, &name)
}

func (d *Device) DeleteRenderbuffer(r glprobe.Renderbuffer) {
	name := uint32(r)
	gl.DeleteRenderbuffers(1, &name)
}

func (d *Device) DeleteVertexArray(v glprobe.VertexArray) {
	name := uint32(v)
	gl.DeleteVertexArrays(1, &name)
}

func (d *Device) DeleteShader(s glprobe.Shader)   { gl.DeleteShader(uint32(s)) }
func (d *Device) DeleteProgram(p glprobe.Program) { gl.DeleteProgram(uint32(p)) }

func (d *Device) ShaderSource(s glprobe.Shader, source string) {
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(s), 1, csource, nil)
	free()
}

func (d *Device) CompileShader(s glprobe.Shader) { gl.CompileShader(uint32(s)) }

func (d *Device) ShaderCompiled(s glprobe.Shader) bool {
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (d *Device) ShaderInfoLog(s glprobe.Shader) string {
	var logLength int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := make([]byte, logLength+1)
	gl.GetShaderInfoLog(uint32(s), logLength, nil, &log[0])
	return trimLog(log)
}

func (d *Device) AttachShader(p glprobe.Program, s glprobe.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

func (d *Device) LinkProgram(p glprobe.Program) { gl.LinkProgram(uint32(p)) }

func (d *Device) ProgramLinked(p glprobe.Program) bool {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (d *Device) ProgramInfoLog(p glprobe.Program) string {
	var logLength int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := make([]byte, logLength+1)
	gl.GetProgramInfoLog(uint32(p), logLength, nil, &log[0])
	return trimLog(log)
}

func (d *Device) UseProgram(p glprobe.Program) { gl.UseProgram(uint32(p)) }

func (d *Device) BindTexture(t glprobe.Texture) {
	gl.BindTexture(gl.TEXTURE_2D_ARRAY, uint32(t))
}

func (d *Device) TexStorage3D(levels int32, size glprobe.Extent3D) {
	gl.TexStorage3D(gl.TEXTURE_2D_ARRAY, levels, gl.RGBA8, size.Width, size.Height, size.Layers)
}

func (d *Device) TexSwizzle(s glprobe.Swizzle) {
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_SWIZZLE_R, swizzleSource(s.R))
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_SWIZZLE_G, swizzleSource(s.G))
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_SWIZZLE_B, swizzleSource(s.B))
	gl.TexParameteri(gl.TEXTURE_2D_ARRAY, gl.TEXTURE_SWIZZLE_A, swizzleSource(s.A))
}

func (d *Device) TexSubImage3D(origin glprobe.Origin3D, size glprobe.Extent3D, pixels []byte) {
	gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, 0,
		origin.X, origin.Y, origin.Layer,
		size.Width, size.Height, size.Layers,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (d *Device) TexSubImage3DFromBuffer(origin glprobe.Origin3D, size glprobe.Extent3D, offset int) {
	gl.TexSubImage3D(gl.TEXTURE_2D_ARRAY, 0,
		origin.X, origin.Y, origin.Layer,
		size.Width, size.Height, size.Layers,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.PtrOffset(offset))
}

func (d *Device) BindPixelUnpackBuffer(b glprobe.Buffer) {
	gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, uint32(b))
}

func (d *Device) PixelUnpackBufferData(data []byte) {
	gl.BufferData(gl.PIXEL_UNPACK_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) PixelStore(alignment, rowLength int32) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, alignment)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, rowLength)
}

func (d *Device) BindFramebuffer(f glprobe.Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(f))
}

func (d *Device) FramebufferTextureLayer(t glprobe.Texture, level, layer int32) {
	gl.FramebufferTextureLayer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, uint32(t), level, layer)
}

func (d *Device) BindRenderbuffer(r glprobe.Renderbuffer) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, uint32(r))
}

func (d *Device) RenderbufferStorage(width, height int32) {
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.RGBA8, width, height)
}

func (d *Device) FramebufferRenderbuffer(r glprobe.Renderbuffer) {
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, uint32(r))
}

func (d *Device) BindVertexArray(v glprobe.VertexArray) {
	gl.BindVertexArray(uint32(v))
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) Clear() { gl.Clear(gl.COLOR_BUFFER_BIT) }

func (d *Device) DrawTriangleStrip(first, count int32) {
	gl.DrawArrays(gl.TRIANGLE_STRIP, first, count)
}

func (d *Device) ReadPixel(x, y int32) glprobe.Pixel {
	var p glprobe.Pixel
	gl.ReadPixels(x, y, 1, 1, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&p[0]))
	return p
}

func (d *Device) Renderer() string {
	return gl.GoStr(gl.GetString(gl.RENDERER))
}

func (d *Device) Extensions() []string {
	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	exts := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		exts = append(exts, gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))))
	}
	return exts
}

// DebugMessages fetches up to max entries of the debug message log. The
// context must have been created with GL_KHR_debug available.
func (d *Device) DebugMessages(max int) []glprobe.DebugMessage {
	if max <= 0 {
		return nil
	}
	var maxLen int32
	gl.GetIntegerv(gl.MAX_DEBUG_MESSAGE_LENGTH, &maxLen)
	if maxLen <= 0 {
		return nil
	}

	sources := make([]uint32, max)
	types := make([]uint32, max)
	ids := make([]uint32, max)
	severities := make([]uint32, max)
	lengths := make([]int32, max)
	buf := make([]byte, max*int(maxLen))

	n := gl.GetDebugMessageLog(uint32(max), int32(len(buf)),
		&sources[0], &types[0], &ids[0], &severities[0], &lengths[0], &buf[0])

	msgs := make([]glprobe.DebugMessage, 0, n)
	off := 0
	for i := 0; i < int(n); i++ {
		// Lengths include the terminating NUL.
		l := int(lengths[i])
		text := buf[off : off+l]
		off += l
		msgs = append(msgs, glprobe.DebugMessage{
			Source:   sources[i],
			Type:     types[i],
			ID:       ids[i],
			Severity: severities[i],
			Message:  strings.TrimRight(string(text), "\x00"),
		})
	}
	glprobe.Logger().Debug("fetched debug log", slog.Int("messages", len(msgs)))
	return msgs
}

func (d *Device) Error() uint32 { return gl.GetError() }

func shaderType(stage glprobe.ShaderStage) uint32 {
	if stage == glprobe.FragmentStage {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func swizzleSource(s glprobe.SwizzleSource) int32 {
	switch s {
	case glprobe.SwizzleRed:
		return gl.RED
	case glprobe.SwizzleGreen:
		return gl.GREEN
	case glprobe.SwizzleBlue:
		return gl.BLUE
	case glprobe.SwizzleAlpha:
		return gl.ALPHA
	case glprobe.SwizzleZero:
		return gl.ZERO
	default:
		return gl.ONE
	}
}

func trimLog(log []byte) string {
	return strings.TrimRight(string(log), "\x00\n")
}
