package glprobe_test

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-theft-auto/glprobe"
)

// Error codes reported by fakeDevice.Error.
const (
	errInvalidValue     = 0x0501
	errInvalidOperation = 0x0502
)

// defects switches on misbehavior in fakeDevice.
type defects struct {
	// swizzledSize makes textureSize return zero once a non-identity
	// swizzle is set.
	swizzledSize bool
	// dropOffsetUploads skips buffer uploads with a non-zero offset.
	dropOffsetUploads bool
	// ignoreUploadLayer writes buffer uploads to layer 0.
	ignoreUploadLayer bool
	// dropHostUploads skips uploads from host memory.
	dropHostUploads bool
}

type fakeTexture struct {
	size    glprobe.Extent3D
	data    []byte
	swizzle glprobe.Swizzle
}

type fakeRenderbuffer struct {
	width, height int32
	data          []byte
}

type fakeFramebuffer struct {
	texture      glprobe.Texture
	layer        int32
	renderbuffer glprobe.Renderbuffer
}

type fakeShader struct {
	stage     glprobe.ShaderStage
	source    string
	compiled  bool
	probeSize float64
}

type fakeProgram struct {
	shaders []glprobe.Shader
	linked  bool
	// probeSize is copied from the vertex shader at link time.
	probeSize float64
}

// fakeDevice is a software rendition of the small slice of OpenGL the
// probes use. It implements RGBA8 array textures, pixel unpack buffers
// with alignment, row length and offset, layer and renderbuffer readback,
// and a draw that runs the size probe shader.
type fakeDevice struct {
	defects defects

	// Failure injection.
	failCreate   string // "Texture", "Buffer", ... returns a zero handle
	compileError map[glprobe.ShaderStage]string
	linkError    string

	renderer   string
	extensions []string
	debugLog   []glprobe.DebugMessage

	next          uint32
	textures      map[glprobe.Texture]*fakeTexture
	buffers       map[glprobe.Buffer][]byte
	framebuffers  map[glprobe.Framebuffer]*fakeFramebuffer
	renderbuffers map[glprobe.Renderbuffer]*fakeRenderbuffer
	vertexArrays  map[glprobe.VertexArray]bool
	shaders       map[glprobe.Shader]*fakeShader
	programs      map[glprobe.Program]*fakeProgram

	texture      glprobe.Texture
	unpack       glprobe.Buffer
	framebuffer  glprobe.Framebuffer
	renderbuffer glprobe.Renderbuffer
	vertexArray  glprobe.VertexArray
	program      glprobe.Program
	alignment    int32
	rowLength    int32
	viewport     [4]int32

	err   uint32
	calls []string
}

var _ glprobe.Device = (*fakeDevice)(nil)

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		compileError:  make(map[glprobe.ShaderStage]string),
		renderer:      "fake renderer",
		extensions:    []string{"GL_ARB_texture_swizzle", "GL_EXT_texture_swizzle", "GL_ARB_texture_storage"},
		textures:      make(map[glprobe.Texture]*fakeTexture),
		buffers:       make(map[glprobe.Buffer][]byte),
		framebuffers:  make(map[glprobe.Framebuffer]*fakeFramebuffer),
		renderbuffers: make(map[glprobe.Renderbuffer]*fakeRenderbuffer),
		vertexArrays:  make(map[glprobe.VertexArray]bool),
		shaders:       make(map[glprobe.Shader]*fakeShader),
		programs:      make(map[glprobe.Program]*fakeProgram),
		alignment:     4,
	}
}

// live returns how many objects have not been deleted.
func (d *fakeDevice) live() int {
	return len(d.textures) + len(d.buffers) + len(d.framebuffers) +
		len(d.renderbuffers) + len(d.vertexArrays) + len(d.shaders) + len(d.programs)
}

func (d *fakeDevice) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDevice) setErr(code uint32) {
	if d.err == 0 {
		d.err = code
	}
}

func (d *fakeDevice) name(kind string) uint32 {
	d.record("Create%s", kind)
	if d.failCreate == kind {
		return 0
	}
	d.next++
	return d.next
}

func (d *fakeDevice) CreateTexture() (glprobe.Texture, error) {
	t := glprobe.Texture(d.name("Texture"))
	if t != 0 {
		d.textures[t] = &fakeTexture{swizzle: glprobe.IdentitySwizzle}
	}
	return t, nil
}

func (d *fakeDevice) CreateBuffer() (glprobe.Buffer, error) {
	b := glprobe.Buffer(d.name("Buffer"))
	if b != 0 {
		d.buffers[b] = nil
	}
	return b, nil
}

func (d *fakeDevice) CreateFramebuffer() (glprobe.Framebuffer, error) {
	f := glprobe.Framebuffer(d.name("Framebuffer"))
	if f != 0 {
		d.framebuffers[f] = &fakeFramebuffer{}
	}
	return f, nil
}

func (d *fakeDevice) CreateRenderbuffer() (glprobe.Renderbuffer, error) {
	r := glprobe.Renderbuffer(d.name("Renderbuffer"))
	if r != 0 {
		d.renderbuffers[r] = &fakeRenderbuffer{}
	}
	return r, nil
}

func (d *fakeDevice) CreateVertexArray() (glprobe.VertexArray, error) {
	v := glprobe.VertexArray(d.name("VertexArray"))
	if v != 0 {
		d.vertexArrays[v] = true
	}
	return v, nil
}

func (d *fakeDevice) CreateShader(stage glprobe.ShaderStage) (glprobe.Shader, error) {
	s := glprobe.Shader(d.name("Shader"))
	if s != 0 {
		d.shaders[s] = &fakeShader{stage: stage}
	}
	return s, nil
}

func (d *fakeDevice) CreateProgram() (glprobe.Program, error) {
	p := glprobe.Program(d.name("Program"))
	if p != 0 {
		d.programs[p] = &fakeProgram{}
	}
	return p, nil
}

func (d *fakeDevice) DeleteTexture(t glprobe.Texture) {
	d.record("DeleteTexture")
	delete(d.textures, t)
}

func (d *fakeDevice) DeleteBuffer(b glprobe.Buffer) {
	d.record("DeleteBuffer")
	delete(d.buffers, b)
}

func (d *fakeDevice) DeleteFramebuffer(f glprobe.Framebuffer) {
	d.record("DeleteFramebuffer")
	delete(d.framebuffers, f)
}

func (d *fakeDevice) DeleteRenderbuffer(r glprobe.Renderbuffer) {
	d.record("DeleteRenderbuffer")
	delete(d.renderbuffers, r)
}

func (d *fakeDevice) DeleteVertexArray(v glprobe.VertexArray) {
	d.record("DeleteVertexArray")
	delete(d.vertexArrays, v)
}

func (d *fakeDevice) DeleteShader(s glprobe.Shader) {
	d.record("DeleteShader")
	delete(d.shaders, s)
}

func (d *fakeDevice) DeleteProgram(p glprobe.Program) {
	d.record("DeleteProgram")
	delete(d.programs, p)
}

func (d *fakeDevice) ShaderSource(s glprobe.Shader, source string) {
	if sh := d.shaders[s]; sh != nil {
		sh.source = source
	}
}

// CompileShader "compiles" by locating the probeSize constant the size
// probe vertex shader declares.
func (d *fakeDevice) CompileShader(s glprobe.Shader) {
	sh := d.shaders[s]
	if sh == nil {
		d.setErr(errInvalidValue)
		return
	}
	if d.compileError[sh.stage] != "" {
		return
	}
	sh.compiled = true
	for _, line := range strings.Split(sh.source, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "const float probeSize = ")
		if !ok {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSuffix(rest, ";"), 64); err == nil {
			sh.probeSize = v
		}
	}
}

func (d *fakeDevice) ShaderCompiled(s glprobe.Shader) bool {
	sh := d.shaders[s]
	return sh != nil && sh.compiled
}

func (d *fakeDevice) ShaderInfoLog(s glprobe.Shader) string {
	if sh := d.shaders[s]; sh != nil {
		return d.compileError[sh.stage]
	}
	return ""
}

func (d *fakeDevice) AttachShader(p glprobe.Program, s glprobe.Shader) {
	if prog := d.programs[p]; prog != nil {
		prog.shaders = append(prog.shaders, s)
	}
}

func (d *fakeDevice) LinkProgram(p glprobe.Program) {
	d.record("LinkProgram")
	prog := d.programs[p]
	if prog == nil || d.linkError != "" {
		return
	}
	for _, s := range prog.shaders {
		sh := d.shaders[s]
		if sh == nil || !sh.compiled {
			return
		}
		if sh.stage == glprobe.VertexStage {
			prog.probeSize = sh.probeSize
		}
	}
	prog.linked = true
}

func (d *fakeDevice) ProgramLinked(p glprobe.Program) bool {
	prog := d.programs[p]
	return prog != nil && prog.linked
}

func (d *fakeDevice) ProgramInfoLog(glprobe.Program) string { return d.linkError }

func (d *fakeDevice) UseProgram(p glprobe.Program) { d.program = p }

func (d *fakeDevice) BindTexture(t glprobe.Texture) { d.texture = t }

func (d *fakeDevice) TexStorage3D(levels int32, size glprobe.Extent3D) {
	d.record("TexStorage3D %dx%dx%d", size.Width, size.Height, size.Layers)
	t := d.textures[d.texture]
	if t == nil || levels != 1 {
		d.setErr(errInvalidOperation)
		return
	}
	t.size = size
	t.data = make([]byte, size.Texels()*glprobe.TexelSize)
}

func (d *fakeDevice) TexSwizzle(s glprobe.Swizzle) {
	d.record("TexSwizzle")
	if t := d.textures[d.texture]; t != nil {
		t.swizzle = s
	}
}

func (d *fakeDevice) TexSubImage3D(origin glprobe.Origin3D, size glprobe.Extent3D, pixels []byte) {
	d.record("TexSubImage3D")
	if d.unpack != 0 {
		// With an unpack buffer bound the pointer would be an offset.
		d.setErr(errInvalidOperation)
		return
	}
	if d.defects.dropHostUploads {
		return
	}
	d.unpackInto(origin, size, pixels, 0)
}

func (d *fakeDevice) TexSubImage3DFromBuffer(origin glprobe.Origin3D, size glprobe.Extent3D, offset int) {
	d.record("TexSubImage3DFromBuffer offset=%d", offset)
	data, ok := d.buffers[d.unpack]
	if d.unpack == 0 || !ok {
		d.setErr(errInvalidOperation)
		return
	}
	if d.defects.dropOffsetUploads && offset != 0 {
		return
	}
	if d.defects.ignoreUploadLayer {
		origin.Layer = 0
	}
	d.unpackInto(origin, size, data, offset)
}

// unpackInto copies a region from src into the bound texture following the
// current unpack row length and alignment.
func (d *fakeDevice) unpackInto(origin glprobe.Origin3D, size glprobe.Extent3D, src []byte, offset int) {
	t := d.textures[d.texture]
	if t == nil || t.data == nil {
		d.setErr(errInvalidOperation)
		return
	}
	if origin.X < 0 || origin.Y < 0 || origin.Layer < 0 ||
		origin.X+size.Width > t.size.Width ||
		origin.Y+size.Height > t.size.Height ||
		origin.Layer+size.Layers > t.size.Layers {
		d.setErr(errInvalidValue)
		return
	}

	rowLength := int(size.Width)
	if d.rowLength > 0 {
		rowLength = int(d.rowLength)
	}
	align := int(d.alignment)
	rowBytes := (rowLength*glprobe.TexelSize + align - 1) / align * align
	imageBytes := rowBytes * int(size.Height)

	last := offset + (int(size.Layers)-1)*imageBytes + (int(size.Height)-1)*rowBytes + int(size.Width)*glprobe.TexelSize
	if last > len(src) {
		d.setErr(errInvalidOperation)
		return
	}

	for z := 0; z < int(size.Layers); z++ {
		for y := 0; y < int(size.Height); y++ {
			s := offset + z*imageBytes + y*rowBytes
			dst := d.texelOffset(t, origin.X, origin.Y+int32(y), origin.Layer+int32(z))
			copy(t.data[dst:dst+int(size.Width)*glprobe.TexelSize], src[s:s+int(size.Width)*glprobe.TexelSize])
		}
	}
}

func (d *fakeDevice) texelOffset(t *fakeTexture, x, y, layer int32) int {
	return ((int(layer)*int(t.size.Height)+int(y))*int(t.size.Width) + int(x)) * glprobe.TexelSize
}

func (d *fakeDevice) BindPixelUnpackBuffer(b glprobe.Buffer) { d.unpack = b }

func (d *fakeDevice) PixelUnpackBufferData(data []byte) {
	if _, ok := d.buffers[d.unpack]; d.unpack == 0 || !ok {
		d.setErr(errInvalidOperation)
		return
	}
	d.buffers[d.unpack] = append([]byte(nil), data...)
}

func (d *fakeDevice) PixelStore(alignment, rowLength int32) {
	d.record("PixelStore %d %d", alignment, rowLength)
	d.alignment = alignment
	d.rowLength = rowLength
}

func (d *fakeDevice) BindFramebuffer(f glprobe.Framebuffer) { d.framebuffer = f }

func (d *fakeDevice) FramebufferTextureLayer(t glprobe.Texture, level, layer int32) {
	fb := d.framebuffers[d.framebuffer]
	if fb == nil || level != 0 {
		d.setErr(errInvalidOperation)
		return
	}
	*fb = fakeFramebuffer{texture: t, layer: layer}
}

func (d *fakeDevice) BindRenderbuffer(r glprobe.Renderbuffer) { d.renderbuffer = r }

func (d *fakeDevice) RenderbufferStorage(width, height int32) {
	rb := d.renderbuffers[d.renderbuffer]
	if rb == nil {
		d.setErr(errInvalidOperation)
		return
	}
	*rb = fakeRenderbuffer{width: width, height: height, data: make([]byte, int(width)*int(height)*glprobe.TexelSize)}
}

func (d *fakeDevice) FramebufferRenderbuffer(r glprobe.Renderbuffer) {
	fb := d.framebuffers[d.framebuffer]
	if fb == nil {
		d.setErr(errInvalidOperation)
		return
	}
	*fb = fakeFramebuffer{renderbuffer: r}
}

func (d *fakeDevice) BindVertexArray(v glprobe.VertexArray) { d.vertexArray = v }

func (d *fakeDevice) Viewport(x, y, width, height int32) {
	d.viewport = [4]int32{x, y, width, height}
}

func (d *fakeDevice) Clear() {
	d.record("Clear")
	if rb := d.boundRenderbuffer(); rb != nil {
		clear(rb.data)
	}
}

// DrawTriangleStrip runs the size probe: every pixel of the viewport gets
// vec4(textureSize / probeSize, 0, 1) for the bound array texture.
func (d *fakeDevice) DrawTriangleStrip(first, count int32) {
	d.record("DrawTriangleStrip %d %d", first, count)
	prog := d.programs[d.program]
	rb := d.boundRenderbuffer()
	if prog == nil || !prog.linked || !d.vertexArrays[d.vertexArray] || rb == nil {
		d.setErr(errInvalidOperation)
		return
	}
	if count < 4 {
		return
	}

	var w, h float64
	if t := d.textures[d.texture]; t != nil {
		w, h = float64(t.size.Width), float64(t.size.Height)
		if d.defects.swizzledSize && !t.swizzle.IsIdentity() {
			w, h = 0, 0
		}
	}
	color := glprobe.Pixel{unorm(w / prog.probeSize), unorm(h / prog.probeSize), 0, 0xFF}

	x0, y0 := d.viewport[0], d.viewport[1]
	for y := y0; y < y0+d.viewport[3] && y < rb.height; y++ {
		for x := x0; x < x0+d.viewport[2] && x < rb.width; x++ {
			i := (int(y)*int(rb.width) + int(x)) * glprobe.TexelSize
			copy(rb.data[i:i+glprobe.TexelSize], color[:])
		}
	}
}

// unorm converts a float to an 8-bit normalized channel.
func unorm(v float64) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xFF
	default:
		return byte(v*255 + 0.5)
	}
}

func (d *fakeDevice) boundRenderbuffer() *fakeRenderbuffer {
	fb := d.framebuffers[d.framebuffer]
	if fb == nil || fb.renderbuffer == 0 {
		return nil
	}
	return d.renderbuffers[fb.renderbuffer]
}

func (d *fakeDevice) ReadPixel(x, y int32) glprobe.Pixel {
	d.record("ReadPixel %d %d", x, y)
	var p glprobe.Pixel
	fb := d.framebuffers[d.framebuffer]
	switch {
	case fb == nil:
		d.setErr(errInvalidOperation)
	case fb.renderbuffer != 0:
		rb := d.renderbuffers[fb.renderbuffer]
		if rb == nil || x < 0 || y < 0 || x >= rb.width || y >= rb.height {
			return p
		}
		i := (int(y)*int(rb.width) + int(x)) * glprobe.TexelSize
		copy(p[:], rb.data[i:])
	case fb.texture != 0:
		t := d.textures[fb.texture]
		if t == nil || t.data == nil || x < 0 || y < 0 || x >= t.size.Width || y >= t.size.Height || fb.layer >= t.size.Layers {
			return p
		}
		copy(p[:], t.data[d.texelOffset(t, x, y, fb.layer):])
	}
	return p
}

func (d *fakeDevice) Renderer() string     { return d.renderer }
func (d *fakeDevice) Extensions() []string { return d.extensions }

func (d *fakeDevice) DebugMessages(max int) []glprobe.DebugMessage {
	n := min(max, len(d.debugLog))
	msgs := d.debugLog[:n]
	d.debugLog = d.debugLog[n:]
	return msgs
}

func (d *fakeDevice) Error() uint32 {
	err := d.err
	d.err = 0
	return err
}
