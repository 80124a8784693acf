package opengl

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/glprobe"
)

// ContextConfig describes the window and context the probes run in.
type ContextConfig struct {
	Major, Minor  int
	Width, Height int
	Title         string
	// Visible shows the window. Probes render off-screen, so the default
	// keeps it hidden.
	Visible bool
}

// DefaultContextConfig returns a hidden 1x1 window with a 4.1 core,
// forward-compatible context (the highest macOS offers).
func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		Major:  4,
		Minor:  1,
		Width:  1,
		Height: 1,
		Title:  "glprobe",
	}
}

// Context owns the GLFW window whose context the probes use. GLFW must be
// driven from the main thread; callers lock it with runtime.LockOSThread.
type Context struct {
	window *glfw.Window
}

// NewContext initializes GLFW, creates the window, makes its context
// current and loads the GL entry points.
func NewContext(cfg ContextConfig) (*Context, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, cfg.Major)
	glfw.WindowHint(glfw.ContextVersionMinor, cfg.Minor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	if cfg.Visible {
		glfw.WindowHint(glfw.Visible, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}

	glprobe.Logger().Debug("gl context created",
		slog.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		slog.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	return &Context{window: window}, nil
}

// Device returns a Device bound to this context.
func (c *Context) Device() *Device {
	return NewDevice()
}

// Destroy tears down the window and GLFW.
func (c *Context) Destroy() {
	if c.window != nil {
		c.window.Destroy()
		c.window = nil
	}
	glfw.Terminate()
}
