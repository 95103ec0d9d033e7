// Package window handles GLFW window creation and lifecycle events for
// WebGPU presentation. No GL context is created; the renderer attaches a
// wgpu surface to the native window handle.
package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/esoxlucius42/rusty-matrix/internal/logger"
)

func init() {
	// GLFW event processing must run on the main thread.
	runtime.LockOSThread()
}

// Key identifies the application-level key presses the window reports.
type Key int

const (
	// KeyEscape is the escape key (leave fullscreen, then quit).
	KeyEscape Key = iota
	// KeyToggleFullscreen switches between windowed and borderless fullscreen.
	KeyToggleFullscreen
)

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
}

// Window wraps a GLFW window configured for surface-based rendering.
type Window struct {
	config Config
	win    *glfw.Window

	// windowed placement, restored when leaving fullscreen
	restoreX, restoreY int
	restoreW, restoreH int

	onResize func(width, height int)
	onKey    func(key Key)
}

// New creates a new window. The ClientAPI hint is NoAPI: presentation is
// entirely through the wgpu surface, not a GL context.
func New(cfg Config) (*Window, error) {
	w := &Window{config: cfg}

	logger.Info("initializing GLFW")
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("creating window: %w", err)
	}
	w.win = win

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press || w.onKey == nil {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.onKey(KeyEscape)
		case glfw.KeyF11:
			w.onKey(KeyToggleFullscreen)
		}
	})

	if cfg.Fullscreen {
		w.SetFullscreen(true)
	}

	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
	)

	return w, nil
}

// Close destroys the window and shuts down GLFW.
func (w *Window) Close() {
	logger.Info("closing window")
	if w.win != nil {
		w.win.Destroy()
	}
	glfw.Terminate()
}

// Poll processes pending window events, dispatching callbacks.
func (w *Window) Poll() {
	glfw.PollEvents()
}

// SurfaceDescriptor returns the wgpu surface descriptor for the native
// window handle. Called again whenever the surface must be recreated.
func (w *Window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.win)
}

// FramebufferSize returns the current framebuffer size in pixels.
func (w *Window) FramebufferSize() (int, int) {
	return w.win.GetFramebufferSize()
}

// ShouldClose reports whether a close has been requested.
func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

// RequestClose asks the event loop to terminate.
func (w *Window) RequestClose() {
	w.win.SetShouldClose(true)
}

// IsFullscreen reports whether the window currently owns a monitor.
func (w *Window) IsFullscreen() bool {
	return w.win.GetMonitor() != nil
}

// SetFullscreen switches to borderless fullscreen on the primary monitor,
// or back to the remembered windowed placement.
func (w *Window) SetFullscreen(on bool) {
	if on == w.IsFullscreen() {
		return
	}
	if on {
		w.restoreX, w.restoreY = w.win.GetPos()
		w.restoreW, w.restoreH = w.win.GetSize()
		monitor := glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()
		w.win.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	} else {
		w.win.SetMonitor(nil, w.restoreX, w.restoreY, w.restoreW, w.restoreH, 0)
	}
	logger.Debug("fullscreen changed", zap.Bool("fullscreen", on))
}

// ToggleFullscreen flips between windowed and borderless fullscreen.
func (w *Window) ToggleFullscreen() {
	w.SetFullscreen(!w.IsFullscreen())
}

// OnResize registers the framebuffer resize callback.
func (w *Window) OnResize(fn func(width, height int)) {
	w.onResize = fn
}

// OnKey registers the key press callback.
func (w *Window) OnKey(fn func(key Key)) {
	w.onKey = fn
}
