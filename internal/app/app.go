// Package app wires the simulation, mesh builder, window, and renderer
// into the main loop and owns frame pacing.
package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/esoxlucius42/rusty-matrix/internal/config"
	"github.com/esoxlucius42/rusty-matrix/internal/engine/atlas"
	"github.com/esoxlucius42/rusty-matrix/internal/engine/renderer"
	"github.com/esoxlucius42/rusty-matrix/internal/engine/window"
	"github.com/esoxlucius42/rusty-matrix/internal/logger"
	"github.com/esoxlucius42/rusty-matrix/internal/rain"
)

// App is the running application instance.
type App struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	sim      *rain.Simulation
	mesh     *rain.MeshBuilder
	glyphs   map[rune]atlas.Glyph
	pacer    *pacer
}

// New creates the window, loads the glyph atlas, and initializes the GPU
// pipeline. The caller must run Close when done.
func New(cfg *config.Config) (*App, error) {
	logger.Info("initializing",
		zap.String("title", cfg.Graphics.Title),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Bool("fullscreen", cfg.Graphics.Fullscreen),
	)

	at, err := atlas.Load(cfg.Atlas.Path)
	if err != nil {
		return nil, fmt.Errorf("loading atlas: %w", err)
	}

	a := &App{
		config: cfg,
		glyphs: at.Glyphs,
	}

	a.window, err = window.New(window.Config{
		Title:      cfg.Graphics.Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	// The framebuffer may differ from the requested size on HiDPI
	// displays and in fullscreen. Size everything off the real pixels.
	fbW, fbH := a.window.FramebufferSize()

	maxGlyphs := rain.MaxColumns * rain.ChainCapacity
	a.renderer, err = renderer.New(a.window, at, renderer.Config{
		Width:     fbW,
		Height:    fbH,
		MaxGlyphs: maxGlyphs,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	a.sim = rain.New(fbW, fbH)
	a.mesh = rain.NewMeshBuilder(maxGlyphs)
	a.pacer = newPacer(cfg.Graphics.TargetFPS)

	a.window.OnResize(a.onResize)
	a.window.OnKey(a.onKey)

	logger.Info("initialized", zap.Int("maxGlyphs", maxGlyphs))
	return a, nil
}

// Run drives the main loop until the window is closed or a fatal render
// error occurs. Frames that fail for transient reasons are logged and
// skipped; GPU memory exhaustion aborts the loop.
func (a *App) Run() error {
	a.running = true
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting render loop", zap.Int("targetFPS", a.config.Graphics.TargetFPS))

	for a.running && !a.window.ShouldClose() {
		a.window.Poll()
		a.pacer.wait()

		a.sim.Update()

		w, h := a.sim.Size()
		verts, indices := a.mesh.Build(a.sim.Streaks(), a.glyphs, w, h)

		if err := a.renderer.RenderFrame(verts, indices); err != nil {
			if errors.Is(err, renderer.ErrOutOfMemory) {
				return fmt.Errorf("rendering frame: %w", err)
			}
			logger.Warn("frame skipped", zap.Error(err))
			continue
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("frame stats",
				zap.Int("fps", frameCount),
				zap.Int("quads", len(indices)/6),
				zap.Uint64("atlasMisses", a.mesh.AtlasMisses()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	logger.Info("render loop finished")
	return nil
}

// Close releases GPU and window resources.
func (a *App) Close() {
	logger.Info("shutting down")
	if a.renderer != nil {
		a.renderer.Release()
	}
	if a.window != nil {
		a.window.Close()
	}
}

// onResize tracks framebuffer size changes: presentation is reconfigured
// first so the next acquire matches the window, then the simulation
// regrows or trims its columns.
func (a *App) onResize(width, height int) {
	if width < 1 || height < 1 {
		// Minimized. Keep the last valid configuration.
		return
	}
	logger.Debug("resize", zap.Int("width", width), zap.Int("height", height))
	a.renderer.Resize(width, height)
	a.sim.Resize(width, height)
}

// onKey handles the two global shortcuts. Escape leaves fullscreen if
// active, otherwise quits. F11 toggles borderless fullscreen.
func (a *App) onKey(key window.Key) {
	switch key {
	case window.KeyEscape:
		if a.window.IsFullscreen() {
			a.window.SetFullscreen(false)
		} else {
			a.window.RequestClose()
		}
	case window.KeyToggleFullscreen:
		a.window.ToggleFullscreen()
	}
}
