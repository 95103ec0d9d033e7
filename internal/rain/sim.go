// Package rain implements the digital rain particle simulation and the
// per-frame conversion of its state into GPU-renderable geometry.
package rain

import (
	"math"
	"math/rand"
	"time"
)

// Tunable layout constants. The vertical row spacing and chain capacity
// are deliberately fixed here as the single source of truth; the mesh
// builder and the renderer size everything from them.
const (
	// ChainCapacity is the maximum number of glyphs in one streak chain.
	ChainCapacity = 32

	// RowHeight is the vertical pixel distance between chain rows.
	RowHeight = 16.0

	// ColumnSpacing is the horizontal pixel distance between streak columns.
	ColumnSpacing = 20

	// MaxSurfaceWidth bounds the window width the streak pool is sized for.
	MaxSurfaceWidth = 4096

	// MaxColumns is the largest number of simultaneously active streaks.
	MaxColumns = MaxSurfaceWidth / ColumnSpacing
)

const (
	minChainLen = 10
	maxChainLen = 30

	// The head glyph re-rolls on a faster cadence than mid-chain glyphs.
	headFlickerPeriod  = 3
	chainFlickerPeriod = 7

	// Speed is drawn as base + boost, a right-skewed sum of two uniforms.
	speedBase  = 1.5
	speedRange = 3.0
	boostRange = 1.5
)

// Streak is one falling chain of glyphs. X is the pixel column of the
// chain, Y the pixel position of the head glyph (may be above or below
// the visible area), and Chars[0:ActiveLen] the chain from head to tail.
type Streak struct {
	X         float32
	Y         float32
	Speed     float32
	Chars     [ChainCapacity]rune
	ActiveLen int
}

// Simulation owns a fixed pool of streaks and advances them each frame.
// It has no rendering knowledge beyond producing the streak snapshot the
// mesh builder reads. All randomness flows through the injected source,
// so a seeded Simulation is bit-for-bit reproducible.
type Simulation struct {
	streaks []Streak
	width   int
	height  int
	frame   uint32
	rng     *rand.Rand
}

// New creates a simulation with one streak per column across width,
// seeded from the wall clock.
func New(width, height int) *Simulation {
	return NewWithSource(width, height, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithSource is New with an explicit random source, for reproducible runs.
func NewWithSource(width, height int, rng *rand.Rand) *Simulation {
	s := &Simulation{rng: rng}
	s.Resize(width, height)
	return s
}

// Resize discards all streaks and re-runs the initial spawn for the new
// dimensions. Initial heads are spread across three screen heights, from
// two screens above the top edge down through the visible area, so the
// first frames show streaks already mid-fall rather than a synchronized
// waterfall start.
func (s *Simulation) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s.width = width
	s.height = height

	cols := (width + ColumnSpacing - 1) / ColumnSpacing
	if cols > MaxColumns {
		cols = MaxColumns
	}
	if cap(s.streaks) >= cols {
		s.streaks = s.streaks[:cols]
	} else {
		s.streaks = make([]Streak, cols)
	}
	h := float32(height)
	for i := range s.streaks {
		s.respawn(&s.streaks[i], float32(i*ColumnSpacing))
		s.streaks[i].Y = s.rng.Float32()*3*h - 2*h
	}
}

// Update advances every streak by its speed, applies glyph flicker on its
// fixed cadences, and recycles streaks whose tail has fully passed below
// twice the visible height. It cannot fail; all parameters are clamped.
func (s *Simulation) Update() {
	s.frame++
	h := float32(s.height)
	for i := range s.streaks {
		st := &s.streaks[i]
		st.Y += st.Speed

		if s.frame%headFlickerPeriod == 0 {
			st.Chars[0] = s.randChar()
		}
		if s.frame%chainFlickerPeriod == 0 {
			s.flickerChain(st)
		}

		if st.Y-float32(st.ActiveLen)*RowHeight > 2*h {
			s.respawn(st, float32(s.rng.Intn(s.width)))
		}
	}
}

// respawn resets a streak to a fresh spawn state in place: head above the
// visible area, new speed, new chain content. Nothing reads the streak
// mid-reset since simulation and mesh generation never interleave.
func (s *Simulation) respawn(st *Streak, x float32) {
	st.X = x
	st.Y = -s.rng.Float32() * float32(s.height)
	st.Speed = speedBase + s.rng.Float32()*speedRange + s.rng.Float32()*boostRange
	n := minChainLen + s.rng.Intn(maxChainLen-minChainLen)
	if n > ChainCapacity {
		n = ChainCapacity
	}
	st.ActiveLen = n
	for i := 0; i < n; i++ {
		st.Chars[i] = s.randChar()
	}
}

// flickerChain mutates one mid-chain glyph, restricted to rows currently
// inside the visible vertical range so the flicker is perceptible.
func (s *Simulation) flickerChain(st *Streak) {
	if st.ActiveLen < 2 {
		return
	}
	lo := int(math.Ceil(float64(st.Y-float32(s.height)) / RowHeight))
	hi := int(math.Floor(float64(st.Y) / RowHeight))
	if lo < 1 {
		lo = 1
	}
	if hi > st.ActiveLen-1 {
		hi = st.ActiveLen - 1
	}
	if hi < lo {
		return
	}
	st.Chars[lo+s.rng.Intn(hi-lo+1)] = s.randChar()
}

func (s *Simulation) randChar() rune {
	return charPool[s.rng.Intn(len(charPool))]
}

// Streaks returns a read-only view of the streak pool. The slice is only
// valid until the next Update or Resize call.
func (s *Simulation) Streaks() []Streak {
	return s.streaks
}

// Size returns the current simulation dimensions in pixels.
func (s *Simulation) Size() (width, height int) {
	return s.width, s.height
}
