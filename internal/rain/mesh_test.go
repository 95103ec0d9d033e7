package rain

import (
	"testing"

	"github.com/esoxlucius42/rusty-matrix/internal/engine/atlas"
)

// testGlyphs returns an atlas lookup covering the given characters, each
// mapped to a full 32x32 cell at the atlas origin.
func testGlyphs(chars ...rune) map[rune]atlas.Glyph {
	glyphs := make(map[rune]atlas.Glyph, len(chars))
	for _, ch := range chars {
		glyphs[ch] = atlas.Glyph{
			UMin: 0, VMin: 0, UMax: 0.015625, VMax: 0.015625,
			Width: 32, Height: 32,
		}
	}
	return glyphs
}

func fullyVisibleStreak(y float32, chars ...rune) Streak {
	st := Streak{X: 40, Y: y, Speed: 2, ActiveLen: len(chars)}
	copy(st.Chars[:], chars)
	return st
}

func TestBuildEmitsOneQuadPerVisibleGlyph(t *testing.T) {
	glyphs := testGlyphs('a', 'b', 'c')
	// Streak A: head at y=32, rows at 32, 16, 0, all inside 100x100.
	a := fullyVisibleStreak(32, 'a', 'b', 'c')
	// Streak B: head at y=200 on a 100-high surface. Rows at 200, 184,
	// 168 are all past the padded range, so zero quads.
	b := fullyVisibleStreak(200, 'a', 'b', 'c')

	mb := NewMeshBuilder(64)
	verts, indices := mb.Build([]Streak{a, b}, glyphs, 100, 100)

	if len(verts) != 3*4 {
		t.Errorf("expected 12 vertices, got %d", len(verts))
	}
	if len(indices) != 3*6 {
		t.Errorf("expected 18 indices, got %d", len(indices))
	}
}

func TestBuildCullsOutsidePaddedRange(t *testing.T) {
	glyphs := testGlyphs('a', 'b')
	// Head one pixel past the bottom padding, the row above it still
	// inside the padded range.
	st := fullyVisibleStreak(100+CullPadding+1, 'a', 'b')
	mb := NewMeshBuilder(16)
	verts, _ := mb.Build([]Streak{st}, glyphs, 100, 100)
	if len(verts) != 4 {
		t.Fatalf("expected only the second-row quad, got %d vertices", len(verts))
	}

	above := fullyVisibleStreak(-CullPadding-1, 'a', 'b')
	verts, indices := mb.Build([]Streak{above}, glyphs, 100, 100)
	if len(verts) != 0 || len(indices) != 0 {
		t.Errorf("expected nothing for a streak above the padded range, got %d vertices", len(verts))
	}
}

func TestBuildSkipsAtlasMisses(t *testing.T) {
	glyphs := testGlyphs('a')
	st := fullyVisibleStreak(32, 'a', 'x', 'a')
	mb := NewMeshBuilder(16)
	verts, _ := mb.Build([]Streak{st}, glyphs, 100, 100)
	if len(verts) != 2*4 {
		t.Errorf("expected 8 vertices with one miss skipped, got %d", len(verts))
	}
	if mb.AtlasMisses() != 1 {
		t.Errorf("expected 1 recorded miss, got %d", mb.AtlasMisses())
	}

	mb.Build([]Streak{st}, map[rune]atlas.Glyph{}, 100, 100)
	if mb.AtlasMisses() != 4 {
		t.Errorf("expected misses to accumulate to 4, got %d", mb.AtlasMisses())
	}
}

func TestBuildClampsToCapacity(t *testing.T) {
	glyphs := testGlyphs('a')
	st := fullyVisibleStreak(80, 'a', 'a', 'a', 'a', 'a')
	mb := NewMeshBuilder(2)
	verts, indices := mb.Build([]Streak{st}, glyphs, 200, 200)
	if len(verts) != 2*4 {
		t.Errorf("expected capacity-clamped 8 vertices, got %d", len(verts))
	}
	if len(indices) != 2*6 {
		t.Errorf("expected capacity-clamped 12 indices, got %d", len(indices))
	}
}

func TestHeadIsWhiteAndTailFadesGreen(t *testing.T) {
	chars := []rune{'a', 'a', 'a', 'a', 'a', 'a', 'a', 'a', 'a', 'a'}
	glyphs := testGlyphs('a')
	st := fullyVisibleStreak(float32(len(chars))*RowHeight, chars...)
	mb := NewMeshBuilder(64)
	verts, _ := mb.Build([]Streak{st}, glyphs, 400, 400)

	head := verts[0].Color
	if head != [4]float32{1, 1, 1, 1} {
		t.Fatalf("expected white head, got %v", head)
	}

	prevGreen := float32(2)
	for row := 1; row < len(chars); row++ {
		c := verts[row*4].Color
		if c[0] != 0 || c[2] != 0 || c[3] != 1 {
			t.Fatalf("row %d: expected pure green channel, got %v", row, c)
		}
		if c[1] > prevGreen {
			t.Fatalf("row %d: green %f brighter than previous %f", row, c[1], prevGreen)
		}
		if c[1] < minGreen {
			t.Fatalf("row %d: green %f below floor %f", row, c[1], minGreen)
		}
		prevGreen = c[1]
	}
}

func TestQuadGeometryAndIndices(t *testing.T) {
	glyphs := testGlyphs('a')
	st := Streak{X: 0, Y: 0, ActiveLen: 1}
	st.Chars[0] = 'a'
	mb := NewMeshBuilder(4)
	verts, indices := mb.Build([]Streak{st}, glyphs, 64, 64)

	if len(verts) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(verts))
	}
	// A 32px cell at the pixel origin of a 64px surface spans the left
	// half in x and the top half in y (NDC y points up).
	wantPos := [][2]float32{
		{-1, 0}, // bottom-left
		{0, 0},  // bottom-right
		{-1, 1}, // top-left
		{0, 1},  // top-right
	}
	for i, want := range wantPos {
		if verts[i].Pos != want {
			t.Errorf("vertex %d: expected pos %v, got %v", i, want, verts[i].Pos)
		}
	}

	wantIdx := []uint32{0, 1, 2, 1, 3, 2}
	for i, want := range wantIdx {
		if indices[i] != want {
			t.Errorf("index %d: expected %d, got %d", i, want, indices[i])
			break
		}
	}
}

func TestBuildReusesBuffers(t *testing.T) {
	glyphs := testGlyphs('a')
	st := fullyVisibleStreak(32, 'a', 'a')
	mb := NewMeshBuilder(16)
	v1, _ := mb.Build([]Streak{st}, glyphs, 100, 100)
	v2, _ := mb.Build([]Streak{st}, glyphs, 100, 100)
	if &v1[0] != &v2[0] {
		t.Error("expected consecutive builds to reuse the same backing array")
	}
}

func TestBuildEmptyInput(t *testing.T) {
	mb := NewMeshBuilder(16)
	verts, indices := mb.Build(nil, testGlyphs('a'), 100, 100)
	if len(verts) != 0 || len(indices) != 0 {
		t.Errorf("expected empty mesh for no streaks, got %d vertices", len(verts))
	}
	if mb.AtlasMisses() != 0 {
		t.Errorf("expected no misses, got %d", mb.AtlasMisses())
	}
}
