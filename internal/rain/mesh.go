package rain

import (
	"github.com/esoxlucius42/rusty-matrix/internal/engine/atlas"
)

// CullPadding extends the visible vertical range when deciding whether a
// glyph row is worth emitting, so partially visible glyphs at the edges
// are not clipped early.
const CullPadding = 2 * RowHeight

// Tail glyphs fade toward this green floor but never fully vanish before
// the streak recycles.
const minGreen = 0.2

// Vertex is one corner of a glyph quad, in normalized device coordinates.
// The field order matches the vertex buffer layout consumed by the
// render pipeline.
type Vertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// MeshBuilder converts a streak snapshot plus the atlas glyph map into a
// flat quad list. Its output slices are allocated once at the configured
// capacity and reused every frame, so building a frame never allocates.
type MeshBuilder struct {
	maxGlyphs int
	verts     []Vertex
	indices   []uint32
	misses    uint64
}

// NewMeshBuilder returns a builder with room for maxGlyphs quads.
func NewMeshBuilder(maxGlyphs int) *MeshBuilder {
	if maxGlyphs < 1 {
		maxGlyphs = 1
	}
	return &MeshBuilder{
		maxGlyphs: maxGlyphs,
		verts:     make([]Vertex, 0, maxGlyphs*4),
		indices:   make([]uint32, 0, maxGlyphs*6),
	}
}

// Build emits one textured, colored quad per visible glyph: four vertices
// and six indices forming two CCW triangles, appended in streak order then
// row order. Rows outside the padded visible range and characters without
// an atlas entry are skipped; a miss can never fail the frame. The
// returned slices are owned by the builder and valid until the next Build.
func (b *MeshBuilder) Build(streaks []Streak, glyphs map[rune]atlas.Glyph, width, height int) ([]Vertex, []uint32) {
	b.verts = b.verts[:0]
	b.indices = b.indices[:0]

	w := float32(width)
	h := float32(height)
	if w < 1 || h < 1 {
		return b.verts, b.indices
	}

	for si := range streaks {
		st := &streaks[si]
		for row := 0; row < st.ActiveLen; row++ {
			if len(b.verts) == b.maxGlyphs*4 {
				return b.verts, b.indices
			}
			rowY := st.Y - float32(row)*RowHeight
			if rowY < -CullPadding || rowY > h+CullPadding {
				continue
			}
			g, ok := glyphs[st.Chars[row]]
			if !ok {
				b.misses++
				continue
			}
			b.emitQuad(st.X, rowY, row, st.ActiveLen, g, w, h)
		}
	}
	return b.verts, b.indices
}

// AtlasMisses reports how many glyph emissions were skipped because the
// character had no atlas entry. Diagnostics only.
func (b *MeshBuilder) AtlasMisses() uint64 {
	return b.misses
}

func (b *MeshBuilder) emitQuad(x, y float32, row, chainLen int, g atlas.Glyph, w, h float32) {
	color := rowColor(row, chainLen)

	// Pixel rect of the glyph cell, y growing downward.
	x0 := ndcX(x, w)
	x1 := ndcX(x+float32(g.Width), w)
	// rowY is the top of the cell in pixel space.
	y0 := ndcY(y, h)
	y1 := ndcY(y+float32(g.Height), h)

	base := uint32(len(b.verts))
	b.verts = append(b.verts,
		Vertex{Pos: [2]float32{x0, y1}, UV: [2]float32{g.UMin, g.VMax}, Color: color}, // bottom-left
		Vertex{Pos: [2]float32{x1, y1}, UV: [2]float32{g.UMax, g.VMax}, Color: color}, // bottom-right
		Vertex{Pos: [2]float32{x0, y0}, UV: [2]float32{g.UMin, g.VMin}, Color: color}, // top-left
		Vertex{Pos: [2]float32{x1, y0}, UV: [2]float32{g.UMax, g.VMin}, Color: color}, // top-right
	)
	b.indices = append(b.indices,
		base, base+1, base+2,
		base+1, base+3, base+2,
	)
}

// rowColor implements the fade rule: the head row is full-intensity white,
// every later row a green whose brightness decays linearly with distance
// from the head, clamped to [minGreen, 1].
func rowColor(row, chainLen int) [4]float32 {
	if row == 0 {
		return [4]float32{1, 1, 1, 1}
	}
	green := 1 - float32(row)/float32(chainLen)
	if green < minGreen {
		green = minGreen
	}
	if green > 1 {
		green = 1
	}
	return [4]float32{0, green, 0, 1}
}

func ndcX(px, w float32) float32 {
	return 2*px/w - 1
}

func ndcY(py, h float32) float32 {
	return 1 - 2*py/h
}
