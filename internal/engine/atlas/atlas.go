// Package atlas loads the prebaked glyph atlas: a single RGBA texture
// image packing the halfwidth katakana block, plus the mapping from
// character to normalized texture rectangle. The image and its packing
// layout are produced by an offline baking step from a font; at runtime
// both are opaque, read-only inputs.
package atlas

import (
	"bytes"
	"fmt"
	"image"
	"os"

	_ "image/png"

	"golang.org/x/image/draw"
)

// Baked atlas layout contract. The baking step rasterizes glyphs into
// fixed-size cells walked row-major with padding on all sides; the same
// walk here reproduces the coordinates without a sidecar metadata file.
const (
	Width     = 2048
	Height    = 2048
	GlyphSize = 32
	padding   = 4

	firstRune = 0xFF66 // halfwidth katakana wo
	lastRune  = 0xFF9D // halfwidth katakana n
)

// Glyph is the atlas entry for one character: its normalized texture
// rectangle and pixel cell size.
type Glyph struct {
	UMin, VMin float32
	UMax, VMax float32
	Width      int
	Height     int
}

// Atlas is the decoded texture plus the glyph lookup table. Immutable
// after load.
type Atlas struct {
	Pix    *image.RGBA
	Glyphs map[rune]Glyph
}

// Load reads and decodes the baked atlas image at path.
func Load(path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading atlas: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding atlas %s: %w", path, err)
	}
	return FromImage(img), nil
}

// FromImage builds an Atlas from an already decoded image, converting
// (and scaling, if the baker used different dimensions) to the RGBA
// layout the GPU upload expects.
func FromImage(img image.Image) *Atlas {
	return &Atlas{
		Pix:    toRGBA(img),
		Glyphs: BakedGlyphs(),
	}
}

// BakedGlyphs reproduces the baker's packing walk: fixed-size cells laid
// out row-major across the atlas with uniform padding, one cell per
// character of the baked range, in character order.
func BakedGlyphs() map[rune]Glyph {
	glyphs := make(map[rune]Glyph, lastRune-firstRune+1)
	x, y := padding, padding
	for ch := rune(firstRune); ch <= lastRune; ch++ {
		if x+GlyphSize+padding > Width {
			x = padding
			y += GlyphSize + padding
			if y+GlyphSize+padding > Height {
				break
			}
		}
		glyphs[ch] = Glyph{
			UMin:   float32(x) / Width,
			VMin:   float32(y) / Height,
			UMax:   float32(x+GlyphSize) / Width,
			VMax:   float32(y+GlyphSize) / Height,
			Width:  GlyphSize,
			Height: GlyphSize,
		}
		x += GlyphSize + padding
	}
	return glyphs
}

func toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	if bounds.Dx() == Width && bounds.Dy() == Height {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	}
	return dst
}
