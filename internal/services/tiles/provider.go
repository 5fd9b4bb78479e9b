package tiles

import (
	"context"
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mcoot/schoolgate/internal/model"
)

// DefaultSize is the edge length of a tile in pixels
const DefaultSize = 150

// Provider supplies the four tiles of a new challenge. It always returns four
// usable tiles; implementations substitute placeholders for anything unreadable.
type Provider interface {
	Tiles(ctx context.Context) [model.TileCount]model.Tile
}

var placeholderColors = [model.TileCount]color.RGBA{
	{R: 255, G: 100, B: 100, A: 255},
	{R: 100, G: 255, B: 100, A: 255},
	{R: 100, G: 100, B: 255, A: 255},
	{R: 255, G: 255, B: 100, A: 255},
}

// Placeholder draws tile index as a flat colour with its 1-based number in black
func Placeholder(index, size int) model.Tile {
	if size <= 0 {
		size = DefaultSize
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	fill := placeholderColors[index%model.TileCount]
	draw.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	drawLabel(img, strconv.Itoa(index+1))
	return model.Tile{Index: index, Image: img}
}

// drawLabel renders label with the fixed 7x13 face and blows it up to half the tile height
func drawLabel(dst *image.RGBA, label string) {
	face := basicfont.Face7x13
	d := &font.Drawer{Src: image.Black, Face: face}
	w := d.MeasureString(label).Ceil()
	if w <= 0 {
		return
	}

	glyph := image.NewRGBA(image.Rect(0, 0, w, face.Height))
	d.Dst = glyph
	d.Dot = fixed.P(0, face.Ascent)
	d.DrawString(label)

	b := dst.Bounds()
	gh := b.Dy() / 2
	gw := gh * w / face.Height
	x0 := b.Min.X + (b.Dx()-gw)/2
	y0 := b.Min.Y + (b.Dy()-gh)/2
	draw.NearestNeighbor.Scale(dst, image.Rect(x0, y0, x0+gw, y0+gh), glyph, glyph.Bounds(), draw.Over, nil)
}

// Scale resamples src to a size x size square
func Scale(src image.Image, size int) *image.RGBA {
	if size <= 0 {
		size = DefaultSize
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// StaticProvider always returns the placeholder set
type StaticProvider struct {
	Size int
}

// Tiles returns the four placeholders
func (p StaticProvider) Tiles(ctx context.Context) [model.TileCount]model.Tile {
	var tiles [model.TileCount]model.Tile
	for i := range tiles {
		tiles[i] = Placeholder(i, p.Size)
	}
	return tiles
}
