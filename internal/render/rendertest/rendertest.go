// Package rendertest provides a recording render backend for tests.
package rendertest

import (
	"image/color"

	"github.com/bookistos/warehouse-simulator/internal/render"
)

// Op is one recorded draw call.
type Op struct {
	Kind   string // "rect", "circle", "polygon", "text", "image", "fill"
	X, Y   float32
	W, H   float32
	Points []render.Point
	Text   string
	Color  color.Color
}

// Renderer records every draw call made through it, and every image it
// creates.
type Renderer struct {
	Ops    []Op
	Images []*Image
}

// NewImage implements render.Renderer.
func (r *Renderer) NewImage(width, height int) render.Image {
	img := &Image{r: r, w: width, h: height}
	r.Images = append(r.Images, img)
	return img
}

// FillRect implements render.Renderer.
func (r *Renderer) FillRect(dst render.Image, x, y, width, height float32, clr color.Color) {
	r.Ops = append(r.Ops, Op{Kind: "rect", X: x, Y: y, W: width, H: height, Color: clr})
}

// FillCircle implements render.Renderer.
func (r *Renderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color) {
	r.Ops = append(r.Ops, Op{Kind: "circle", X: x, Y: y, W: radius, Color: clr})
}

// FillPolygon implements render.Renderer.
func (r *Renderer) FillPolygon(dst render.Image, points []render.Point, clr color.Color) {
	r.Ops = append(r.Ops, Op{Kind: "polygon", Points: append([]render.Point(nil), points...), Color: clr})
}

// DrawText implements render.Renderer.
func (r *Renderer) DrawText(dst render.Image, text string, x, y int, clr color.Color, scale float64) {
	r.Ops = append(r.Ops, Op{Kind: "text", X: float32(x), Y: float32(y), Text: text, Color: clr})
}

// MeasureText implements render.Renderer.
func (r *Renderer) MeasureText(text string, scale float64) (int, int) {
	return int(float64(len(text)) * 6 * scale), int(16 * scale)
}

// Count returns how many ops of kind were recorded.
func (r *Renderer) Count(kind string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Texts returns the recorded text strings in order.
func (r *Renderer) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == "text" {
			out = append(out, op.Text)
		}
	}
	return out
}

// Image is an in-memory render.Image.
type Image struct {
	r    *Renderer
	w, h int

	Disposed bool
}

// NewImage returns a standalone image of the given size.
func NewImage(r *Renderer, width, height int) *Image {
	return &Image{r: r, w: width, h: height}
}

func (i *Image) Size() (int, int)     { return i.w, i.h }
func (i *Image) Fill(clr color.Color) { i.record(Op{Kind: "fill", Color: clr}) }
func (i *Image) Dispose()             { i.Disposed = true }

// DrawImage records the blit at the translation of opts.
func (i *Image) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	op := Op{Kind: "image"}
	op.W, op.H = sizeOf(src)
	if opts != nil {
		if g, ok := opts.GeoM.(*GeoM); ok {
			op.X, op.Y = float32(g.TX), float32(g.TY)
		}
	}
	i.record(op)
}

func (i *Image) record(op Op) {
	if i.r != nil {
		i.r.Ops = append(i.r.Ops, op)
	}
}

func sizeOf(img render.Image) (float32, float32) {
	w, h := img.Size()
	return float32(w), float32(h)
}

// GeoM accumulates translations.
type GeoM struct {
	TX, TY float64
}

func (g *GeoM) Translate(tx, ty float64) { g.TX += tx; g.TY += ty }

func init() {
	if render.NewGeoM == nil {
		render.NewGeoM = func() render.GeoM { return &GeoM{} }
	}
}
