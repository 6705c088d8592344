package art

import (
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"golang.org/x/image/vector"
)

// Rasterize paints a plan onto dst. The plan must have been built for the
// size of dst; cells are placed relative to dst.Bounds().Min.
//
// Each cell is filled with the background and then each shape is
// composited through a coverage mask clipped to the cell's pixel
// rectangle, so nothing a cell draws leaks into its neighbours.
func (e *Engine) Rasterize(dst draw.Image, plan *Plan) error {
	if err := checkSurface(dst); err != nil {
		return err
	}
	for i := range plan.Cells {
		e.paintCell(dst, &plan.Cells[i], plan.Params.Sharpness)
	}
	return nil
}

func (e *Engine) paintCell(dst draw.Image, cp *CellPlan, sharpness float64) {
	bounds := dst.Bounds()
	clip := cp.Pixels.Add(bounds.Min).Intersect(bounds)
	if clip.Empty() {
		return
	}
	draw.Draw(dst, clip, image.NewUniform(e.background), image.Point{}, draw.Src)

	radius := e.featherRadius(sharpness, cp.Box)
	for _, s := range cp.Shapes {
		mask, origin := coverage(s.Points, cp.Pixels, radius, sharpness)
		mp := clip.Min.Sub(bounds.Min).Sub(origin)
		draw.DrawMask(dst, clip, image.NewUniform(s.Color), image.Point{}, mask, mp, draw.Over)
	}
}

// featherRadius is the blur radius in pixels for a cell. It is derived from
// the unrounded cell size so it scales with the surface.
func (e *Engine) featherRadius(sharpness float64, b Box) float64 {
	return (1 - sharpness) * e.policy.FeatherRatio * min(b.W(), b.H())
}

// coverage rasterizes a polygon into an alpha mask covering the cell
// rectangle padded by the feather radius. It returns the mask and the
// surface position of its origin.
func coverage(pts []Point, cell image.Rectangle, radius, sharpness float64) (*image.Alpha, image.Point) {
	pad := int(math.Ceil(radius))
	area := cell.Inset(-pad)
	w, h := area.Dx(), area.Dy()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if len(pts) < 3 || w <= 0 || h <= 0 {
		return mask, area.Min
	}

	ox, oy := float64(area.Min.X), float64(area.Min.Y)
	z := vector.NewRasterizer(w, h)
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	switch {
	case sharpness >= 1:
		for i, a := range mask.Pix {
			if a >= 128 {
				mask.Pix[i] = 255
			} else {
				mask.Pix[i] = 0
			}
		}
	case radius > 0:
		soft := blur.Box(mask, radius)
		for i := range mask.Pix {
			mask.Pix[i] = soft.Pix[i*4+3]
		}
	}
	return mask, area.Min
}
