package board

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"ClassroomBoard/internal/state"
)

const miterLimit = 4

func toFixed(p state.Point) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(p.X * 64), Y: fixed.Int26_6(p.Y * 64)}
}

// inkBounds is the pixel rectangle a segment of the given width can touch.
func inkBounds(from, to state.Point, width float64) image.Rectangle {
	pad := width/2 + 2
	minX := math.Floor(math.Min(from.X, to.X) - pad)
	minY := math.Floor(math.Min(from.Y, to.Y) - pad)
	maxX := math.Ceil(math.Max(from.X, to.X) + pad)
	maxY := math.Ceil(math.Max(from.Y, to.Y) + pad)
	return image.Rect(int(minX), int(minY), int(maxX), int(maxY))
}

// brush keeps the rasterizers for one destination image so that painting a
// segment does not allocate a fresh accumulation buffer.
type brush struct {
	dasher *rasterx.Dasher
	filler *rasterx.Filler
}

func newBrush(dst draw.Image) *brush {
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	return &brush{
		dasher: rasterx.NewDasher(w, h, rasterx.NewScannerGV(w, h, dst, bounds)),
		filler: rasterx.NewFiller(w, h, rasterx.NewScannerGV(w, h, dst, bounds)),
	}
}

// line rasterizes a round-capped line from a to b.
func (b *brush) line(from, to state.Point, width float64, c color.Color) {
	d := b.dasher
	d.Clear()
	d.SetStroke(fixed.Int26_6(width*64), fixed.Int26_6(miterLimit*64),
		rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, nil, 0)
	d.SetColor(c)
	d.Start(toFixed(from))
	d.Line(toFixed(to))
	d.Stop(false)
	d.Draw()
	d.Clear()
}

// dot rasterizes a filled circle of the given diameter centred on p.
func (b *brush) dot(p state.Point, width float64, c color.Color) {
	f := b.filler
	f.Clear()
	f.SetColor(c)
	rasterx.AddCircle(p.X, p.Y, width/2, f)
	f.Draw()
	f.Clear()
}

// segment paints seg as a dot when it has no length and as a line otherwise.
func (b *brush) segment(seg state.Segment, c color.Color) {
	if seg.Dot || seg.From == seg.To {
		b.dot(seg.From, seg.Width, c)
		return
	}
	b.line(seg.From, seg.To, seg.Width, c)
}

// destinationOut scales every pixel of dst inside r by one minus the mask
// coverage, which is the canvas "destination-out" composite.
func destinationOut(dst *image.RGBA, mask *image.Alpha, r image.Rectangle) {
	r = r.Intersect(dst.Bounds()).Intersect(mask.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := uint32(mask.AlphaAt(x, y).A)
			if m == 0 {
				continue
			}
			keep := 255 - m
			i := dst.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				dst.Pix[i+c] = uint8(uint32(dst.Pix[i+c]) * keep / 255)
			}
		}
	}
}

// clearRect resets r of dst to transparent.
func clearRect(dst draw.Image, r image.Rectangle) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.Transparent, image.Point{}, draw.Src)
}
