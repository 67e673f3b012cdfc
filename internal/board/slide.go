package board

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
)

// Fit scales an iw x ih image uniformly into a cw x ch box and centres it.
// It returns the offset and size of the scaled image and the scale factor.
func Fit(cw, ch, iw, ih float64) (x, y, w, h, scale float64) {
	if iw <= 0 || ih <= 0 || cw <= 0 || ch <= 0 {
		return 0, 0, 0, 0, 0
	}
	scale = math.Min(cw/iw, ch/ih)
	w, h = iw*scale, ih*scale
	return (cw - w) / 2, (ch - h) / 2, w, h, scale
}

// FitRect is Fit on pixel rectangles. Sizes are floored so the result never
// overflows canvas on either axis.
func FitRect(canvas, img image.Rectangle) image.Rectangle {
	_, _, w, h, scale := Fit(float64(canvas.Dx()), float64(canvas.Dy()), float64(img.Dx()), float64(img.Dy()))
	if scale == 0 {
		return image.Rectangle{}
	}
	pw := min(int(math.Floor(w+1e-9)), canvas.Dx())
	ph := min(int(math.Floor(h+1e-9)), canvas.Dy())
	x := canvas.Min.X + (canvas.Dx()-pw)/2
	y := canvas.Min.Y + (canvas.Dy()-ph)/2
	return image.Rect(x, y, x+pw, y+ph)
}

// LoadImage makes img the current slide: the raster is cleared and img is
// drawn centred and uniformly scaled to fit.
func (s *Surface) LoadImage(img image.Image) {
	s.mu.Lock()
	s.slide = img
	clearRect(s.raster, s.raster.Bounds())
	s.drawSlide()
	s.mu.Unlock()

	if s.OnSlide != nil {
		s.OnSlide(img)
	}
	s.changed()
}

// LoadImageFile decodes a PNG, JPEG or GIF file and loads it as the slide.
func (s *Surface) LoadImageFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open slide")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return errors.Wrapf(err, "decode slide %s", path)
	}
	s.LoadImage(img)
	return nil
}

// Slide returns the current slide image, or nil.
func (s *Surface) Slide() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slide
}

// drawSlide must be called with s.mu held.
func (s *Surface) drawSlide() {
	if s.slide == nil {
		return
	}
	dst := FitRect(s.raster.Bounds(), s.slide.Bounds())
	if dst.Empty() {
		return
	}
	xdraw.CatmullRom.Scale(s.raster, dst, s.slide, s.slide.Bounds(), xdraw.Over, nil)
}
