// Package export writes surfaces out as a PDF handout.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"ClassroomBoard/internal/board"
)

const (
	margin      = 10.0 // mm
	titleHeight = 10.0
)

var ErrNoPages = errors.New("nothing to export")

// Page is one surface rendered on its own PDF page.
type Page struct {
	Title string
	Image image.Image
}

// WritePDF renders one A4 landscape page per surface. Transparent areas are
// flattened onto white so erased ink reads as paper.
func WritePDF(w io.Writer, pages []Page) error {
	if len(pages) == 0 {
		return ErrNoPages
	}

	p := gofpdf.New("L", "mm", "A4", "")
	p.SetTitle("ClassroomBoard", true)
	pw, ph := p.GetPageSize()

	for i, page := range pages {
		if page.Image == nil {
			continue
		}
		p.AddPage()

		top := margin
		if page.Title != "" {
			p.SetFont("Helvetica", "B", 14)
			p.SetXY(margin, margin)
			p.CellFormat(pw-2*margin, titleHeight, page.Title, "", 0, "L", false, 0, "")
			top += titleHeight
		}

		data, err := flatten(page.Image)
		if err != nil {
			return errors.Wrapf(err, "page %d", i+1)
		}
		name := fmt.Sprintf("page-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		p.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))

		b := page.Image.Bounds()
		x, y, iw, ih, _ := board.Fit(pw-2*margin, ph-top-margin, float64(b.Dx()), float64(b.Dy()))
		p.ImageOptions(name, margin+x, top+y, iw, ih, false, opts, 0, "")
	}

	if err := p.Error(); err != nil {
		return errors.Wrap(err, "render pdf")
	}
	return p.Output(w)
}

func flatten(img image.Image) ([]byte, error) {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
