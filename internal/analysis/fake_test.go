package analysis_test

import (
	"context"
	"image"
	"image/color"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/units"
)

// fakePage is the per-page state served by fakeDocument.
type fakePage struct {
	boxes    document.PageBoxes
	rotation int
	fonts    []document.FontRef
	colors   []document.ColorSpaceRef
	images   []document.ImageRef
	content  []byte
	gstates  []document.ExtGState
}

// fakeDocument is an in-memory document.Document for extractor tests.
type fakeDocument struct {
	version    string
	encrypted  bool
	linearized bool
	metadata   document.Metadata
	pages      []fakePage
	rendered   image.Image
	renderErr  error
	closed     bool
}

func (d *fakeDocument) PageCount() int              { return len(d.pages) }
func (d *fakeDocument) Version() string             { return d.version }
func (d *fakeDocument) Encrypted() bool             { return d.encrypted }
func (d *fakeDocument) Linearized() bool            { return d.linearized }
func (d *fakeDocument) Metadata() document.Metadata { return d.metadata }

func (d *fakeDocument) Boxes(page int) (document.PageBoxes, error) {
	return d.pages[page-1].boxes, nil
}

func (d *fakeDocument) Rotation(page int) (int, error) {
	return d.pages[page-1].rotation, nil
}

func (d *fakeDocument) Fonts(page int) ([]document.FontRef, error) {
	return d.pages[page-1].fonts, nil
}

func (d *fakeDocument) ColorSpaces(page int) ([]document.ColorSpaceRef, error) {
	return d.pages[page-1].colors, nil
}

func (d *fakeDocument) Images(page int) ([]document.ImageRef, error) {
	return d.pages[page-1].images, nil
}

func (d *fakeDocument) Content(page int) ([]byte, error) {
	return d.pages[page-1].content, nil
}

func (d *fakeDocument) ExtGStates(page int) ([]document.ExtGState, error) {
	return d.pages[page-1].gstates, nil
}

func (d *fakeDocument) RenderPage(_ context.Context, _ int, _ int) (image.Image, error) {
	if d.renderErr != nil {
		return nil, d.renderErr
	}

	if d.rendered != nil {
		return d.rendered, nil
	}

	return nil, document.ErrRenderingUnsupported
}

func (d *fakeDocument) Close() error {
	d.closed = true

	return nil
}

func box(llx, lly, urx, ury float64) *document.Box {
	return &document.Box{LLX: llx, LLY: lly, URX: urx, URY: ury}
}

// a4Boxes returns an A4 portrait page with identical media and crop boxes.
func a4Boxes() document.PageBoxes {
	b := box(0, 0, 595.276, 841.890)

	return document.PageBoxes{Media: b, Crop: b}
}

// a4LandscapeBoxes returns an A4 page laid out landscape in user space.
func a4LandscapeBoxes() document.PageBoxes {
	b := box(0, 0, 841.890, 595.276)

	return document.PageBoxes{Media: b, Crop: b}
}

// bledBoxes returns a page whose bleed box extends marginMM beyond the trim
// box on every edge.
func bledBoxes(marginMM float64) document.PageBoxes {
	margin := units.MMToPoints(marginMM)
	outer := box(0, 0, 595.276, 841.890)
	trim := box(margin, margin, 595.276-margin, 841.890-margin)

	return document.PageBoxes{Media: outer, Crop: outer, Bleed: outer, Trim: trim}
}

// solidImage returns a uniformly filled RGBA image.
func solidImage(w, h int, fill color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}

	return img
}
