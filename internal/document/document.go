// Package document defines the interface the preflight engine uses to read an
// open PDF, together with the error taxonomy for per-file failures. The real
// decode library sits behind these interfaces; the engine never touches a PDF
// byte directly.
package document

import (
	"context"
	"image"
)

// Metadata holds the document information strings. Absent entries are empty
// strings, never omitted fields.
type Metadata struct {
	Title            string
	Author           string
	Subject          string
	Keywords         string
	Creator          string
	Producer         string
	CreationDate     string
	ModificationDate string
}

// Box is a rectangle in PDF user space (points), lower-left to upper-right.
type Box struct {
	LLX float64
	LLY float64
	URX float64
	URY float64
}

// Width returns the horizontal extent of the box in points.
func (b Box) Width() float64 { return b.URX - b.LLX }

// Height returns the vertical extent of the box in points.
func (b Box) Height() float64 { return b.URY - b.LLY }

// Equals reports whether two boxes have identical coordinates.
func (b Box) Equals(other Box) bool {
	return b.LLX == other.LLX && b.LLY == other.LLY &&
		b.URX == other.URX && b.URY == other.URY
}

// PageBoxes carries the resolved page boxes. Media is nil when the page has
// no MediaBox at all; the others are nil when neither present nor inheritable.
type PageBoxes struct {
	Media *Box
	Crop  *Box
	Bleed *Box
	Trim  *Box
	Art   *Box
}

// FontRef describes one font as used on a page. Embedded carries the decode
// library's own embedding signal; HasFontFile reports whether the resource
// dictionary's FontDescriptor carries a FontFile/FontFile2/FontFile3 stream.
type FontRef struct {
	Name        string
	BaseFont    string
	Subtype     string
	Encoding    string
	Embedded    bool
	HasFontFile bool
}

// ColorSpaceRef describes one color-space resource entry on a page.
type ColorSpaceRef struct {
	Name     string // resource name, e.g. "CS0"
	Family   string // color-space family, e.g. "DeviceRGB", "Separation"
	SpotName string // colorant name for Separation spaces, otherwise empty
	ICCBased bool
}

// ImageRef describes one image XObject placed on a page. WidthPts/HeightPts
// are the placed size in points; zero when the placement is unknown, in which
// case no DPI can be derived for the image.
type ImageRef struct {
	PixelWidth  int
	PixelHeight int
	WidthPts    float64
	HeightPts   float64
	HasAlpha    bool
	ColorSpace  string
	Filter      string
	StreamSize  int
}

// ExtGState carries the overprint- and transparency-relevant entries of one
// extended graphics state dictionary. Name is the resource key the content
// stream uses with the "gs" operator. The alpha constants are nil when the
// dictionary does not set them.
type ExtGState struct {
	Name            string
	StrokeOverprint bool     // /OP
	FillOverprint   bool     // /op
	OverprintMode   int      // /OPM
	StrokeAlpha     *float64 // /CA
	FillAlpha       *float64 // /ca
	SoftMask        bool     // /SMask present and not /None
	BlendMode       string   // /BM
}

// Document is the read-only view of one open PDF. Implementations need not be
// safe for concurrent use; every worker opens its own instance.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int
	// Version returns the PDF header version, e.g. "1.7".
	Version() string
	// Encrypted reports whether the document carries encryption.
	Encrypted() bool
	// Linearized reports whether the document is web-optimized.
	Linearized() bool
	// Metadata returns the document information strings.
	Metadata() Metadata

	// Boxes returns the page boxes of the 1-based page.
	Boxes(page int) (PageBoxes, error)
	// Rotation returns the /Rotate value of the 1-based page (0/90/180/270).
	Rotation(page int) (int, error)
	// Fonts lists the fonts used on the 1-based page.
	Fonts(page int) ([]FontRef, error)
	// ColorSpaces lists the color-space resources of the 1-based page.
	ColorSpaces(page int) ([]ColorSpaceRef, error)
	// Images lists the image XObjects of the 1-based page.
	Images(page int) ([]ImageRef, error)
	// Content returns the decoded content stream of the 1-based page.
	Content(page int) ([]byte, error)
	// ExtGStates lists the extended graphics states of the 1-based page.
	ExtGStates(page int) ([]ExtGState, error)

	// RenderPage rasterizes the 1-based page at the given resolution. It
	// returns ErrRenderingUnsupported when the backend cannot rasterize.
	RenderPage(ctx context.Context, page int, dpi int) (image.Image, error)

	// Close releases the underlying resources.
	Close() error
}

// Opener opens a PDF file for analysis.
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}
