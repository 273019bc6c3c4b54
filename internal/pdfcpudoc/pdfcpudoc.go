// Package pdfcpudoc adapts pdfcpu to the document interfaces. It walks the
// cross-reference table, page dictionaries and resource dictionaries to
// expose the geometry, font, color and image measurements the preflight
// engine needs. pdfcpu cannot rasterize, so RenderPage always reports
// rendering as unsupported; callers that need pixels wrap the document with
// an external renderer.
package pdfcpudoc

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/contentstream"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
)

// Opener opens PDF files through pdfcpu.
type Opener struct{}

// NewOpener returns a pdfcpu-backed document opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open reads and decodes the cross-reference table of the file. Any decode
// failure is classified as an unreadable document.
func (o *Opener) Open(ctx context.Context, path string) (document.Document, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("opening %s: %w", path, ctxErr)
	}

	pdfCtx, readErr := api.ReadContextFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("%w: %s: %w",
			document.ErrDocumentUnreadable, path, readErr)
	}

	return &pdfDocument{ctx: pdfCtx}, nil
}

type pdfDocument struct {
	ctx *model.Context
}

// PageCount returns the number of pages.
func (d *pdfDocument) PageCount() int {
	return d.ctx.PageCount
}

// Version returns the PDF header version.
func (d *pdfDocument) Version() string {
	if d.ctx.HeaderVersion == nil {
		return ""
	}

	return d.ctx.HeaderVersion.String()
}

// Encrypted reports whether the document carries an encryption dictionary.
func (d *pdfDocument) Encrypted() bool {
	return d.ctx.Encrypt != nil
}

// Linearized reports whether the document is web-optimized.
func (d *pdfDocument) Linearized() bool {
	return d.ctx.Read != nil && d.ctx.Read.Linearized
}

// Metadata returns the document information strings.
func (d *pdfDocument) Metadata() document.Metadata {
	var meta document.Metadata

	if d.ctx.Info == nil {
		return meta
	}

	infoDict, err := d.derefDict(*d.ctx.Info)
	if err != nil {
		return meta
	}

	meta.Title = d.infoString(infoDict, "Title")
	meta.Author = d.infoString(infoDict, "Author")
	meta.Subject = d.infoString(infoDict, "Subject")
	meta.Keywords = d.infoString(infoDict, "Keywords")
	meta.Creator = d.infoString(infoDict, "Creator")
	meta.Producer = d.infoString(infoDict, "Producer")
	meta.CreationDate = d.infoString(infoDict, "CreationDate")
	meta.ModificationDate = d.infoString(infoDict, "ModDate")

	return meta
}

// Boxes resolves the page boxes. MediaBox and CropBox come from the
// inherited page attributes; the print boxes live on the page dictionary
// itself.
func (d *pdfDocument) Boxes(page int) (document.PageBoxes, error) {
	pageDict, _, inhPAttrs, err := d.ctx.PageDict(page, false)
	if err != nil {
		return document.PageBoxes{}, fmt.Errorf(
			"failed to get page dict for page %d: %w", page, err)
	}

	boxes := document.PageBoxes{
		Media: boxFromRectangle(inhPAttrs.MediaBox),
		Crop:  boxFromRectangle(inhPAttrs.CropBox),
		Bleed: nil,
		Trim:  nil,
		Art:   nil,
	}

	if obj, found := pageDict.Find("BleedBox"); found {
		boxes.Bleed = d.boxFromObject(obj)
	}

	if obj, found := pageDict.Find("TrimBox"); found {
		boxes.Trim = d.boxFromObject(obj)
	}

	if obj, found := pageDict.Find("ArtBox"); found {
		boxes.Art = d.boxFromObject(obj)
	}

	return boxes, nil
}

// Rotation returns the inherited /Rotate value of the page.
func (d *pdfDocument) Rotation(page int) (int, error) {
	_, _, inhPAttrs, err := d.ctx.PageDict(page, false)
	if err != nil {
		return 0, fmt.Errorf("failed to get page dict for page %d: %w", page, err)
	}

	return inhPAttrs.Rotate, nil
}

// Fonts walks the page's font resources. Embedding is probed through the
// FontDescriptor's FontFile streams; for Type0 fonts the descriptor lives on
// the first descendant font.
func (d *pdfDocument) Fonts(page int) ([]document.FontRef, error) {
	resources, err := d.pageResources(page)
	if err != nil {
		return nil, err
	}

	fontDicts, err := d.resourceDict(resources, "Font")
	if err != nil || fontDicts == nil {
		return nil, err
	}

	fonts := make([]document.FontRef, 0, len(fontDicts))

	for _, name := range sortedKeys(fontDicts) {
		fontDict, derefErr := d.derefDict(fontDicts[name])
		if derefErr != nil {
			continue
		}

		ref := document.FontRef{
			Name:        name,
			BaseFont:    d.nameEntry(fontDict, "BaseFont"),
			Subtype:     d.nameEntry(fontDict, "Subtype"),
			Encoding:    d.nameEntry(fontDict, "Encoding"),
			Embedded:    false,
			HasFontFile: false,
		}

		ref.HasFontFile = d.hasFontFile(fontDict, ref.Subtype)
		ref.Embedded = ref.HasFontFile

		fonts = append(fonts, ref)
	}

	return fonts, nil
}

// ColorSpaces lists the page's color-space resources plus the device spaces
// its content stream selects directly through color operators.
func (d *pdfDocument) ColorSpaces(page int) ([]document.ColorSpaceRef, error) {
	resources, err := d.pageResources(page)
	if err != nil {
		return nil, err
	}

	var refs []document.ColorSpaceRef

	spaceDicts, err := d.resourceDict(resources, "ColorSpace")
	if err == nil && spaceDicts != nil {
		for _, name := range sortedKeys(spaceDicts) {
			refs = append(refs, d.colorSpaceRefs(name, spaceDicts[name])...)
		}
	}

	content, contentErr := d.Content(page)
	if contentErr == nil {
		refs = append(refs, deviceSpacesFromContent(content)...)
	}

	return refs, nil
}

// Images lists the page's image XObjects. The placed size is recovered from
// the content stream by tracking the transformation matrix in effect at each
// Do invocation; images never drawn on the page keep a zero placement.
func (d *pdfDocument) Images(page int) ([]document.ImageRef, error) {
	resources, err := d.pageResources(page)
	if err != nil {
		return nil, err
	}

	xObjects, err := d.resourceDict(resources, "XObject")
	if err != nil || xObjects == nil {
		return nil, err
	}

	var placements map[string]placement

	content, contentErr := d.Content(page)
	if contentErr == nil {
		placements = placementsFromContent(content)
	}

	var images []document.ImageRef

	for _, name := range sortedKeys(xObjects) {
		streamDict, _, streamErr := d.ctx.DereferenceStreamDict(xObjects[name])
		if streamErr != nil || streamDict == nil {
			continue
		}

		if d.nameEntry(streamDict.Dict, "Subtype") != "Image" {
			continue
		}

		ref := document.ImageRef{
			PixelWidth:  d.intEntry(streamDict.Dict, "Width"),
			PixelHeight: d.intEntry(streamDict.Dict, "Height"),
			WidthPts:    0,
			HeightPts:   0,
			HasAlpha:    hasKey(streamDict.Dict, "SMask"),
			ColorSpace:  d.imageColorSpace(streamDict.Dict),
			Filter:      d.filterEntry(streamDict.Dict),
			StreamSize:  streamSize(streamDict),
		}

		if placed, ok := placements[name]; ok {
			ref.WidthPts = placed.width
			ref.HeightPts = placed.height
		}

		images = append(images, ref)
	}

	return images, nil
}

// Content returns the decoded, concatenated content streams of the page.
func (d *pdfDocument) Content(page int) ([]byte, error) {
	pageDict, _, _, err := d.ctx.PageDict(page, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dict for page %d: %w", page, err)
	}

	contents, found := pageDict.Find("Contents")
	if !found {
		return nil, nil
	}

	return d.contentStreams(contents)
}

func (d *pdfDocument) contentStreams(contents types.Object) ([]byte, error) {
	switch obj := contents.(type) {
	case types.IndirectRef:
		resolved, err := d.ctx.Dereference(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to dereference contents: %w", err)
		}

		return d.contentStreams(resolved)

	case types.StreamDict:
		return d.decodeStream(obj)

	case types.Array:
		var combined []byte

		for _, item := range obj {
			part, err := d.contentStreams(item)
			if err != nil {
				continue
			}

			if len(combined) > 0 {
				combined = append(combined, '\n')
			}

			combined = append(combined, part...)
		}

		return combined, nil

	default:
		return nil, nil
	}
}

func (d *pdfDocument) decodeStream(streamDict types.StreamDict) ([]byte, error) {
	decoded, _, err := d.ctx.DereferenceStreamDict(streamDict)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content stream: %w", err)
	}

	if decoded == nil {
		return nil, nil
	}

	if len(decoded.Content) == 0 && len(decoded.Raw) > 0 {
		if decodeErr := decoded.Decode(); decodeErr != nil {
			return nil, fmt.Errorf("failed to decode content stream: %w", decodeErr)
		}
	}

	return decoded.Content, nil
}

// ExtGStates lists the overprint- and transparency-relevant entries of the
// page's extended graphics state resources.
func (d *pdfDocument) ExtGStates(page int) ([]document.ExtGState, error) {
	resources, err := d.pageResources(page)
	if err != nil {
		return nil, err
	}

	gsDicts, err := d.resourceDict(resources, "ExtGState")
	if err != nil || gsDicts == nil {
		return nil, err
	}

	states := make([]document.ExtGState, 0, len(gsDicts))

	for _, name := range sortedKeys(gsDicts) {
		gsDict, derefErr := d.derefDict(gsDicts[name])
		if derefErr != nil {
			continue
		}

		states = append(states, document.ExtGState{
			Name:            name,
			StrokeOverprint: d.boolEntry(gsDict, "OP"),
			FillOverprint:   d.boolEntry(gsDict, "op"),
			OverprintMode:   d.intEntry(gsDict, "OPM"),
			StrokeAlpha:     d.alphaEntry(gsDict, "CA"),
			FillAlpha:       d.alphaEntry(gsDict, "ca"),
			SoftMask:        d.softMaskEntry(gsDict),
			BlendMode:       d.nameEntry(gsDict, "BM"),
		})
	}

	return states, nil
}

// RenderPage always reports rasterization as unsupported.
func (d *pdfDocument) RenderPage(_ context.Context, page int, _ int) (image.Image, error) {
	return nil, fmt.Errorf("page %d: %w", page, document.ErrRenderingUnsupported)
}

// Close releases the decode context.
func (d *pdfDocument) Close() error {
	d.ctx = nil

	return nil
}

func (d *pdfDocument) pageResources(page int) (types.Dict, error) {
	_, _, inhPAttrs, err := d.ctx.PageDict(page, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dict for page %d: %w", page, err)
	}

	return inhPAttrs.Resources, nil
}

// resourceDict resolves one category dictionary (Font, XObject, ...) of a
// resource dictionary. A missing category yields a nil dictionary, not an
// error.
func (d *pdfDocument) resourceDict(resources types.Dict, key string) (types.Dict, error) {
	if resources == nil {
		return nil, nil
	}

	obj, found := resources.Find(key)
	if !found {
		return nil, nil
	}

	dict, err := d.derefDict(obj)
	if err != nil {
		return nil, nil
	}

	return dict, nil
}

func (d *pdfDocument) derefDict(obj types.Object) (types.Dict, error) {
	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference dictionary: %w", err)
	}

	dict, ok := resolved.(types.Dict)
	if !ok {
		return nil, fmt.Errorf("object is %T, not a dictionary", resolved)
	}

	return dict, nil
}

func (d *pdfDocument) hasFontFile(fontDict types.Dict, subtype string) bool {
	descriptor := d.fontDescriptor(fontDict)

	if descriptor == nil && subtype == "Type0" {
		descriptor = d.descendantDescriptor(fontDict)
	}

	if descriptor == nil {
		return false
	}

	for _, key := range []string{"FontFile", "FontFile2", "FontFile3"} {
		if hasKey(descriptor, key) {
			return true
		}
	}

	return false
}

func (d *pdfDocument) fontDescriptor(fontDict types.Dict) types.Dict {
	obj, found := fontDict.Find("FontDescriptor")
	if !found {
		return nil
	}

	descriptor, err := d.derefDict(obj)
	if err != nil {
		return nil
	}

	return descriptor
}

func (d *pdfDocument) descendantDescriptor(fontDict types.Dict) types.Dict {
	obj, found := fontDict.Find("DescendantFonts")
	if !found {
		return nil
	}

	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return nil
	}

	arr, ok := resolved.(types.Array)
	if !ok || len(arr) == 0 {
		return nil
	}

	descendant, err := d.derefDict(arr[0])
	if err != nil {
		return nil
	}

	return d.fontDescriptor(descendant)
}

// colorSpaceRefs expands one color-space resource entry. DeviceN spaces emit
// one reference per colorant so every spot ink is visible to the caller.
func (d *pdfDocument) colorSpaceRefs(name string, obj types.Object) []document.ColorSpaceRef {
	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return nil
	}

	switch space := resolved.(type) {
	case types.Name:
		return []document.ColorSpaceRef{{
			Name:     name,
			Family:   trimName(space),
			SpotName: "",
			ICCBased: false,
		}}
	case types.Array:
		return d.colorSpaceArrayRefs(name, space)
	default:
		return nil
	}
}

func (d *pdfDocument) colorSpaceArrayRefs(name string, arr types.Array) []document.ColorSpaceRef {
	if len(arr) == 0 {
		return nil
	}

	family, ok := arr[0].(types.Name)
	if !ok {
		return nil
	}

	switch trimName(family) {
	case "ICCBased":
		return []document.ColorSpaceRef{{
			Name:     name,
			Family:   d.iccAlternate(arr),
			SpotName: "",
			ICCBased: true,
		}}
	case "Separation":
		ref := document.ColorSpaceRef{
			Name:     name,
			Family:   "Separation",
			SpotName: "",
			ICCBased: false,
		}

		if len(arr) > 1 {
			if colorant, isName := arr[1].(types.Name); isName {
				ref.SpotName = trimName(colorant)
			}
		}

		return []document.ColorSpaceRef{ref}
	case "DeviceN":
		return d.deviceNRefs(name, arr)
	case "Indexed":
		if len(arr) > 1 {
			return d.colorSpaceRefs(name, arr[1])
		}

		return nil
	default:
		return []document.ColorSpaceRef{{
			Name:     name,
			Family:   trimName(family),
			SpotName: "",
			ICCBased: false,
		}}
	}
}

// iccAlternate resolves an ICCBased space to its alternate family, falling
// back to the component count when no Alternate entry exists.
func (d *pdfDocument) iccAlternate(arr types.Array) string {
	if len(arr) < 2 {
		return "ICCBased"
	}

	streamDict, _, err := d.ctx.DereferenceStreamDict(arr[1])
	if err != nil || streamDict == nil {
		return "ICCBased"
	}

	if alternate := d.nameEntry(streamDict.Dict, "Alternate"); alternate != "" {
		return alternate
	}

	switch d.intEntry(streamDict.Dict, "N") {
	case 1:
		return "DeviceGray"
	case 3:
		return "DeviceRGB"
	case 4:
		return "DeviceCMYK"
	default:
		return "ICCBased"
	}
}

func (d *pdfDocument) deviceNRefs(name string, arr types.Array) []document.ColorSpaceRef {
	if len(arr) < 2 {
		return nil
	}

	resolved, err := d.ctx.Dereference(arr[1])
	if err != nil {
		return nil
	}

	colorants, ok := resolved.(types.Array)
	if !ok {
		return nil
	}

	refs := make([]document.ColorSpaceRef, 0, len(colorants))

	for _, colorant := range colorants {
		colorantName, isName := colorant.(types.Name)
		if !isName {
			continue
		}

		refs = append(refs, document.ColorSpaceRef{
			Name:     name,
			Family:   "DeviceN",
			SpotName: trimName(colorantName),
			ICCBased: false,
		})
	}

	return refs
}

func (d *pdfDocument) imageColorSpace(dict types.Dict) string {
	obj, found := dict.Find("ColorSpace")
	if !found {
		return ""
	}

	refs := d.colorSpaceRefs("", obj)
	if len(refs) == 0 {
		return ""
	}

	return refs[0].Family
}

func (d *pdfDocument) filterEntry(dict types.Dict) string {
	obj, found := dict.Find("Filter")
	if !found {
		return ""
	}

	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return ""
	}

	switch filter := resolved.(type) {
	case types.Name:
		return trimName(filter)
	case types.Array:
		names := make([]string, 0, len(filter))

		for _, item := range filter {
			if name, ok := item.(types.Name); ok {
				names = append(names, trimName(name))
			}
		}

		return strings.Join(names, ",")
	default:
		return ""
	}
}

func (d *pdfDocument) nameEntry(dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}

	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return ""
	}

	name, ok := resolved.(types.Name)
	if !ok {
		return ""
	}

	return trimName(name)
}

func (d *pdfDocument) intEntry(dict types.Dict, key string) int {
	obj, found := dict.Find(key)
	if !found {
		return 0
	}

	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return 0
	}

	switch number := resolved.(type) {
	case types.Integer:
		return int(number)
	case types.Float:
		return int(number)
	default:
		return 0
	}
}

func (d *pdfDocument) boolEntry(dict types.Dict, key string) bool {
	obj, found := dict.Find(key)
	if !found {
		return false
	}

	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return false
	}

	value, ok := resolved.(types.Boolean)
	if !ok {
		return false
	}

	return bool(value)
}

// alphaEntry resolves a /CA or /ca alpha constant, nil when absent.
func (d *pdfDocument) alphaEntry(dict types.Dict, key string) *float64 {
	obj, found := dict.Find(key)
	if !found {
		return nil
	}

	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return nil
	}

	value, isNumber := numberValue(resolved)
	if !isNumber {
		return nil
	}

	return &value
}

// softMaskEntry reports whether the graphics state carries a soft mask.
// /SMask /None explicitly disables soft masking.
func (d *pdfDocument) softMaskEntry(dict types.Dict) bool {
	obj, found := dict.Find("SMask")
	if !found {
		return false
	}

	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return false
	}

	if name, ok := resolved.(types.Name); ok && trimName(name) == "None" {
		return false
	}

	return true
}

func (d *pdfDocument) infoString(dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}

	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return ""
	}

	switch value := resolved.(type) {
	case types.StringLiteral:
		decoded, decodeErr := types.StringLiteralToString(value)
		if decodeErr != nil {
			return value.Value()
		}

		return decoded
	case types.HexLiteral:
		decoded, decodeErr := types.HexLiteralToString(value)
		if decodeErr != nil {
			return ""
		}

		return decoded
	default:
		return ""
	}
}

// boxFromObject resolves a page-box entry, an array of four numbers.
func (d *pdfDocument) boxFromObject(obj types.Object) *document.Box {
	resolved, err := d.ctx.Dereference(obj)
	if err != nil {
		return nil
	}

	arr, ok := resolved.(types.Array)
	if !ok || len(arr) < 4 {
		return nil
	}

	coords := make([]float64, 4)

	for i := range coords {
		value, isNumber := numberValue(arr[i])
		if !isNumber {
			return nil
		}

		coords[i] = value
	}

	return &document.Box{
		LLX: math.Min(coords[0], coords[2]),
		LLY: math.Min(coords[1], coords[3]),
		URX: math.Max(coords[0], coords[2]),
		URY: math.Max(coords[1], coords[3]),
	}
}

func boxFromRectangle(rect *types.Rectangle) *document.Box {
	if rect == nil {
		return nil
	}

	return &document.Box{
		LLX: rect.LL.X,
		LLY: rect.LL.Y,
		URX: rect.UR.X,
		URY: rect.UR.Y,
	}
}

func numberValue(obj types.Object) (float64, bool) {
	switch number := obj.(type) {
	case types.Integer:
		return float64(number), true
	case types.Float:
		return float64(number), true
	default:
		return 0, false
	}
}

func trimName(name types.Name) string {
	return strings.TrimPrefix(name.String(), "/")
}

func hasKey(dict types.Dict, key string) bool {
	_, found := dict.Find(key)

	return found
}

func sortedKeys(dict types.Dict) []string {
	keys := make([]string, 0, len(dict))
	for key := range dict {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// streamSize prefers the declared stream length and falls back to the raw
// byte count.
func streamSize(streamDict *types.StreamDict) int {
	if streamDict.StreamLength != nil {
		return int(*streamDict.StreamLength)
	}

	return len(streamDict.Raw)
}

// deviceSpacesFromContent reports the device color spaces a content stream
// selects directly through color operators, without a resource entry.
func deviceSpacesFromContent(content []byte) []document.ColorSpaceRef {
	if len(content) == 0 {
		return nil
	}

	families := map[string]string{
		"rg": "DeviceRGB",
		"RG": "DeviceRGB",
		"k":  "DeviceCMYK",
		"K":  "DeviceCMYK",
		"g":  "DeviceGray",
		"G":  "DeviceGray",
	}

	seen := make(map[string]bool)

	var refs []document.ColorSpaceRef

	for _, token := range contentstream.Tokenize(content) {
		if token.Kind != contentstream.KindOperator {
			continue
		}

		family, known := families[token.Raw]
		if !known || seen[family] {
			continue
		}

		seen[family] = true

		refs = append(refs, document.ColorSpaceRef{
			Name:     "",
			Family:   family,
			SpotName: "",
			ICCBased: false,
		})
	}

	return refs
}

type placement struct {
	width  float64
	height float64
}

// matrix is a PDF transformation matrix [a b c d e f].
type matrix struct {
	a, b, c, d, e, f float64
}

func identityMatrix() matrix {
	return matrix{a: 1, b: 0, c: 0, d: 1, e: 0, f: 0}
}

// multiply returns m × n, applying m before n.
func (m matrix) multiply(n matrix) matrix {
	return matrix{
		a: m.a*n.a + m.b*n.c,
		b: m.a*n.b + m.b*n.d,
		c: m.c*n.a + m.d*n.c,
		d: m.c*n.b + m.d*n.d,
		e: m.e*n.a + m.f*n.c + n.e,
		f: m.e*n.b + m.f*n.d + n.f,
	}
}

// placementsFromContent recovers the placed size of each XObject by tracking
// the transformation matrix across cm, q and Q operators. An image drawn
// more than once keeps its largest placement.
func placementsFromContent(content []byte) map[string]placement {
	placements := make(map[string]placement)

	ctm := identityMatrix()

	var (
		stack    []matrix
		operands []float64
		lastName string
	)

	for _, token := range contentstream.Tokenize(content) {
		switch token.Kind {
		case contentstream.KindNumber:
			operands = append(operands, token.Num)

			continue
		case contentstream.KindName:
			lastName = token.Raw

			continue
		case contentstream.KindOperator:
			// Handled below.
		default:
			operands = operands[:0]

			continue
		}

		switch token.Raw {
		case "q":
			stack = append(stack, ctm)
		case "Q":
			if len(stack) > 0 {
				ctm = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
		case "cm":
			if len(operands) >= 6 {
				tail := operands[len(operands)-6:]
				ctm = matrix{
					a: tail[0], b: tail[1], c: tail[2],
					d: tail[3], e: tail[4], f: tail[5],
				}.multiply(ctm)
			}
		case "Do":
			if lastName != "" {
				recordPlacement(placements, lastName, ctm)
			}
		}

		operands = operands[:0]
		lastName = ""
	}

	return placements
}

func recordPlacement(placements map[string]placement, name string, ctm matrix) {
	// An image XObject spans the unit square, so the CTM scale components
	// are its placed size in points.
	placed := placement{
		width:  math.Hypot(ctm.a, ctm.b),
		height: math.Hypot(ctm.c, ctm.d),
	}

	existing, ok := placements[name]
	if !ok || placed.width*placed.height > existing.width*existing.height {
		placements[name] = placed
	}
}
