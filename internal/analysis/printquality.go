package analysis

import (
	"sort"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/contentstream"
	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"
)

// extractPrintQuality runs the optional signal scans. Each scan is gated by
// its settings toggle; a disabled scan leaves its sub-record nil.
func (s *Scanner) extractPrintQuality(doc document.Document, rec *Record) *PrintQuality {
	quality := &PrintQuality{
		Compression: s.scanCompression(rec),
		Text:        s.scanTextSizes(doc),
	}

	if s.settings.CheckTransparency {
		quality.Transparency = s.scanTransparency(doc, rec)
	}

	if s.settings.CheckOverprint {
		quality.Overprint = s.scanOverprint(doc)
	}

	return quality
}

// scanTransparency flags pages with alpha-carrying images, content-stream
// transparency markers (soft masks, non-normal blend modes) or invocations of
// a graphics state that sets a partial alpha constant.
func (s *Scanner) scanTransparency(doc document.Document, rec *Record) *TransparencySignals {
	signals := &TransparencySignals{}
	pages := make(map[int]bool)
	markers := make(map[string]bool)

	for _, img := range rec.Images {
		if img.HasAlpha {
			pages[img.Page] = true
			markers["alpha"] = true
		}
	}

	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		content, err := doc.Content(pageNr)
		if err != nil {
			s.log.Warn("Transparency scan failed on page %d: %v", pageNr, err)

			continue
		}

		tokens := contentstream.Tokenize(content)

		found := contentstream.TransparencyMarkers(tokens)
		found = append(found, s.stateTransparency(doc, pageNr, tokens)...)

		if len(found) > 0 {
			pages[pageNr] = true
		}

		for _, marker := range found {
			markers[marker] = true
		}
	}

	signals.Pages = sortedPageSet(pages)
	signals.Found = len(signals.Pages) > 0

	for marker := range markers {
		signals.Markers = append(signals.Markers, marker)
	}

	sort.Strings(signals.Markers)

	return signals
}

// stateTransparency reports the transparency markers of the graphics states
// the page's content actually invokes. A translucent state that is defined
// but never applied does not flag the page.
func (s *Scanner) stateTransparency(
	doc document.Document,
	pageNr int,
	tokens []contentstream.Token,
) []string {
	states, err := doc.ExtGStates(pageNr)
	if err != nil {
		s.log.Warn("ExtGState transparency scan failed on page %d: %v", pageNr, err)

		return nil
	}

	byName := make(map[string][]string, len(states))

	for _, state := range states {
		if found := stateTransparencyMarkers(state); len(found) > 0 {
			byName[state.Name] = found
		}
	}

	if len(byName) == 0 {
		return nil
	}

	var markers []string

	for _, hit := range contentstream.ScanExtGStateUse(tokens) {
		markers = append(markers, byName[hit.Name]...)
	}

	return markers
}

// stateTransparencyMarkers lists the transparency entries a graphics state
// carries: partial alpha constants, a soft mask or a non-normal blend mode.
func stateTransparencyMarkers(state document.ExtGState) []string {
	var markers []string

	if state.StrokeAlpha != nil && *state.StrokeAlpha < 1 {
		markers = append(markers, "CA")
	}

	if state.FillAlpha != nil && *state.FillAlpha < 1 {
		markers = append(markers, "ca")
	}

	if state.SoftMask {
		markers = append(markers, "SMask")
	}

	if state.BlendMode != "" && state.BlendMode != "Normal" &&
		state.BlendMode != "Compatible" {
		markers = append(markers, "BM/"+state.BlendMode)
	}

	return markers
}

// scanOverprint finds graphics states with overprint enabled (/op or /OP) and
// classifies each application by the CMYK color in effect at that point:
//
//	0 0 0 0 k/K  — white overprint, renders invisible on press
//	0 0 0 1 k/K  — K-only overprint, a legitimate knockout-prevention setup
//	anything else — worth a look
func (s *Scanner) scanOverprint(doc document.Document) *OverprintSignals {
	signals := &OverprintSignals{}
	white := make(map[int]bool)
	kOnly := make(map[int]bool)
	other := make(map[int]bool)

	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		states, err := doc.ExtGStates(pageNr)
		if err != nil {
			s.log.Warn("ExtGState scan failed on page %d: %v", pageNr, err)

			continue
		}

		overprinting := make(map[string]bool, len(states))

		for _, state := range states {
			if state.FillOverprint || state.StrokeOverprint {
				overprinting[state.Name] = true
			}
		}

		if len(overprinting) == 0 {
			continue
		}

		content, err := doc.Content(pageNr)
		if err != nil {
			s.log.Warn("Overprint content scan failed on page %d: %v", pageNr, err)

			continue
		}

		for _, hit := range contentstream.ScanExtGStateUse(contentstream.Tokenize(content)) {
			if !overprinting[hit.Name] {
				continue
			}

			switch classifyOverprintFill(hit) {
			case overprintWhite:
				white[pageNr] = true
			case overprintKOnly:
				kOnly[pageNr] = true
			default:
				other[pageNr] = true
			}
		}
	}

	signals.WhitePages = sortedPageSet(white)
	signals.KOnlyPages = sortedPageSet(kOnly)
	signals.OtherPages = sortedPageSet(other)
	signals.Found = len(signals.WhitePages)+len(signals.KOnlyPages)+len(signals.OtherPages) > 0

	return signals
}

type overprintClass int

const (
	overprintWhite overprintClass = iota
	overprintKOnly
	overprintOther
)

func classifyOverprintFill(hit contentstream.GSInvocation) overprintClass {
	if (hit.FillOperator != "k" && hit.FillOperator != "K") ||
		len(hit.FillComponents) != 4 {
		return overprintOther
	}

	c, m, y, k := hit.FillComponents[0], hit.FillComponents[1],
		hit.FillComponents[2], hit.FillComponents[3]

	if c == 0 && m == 0 && y == 0 {
		switch k {
		case 0:
			return overprintWhite
		case 1:
			return overprintKOnly
		}
	}

	return overprintOther
}

// scanCompression counts images stored without any compression filter.
func (s *Scanner) scanCompression(rec *Record) *CompressionSignals {
	signals := &CompressionSignals{}
	pages := make(map[int]bool)

	for _, img := range rec.Images {
		if img.Filter == "" {
			signals.UncompressedImages++
			pages[img.Page] = true
		}
	}

	signals.Pages = sortedPageSet(pages)

	return signals
}

// scanTextSizes flags pages that select a text size below the legibility
// minimum. Tf sizes of zero are skipped; the scale then comes from the text
// matrix, which this scan does not track.
func (s *Scanner) scanTextSizes(doc document.Document) *TextSignals {
	signals := &TextSignals{}
	pages := make(map[int]bool)

	for pageNr := 1; pageNr <= doc.PageCount(); pageNr++ {
		content, err := doc.Content(pageNr)
		if err != nil {
			s.log.Warn("Text-size scan failed on page %d: %v", pageNr, err)

			continue
		}

		for _, selection := range contentstream.ScanFontSizes(contentstream.Tokenize(content)) {
			if selection.SizePt <= 0 || selection.SizePt >= s.settings.MinTextSizePt {
				continue
			}

			pages[pageNr] = true

			if signals.MinSizePt == 0 || selection.SizePt < signals.MinSizePt {
				signals.MinSizePt = selection.SizePt
			}
		}
	}

	signals.SmallTextPages = sortedPageSet(pages)

	return signals
}
