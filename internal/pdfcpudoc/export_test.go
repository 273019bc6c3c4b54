package pdfcpudoc

import "github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/document"

// Placement mirrors the unexported placement for tests in the external
// package.
type Placement struct {
	Width  float64
	Height float64
}

// PlacementsFromContentForTest exposes placementsFromContent.
func PlacementsFromContentForTest(content []byte) map[string]Placement {
	exported := make(map[string]Placement)

	for name, placed := range placementsFromContent(content) {
		exported[name] = Placement{Width: placed.width, Height: placed.height}
	}

	return exported
}

// DeviceSpacesFromContentForTest exposes deviceSpacesFromContent.
func DeviceSpacesFromContentForTest(content []byte) []document.ColorSpaceRef {
	return deviceSpacesFromContent(content)
}
