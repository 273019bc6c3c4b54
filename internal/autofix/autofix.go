// Package autofix defines the optional fix collaborator and the before/after
// comparison built from a re-scan of the fixed file. The engine never fixes
// anything itself; it decides whether a fix is wanted, invokes the fixer, and
// diffs the resulting measurements.
package autofix

import (
	"context"
	"sort"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/analysis"
)

// Request names the corrections the fixer should attempt.
type Request struct {
	ConvertRGB   bool
	OutlineFonts bool
}

// Outcome reports a successful fix run. FixedPath is the corrected file;
// Modifications are human-readable labels of what was changed.
type Outcome struct {
	FixedPath     string
	Modifications []string
}

// Fixer applies automated corrections to a PDF, writing a new file.
type Fixer interface {
	Fix(ctx context.Context, path string, req Request) (*Outcome, error)
}

// NeededFixes decides from the settings and the measurement record whether a
// fix run is wanted. RGB conversion only applies to RGB-only documents;
// converting a mixed document would touch content that is already correct.
func NeededFixes(settings analysis.Settings, rec *analysis.Record) (Request, bool) {
	req := Request{
		ConvertRGB:   settings.AutoConvertRGB && rec.Colors.HasRGB && !rec.Colors.HasCMYK,
		OutlineFonts: settings.AutoOutlineFonts && len(rec.NonEmbeddedFonts()) > 0,
	}

	return req, req.ConvertRGB || req.OutlineFonts
}

// Comparison is the before/after delta of one fix run.
type Comparison struct {
	Resolved      []string `json:"resolved,omitempty"`
	Remaining     []string `json:"remaining,omitempty"`
	Introduced    []string `json:"introduced,omitempty"`
	FontsBefore   int      `json:"fonts_before"`
	FontsAfter    int      `json:"fonts_after"`
	RGBBefore     bool     `json:"rgb_before"`
	RGBAfter      bool     `json:"rgb_after"`
	Modifications []string `json:"modifications,omitempty"`
}

// Compare diffs the finding sets of the original analysis and the re-scan of
// the fixed file. Issue types present before and absent after are resolved;
// the reverse are introduced; the intersection remains.
func Compare(before, after *analysis.Record, modifications []string) *Comparison {
	beforeTypes := issueTypes(before)
	afterTypes := issueTypes(after)

	comparison := &Comparison{
		FontsBefore:   len(before.NonEmbeddedFonts()),
		FontsAfter:    len(after.NonEmbeddedFonts()),
		RGBBefore:     before.Colors.HasRGB && !before.Colors.HasCMYK,
		RGBAfter:      after.Colors.HasRGB && !after.Colors.HasCMYK,
		Modifications: modifications,
	}

	for issueType := range beforeTypes {
		if afterTypes[issueType] {
			comparison.Remaining = append(comparison.Remaining, issueType)
		} else {
			comparison.Resolved = append(comparison.Resolved, issueType)
		}
	}

	for issueType := range afterTypes {
		if !beforeTypes[issueType] {
			comparison.Introduced = append(comparison.Introduced, issueType)
		}
	}

	sort.Strings(comparison.Resolved)
	sort.Strings(comparison.Remaining)
	sort.Strings(comparison.Introduced)

	return comparison
}

func issueTypes(rec *analysis.Record) map[string]bool {
	types := make(map[string]bool, len(rec.Issues))
	for _, issue := range rec.Issues {
		types[issue.Type] = true
	}

	return types
}
