package preflight

import (
	"sort"

	"github.com/book-expert/logger"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/analysis"
)

// DefaultProfileName is the fallback for unknown profile lookups.
const DefaultProfileName = "offset"

// Registry holds the built-in profiles. Profiles are immutable after
// construction; lookups are read-only and safe from any goroutine.
type Registry struct {
	profiles map[string]Profile
	log      *logger.Logger
}

// NewRegistry builds the built-in profile set.
func NewRegistry(log *logger.Logger) *Registry {
	registry := &Registry{
		profiles: make(map[string]Profile),
		log:      log,
	}

	for _, profile := range builtinProfiles() {
		registry.profiles[profile.Name] = profile
	}

	return registry
}

// Get returns the named profile. An unknown name falls back to the offset
// profile with a logged warning; preflight always runs against something.
func (r *Registry) Get(name string) Profile {
	if profile, ok := r.profiles[name]; ok {
		return profile
	}

	r.log.Warn("Unknown preflight profile %q, using %q", name, DefaultProfileName)

	return r.profiles[DefaultProfileName]
}

// Names returns the available profile names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// builtinProfiles defines the shipped rule tables. Thresholds reflect the
// output conditions of each print process: tight ink limits for uncoated
// newsprint, relaxed resolution for large-format viewing distances.
func builtinProfiles() []Profile {
	return []Profile{
		{
			Name: "offset",
			Rules: []Rule{
				fontsEmbeddedRule(),
				noRGBRule(analysis.SeverityError),
				imageResolutionRule("image_resolution", 150, analysis.SeverityError),
				imageResolutionRule("optimal_image_resolution", 300, analysis.SeverityWarning),
				inkCoverageRule(300, analysis.SeverityError),
				bleedMarginRule(3.0, analysis.SeverityInfo),
				spotColorCountRule(2, analysis.SeverityInfo),
			},
		},
		{
			Name: "digital",
			Rules: []Rule{
				fontsEmbeddedRule(),
				imageResolutionRule("image_resolution", 100, analysis.SeverityWarning),
				inkCoverageRule(280, analysis.SeverityWarning),
				rgbAllowedRule(),
				bleedMarginRule(0, analysis.SeverityInfo),
			},
		},
		{
			Name: "newspaper",
			Rules: []Rule{
				fontsEmbeddedRule(),
				noRGBRule(analysis.SeverityWarning),
				imageResolutionRule("image_resolution", 100, analysis.SeverityWarning),
				inkCoverageRule(240, analysis.SeverityError),
				bleedMarginRule(3.0, analysis.SeverityInfo),
			},
		},
		{
			Name: "large_format",
			Rules: []Rule{
				fontsEmbeddedRule(),
				imageResolutionRule("image_resolution", 100, analysis.SeverityWarning),
				inkCoverageRule(300, analysis.SeverityWarning),
				noRGBRule(analysis.SeverityWarning),
			},
		},
		{
			Name: "high_quality",
			Rules: []Rule{
				fontsEmbeddedRule(),
				noRGBRule(analysis.SeverityError),
				imageResolutionRule("image_resolution", 300, analysis.SeverityError),
				inkCoverageRule(280, analysis.SeverityError),
				bleedMarginRule(3.0, analysis.SeverityWarning),
				noSmallTextRule(4.0, analysis.SeverityWarning),
			},
		},
	}
}
