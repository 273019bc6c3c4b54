// Package preflight evaluates a measurement record against a named profile:
// an ordered list of rules, each comparing one measurement to an expected
// value and assigning a severity on failure. Results partition into
// passed/failed/warning/info buckets with a worst-severity overall status.
package preflight

import (
	"fmt"
	"strings"

	"github.com/leejinsung-LEE/0616-pdf-quality-checker/internal/analysis"
)

// Overall verdict states.
const (
	StatusPass    = "pass"
	StatusWarning = "warning"
	StatusFail    = "fail"
)

// Rule is one named check of a profile. The check returns whether the rule
// passed and a human-readable description of the value it found.
type Rule struct {
	Name        string
	Expected    string
	Severity    analysis.Severity
	AutoFixable bool

	check func(rec *analysis.Record) (bool, string)
}

// RuleOutcome is the evaluated result of one rule.
type RuleOutcome struct {
	Rule        string            `json:"rule"`
	Expected    string            `json:"expected"`
	Found       string            `json:"found"`
	Severity    analysis.Severity `json:"severity"`
	AutoFixable bool              `json:"auto_fixable"`
	Message     string            `json:"message"`
}

// Verdict is the full evaluation result of one profile run.
type Verdict struct {
	Profile       string        `json:"profile"`
	Passed        []RuleOutcome `json:"passed"`
	Failed        []RuleOutcome `json:"failed"`
	Warnings      []RuleOutcome `json:"warnings"`
	Info          []RuleOutcome `json:"info"`
	AutoFixable   []RuleOutcome `json:"auto_fixable"`
	OverallStatus string        `json:"overall_status"`
}

// Profile is a named, ordered rule list.
type Profile struct {
	Name  string
	Rules []Rule
}

// Evaluate runs every rule unconditionally and buckets the outcomes. A
// failing error-severity rule lands in Failed, warning severity in Warnings,
// info severity in Info. Auto-fixable failures are additionally collected in
// AutoFixable regardless of bucket.
func (p Profile) Evaluate(rec *analysis.Record) *Verdict {
	verdict := &Verdict{Profile: p.Name}

	for _, rule := range p.Rules {
		passed, found := rule.check(rec)

		outcome := RuleOutcome{
			Rule:        rule.Name,
			Expected:    rule.Expected,
			Found:       found,
			Severity:    rule.Severity,
			AutoFixable: rule.AutoFixable,
		}

		if passed {
			outcome.Message = fmt.Sprintf("%s: ok (%s)", rule.Name, found)
			verdict.Passed = append(verdict.Passed, outcome)

			continue
		}

		outcome.Message = fmt.Sprintf("%s: expected %s, found %s",
			rule.Name, rule.Expected, found)

		switch rule.Severity {
		case analysis.SeverityCritical, analysis.SeverityError:
			verdict.Failed = append(verdict.Failed, outcome)
		case analysis.SeverityWarning:
			verdict.Warnings = append(verdict.Warnings, outcome)
		default:
			verdict.Info = append(verdict.Info, outcome)
		}

		if rule.AutoFixable {
			verdict.AutoFixable = append(verdict.AutoFixable, outcome)
		}
	}

	verdict.OverallStatus = overallStatus(verdict)

	return verdict
}

// overallStatus reduces the buckets to a single status: fail beats warning
// beats pass. Info-severity failures never degrade the status.
func overallStatus(verdict *Verdict) string {
	switch {
	case len(verdict.Failed) > 0:
		return StatusFail
	case len(verdict.Warnings) > 0:
		return StatusWarning
	default:
		return StatusPass
	}
}

// MergeInto appends the verdict's failing outcomes to the record's issue
// list as findings typed "preflight_<rule>". Rules whose name contains
// "bleed" are excluded: the bleed finding has a single owner in the
// measurement pipeline and must not be reported twice.
func (v *Verdict) MergeInto(rec *analysis.Record) {
	merge := func(outcomes []RuleOutcome, severity analysis.Severity) {
		for _, outcome := range outcomes {
			if strings.Contains(strings.ToLower(outcome.Rule), "bleed") {
				continue
			}

			rec.AddIssue(analysis.Finding{
				Type:     "preflight_" + outcome.Rule,
				Severity: severity,
				Message:  outcome.Message,
				Meta: map[string]any{
					"profile":  v.Profile,
					"expected": outcome.Expected,
					"found":    outcome.Found,
				},
			})
		}
	}

	merge(v.Failed, analysis.SeverityError)
	merge(v.Warnings, analysis.SeverityWarning)
	merge(v.Info, analysis.SeverityInfo)
}
