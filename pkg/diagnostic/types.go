// Package diagnostic implements the pattern matching engine that turns raw
// build-failure logs into ranked, evidence-backed diagnoses with actionable
// remediation steps.
package diagnostic

import (
	"strings"
)

// Severity represents the business impact tier of a diagnosed issue.
type Severity string

const (
	// SeverityCritical indicates the build is broken and needs immediate attention.
	SeverityCritical Severity = "CRITICAL"
	// SeverityHigh indicates a serious issue that blocks most work.
	SeverityHigh Severity = "HIGH"
	// SeverityMedium indicates a notable issue with a known workaround.
	SeverityMedium Severity = "MEDIUM"
	// SeverityLow indicates a minor or cosmetic issue.
	SeverityLow Severity = "LOW"
)

// Rank returns the sort rank for a severity. Lower ranks sort first.
// Unknown severities rank alongside MEDIUM so sorting stays total.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 2
	}
}

// ParseSeverity parses a severity string case-insensitively.
// The second return value reports whether the input was recognized;
// unrecognized or empty input falls back to MEDIUM.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical, true
	case SeverityHigh:
		return SeverityHigh, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityLow:
		return SeverityLow, true
	default:
		return SeverityMedium, false
	}
}

// Pattern is one diagnostic rule: a set of matchers that recognize a known
// failure in log output, plus the solutions to suggest when one matches.
// Patterns are built once at load time and never mutated afterwards.
type Pattern struct {
	// ID uniquely identifies this pattern across the loaded set.
	ID string
	// Category groups related patterns (e.g. "network", "build").
	Category string
	// Name is a short human-readable summary of the failure.
	Name string
	// Description explains the failure in more detail.
	Description string
	// Severity is the impact tier used as the primary ranking key.
	Severity Severity
	// Tags are free-form labels for filtering and display.
	Tags []string
	// Matchers are evaluated in declaration order; the highest-confidence
	// match wins for this pattern.
	Matchers []Matcher
	// Solutions are rendered in declaration order when the pattern matches.
	Solutions []SolutionTemplate
}

// Matcher is one regular expression within a pattern, with its confidence
// score and the names assigned to its capture groups by position.
type Matcher struct {
	// Regex is the expression source text, without flag prefixes.
	Regex string
	// Confidence is the certainty of this matcher in [0,100].
	Confidence int
	// Captures names the capture groups by position: Captures[i] names
	// group i+1. Names beyond the actual group count are ignored, and
	// groups beyond the named range are not exposed.
	Captures []string
	// Multiline makes '.' span newlines and '^'/'$' match per line,
	// for errors whose detail continues on following lines.
	Multiline bool
	// CaseSensitive opts out of the case-insensitive default. Log casing
	// varies across tools, so matching ignores case unless set.
	CaseSensitive bool
}

// expr returns the regex source with the flag prefix implied by the
// matcher settings. This is also the compiler cache key.
func (m Matcher) expr() string {
	flags := ""
	if !m.CaseSensitive {
		flags += "i"
	}

	if m.Multiline {
		flags += "ms"
	}

	if flags == "" {
		return m.Regex
	}

	return "(?" + flags + ")" + m.Regex
}

// SolutionTemplate is un-rendered remediation text. Placeholders of the
// form ${name} are resolved from captured variables at render time.
type SolutionTemplate struct {
	// ID identifies the solution within its pattern.
	ID string
	// Title is a template for the one-line solution summary.
	Title string
	// Priority orders solutions for display; higher values are shown
	// first by the consuming layer. Informational only here.
	Priority int
	// Steps are templates for the individual remediation actions.
	Steps []string
	// Examples maps example names to template values.
	Examples map[string]string
}

// Solution is a rendered solution with all captured variables substituted.
type Solution struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Priority int               `json:"priority"`
	Steps    []string          `json:"steps"`
	Examples map[string]string `json:"examples,omitempty"`
}

// PatternSet is an immutable collection of loaded patterns.
type PatternSet struct {
	// Patterns in load order. Treated as read-only after construction.
	Patterns []Pattern
}

// Categories returns the distinct non-empty categories in the set.
func (s *PatternSet) Categories() []string {
	seen := make(map[string]struct{}, len(s.Patterns))
	categories := make([]string, 0, len(s.Patterns))

	for i := range s.Patterns {
		category := s.Patterns[i].Category
		if category == "" {
			continue
		}

		if _, ok := seen[category]; ok {
			continue
		}

		seen[category] = struct{}{}
		categories = append(categories, category)
	}

	return categories
}

// RawMatch is a single matcher occurrence found during scanning, in
// absolute log coordinates.
type RawMatch struct {
	// PatternID identifies the owning pattern.
	PatternID string
	// MatcherIndex is the declaration index of the matcher that fired.
	MatcherIndex int
	// Confidence is the firing matcher's confidence.
	Confidence int
	// Text is the full matched text.
	Text string
	// Start and End are absolute character offsets into the original log.
	Start int
	End   int
	// Captures maps declared capture names to matched text. Groups that
	// did not participate in the match are absent, never empty strings.
	Captures map[string]string
}

// Result is one ranked diagnosis produced by an analysis call.
type Result struct {
	// ID is a stable identity derived from (pattern id, matched text),
	// reproducible across runs for feedback correlation.
	ID string `json:"id"`
	// PatternID is the pattern that produced this result.
	PatternID string `json:"patternId"`
	// Category is the pattern's category.
	Category string `json:"category,omitempty"`
	// Severity is the pattern's impact tier.
	Severity Severity `json:"severity"`
	// Summary is the pattern name.
	Summary string `json:"summary"`
	// Description is the pattern description.
	Description string `json:"description,omitempty"`
	// Confidence is the winning matcher's confidence.
	Confidence int `json:"confidence"`
	// Solutions are rendered in the pattern's declared order.
	Solutions []Solution `json:"solutions,omitempty"`
	// Metadata carries the match evidence: pattern_id, match_text,
	// match_position, and capture_<name> for every captured variable.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Options controls filtering for a single analysis call.
type Options struct {
	// MinConfidence drops matchers below this confidence before best-match
	// selection, so filtered matches never influence ranking.
	MinConfidence int
	// DisabledCategories excludes whole pattern categories from analysis.
	DisabledCategories []string
	// MaxMatchesPerMatcher bounds the occurrences kept per matcher per
	// segment. Zero means unlimited. The earliest occurrences are kept,
	// so the winning match is never dropped.
	MaxMatchesPerMatcher int
}
