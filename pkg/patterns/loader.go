// Package patterns loads diagnostic pattern definitions from YAML
// documents into the engine's immutable pattern model. Loading is
// fail-soft: an invalid pattern or matcher is dropped with a warning and
// never takes the rest of the set down with it.
package patterns

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/logdoctor/pkg/diagnostic"
)

const (
	// DefaultConfidence applies to matchers without an explicit confidence.
	DefaultConfidence = 80
	// DefaultPriority applies to solutions without an explicit priority.
	DefaultPriority = 100
)

// Loader parses pattern documents. Regex sources are validated (and the
// compiler cache warmed) through the same compiler the engine will use.
type Loader struct {
	log      logrus.FieldLogger
	compiler *diagnostic.Compiler
}

// NewLoader creates a loader. A nil compiler gets a private one, but
// passing the engine's compiler avoids compiling every expression twice.
func NewLoader(log logrus.FieldLogger, compiler *diagnostic.Compiler) *Loader {
	if compiler == nil {
		compiler = diagnostic.NewCompiler(log, diagnostic.DefaultCacheSize)
	}

	return &Loader{
		log:      log.WithField("component", "pattern-loader"),
		compiler: compiler,
	}
}

// rawPattern mirrors the pattern document schema. Unknown fields are
// ignored by design so pattern files can carry tool-specific extras.
type rawPattern struct {
	ID          string        `yaml:"id"`
	Category    string        `yaml:"category"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Severity    string        `yaml:"severity"`
	Tags        []string      `yaml:"tags"`
	Matchers    []rawMatcher  `yaml:"matchers"`
	Solutions   []rawSolution `yaml:"solutions"`
}

type rawMatcher struct {
	Regex         string   `yaml:"regex"`
	Confidence    *int     `yaml:"confidence"`
	Captures      []string `yaml:"captures"`
	Multiline     bool     `yaml:"multiline"`
	CaseSensitive bool     `yaml:"case_sensitive"`
}

type rawSolution struct {
	ID       string            `yaml:"id"`
	Title    string            `yaml:"title"`
	Priority *int              `yaml:"priority"`
	Steps    []string          `yaml:"steps"`
	Examples map[string]string `yaml:"examples"`
}

// Load parses one pattern document. Individual pattern failures surface as
// warnings; only a malformed top-level document (not a mapping, missing
// or non-sequence `patterns` key) is an error, and even then the returned
// set is empty rather than nil.
func (l *Loader) Load(data []byte) (*diagnostic.PatternSet, []string, error) {
	set := &diagnostic.PatternSet{}

	var root map[string]yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return set, nil, fmt.Errorf("pattern document is not a mapping: %w", err)
	}

	patternsNode, ok := root["patterns"]
	if !ok {
		return set, nil, fmt.Errorf("pattern document has no 'patterns' key")
	}

	var nodes []yaml.Node
	if err := patternsNode.Decode(&nodes); err != nil {
		return set, nil, fmt.Errorf("'patterns' is not a sequence: %w", err)
	}

	warnings := make([]string, 0, 4)
	seen := make(map[string]struct{}, len(nodes))

	for i := range nodes {
		pattern, patternWarnings, ok := l.parsePattern(&nodes[i], i)
		warnings = append(warnings, patternWarnings...)

		if !ok {
			continue
		}

		if _, dup := seen[pattern.ID]; dup {
			warnings = append(warnings, fmt.Sprintf("pattern %q: duplicate id, keeping the first definition", pattern.ID))

			continue
		}

		seen[pattern.ID] = struct{}{}
		set.Patterns = append(set.Patterns, pattern)
	}

	for _, warning := range warnings {
		l.log.Warn(warning)
	}

	l.log.WithField("patterns", len(set.Patterns)).Debug("loaded pattern set")

	return set, warnings, nil
}

// LoadFile parses a pattern document from disk.
func (l *Loader) LoadFile(path string) (*diagnostic.PatternSet, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &diagnostic.PatternSet{}, nil, fmt.Errorf("failed to read pattern file: %w", err)
	}

	set, warnings, err := l.Load(data)
	if err != nil {
		return set, warnings, fmt.Errorf("%s: %w", path, err)
	}

	return set, warnings, nil
}

// Merge combines pattern sets in order, dropping duplicate ids in favor of
// the earliest definition so user files cannot silently shadow each other.
func Merge(sets ...*diagnostic.PatternSet) (*diagnostic.PatternSet, []string) {
	merged := &diagnostic.PatternSet{}
	warnings := make([]string, 0)
	seen := make(map[string]struct{})

	for _, set := range sets {
		if set == nil {
			continue
		}

		for i := range set.Patterns {
			pattern := set.Patterns[i]

			if _, dup := seen[pattern.ID]; dup {
				warnings = append(warnings, fmt.Sprintf("pattern %q: duplicate id across pattern files, keeping the first definition", pattern.ID))

				continue
			}

			seen[pattern.ID] = struct{}{}
			merged.Patterns = append(merged.Patterns, pattern)
		}
	}

	return merged, warnings
}

func (l *Loader) parsePattern(node *yaml.Node, index int) (diagnostic.Pattern, []string, bool) {
	var raw rawPattern

	warnings := make([]string, 0, 2)

	if err := node.Decode(&raw); err != nil {
		warnings = append(warnings, fmt.Sprintf("pattern #%d: not a valid pattern mapping, dropped: %v", index+1, err))

		return diagnostic.Pattern{}, warnings, false
	}

	label := raw.ID
	if label == "" {
		label = fmt.Sprintf("#%d", index+1)
	}

	if raw.ID == "" || raw.Name == "" {
		warnings = append(warnings, fmt.Sprintf("pattern %s: missing required field (id, name), dropped", label))

		return diagnostic.Pattern{}, warnings, false
	}

	severity, recognized := diagnostic.ParseSeverity(raw.Severity)
	if raw.Severity != "" && !recognized {
		warnings = append(warnings, fmt.Sprintf("pattern %s: unknown severity %q, defaulting to MEDIUM", label, raw.Severity))
	}

	pattern := diagnostic.Pattern{
		ID:          raw.ID,
		Category:    raw.Category,
		Name:        raw.Name,
		Description: raw.Description,
		Severity:    severity,
		Tags:        raw.Tags,
	}

	for mi := range raw.Matchers {
		matcher, matcherWarnings, ok := l.parseMatcher(&raw.Matchers[mi], label, mi)
		warnings = append(warnings, matcherWarnings...)

		if ok {
			pattern.Matchers = append(pattern.Matchers, matcher)
		}
	}

	if len(pattern.Matchers) == 0 {
		warnings = append(warnings, fmt.Sprintf("pattern %s: no usable matchers, dropped", label))

		return diagnostic.Pattern{}, warnings, false
	}

	for si := range raw.Solutions {
		solution, ok := parseSolution(&raw.Solutions[si])
		if !ok {
			warnings = append(warnings, fmt.Sprintf("pattern %s: solution #%d missing id or title, dropped", label, si+1))

			continue
		}

		pattern.Solutions = append(pattern.Solutions, solution)
	}

	return pattern, warnings, true
}

func (l *Loader) parseMatcher(raw *rawMatcher, patternLabel string, index int) (diagnostic.Matcher, []string, bool) {
	warnings := make([]string, 0, 1)

	if raw.Regex == "" {
		warnings = append(warnings, fmt.Sprintf("pattern %s: matcher #%d has no regex, dropped", patternLabel, index+1))

		return diagnostic.Matcher{}, warnings, false
	}

	confidence := DefaultConfidence
	if raw.Confidence != nil {
		confidence = *raw.Confidence
	}

	if confidence < 0 {
		confidence = 0
	} else if confidence > 100 {
		confidence = 100
	}

	matcher := diagnostic.Matcher{
		Regex:         raw.Regex,
		Confidence:    confidence,
		Captures:      raw.Captures,
		Multiline:     raw.Multiline,
		CaseSensitive: raw.CaseSensitive,
	}

	// Compile now so syntax failures surface at load time and the engine's
	// cache is already warm for valid expressions.
	if _, err := l.compiler.Compile(matcher); err != nil {
		warnings = append(warnings, fmt.Sprintf("pattern %s: matcher #%d: %v, dropped", patternLabel, index+1, err))

		return diagnostic.Matcher{}, warnings, false
	}

	return matcher, warnings, true
}

func parseSolution(raw *rawSolution) (diagnostic.SolutionTemplate, bool) {
	if raw.ID == "" || raw.Title == "" {
		return diagnostic.SolutionTemplate{}, false
	}

	priority := DefaultPriority
	if raw.Priority != nil {
		priority = *raw.Priority
	}

	return diagnostic.SolutionTemplate{
		ID:       raw.ID,
		Title:    raw.Title,
		Priority: priority,
		Steps:    raw.Steps,
		Examples: raw.Examples,
	}, true
}
