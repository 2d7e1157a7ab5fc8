package diagnostic

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
)

// Engine scans logs against a pattern set and produces ranked diagnoses.
//
// Analyze is synchronous and stateless apart from the shared compiler
// cache, so one engine is safe for concurrent use from multiple analysis
// calls.
type Engine struct {
	log      logrus.FieldLogger
	compiler *Compiler

	segmentSize    int
	segmentOverlap int
}

// NewEngine creates an engine using the given compiler cache. A nil
// compiler gets a private one with default bounds.
func NewEngine(log logrus.FieldLogger, compiler *Compiler) *Engine {
	if compiler == nil {
		compiler = NewCompiler(log, DefaultCacheSize)
	}

	return &Engine{
		log:            log.WithField("component", "pattern-engine"),
		compiler:       compiler,
		segmentSize:    DefaultSegmentSize,
		segmentOverlap: DefaultSegmentOverlap,
	}
}

// SetSegmentation overrides the segment size and overlap. Values of zero
// or less keep the defaults.
func (e *Engine) SetSegmentation(size, overlap int) {
	if size > 0 {
		e.segmentSize = size
	}

	if overlap > 0 {
		e.segmentOverlap = overlap
	}
}

// Analyze evaluates every pattern against the log and returns at most one
// result per pattern, ordered by severity rank, then confidence descending,
// then pattern id. Empty or blank input yields an empty slice, never an
// error; a single faulty matcher never prevents detection by the others.
func (e *Engine) Analyze(logText string, set *PatternSet, opts Options) []Result {
	started := time.Now()
	results := make([]Result, 0, 8)

	if set == nil || len(set.Patterns) == 0 {
		e.log.Warn("no patterns available for analysis")

		return results
	}

	if strings.TrimSpace(logText) == "" {
		e.log.Debug("log text is empty, skipping analysis")

		return results
	}

	segments := SplitLog(logText, e.segmentSize, e.segmentOverlap)

	disabled := make(map[string]struct{}, len(opts.DisabledCategories))
	for _, category := range opts.DisabledCategories {
		disabled[category] = struct{}{}
	}

	totalMatches := 0

	for i := range set.Patterns {
		pattern := &set.Patterns[i]

		if _, off := disabled[pattern.Category]; off {
			continue
		}

		matches := e.scanPattern(pattern, segments, opts)
		totalMatches += len(matches)

		if len(matches) == 0 {
			continue
		}

		results = append(results, e.buildResult(pattern, bestMatch(matches)))
	}

	sortResults(results)

	e.log.WithFields(logrus.Fields{
		"patterns": len(set.Patterns),
		"segments": len(segments),
		"matches":  totalMatches,
		"results":  len(results),
		"elapsed":  time.Since(started).Round(time.Microsecond),
	}).Debug("pattern analysis complete")

	return results
}

// scanPattern collects every occurrence of every matcher of one pattern
// across all segments, deduplicated by (matcher, absolute start). The
// filters run here, before best-match selection, so filtered-out matches
// never influence which match wins.
func (e *Engine) scanPattern(pattern *Pattern, segments []Segment, opts Options) []RawMatch {
	matches := make([]RawMatch, 0, 4)
	seen := make(map[matchKey]struct{})

	for mi := range pattern.Matchers {
		matcher := &pattern.Matchers[mi]

		if matcher.Confidence < opts.MinConfidence {
			continue
		}

		re, err := e.compiler.Compile(*matcher)
		if err != nil {
			// Already surfaced as a load warning; skip just this matcher.
			e.log.WithError(err).WithField("pattern", pattern.ID).Debug("skipping uncompilable matcher")

			continue
		}

		for si := range segments {
			found := e.scanSegment(pattern, matcher, mi, re, &segments[si], opts.MaxMatchesPerMatcher)

			for _, match := range found {
				key := matchKey{matcher: mi, start: match.Start}
				if _, dup := seen[key]; dup {
					continue
				}

				seen[key] = struct{}{}

				matches = append(matches, match)
			}
		}
	}

	return matches
}

type matchKey struct {
	matcher int
	start   int
}

// scanSegment runs one compiled matcher over one segment, translating
// match positions to absolute coordinates and extracting named captures.
// A runtime fault is contained to this matcher: the segment's contribution
// is dropped and analysis continues.
func (e *Engine) scanSegment(pattern *Pattern, matcher *Matcher, matcherIdx int, re *regexp.Regexp, segment *Segment, limit int) (matches []RawMatch) {
	defer func() {
		if r := recover(); r != nil {
			matches = nil

			e.log.WithFields(logrus.Fields{
				"pattern": pattern.ID,
				"matcher": matcherIdx,
				"panic":   r,
			}).Warn("matcher execution failed, skipping its matches")
		}
	}()

	if limit <= 0 {
		limit = -1
	}

	// All non-overlapping occurrences, not just the first.
	occurrences := re.FindAllStringSubmatchIndex(segment.Text, limit)
	if len(occurrences) == 0 {
		return nil
	}

	matches = make([]RawMatch, 0, len(occurrences))

	for _, idx := range occurrences {
		match := RawMatch{
			PatternID:    pattern.ID,
			MatcherIndex: matcherIdx,
			Confidence:   matcher.Confidence,
			Text:         segment.Text[idx[0]:idx[1]],
			Start:        segment.Offset + idx[0],
			End:          segment.Offset + idx[1],
		}

		groups := len(idx)/2 - 1
		for ci, name := range matcher.Captures {
			if ci >= groups {
				break
			}

			lo, hi := idx[2*(ci+1)], idx[2*(ci+1)+1]
			if lo < 0 || hi < 0 {
				// Group did not participate; omit the name entirely.
				continue
			}

			if match.Captures == nil {
				match.Captures = make(map[string]string, len(matcher.Captures))
			}

			match.Captures[name] = segment.Text[lo:hi]
		}

		matches = append(matches, match)
	}

	return matches
}

// buildResult renders the winning match of a pattern into a diagnosis.
func (e *Engine) buildResult(pattern *Pattern, match RawMatch) Result {
	metadata := map[string]string{
		"pattern_id":     pattern.ID,
		"match_text":     match.Text,
		"match_position": strconv.Itoa(match.Start) + "-" + strconv.Itoa(match.End),
	}

	for name, value := range match.Captures {
		metadata["capture_"+name] = value
	}

	solutions := make([]Solution, 0, len(pattern.Solutions))
	for i := range pattern.Solutions {
		solutions = append(solutions, renderSolution(&pattern.Solutions[i], match.Captures))
	}

	return Result{
		ID:          matchIdentity(pattern.ID, match.Text),
		PatternID:   pattern.ID,
		Category:    pattern.Category,
		Severity:    pattern.Severity,
		Summary:     pattern.Name,
		Description: pattern.Description,
		Confidence:  match.Confidence,
		Solutions:   solutions,
		Metadata:    metadata,
	}
}

// matchIdentity derives a stable per-match identity from the pattern id
// and matched text. xxhash is well defined and reproducible across runs
// and platforms, which feedback correlation depends on.
func matchIdentity(patternID, matchText string) string {
	digest := xxhash.New()
	_, _ = digest.WriteString(patternID)
	_, _ = digest.Write([]byte{0})
	_, _ = digest.WriteString(matchText)

	return patternID + "-" + strconv.FormatUint(digest.Sum64(), 10)
}
