package diagnostic

import (
	"sort"
)

// bestMatch selects the single winning match for a pattern: highest
// confidence, ties broken by earliest absolute start offset, then by
// matcher declaration order. Fully deterministic for any input order.
func bestMatch(matches []RawMatch) RawMatch {
	best := matches[0]

	for _, candidate := range matches[1:] {
		if candidate.Confidence != best.Confidence {
			if candidate.Confidence > best.Confidence {
				best = candidate
			}

			continue
		}

		if candidate.Start != best.Start {
			if candidate.Start < best.Start {
				best = candidate
			}

			continue
		}

		if candidate.MatcherIndex < best.MatcherIndex {
			best = candidate
		}
	}

	return best
}

// sortResults orders diagnoses by severity rank ascending (CRITICAL
// first), then confidence descending, then pattern id. The pattern id
// tiebreaker closes the ordering into a total order, so identical
// severity+confidence pairs still sort the same way on every run.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := &results[i], &results[j]

		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}

		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}

		return a.PatternID < b.PatternID
	})
}
