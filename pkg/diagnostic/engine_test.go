package diagnostic

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func testEngine(t *testing.T) *Engine {
	t.Helper()

	return NewEngine(testLogger(), nil)
}

func singleMatcherSet(regex string, confidence int, captures ...string) *PatternSet {
	return &PatternSet{
		Patterns: []Pattern{
			{
				ID:       "test-pattern",
				Category: "test",
				Name:     "Test failure",
				Severity: SeverityHigh,
				Matchers: []Matcher{
					{Regex: regex, Confidence: confidence, Captures: captures},
				},
			},
		},
	}
}

func TestAnalyzeSingleMatch(t *testing.T) {
	engine := testEngine(t)

	results := engine.Analyze("step 1 ok\nError: compilation failed\nstep 3 skipped\n",
		singleMatcherSet(`Error: compilation failed`, 85), Options{})

	require.Len(t, results, 1)
	assert.Equal(t, "test-pattern", results[0].PatternID)
	assert.Equal(t, 85, results[0].Confidence)
	assert.Equal(t, SeverityHigh, results[0].Severity)
	assert.Equal(t, "Test failure", results[0].Summary)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	engine := testEngine(t)
	set := singleMatcherSet(`error`, 80)

	tests := []struct {
		name string
		log  string
	}{
		{name: "empty string", log: ""},
		{name: "whitespace only", log: "  \n\t\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := engine.Analyze(tt.log, set, Options{})

			require.NotNil(t, results)
			assert.Empty(t, results)
		})
	}
}

func TestAnalyzeNilPatternSet(t *testing.T) {
	engine := testEngine(t)

	results := engine.Analyze("some log", nil, Options{})

	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestAnalyzeCaptureExtraction(t *testing.T) {
	engine := testEngine(t)

	results := engine.Analyze("build step\nError: missing semicolon\ndone\n",
		singleMatcherSet(`Error: (.+)`, 90, "error_message"), Options{})

	require.Len(t, results, 1)
	assert.Equal(t, "missing semicolon", results[0].Metadata["capture_error_message"])
	assert.Equal(t, "Error: missing semicolon", results[0].Metadata["match_text"])
	assert.Equal(t, "test-pattern", results[0].Metadata["pattern_id"])
}

func TestAnalyzeNonParticipatingGroupOmitted(t *testing.T) {
	engine := testEngine(t)

	// The second alternative fires, so group 1 never participates.
	results := engine.Analyze("fatal: device busy\n",
		singleMatcherSet(`(?:error: (\w+)|fatal: (.+))`, 90, "error_kind", "fatal_detail"), Options{})

	require.Len(t, results, 1)
	_, present := results[0].Metadata["capture_error_kind"]
	assert.False(t, present, "non-participating group must be absent, not empty")
	assert.Equal(t, "device busy", results[0].Metadata["capture_fatal_detail"])
}

func TestAnalyzeMatchPositionIsAbsolute(t *testing.T) {
	engine := testEngine(t)
	logText := "aaaa\nError here\n"

	results := engine.Analyze(logText, singleMatcherSet(`Error here`, 80), Options{})

	require.Len(t, results, 1)
	assert.Equal(t, "5-15", results[0].Metadata["match_position"])
}

func TestAnalyzeBestMatchPerPattern(t *testing.T) {
	// Both matchers fire; the higher-confidence one must win even though
	// the lower-confidence one matches earlier in the log.
	set := &PatternSet{
		Patterns: []Pattern{
			{
				ID:       "dual",
				Name:     "Dual matcher",
				Severity: SeverityMedium,
				Matchers: []Matcher{
					{Regex: `warning: low disk`, Confidence: 60},
					{Regex: `error: disk full`, Confidence: 95, Captures: nil},
				},
			},
		},
	}

	engine := testEngine(t)
	results := engine.Analyze("warning: low disk\nmore output\nerror: disk full\n", set, Options{})

	require.Len(t, results, 1)
	assert.Equal(t, 95, results[0].Confidence)
	assert.Equal(t, "error: disk full", results[0].Metadata["match_text"])
}

func TestAnalyzeConfidenceTieBrokenByEarliestStart(t *testing.T) {
	set := &PatternSet{
		Patterns: []Pattern{
			{
				ID:       "tie",
				Name:     "Tied confidence",
				Severity: SeverityMedium,
				Matchers: []Matcher{
					{Regex: `second failure`, Confidence: 80},
					{Regex: `first failure`, Confidence: 80},
				},
			},
		},
	}

	engine := testEngine(t)
	results := engine.Analyze("first failure\nsecond failure\n", set, Options{})

	require.Len(t, results, 1)
	assert.Equal(t, "first failure", results[0].Metadata["match_text"])
}

func TestAnalyzeResultOrdering(t *testing.T) {
	set := &PatternSet{
		Patterns: []Pattern{
			{
				ID: "low-issue", Name: "Low", Severity: SeverityLow,
				Matchers: []Matcher{{Regex: `minor glitch`, Confidence: 99}},
			},
			{
				ID: "critical-issue", Name: "Critical", Severity: SeverityCritical,
				Matchers: []Matcher{{Regex: `total meltdown`, Confidence: 70}},
			},
			{
				ID: "b-high", Name: "High B", Severity: SeverityHigh,
				Matchers: []Matcher{{Regex: `bad thing b`, Confidence: 80}},
			},
			{
				ID: "a-high", Name: "High A", Severity: SeverityHigh,
				Matchers: []Matcher{{Regex: `bad thing a`, Confidence: 80}},
			},
			{
				ID: "high-confident", Name: "High confident", Severity: SeverityHigh,
				Matchers: []Matcher{{Regex: `bad thing c`, Confidence: 90}},
			},
		},
	}

	engine := testEngine(t)
	results := engine.Analyze(
		"minor glitch\ntotal meltdown\nbad thing b\nbad thing a\nbad thing c\n", set, Options{})

	require.Len(t, results, 5)

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.PatternID)
	}

	// Severity rank first, then confidence descending, then pattern id.
	assert.Equal(t, []string{"critical-issue", "high-confident", "a-high", "b-high", "low-issue"}, ids)
}

func TestAnalyzeIdempotent(t *testing.T) {
	engine := testEngine(t)
	set := singleMatcherSet(`Error: (.+)`, 85, "error_message")
	logText := "ok\nError: flaky network\nok\n"

	first := engine.Analyze(logText, set, Options{})
	second := engine.Analyze(logText, set, Options{})

	assert.Equal(t, first, second)
}

func TestAnalyzeStableResultID(t *testing.T) {
	engine := testEngine(t)
	set := singleMatcherSet(`Error: timeout`, 80)

	first := engine.Analyze("Error: timeout\n", set, Options{})
	second := engine.Analyze("prefix line\nError: timeout\n", set, Options{})

	require.Len(t, first, 1)
	require.Len(t, second, 1)

	// Identity depends on pattern id and matched text, not position.
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, strings.HasPrefix(first[0].ID, "test-pattern-"))
}

func TestAnalyzeMinConfidenceFilter(t *testing.T) {
	engine := testEngine(t)
	set := singleMatcherSet(`error`, 60)

	results := engine.Analyze("error\n", set, Options{MinConfidence: 70})
	assert.Empty(t, results)

	results = engine.Analyze("error\n", set, Options{MinConfidence: 60})
	assert.Len(t, results, 1)
}

func TestAnalyzeDisabledCategories(t *testing.T) {
	engine := testEngine(t)
	set := singleMatcherSet(`error`, 80)

	results := engine.Analyze("error\n", set, Options{DisabledCategories: []string{"test"}})
	assert.Empty(t, results)

	results = engine.Analyze("error\n", set, Options{DisabledCategories: []string{"other"}})
	assert.Len(t, results, 1)
}

func TestAnalyzeBadMatcherDoesNotBlockOthers(t *testing.T) {
	set := &PatternSet{
		Patterns: []Pattern{
			{
				ID: "resilient", Name: "Resilient", Severity: SeverityHigh,
				Matchers: []Matcher{
					{Regex: `([invalid`, Confidence: 95},
					{Regex: `real failure`, Confidence: 80},
				},
			},
		},
	}

	engine := testEngine(t)
	results := engine.Analyze("real failure\n", set, Options{})

	require.Len(t, results, 1)
	assert.Equal(t, 80, results[0].Confidence)
}

func TestAnalyzeCaseInsensitiveByDefault(t *testing.T) {
	engine := testEngine(t)

	results := engine.Analyze("ERROR: Connection Refused\n",
		singleMatcherSet(`error: connection refused`, 80), Options{})
	assert.Len(t, results, 1)

	sensitive := singleMatcherSet(`error: connection refused`, 80)
	sensitive.Patterns[0].Matchers[0].CaseSensitive = true

	results = engine.Analyze("ERROR: Connection Refused\n", sensitive, Options{})
	assert.Empty(t, results)
}

func TestAnalyzeMultilineMatcher(t *testing.T) {
	set := singleMatcherSet(`Error occurred.*\n.*details: ([^\n]+)`, 85, "details")
	set.Patterns[0].Matchers[0].Multiline = true

	engine := testEngine(t)
	results := engine.Analyze("Error occurred in stage build\n  details: linker exploded\n", set, Options{})

	require.Len(t, results, 1)
	assert.Equal(t, "linker exploded", results[0].Metadata["capture_details"])
}

func TestAnalyzeSegmentStraddle(t *testing.T) {
	// Place a two-line error right at a segment boundary. With overlap the
	// error stays intact in some segment and is reported exactly once.
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString(strings.Repeat("x", 24) + "\n")
	}

	b.WriteString("Error occurred during build\n")
	b.WriteString("  details: out of memory\n")

	for i := 0; i < 40; i++ {
		b.WriteString(strings.Repeat("y", 24) + "\n")
	}

	set := singleMatcherSet(`Error occurred.*\n.*details: ([^\n]+)`, 90, "details")
	set.Patterns[0].Matchers[0].Multiline = true

	engine := testEngine(t)
	engine.SetSegmentation(1000, 100)

	results := engine.Analyze(b.String(), set, Options{})

	require.Len(t, results, 1)
	assert.Equal(t, "out of memory", results[0].Metadata["capture_details"])
}

func TestAnalyzeOverlapDuplicatesCollapse(t *testing.T) {
	// Matches repeated across many segments must not multiply: one pattern
	// still yields one result, and its winner is the earliest occurrence.
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("something failed again\n")
	}

	engine := testEngine(t)
	engine.SetSegmentation(500, 100)

	results := engine.Analyze(b.String(), singleMatcherSet(`something failed`, 80), Options{})

	require.Len(t, results, 1)
	assert.Equal(t, "0-16", results[0].Metadata["match_position"])
}

func TestAnalyzeMaxMatchesPerMatcherKeepsEarliest(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("repeat failure\n")
	}

	engine := testEngine(t)
	results := engine.Analyze(b.String(), singleMatcherSet(`repeat failure`, 80),
		Options{MaxMatchesPerMatcher: 3})

	require.Len(t, results, 1)
	assert.Equal(t, "0-14", results[0].Metadata["match_position"])
}

func TestAnalyzeSolutionSubstitution(t *testing.T) {
	set := &PatternSet{
		Patterns: []Pattern{
			{
				ID:       "network-policy-denied",
				Category: "network",
				Name:     "NetworkPolicy denied connection",
				Severity: SeverityCritical,
				Matchers: []Matcher{
					{
						Regex:      `connection refused by NetworkPolicy for pod/([\w.-]+) in namespace/([\w.-]+)`,
						Confidence: 95,
						Captures:   []string{"pod_name", "namespace"},
					},
				},
				Solutions: []SolutionTemplate{
					{
						ID:    "inspect-policy",
						Title: "Inspect the NetworkPolicy affecting ${pod_name}",
						Steps: []string{
							"kubectl describe pod ${pod_name} -n ${namespace}",
							"kubectl get networkpolicy -n ${namespace}",
						},
						Examples: map[string]string{
							"describe": "kubectl describe pod ${pod_name} -n ${namespace}",
						},
					},
				},
			},
		},
	}

	engine := testEngine(t)
	results := engine.Analyze(
		"connection refused by NetworkPolicy for pod/api-7f9d in namespace/staging\n", set, Options{})

	require.Len(t, results, 1)
	require.Len(t, results[0].Solutions, 1)

	solution := results[0].Solutions[0]
	assert.Equal(t, "Inspect the NetworkPolicy affecting api-7f9d", solution.Title)
	require.Len(t, solution.Steps, 2)
	assert.Equal(t, "kubectl describe pod api-7f9d -n staging", solution.Steps[0])
	assert.Equal(t, "kubectl get networkpolicy -n staging", solution.Steps[1])
	assert.Equal(t, "kubectl describe pod api-7f9d -n staging", solution.Examples["describe"])

	assert.Equal(t, "api-7f9d", results[0].Metadata["capture_pod_name"])
	assert.Equal(t, "staging", results[0].Metadata["capture_namespace"])
}

func TestAnalyzeSharedCompilerAcrossEngines(t *testing.T) {
	compiler := NewCompiler(testLogger(), 16)
	set := singleMatcherSet(`shared error`, 80)

	first := NewEngine(testLogger(), compiler)
	second := NewEngine(testLogger(), compiler)

	require.Len(t, first.Analyze("shared error\n", set, Options{}), 1)
	require.Len(t, second.Analyze("shared error\n", set, Options{}), 1)

	assert.Equal(t, 1, compiler.Len())
}

func TestMatchIdentityStable(t *testing.T) {
	a := matchIdentity("pat", "some matched text")
	b := matchIdentity("pat", "some matched text")
	c := matchIdentity("pat", "other matched text")
	d := matchIdentity("other", "some matched text")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}
