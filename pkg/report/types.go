// Package report persists the outcome of log analyses as JSON documents
// so past diagnoses can be listed and re-examined.
package report

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/ethpandaops/logdoctor/pkg/diagnostic"
)

// AnalysisReport captures one analysis of one log.
type AnalysisReport struct {
	// ID is a unique identifier for this report.
	ID string `json:"id"`
	// Source names the analyzed log (file path, or "stdin").
	Source string `json:"source"`
	// CreatedAt is when the analysis ran.
	CreatedAt time.Time `json:"createdAt"`
	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration"`
	// LogBytes is the size of the analyzed log text.
	LogBytes int `json:"logBytes"`
	// PatternCount is how many patterns were evaluated.
	PatternCount int `json:"patternCount"`
	// Warnings are non-fatal pattern-loading warnings surfaced during
	// this analysis.
	Warnings []string `json:"warnings,omitempty"`
	// Results are the ranked diagnoses.
	Results []diagnostic.Result `json:"results"`
}

// New creates a report with a generated ID for the given log source.
func New(source string) *AnalysisReport {
	return &AnalysisReport{
		ID:        generateID(),
		Source:    source,
		CreatedAt: time.Now(),
		Results:   make([]diagnostic.Result, 0),
	}
}

// HasFindings reports whether the analysis produced any diagnoses.
func (r *AnalysisReport) HasFindings() bool {
	return len(r.Results) > 0
}

// generateID creates a short random hex identifier.
func generateID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}

	return hex.EncodeToString(b)
}
