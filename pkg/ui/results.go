package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/ethpandaops/logdoctor/pkg/diagnostic"
	"github.com/ethpandaops/logdoctor/pkg/report"
)

// maxMatchTextDisplay bounds the evidence excerpt shown per diagnosis.
const maxMatchTextDisplay = 200

// DisplayReport shows the full outcome of one analysis: a summary line,
// then every diagnosis in ranked order.
func DisplayReport(r *report.AnalysisReport) {
	Section(fmt.Sprintf("Diagnosis: %s", r.Source))

	if !r.HasFindings() {
		Info("No known failure patterns matched")
		Info(fmt.Sprintf("Report ID: %s | %d patterns evaluated", r.ID, r.PatternCount))

		return
	}

	fmt.Printf("%s, most severe first\n",
		pterm.Bold.Sprint(fmt.Sprintf("%d of %d patterns matched", len(r.Results), r.PatternCount)))

	for i := range r.Results {
		Blank()
		DisplayResult(&r.Results[i])
	}

	Blank()
	Info(fmt.Sprintf("Report ID: %s", r.ID))
}

// DisplayResult shows one diagnosis with its evidence and solutions.
func DisplayResult(result *diagnostic.Result) {
	style := severityStyle(string(result.Severity))

	fmt.Printf("%s %s %s\n",
		style.Sprintf("[%s]", result.Severity),
		pterm.Bold.Sprint(result.Summary),
		pterm.Gray(fmt.Sprintf("(%d%% confidence)", result.Confidence)))

	if result.Description != "" {
		fmt.Printf("  %s\n", result.Description)
	}

	if evidence := result.Metadata["match_text"]; evidence != "" {
		excerpt := strings.TrimSpace(evidence)
		if len(excerpt) > maxMatchTextDisplay {
			excerpt = excerpt[:maxMatchTextDisplay] + "..."
		}

		fmt.Printf("  %s %s\n", pterm.Gray("matched:"), pterm.Gray(excerpt))
	}

	for _, solution := range orderedSolutions(result.Solutions) {
		fmt.Printf("  %s %s\n", InfoSymbol, pterm.Bold.Sprint(solution.Title))

		for _, step := range solution.Steps {
			fmt.Printf("    • %s\n", step)
		}

		displayExamples(solution.Examples)
	}
}

// DisplayResultsTable shows a compact table of diagnoses.
func DisplayResultsTable(results []diagnostic.Result) {
	rows := make([][]string, 0, len(results))

	for i := range results {
		result := &results[i]
		rows = append(rows, []string{
			severityStyle(string(result.Severity)).Sprint(result.Severity),
			result.PatternID,
			result.Category,
			fmt.Sprintf("%d%%", result.Confidence),
			result.Summary,
		})
	}

	Table([]string{"Severity", "Pattern", "Category", "Confidence", "Summary"}, rows)
}

// orderedSolutions returns solutions sorted for display: declared order,
// but higher priority values first.
func orderedSolutions(solutions []diagnostic.Solution) []diagnostic.Solution {
	ordered := make([]diagnostic.Solution, len(solutions))
	copy(ordered, solutions)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	return ordered
}

func displayExamples(examples map[string]string) {
	if len(examples) == 0 {
		return
	}

	names := make([]string, 0, len(examples))
	for name := range examples {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("    %s %s\n", pterm.Gray(name+":"), pterm.Cyan(examples[name]))
	}
}
