package diagnostic

import (
	"sort"
	"strings"
)

// Substitute replaces every ${name} placeholder in a template with its
// captured value. Placeholders without a captured value are left verbatim,
// so a missing capture degrades to a visibly incomplete instruction rather
// than a silently wrong one. Captures are applied in sorted name order so
// rendering is deterministic even when a captured value itself contains a
// placeholder.
func Substitute(template string, captures map[string]string) string {
	if template == "" || len(captures) == 0 {
		return template
	}

	names := make([]string, 0, len(captures))
	for name := range captures {
		names = append(names, name)
	}

	sort.Strings(names)

	result := template
	for _, name := range names {
		result = strings.ReplaceAll(result, "${"+name+"}", captures[name])
	}

	return result
}

// renderSolution renders one solution template with the winning match's
// captures. Title, every step, and every example value are rendered
// independently.
func renderSolution(tpl *SolutionTemplate, captures map[string]string) Solution {
	solution := Solution{
		ID:       tpl.ID,
		Title:    Substitute(tpl.Title, captures),
		Priority: tpl.Priority,
	}

	if len(tpl.Steps) > 0 {
		solution.Steps = make([]string, 0, len(tpl.Steps))
		for _, step := range tpl.Steps {
			solution.Steps = append(solution.Steps, Substitute(step, captures))
		}
	}

	if len(tpl.Examples) > 0 {
		solution.Examples = make(map[string]string, len(tpl.Examples))
		for name, value := range tpl.Examples {
			solution.Examples[name] = Substitute(value, captures)
		}
	}

	return solution
}
