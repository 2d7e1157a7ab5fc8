package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/acarl005/stripansi"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/logdoctor/pkg/config"
	"github.com/ethpandaops/logdoctor/pkg/diagnostic"
	"github.com/ethpandaops/logdoctor/pkg/patterns"
)

// loadPatternSet assembles the effective pattern set from the builtin
// library and any configured pattern files. Per-pattern problems come back
// as warnings; only a malformed document is an error.
func loadPatternSet(log logrus.FieldLogger, compiler *diagnostic.Compiler, cfg *config.Config) (*diagnostic.PatternSet, []string, error) {
	loader := patterns.NewLoader(log, compiler)

	sets := make([]*diagnostic.PatternSet, 0, len(cfg.Patterns.Paths)+1)
	warnings := make([]string, 0)

	if !cfg.Patterns.DisableBuiltin {
		set, w, err := loader.LoadBuiltin()
		if err != nil {
			return &diagnostic.PatternSet{}, warnings, fmt.Errorf("builtin patterns: %w", err)
		}

		warnings = append(warnings, w...)
		sets = append(sets, set)
	}

	for _, path := range cfg.Patterns.Paths {
		set, w, err := loader.LoadFile(path)
		if err != nil {
			return &diagnostic.PatternSet{}, warnings, err
		}

		warnings = append(warnings, w...)
		sets = append(sets, set)
	}

	merged, mergeWarnings := patterns.Merge(sets...)
	warnings = append(warnings, mergeWarnings...)

	return merged, warnings, nil
}

// readLog reads a log from a file, or from stdin when path is "-", and
// strips ANSI escape sequences so colorized build output matches cleanly.
func readLog(path string) (text, source string, err error) {
	if path == "-" {
		data, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read log from stdin: %w", readErr)
		}

		return stripansi.Strip(string(data)), "stdin", nil
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return "", "", fmt.Errorf("failed to read log file: %w", readErr)
	}

	return stripansi.Strip(string(data)), path, nil
}
