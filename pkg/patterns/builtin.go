package patterns

import (
	_ "embed"

	"github.com/ethpandaops/logdoctor/pkg/diagnostic"
)

//go:embed builtin-patterns.yaml
var builtinPatterns []byte

// LoadBuiltin loads the embedded builtin pattern library.
func (l *Loader) LoadBuiltin() (*diagnostic.PatternSet, []string, error) {
	return l.Load(builtinPatterns)
}
