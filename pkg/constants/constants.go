// Package constants defines shared file names, directories, and
// environment variable names across the logdoctor application.
package constants

// Config and state locations.
const (
	DefaultConfigFile = ".logdoctor.yaml"
	StateDir          = ".logdoctor"
	ReportsDirName    = "reports"
)

// Environment variable overrides. A .env file in the working directory is
// honored as well.
const (
	EnvMinConfidence      = "LOGDOCTOR_MIN_CONFIDENCE"
	EnvPatternPaths       = "LOGDOCTOR_PATTERNS"
	EnvDisabledCategories = "LOGDOCTOR_DISABLED_CATEGORIES"
	EnvReportsDir         = "LOGDOCTOR_REPORTS_DIR"
)

// Analysis defaults, adjustable via config.
const (
	DefaultMinConfidence        = 70
	DefaultMaxMatchesPerMatcher = 5
	DefaultRetentionDays        = 7
)
