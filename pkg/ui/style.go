package ui

import "github.com/pterm/pterm"

var (
	// Color styles.
	SuccessStyle = pterm.NewStyle(pterm.FgGreen)
	ErrorStyle   = pterm.NewStyle(pterm.FgRed)
	WarningStyle = pterm.NewStyle(pterm.FgYellow)
	InfoStyle    = pterm.NewStyle(pterm.FgCyan)

	// Symbol styles.
	SuccessSymbol = pterm.Green("✓")
	ErrorSymbol   = pterm.Red("✗")
	WarningSymbol = pterm.Yellow("⚠")
	InfoSymbol    = pterm.Cyan("→")

	// Section header style.
	HeaderStyle = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
)

// severityStyle returns the display style for a severity tier.
func severityStyle(severity string) *pterm.Style {
	switch severity {
	case "CRITICAL":
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case "HIGH":
		return pterm.NewStyle(pterm.FgRed)
	case "MEDIUM":
		return pterm.NewStyle(pterm.FgYellow)
	case "LOW":
		return pterm.NewStyle(pterm.FgGray)
	default:
		return pterm.NewStyle(pterm.FgDefault)
	}
}
