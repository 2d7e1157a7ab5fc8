// Package ui provides terminal output for logdoctor: status messages,
// tables, and rendered diagnosis listings.
package ui

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Success prints a success message with green checkmark.
func Success(message string) {
	fmt.Printf("%s %s\n", SuccessSymbol, SuccessStyle.Sprint(message))
}

// Error prints an error message with red X.
func Error(message string) {
	fmt.Printf("%s %s\n", ErrorSymbol, ErrorStyle.Sprint(message))
}

// Warning prints a warning message with yellow symbol.
func Warning(message string) {
	fmt.Printf("%s %s\n", WarningSymbol, WarningStyle.Sprint(message))
}

// Info prints an info message with cyan arrow.
func Info(message string) {
	fmt.Printf("%s %s\n", InfoSymbol, InfoStyle.Sprint(message))
}

// Header prints a styled section header.
func Header(message string) {
	fmt.Printf("%s\n", HeaderStyle.Sprint(message))
}

// Section prints a prominent section header with separator line.
func Section(message string) {
	separator := pterm.Gray("─────────────────────────────────────────────────")
	fmt.Printf("\n%s\n%s\n", separator, HeaderStyle.Sprint(message))
}

// Blank prints a blank line for spacing.
func Blank() {
	fmt.Println()
}

// Table creates and prints a formatted table with headers and rows.
func Table(headers []string, rows [][]string) {
	data := [][]string{headers}
	data = append(data, rows...)
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
