// Package cli holds the terminal styling shared by the vinyl commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#C8A165") // shellac amber
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
	errorColor   = lipgloss.Color("#A40000")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// Title is the application banner.
const Title = "algo-vinyl"

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render(Title))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// Field is one key-value line of a report.
type Field struct {
	Key   string
	Value string
}

// PrintReport writes a titled block of aligned key-value lines.
func PrintReport(w io.Writer, title string, fields []Field) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Key))
	}
	fmt.Fprintln(w, TitleStyle.Render(title))
	for _, f := range fields {
		key := fmt.Sprintf("%-*s", width+1, f.Key+":")
		fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render(key), ValueStyle.Render(f.Value))
	}
}
