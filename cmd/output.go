package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/egobogo/notionrag/internal/pipeline"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for failure counts
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for the run summary
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func printSummary(w io.Writer, title string, s pipeline.Summary) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(fmt.Sprintf("Databases  %d\n", s.Databases))
	b.WriteString(fmt.Sprintf("Documents  %d\n", s.Documents))
	b.WriteString(fmt.Sprintf("Chunks     %d\n", s.Chunks))
	b.WriteString(fmt.Sprintf("Links      %d\n", s.Links))
	if s.Failures > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Failures   %d", s.Failures)) + "\n")
	} else {
		b.WriteString(successStyle.Render("Failures   0") + "\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Duration   %s", s.Duration.Round(10*time.Millisecond))))
	fmt.Fprintln(w, boxStyle.Render(strings.TrimRight(b.String(), "\n")))
}
