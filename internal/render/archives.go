package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	humanize "github.com/dustin/go-humanize"

	"github.com/classvault/classvault/internal/blob"
)

// EmptyState renders a styled empty-state message with an optional
// contextual hint. When quiet is true the hint is suppressed.
func EmptyState(message, hint string, quiet bool) string {
	if !ColorsEnabled() {
		if quiet || hint == "" {
			return message
		}
		return message + "\n" + hint
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	result := dimStyle.Render(message)
	if !quiet && hint != "" {
		result += "\n" + hintStyle.Render(hint)
	}
	return result
}

// RenderArchiveTable renders stored archives as a formatted table, newest
// first as provided by the caller.
func RenderArchiveTable(handles []blob.Handle) string {
	if len(handles) == 0 {
		return EmptyState("No archives found.", "Create one with: classvault snapshot", false)
	}

	headers := []string{"Key", "Size", "Age"}
	rows := make([][]string, 0, len(handles))
	for _, h := range handles {
		rows = append(rows, []string{
			h.Key,
			humanize.Bytes(uint64(h.SizeBytes)),
			humanize.Time(h.LastModified),
		})
	}

	if !ColorsEnabled() {
		return renderPlainTable(headers, rows)
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().PaddingRight(1)
		})

	return t.Render()
}

// renderPlainTable renders a column-aligned plain-text table.
func renderPlainTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var buf strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				buf.WriteString("  ")
			}
			fmt.Fprintf(&buf, "%-*s", widths[i], cell)
		}
		buf.WriteString("\n")
	}

	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}
	return strings.TrimRight(buf.String(), "\n")
}
