package cmd

import (
	"io"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/feelio/internal/ui/theme"
)

var (
	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Padding(0, 1)
	tableCell   = lipgloss.NewStyle().Foreground(theme.Text).Padding(0, 1)
	tableTotal  = tableCell.Bold(true)
)

// newTable is the bordered table every listing command prints. With
// totals set the last row is rendered bold.
func newTable(totals bool, headers ...string) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...)
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return tableHeader
		case totals && row == t.GetData().Rows()-1:
			return tableTotal
		}
		return tableCell
	})
	return t
}

// printTable writes t, downsampling colors to what w supports.
func printTable(w io.Writer, t *table.Table) {
	_, _ = lipgloss.Fprintln(w, t.Render())
}
