// Package cli holds the small table/prompt helpers the example client uses
// to present cache statistics and pick a demo interactively, adapted from
// the teacher repo's internal/cli/output and internal/cli/prompt packages.
package cli

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// PrintKeyValueTable renders pairs as an aligned, borderless key:value
// table, the way the teacher's SimpleTable does for ad-hoc summaries.
func PrintKeyValueTable(w io.Writer, pairs [][2]string) {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator(":")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, pair := range pairs {
		table.Append([]string{pair[0], pair[1]})
	}

	table.Render()
}
