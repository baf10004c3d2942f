package main

import (
	"encoding/json"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableSpec describes the fixed parts of a rendered table.
type tableSpec struct {
	Headers []string
	Aligns  []columnAlignment
	// Caption is printed under the table, e.g. "showing 20 of 153".
	Caption string
	// MaxWidth truncates wide columns; 0 leaves them untouched.
	MaxWidth int
}

func renderTable(spec tableSpec, rows [][]string) string {
	if len(spec.Headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(spec.Headers, len(spec.Headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(spec.Headers)))
	}

	configs := make([]table.ColumnConfig, len(spec.Headers))
	for i := range spec.Headers {
		align := text.AlignLeft
		if i < len(spec.Aligns) && spec.Aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    spec.MaxWidth,
		}
	}
	tw.SetColumnConfigs(configs)
	if spec.Caption != "" {
		tw.SetCaption("%s", spec.Caption)
	}
	return tw.Render()
}

func toRow(values []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
