package output

import (
	"bytes"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PackageRow is one line of the package table
type PackageRow struct {
	Test       string
	Name       string
	Version    string
	Repository string
}

// PackageTable renders the packages behind each test as an ASCII table
func PackageTable(rows []PackageRow, noColor bool) string {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle("Packages")

	t.AppendHeader(table.Row{"Test", "Package", "Version", "Repository"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Repository", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, row := range rows {
		t.AppendRow(table.Row{row.Test, row.Name, row.Version, row.Repository})
	}

	if noColor {
		t.SetStyle(table.StyleDefault)
	} else {
		t.SetStyle(table.StyleColoredBright)
	}

	t.AppendFooter(table.Row{"TOTAL", len(rows), "", ""})

	t.Render()
	return buf.String()
}
