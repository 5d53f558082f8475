package content

import (
	"strings"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
)

// Render writes sections back to markdown. Parsing the result yields the
// same sections up to whitespace.
func Render(sections []models.Section) string {
	var b strings.Builder

	for i, section := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("# ")
		b.WriteString(section.Title)
		b.WriteString("\n\n")

		if section.Body != "" {
			b.WriteString(section.Body)
			b.WriteString("\n\n")
		}
		if section.Table != nil {
			b.WriteString(renderTable(section.Table))
			b.WriteString("\n\n")
		}
		if section.PostTableText != "" {
			b.WriteString(section.PostTableText)
			b.WriteString("\n\n")
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderTable(table *models.TableData) string {
	if table == nil || len(table.Headers) == 0 {
		return ""
	}

	var b strings.Builder
	writeRow(&b, table.Headers)

	separator := make([]string, len(table.Headers))
	for i := range separator {
		separator[i] = "---"
	}
	writeRow(&b, separator)

	keys := table.Keys()
	for _, record := range table.Rows {
		cells := make([]string, len(keys))
		for i, key := range keys {
			if v := record[key]; v != nil {
				cells[i] = *v
			}
		}
		writeRow(&b, cells)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, cell := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(cell, "|", "/"))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
