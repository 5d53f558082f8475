// Package content converts loose, markdown-like text into the canonical
// Section/TableData model and back.
package content

import (
	"regexp"
	"strings"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
)

var (
	headingPattern   = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	listItemPattern  = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*+])\s+(.*)$`)
	numberingPattern = regexp.MustCompile(`^(?:\d+(?:\.\d+)+[.)]?\s+|\d+[.)]\s*)`)
	separatorCell    = regexp.MustCompile(`^:?-{1,}:?$`)
)

// BulletMarker prefixes every flushed list item.
const BulletMarker = "• "

type scanState int

const (
	stateDefault scanState = iota
	stateInList
	stateInTable
)

// parser holds the buffers of a single left-to-right scan.
type parser struct {
	state     scanState
	sections  []models.Section
	current   *models.Section
	paragraph []string
	list      []string
	table     [][]string
	warnings  int
}

// Parse converts markdown-like text into sections. It never fails: ragged
// table rows and text before the first heading are counted as warnings.
func Parse(text string, meta models.DraftMetadata) models.ParsedContent {
	p := &parser{}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		p.line(raw)
	}
	p.flushAll()
	p.pushSection()

	sections := p.sections
	if sections == nil {
		sections = []models.Section{}
	}

	return models.ParsedContent{
		Metadata: meta,
		Sections: sections,
		Warnings: p.warnings,
	}
}

func (p *parser) line(raw string) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		p.flushAll()
		return
	}

	if m := headingPattern.FindStringSubmatch(trimmed); m != nil {
		p.flushAll()
		if len(m[1]) <= 3 {
			p.pushSection()
			p.current = &models.Section{Title: normalizeTitle(m[2])}
			return
		}
		p.appendBlock(m[2])
		return
	}

	if isTableRow(trimmed) {
		if p.state != stateInTable {
			p.flushParagraph()
			p.flushList()
			p.state = stateInTable
		}
		cells := splitRow(trimmed)
		if !isSeparatorRow(cells) {
			p.table = append(p.table, cells)
		}
		return
	}

	if m := listItemPattern.FindStringSubmatch(raw); m != nil {
		if p.state != stateInList {
			p.flushParagraph()
			p.flushTable()
			p.state = stateInList
		}
		p.list = append(p.list, strings.TrimSpace(m[1]))
		return
	}

	p.flushList()
	p.flushTable()
	p.paragraph = append(p.paragraph, trimmed)
}

// pushSection closes the current section.
func (p *parser) pushSection() {
	if p.current == nil {
		return
	}
	p.sections = append(p.sections, *p.current)
	p.current = nil
}

func (p *parser) flushAll() {
	p.flushParagraph()
	p.flushList()
	p.flushTable()
}

func (p *parser) flushParagraph() {
	if len(p.paragraph) == 0 {
		return
	}
	p.appendBlock(strings.Join(p.paragraph, "\n\n"))
	p.paragraph = nil
}

func (p *parser) flushList() {
	if p.state == stateInList {
		p.state = stateDefault
	}
	if len(p.list) == 0 {
		return
	}
	items := make([]string, len(p.list))
	for i, item := range p.list {
		items[i] = BulletMarker + item
	}
	p.appendBlock(strings.Join(items, "\n"))
	p.list = nil
}

func (p *parser) flushTable() {
	if p.state == stateInTable {
		p.state = stateDefault
	}
	if len(p.table) == 0 {
		return
	}
	rows := p.table
	p.table = nil

	if p.current == nil {
		p.warnings++
		return
	}

	table := &models.TableData{Headers: rows[0], Rows: []map[string]*string{}}
	keys := table.Keys()
	for _, cells := range rows[1:] {
		if len(cells) != len(keys) {
			p.warnings++
		}
		record := make(map[string]*string, len(keys))
		for i, key := range keys {
			if i < len(cells) {
				cell := cells[i]
				record[key] = &cell
			} else {
				record[key] = nil
			}
		}
		table.Rows = append(table.Rows, record)
	}

	if p.current.Table != nil {
		// A second table in one section is kept as text after the first.
		p.warnings++
		p.appendBlock(renderTable(table))
		return
	}
	p.current.Table = table
}

// appendBlock adds a paragraph block to the current section, after the
// table when there is one.
func (p *parser) appendBlock(block string) {
	if p.current == nil {
		p.warnings++
		return
	}
	if p.current.Table != nil {
		p.current.PostTableText = joinBlocks(p.current.PostTableText, block)
		return
	}
	p.current.Body = joinBlocks(p.current.Body, block)
}

func joinBlocks(existing, block string) string {
	if existing == "" {
		return block
	}
	return existing + "\n\n" + block
}

func normalizeTitle(title string) string {
	title = strings.Trim(strings.TrimSpace(title), "*_")
	title = numberingPattern.ReplaceAllString(strings.TrimSpace(title), "")
	return strings.TrimSpace(title)
}

func isTableRow(line string) bool {
	return len(line) > 1 && strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|")
}

func splitRow(line string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")
	parts := strings.Split(inner, "|")
	cells := make([]string, len(parts))
	for i, part := range parts {
		cells[i] = strings.TrimSpace(part)
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, cell := range cells {
		if !separatorCell.MatchString(cell) {
			return false
		}
	}
	return len(cells) > 0
}
