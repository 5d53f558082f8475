// Package renderer talks to the external document renderer: a generic
// operation invoker plus the structured fill used by the draft lifecycle.
package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

// DefaultFillOperation is the renderer operation that fills a template.
const DefaultFillOperation = "fill_document_simple"

// fillData is the renderer's fill payload. The keys are the renderer's
// template placeholders and must not change.
type fillData struct {
	Code          string              `json:"codigo"`
	Subject       string              `json:"assunto"`
	Department    string              `json:"departamento"`
	Revision      string              `json:"revisao"`
	PublishDate   string              `json:"data_publicacao"`
	EffectiveDate string              `json:"data_vigencia"`
	Sections      []fillSection       `json:"secao"`
	Table         []map[string]string `json:"tabela_dinamica,omitempty"`
}

type fillSection struct {
	Title string `json:"titulo"`
	Body  string `json:"paragrafo"`
}

// Gateway renders structured content through the fill operation.
type Gateway struct {
	invoker services.Invoker
	fillOp  string
	logger  *slog.Logger
}

// NewGateway creates a gateway. An empty fillOp selects DefaultFillOperation.
func NewGateway(invoker services.Invoker, fillOp string, logger *slog.Logger) *Gateway {
	if fillOp == "" {
		fillOp = DefaultFillOperation
	}
	return &Gateway{
		invoker: invoker,
		fillOp:  fillOp,
		logger:  logger,
	}
}

// Render fills templateRef with content and writes outputPath. The renderer
// may finish writing after Render returns.
func (g *Gateway) Render(ctx context.Context, templateRef, outputPath string, content models.ParsedContent) (*services.InvokeResult, error) {
	data, err := json.Marshal(buildFillData(content))
	if err != nil {
		return nil, fmt.Errorf("encode fill data: %w", err)
	}

	args := map[string]interface{}{
		"filename":  outputPath,
		"data_json": string(data),
	}
	if templateRef != "" {
		args["template_path"] = templateRef
	}

	g.logger.Debug("rendering document",
		"operation", g.fillOp,
		"output_path", outputPath,
		"sections", len(content.Sections),
	)

	result, err := g.invoker.Invoke(ctx, g.fillOp, args)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", outputPath, err)
	}
	return result, nil
}

func buildFillData(content models.ParsedContent) fillData {
	meta := content.Metadata
	data := fillData{
		Code:          meta.Code,
		Subject:       meta.Subject,
		Department:    meta.Department,
		Revision:      meta.Revision,
		PublishDate:   meta.PublishDate,
		EffectiveDate: meta.EffectiveDate,
		Sections:      make([]fillSection, 0, len(content.Sections)),
	}

	for _, section := range content.Sections {
		body := section.Body
		if section.PostTableText != "" {
			body = strings.TrimSpace(body + "\n\n" + section.PostTableText)
		}
		data.Sections = append(data.Sections, fillSection{Title: section.Title, Body: body})

		// The template has a single dynamic table placeholder; the first table fills it.
		if data.Table == nil && section.Table != nil {
			data.Table = tableRows(section.Table)
		}
	}

	return data
}

// tableRows re-keys rows by their original header labels, which become the
// rendered column titles.
func tableRows(table *models.TableData) []map[string]string {
	keys := table.Keys()
	rows := make([]map[string]string, 0, len(table.Rows))
	for _, record := range table.Rows {
		row := make(map[string]string, len(keys))
		for i, key := range keys {
			value := ""
			if v := record[key]; v != nil {
				value = *v
			}
			row[table.Headers[i]] = value
		}
		rows = append(rows, row)
	}
	return rows
}
