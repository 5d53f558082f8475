package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/content/converter"
)

// Normalizer turns editor or agent content of any supported format into
// parsed sections.
type Normalizer struct {
	registry *converter.ConverterRegistry
	logger   *slog.Logger
}

// NewNormalizer creates a normalizer backed by the standard converters.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{
		registry: converter.NewConverterRegistry(),
		logger:   logger,
	}
}

// Normalize converts input to markdown (detecting the format when empty)
// and parses it.
func (n *Normalizer) Normalize(ctx context.Context, format, input string, meta models.DraftMetadata) (models.ParsedContent, error) {
	markdown, err := n.registry.Convert(ctx, format, input)
	if err != nil {
		return models.ParsedContent{}, fmt.Errorf("normalize content: %w", err)
	}

	parsed := Parse(markdown, meta)
	if parsed.Warnings > 0 {
		n.logger.Warn("content parsed with warnings",
			"warnings", parsed.Warnings,
			"sections", len(parsed.Sections),
		)
	}
	return parsed, nil
}
