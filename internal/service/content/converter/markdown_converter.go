package converter

import (
	"context"
	"strings"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

// markdownConverter passes markdown and plain text through, normalizing line endings.
type markdownConverter struct{}

// NewMarkdownConverter creates the passthrough converter.
func NewMarkdownConverter() services.ContentConverter {
	return &markdownConverter{}
}

func (c *markdownConverter) Convert(ctx context.Context, input string) (string, error) {
	return strings.ReplaceAll(input, "\r\n", "\n"), nil
}

func (c *markdownConverter) Formats() []string {
	return []string{FormatMarkdown, FormatText}
}

func (c *markdownConverter) Name() string {
	return "markdown"
}
