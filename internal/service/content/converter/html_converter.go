package converter

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/content/converter/sanitizer"
)

// htmlConverter sanitizes rich-text editor HTML and converts it to markdown.
// Tables become pipe tables so the parser can pick them up.
type htmlConverter struct {
	sanitizer *sanitizer.HTMLSanitizer
	converter *md.Converter
}

// NewHTMLConverter creates a new HTML to markdown converter.
func NewHTMLConverter() services.ContentConverter {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		BulletListMarker: "-",
	})
	conv.Use(plugin.Table())

	return &htmlConverter{
		sanitizer: sanitizer.NewHTMLSanitizer(),
		converter: conv,
	}
}

func (c *htmlConverter) Convert(ctx context.Context, input string) (string, error) {
	markdown, err := c.converter.ConvertString(c.sanitizer.Sanitize(input))
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return markdown, nil
}

func (c *htmlConverter) Formats() []string {
	return []string{FormatHTML}
}

func (c *htmlConverter) Name() string {
	return "html"
}
