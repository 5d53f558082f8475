package converter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

// Content formats accepted from editors and tools.
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatHTML     = "html"
)

var htmlTagPattern = regexp.MustCompile(`(?i)<(p|h[1-6]|ul|ol|li|table|div|br|strong|em)[\s>/]`)

// ConverterRegistry routes content to a converter by format name.
//
// Thread-safe for concurrent access.
type ConverterRegistry struct {
	mu         sync.RWMutex
	converters map[string]services.ContentConverter
}

// NewConverterRegistry creates a registry with the standard converters registered.
func NewConverterRegistry() *ConverterRegistry {
	registry := &ConverterRegistry{
		converters: make(map[string]services.ContentConverter),
	}

	registry.Register(NewMarkdownConverter())
	registry.Register(NewHTMLConverter())

	return registry
}

// Register associates a converter with every format it handles.
func (r *ConverterRegistry) Register(converter services.ContentConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, format := range converter.Formats() {
		r.converters[strings.ToLower(format)] = converter
	}
}

// GetConverter returns the converter for format, or nil.
func (r *ConverterRegistry) GetConverter(format string) services.ContentConverter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.converters[strings.ToLower(format)]
}

// Convert normalizes input to markdown. An empty format is detected from the content.
func (r *ConverterRegistry) Convert(ctx context.Context, format, input string) (string, error) {
	if format == "" {
		format = DetectFormat(input)
	}

	converter := r.GetConverter(format)
	if converter == nil {
		return "", fmt.Errorf("unsupported content format: %s", format)
	}

	return converter.Convert(ctx, input)
}

// DetectFormat guesses whether input is HTML or markdown.
func DetectFormat(input string) string {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "<") && htmlTagPattern.MatchString(trimmed) {
		return FormatHTML
	}
	return FormatMarkdown
}
