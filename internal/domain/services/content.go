package services

import "context"

// ContentConverter turns editor content of one format into parser-ready markdown.
// Implementations are stateless and safe for concurrent use.
type ContentConverter interface {
	// Convert transforms input into markdown.
	Convert(ctx context.Context, input string) (markdown string, err error)

	// Formats returns the format names handled (e.g. "html", "markdown").
	Formats() []string

	// Name is used in logs.
	Name() string
}
