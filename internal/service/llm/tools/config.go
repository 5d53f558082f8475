package tools

import "time"

// ToolConfig centralizes configuration for all tools.
type ToolConfig struct {
	// Pass-through tool configuration
	AwaitTimeout  time.Duration // How long to wait for a mutated file to appear
	AwaitInterval time.Duration // Poll interval while waiting

	// MaxResultTextSize truncates renderer text returned to the model (prevents token overflow)
	MaxResultTextSize int
}

// DefaultToolConfig returns the default tool configuration.
func DefaultToolConfig() *ToolConfig {
	return &ToolConfig{
		AwaitTimeout:  5 * time.Second,
		AwaitInterval: 500 * time.Millisecond,

		MaxResultTextSize: 20000, // 20k characters (~5k tokens)
	}
}
