package tools

import (
	"regexp"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

// PathExtractor finds the file a renderer operation wrote.
type PathExtractor interface {
	ExtractPath(args map[string]interface{}, result *services.InvokeResult) string
}

// ArgsPathExtractor reads the declared output path from the call arguments.
type ArgsPathExtractor struct {
	Keys []string
}

func (e ArgsPathExtractor) ExtractPath(args map[string]interface{}, _ *services.InvokeResult) string {
	_, path := PassThroughArgs(args).firstString(e.Keys)
	return path
}

// ResultPathExtractor reads the structured path field of the result.
type ResultPathExtractor struct{}

func (ResultPathExtractor) ExtractPath(_ map[string]interface{}, result *services.InvokeResult) string {
	if result == nil {
		return ""
	}
	return result.OutputPath
}

// PatternPathExtractor scans free-form result text. Last resort only.
type PatternPathExtractor struct {
	Pattern *regexp.Regexp
}

func (e PatternPathExtractor) ExtractPath(_ map[string]interface{}, result *services.InvokeResult) string {
	if e.Pattern == nil || result == nil {
		return ""
	}
	return e.Pattern.FindString(result.Text)
}

// PathExtractorChain returns the first path any extractor finds.
type PathExtractorChain []PathExtractor

func (c PathExtractorChain) ExtractPath(args map[string]interface{}, result *services.InvokeResult) string {
	for _, e := range c {
		if path := e.ExtractPath(args, result); path != "" {
			return path
		}
	}
	return ""
}
