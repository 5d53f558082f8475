package llm

import "fmt"

// FunctionDetails represents the function definition (OpenAI format)
type FunctionDetails struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ToolDefinition is a tool declaration sent to the language model.
//
//	{
//	  "type": "function",
//	  "function": {
//	    "name": "update_draft",
//	    "description": "Replace the content of a draft",
//	    "parameters": {"type": "object", "properties": {...}, "required": [...]}
//	  }
//	}
type ToolDefinition struct {
	Type     string           `json:"type"`
	Function *FunctionDetails `json:"function"`
}

// NewFunctionTool builds a function-type tool definition.
func NewFunctionTool(name, description string, parameters map[string]interface{}) ToolDefinition {
	if parameters == nil {
		parameters = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
	}
	return ToolDefinition{
		Type: "function",
		Function: &FunctionDetails{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// Name returns the function name, or "" for an incomplete definition.
func (td ToolDefinition) Name() string {
	if td.Function == nil {
		return ""
	}
	return td.Function.Name
}

// Validate checks that the definition can be sent to a provider.
func (td ToolDefinition) Validate() error {
	if td.Function == nil {
		return fmt.Errorf("tool definition missing function")
	}
	if td.Function.Name == "" {
		return fmt.Errorf("function name is required")
	}
	if td.Function.Parameters == nil {
		return fmt.Errorf("function %s: parameters are required", td.Function.Name)
	}
	return nil
}

// Properties returns the JSON-schema properties of the tool parameters.
func (td ToolDefinition) Properties() map[string]interface{} {
	if td.Function == nil {
		return nil
	}
	props, _ := td.Function.Parameters["properties"].(map[string]interface{})
	return props
}

// Required returns the required parameter names.
func (td ToolDefinition) Required() []string {
	if td.Function == nil {
		return nil
	}
	switch req := td.Function.Parameters["required"].(type) {
	case []string:
		return req
	case []interface{}:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
