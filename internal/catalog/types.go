package catalog

import "gopkg.in/yaml.v3"

// ToolSpec declares one built-in tool offered to the model.
type ToolSpec struct {
	// Name is set from the YAML key during unmarshaling
	Name string `yaml:"-" json:"name"`

	Description string                 `yaml:"description" json:"description"`
	Parameters  map[string]interface{} `yaml:"parameters" json:"parameters"`

	// Aliases are extra names routed to the same executor
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
}

// ToolSet is the ordered list of built-in tools.
type ToolSet []ToolSpec

// UnmarshalYAML keeps tools in the order they are declared in the YAML file.
func (s *ToolSet) UnmarshalYAML(node *yaml.Node) error {
	var byName map[string]ToolSpec
	if err := node.Decode(&byName); err != nil {
		return err
	}

	// node.Content alternates: key, value, key, value...
	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if spec, ok := byName[name]; ok {
			spec.Name = name
			*s = append(*s, spec)
		}
	}
	return nil
}

// RendererPolicy describes how renderer operations are routed.
type RendererPolicy struct {
	// FillOperation renders structured draft content into a template
	FillOperation string `yaml:"fill_operation"`

	// MutatingOperations change the file they act on and trigger a push
	MutatingOperations []string `yaml:"mutating_operations"`

	// PullKeys are argument names, in priority order, naming the file to refresh before a call
	PullKeys []string `yaml:"pull_keys"`

	// PushKeys are argument names, in priority order, naming the file a mutation wrote
	PushKeys []string `yaml:"push_keys"`

	// PathPattern recovers a .docx path from free-form result text
	PathPattern string `yaml:"path_pattern"`
}

// Prompts are the texts the orchestrator injects into the conversation.
type Prompts struct {
	// OperationsHeader introduces the enumerated renderer operations
	OperationsHeader string `yaml:"operations_header"`

	// DocumentsHeader introduces the snapshot of known documents
	DocumentsHeader string `yaml:"documents_header"`

	// ActiveDraftHeader introduces the active draft's latest content; %s is the draft id
	ActiveDraftHeader string `yaml:"active_draft_header"`

	// ActiveDraftDirective tells the model to update rather than recreate the active draft
	ActiveDraftDirective string `yaml:"active_draft_directive"`

	// ModificationDirective is appended to a user message that asks for a change; %s is the draft id
	ModificationDirective string `yaml:"modification_directive"`

	// ForcingMessage is sent once when the model answered without applying a requested change; %s is the draft id
	ForcingMessage string `yaml:"forcing_message"`
}

// Fallbacks are returned when the model produces no final text.
type Fallbacks struct {
	DraftUpdated string `yaml:"draft_updated"`
	Generic      string `yaml:"generic"`
}

// Catalog is the embedded conversation and tool policy.
type Catalog struct {
	SystemInstructions string         `yaml:"system_instructions"`
	Tools              ToolSet        `yaml:"tools"`
	Renderer           RendererPolicy `yaml:"renderer"`
	IntentKeywords     []string       `yaml:"intent_keywords"`
	Prompts            Prompts        `yaml:"prompts"`
	Fallbacks          Fallbacks      `yaml:"fallbacks"`
}
