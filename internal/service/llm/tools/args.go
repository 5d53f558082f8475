package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/ldsilvadev/mcp-word-caller/internal/config"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
)

// CreateDraftArgs are the arguments of create_draft.
type CreateDraftArgs struct {
	Title    string                     `json:"title"`
	Content  string                     `json:"content"`
	Metadata *models.DraftMetadataPatch `json:"metadata,omitempty"`
}

func (a *CreateDraftArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Title, validation.Required, validation.Length(1, config.MaxDraftTitleLength)),
		validation.Field(&a.Content, validation.Required, validation.Length(1, config.MaxDraftContentLength)),
	)
}

// GetDraftArgs are the arguments of get_draft.
type GetDraftArgs struct {
	DraftID string `json:"draft_id"`
}

func (a *GetDraftArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.DraftID, validation.Required, isUUID),
	)
}

// UpdateDraftArgs are the arguments of update_draft.
type UpdateDraftArgs struct {
	DraftID  string                     `json:"draft_id"`
	Content  *string                    `json:"content,omitempty"`
	Metadata *models.DraftMetadataPatch `json:"metadata,omitempty"`
}

func (a *UpdateDraftArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.DraftID, validation.Required, isUUID),
		validation.Field(&a.Content, validation.NilOrNotEmpty, validation.Length(0, config.MaxDraftContentLength)),
	)
}

// GenerateDraftArgs are the arguments of generate_from_draft.
type GenerateDraftArgs struct {
	DraftID string `json:"draft_id"`
}

func (a *GenerateDraftArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.DraftID, validation.Required, isUUID),
	)
}

// PassThroughArgs are renderer operation arguments. Their shape belongs to
// the renderer; only the file keys this side reads are checked.
type PassThroughArgs map[string]interface{}

// ValidateKeys checks that every present file key holds a non-empty string.
func (a PassThroughArgs) ValidateKeys(keys []string) error {
	for _, key := range keys {
		v, ok := a[key]
		if !ok {
			continue
		}
		if s, isString := v.(string); !isString || s == "" {
			return fmt.Errorf("%s: must be a non-empty string", key)
		}
	}
	return nil
}

// firstString returns the first key in keys holding a non-empty string.
func (a PassThroughArgs) firstString(keys []string) (key, value string) {
	for _, k := range keys {
		if s, ok := a[k].(string); ok && s != "" {
			return k, s
		}
	}
	return "", ""
}

var isUUID = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return errors.New("must be a valid UUID")
	}
	return nil
})

// decodeArgs decodes input into the closed shape out and validates it.
// Unknown fields, wrong types and rule violations all wrap
// domain.ErrMalformedToolArguments.
func decodeArgs(input map[string]interface{}, out validation.Validatable) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedToolArguments, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedToolArguments, err)
	}

	if err := out.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedToolArguments, err)
	}
	return nil
}
