package services

import (
	"context"

	"github.com/google/uuid"
)

// EditorService connects drafts to the collaborative document editor.
type EditorService interface {
	// Config builds the signed editor configuration for a draft.
	Config(ctx context.Context, draftID uuid.UUID, user EditorUser) (*EditorConfig, error)

	// ServerURL is the document server base URL the client loads the editor from.
	ServerURL() string

	// HandleCallback processes a save notification from the document server.
	HandleCallback(ctx context.Context, draftID uuid.UUID, req *EditorCallback) EditorCallbackResult

	// Available reports whether the document server answers its health check.
	Available(ctx context.Context) bool
}

// EditorUser identifies who opens the editor.
type EditorUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EditorPermissions are the document permissions granted to the editor.
type EditorPermissions struct {
	Edit     bool `json:"edit"`
	Download bool `json:"download"`
	Print    bool `json:"print"`
	Review   bool `json:"review"`
	Comment  bool `json:"comment"`
}

// EditorDocument describes the file the editor opens.
type EditorDocument struct {
	FileType    string            `json:"fileType"`
	Key         string            `json:"key"`
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Permissions EditorPermissions `json:"permissions"`
}

// EditorCustomization toggles editor UI features.
type EditorCustomization struct {
	Autosave  bool `json:"autosave"`
	Forcesave bool `json:"forcesave"`
	Chat      bool `json:"chat"`
	Comments  bool `json:"comments"`
	Help      bool `json:"help"`
}

// EditorSettings are the editorConfig section of the configuration.
type EditorSettings struct {
	CallbackURL   string              `json:"callbackUrl"`
	Lang          string              `json:"lang"`
	Mode          string              `json:"mode"`
	User          EditorUser          `json:"user"`
	Customization EditorCustomization `json:"customization"`
}

// EditorConfig is the document server configuration for one draft.
type EditorConfig struct {
	Document     EditorDocument `json:"document"`
	DocumentType string         `json:"documentType"`
	EditorConfig EditorSettings `json:"editorConfig"`
	Token        string         `json:"token,omitempty"`
}

// Document server callback statuses.
const (
	EditorStatusEditing    = 1
	EditorStatusReady      = 2 // closed with changes, ready to save
	EditorStatusSaveError  = 3
	EditorStatusClosed     = 4 // closed without changes
	EditorStatusForceSaved = 6
	EditorStatusForceError = 7
)

// EditorCallback is the body the document server posts on state changes.
type EditorCallback struct {
	Status int      `json:"status"`
	URL    string   `json:"url,omitempty"`
	Key    string   `json:"key,omitempty"`
	Users  []string `json:"users,omitempty"`
	Token  string   `json:"token,omitempty"`
}

// EditorCallbackResult is the reply the document server expects; Error 0 means accepted.
type EditorCallbackResult struct {
	Error int `json:"error"`
}
