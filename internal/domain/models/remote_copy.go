package models

import "time"

// RemoteCopy links a local filename to its counterpart in remote storage.
// Keyed by filename; the most recent upload wins.
type RemoteCopy struct {
	Filename      string    `json:"filename" db:"filename"`
	RemoteID      string    `json:"remote_id" db:"remote_id"`
	ShareableLink string    `json:"shareable_link" db:"shareable_link"`
	MimeType      string    `json:"mime_type" db:"mime_type"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DocxMimeType is the content type of rendered documents.
const DocxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
