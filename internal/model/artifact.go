package model

import "time"

// Artifact is a generated output file produced by one pipeline operation.
// It stays in the outbound area until downloaded or purged externally.
type Artifact struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Operation   Operation `json:"operation"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	RequestID   string    `json:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadedFile is an inbound file after it has been written to the staging area.
// It is consumed at most once.
type UploadedFile struct {
	OriginalName  string
	SanitizedName string
	Size          int64
	Path          string
}
