package model

import "io"

// Operation names one pipeline entry.
type Operation string

const (
	OpMerge       Operation = "merge"
	OpWatermark   Operation = "watermark"
	OpExtract     Operation = "extract"
	OpSplit       Operation = "split"
	OpRotate      Operation = "rotate"
	OpCoverLetter Operation = "cover-letter"
)

// DefaultWatermarkText is used when the caller does not supply one.
const DefaultWatermarkText = "CONFIDENTIAL"

// FilePart is an uploaded file as handed over by the transport.
type FilePart struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type MergeRequest struct {
	Files      []FilePart
	OutputName string
}

type WatermarkRequest struct {
	File       FilePart
	Text       string
	OutputName string
}

type ExtractRequest struct {
	File FilePart
}

type SplitRequest struct {
	File         FilePart
	PagesPerFile int
}

type RotateRequest struct {
	File       FilePart
	Angle      int
	OutputName string
}

// CoverLetterRequest carries the template fields. Name, Position and Company are required.
type CoverLetterRequest struct {
	Name       string `json:"name" form:"name"`
	Position   string `json:"position" form:"position"`
	Company    string `json:"company" form:"company"`
	Email      string `json:"email" form:"email"`
	Phone      string `json:"phone" form:"phone"`
	OutputName string `json:"output_name" form:"output_name"`
}

// OperationResult is the outcome of one pipeline run.
type OperationResult struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Filename  string     `json:"filename,omitempty"`
	Files     []string   `json:"files,omitempty"`
	Preview   *string    `json:"preview,omitempty"`
	Artifacts []Artifact `json:"-"`
}
