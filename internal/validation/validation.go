// Package validation enforces request constraints before anything is staged.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"pdfapi/internal/apperror"
)

// MinMergeInputs is the smallest number of valid files a merge accepts.
const MinMergeInputs = 2

// Field is a named request value for Required.
type Field struct {
	Name  string
	Value string
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == "." {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// AllowedFile reports whether name carries one of the allowed extensions.
func AllowedFile(name string, allowed []string) bool {
	ext := Extension(name)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}

// File rejects names without an allowed extension.
func File(name string, allowed []string) error {
	if !AllowedFile(name, allowed) {
		return apperror.New(apperror.KindInvalidFileType, "Valid PDF file required")
	}
	return nil
}

// MergeInputs rejects merges with fewer than MinMergeInputs files received.
func MergeInputs(received int) error {
	if received < MinMergeInputs {
		return apperror.New(apperror.KindInsufficientInputs, fmt.Sprintf("At least %d files required for merging", MinMergeInputs))
	}
	return nil
}

// ValidMergeInputs rejects merges left with fewer than MinMergeInputs files
// after files with a disallowed extension were dropped.
func ValidMergeInputs(valid int) error {
	if valid < MinMergeInputs {
		return apperror.New(apperror.KindInsufficientInputs, "Valid PDF files required")
	}
	return nil
}

// Required fails when any field is blank after trimming.
func Required(fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return apperror.New(apperror.KindMissingRequiredField, "Missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

// RotationAngle accepts clockwise quarter turns only.
func RotationAngle(angle int) error {
	switch angle {
	case 90, 180, 270:
		return nil
	}
	return apperror.New(apperror.KindInvalidParameter, "Angle must be one of 90, 180 or 270")
}

// PagesPerFile requires a positive chunk size.
func PagesPerFile(n int) error {
	if n < 1 {
		return apperror.New(apperror.KindInvalidParameter, "pages_per_file must be at least 1")
	}
	return nil
}
