package application

import (
	"fmt"
	"strings"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "collectionID" -> "collection ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"collectionID": "collection ID",
		"libraryID":    "library ID",
		"identifier":   "identifier",
		"uri":          "URI",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidatePanelHeight checks a requested panel height before it is clamped.
// Only non-positive values are rejected; out-of-range values are clamped by
// the store.
func ValidatePanelHeight(px int) error {
	if px <= 0 {
		return &ValidationError{
			Field:   "panelHeight",
			Message: fmt.Sprintf("panel height must be positive, got: %d", px),
		}
	}
	return nil
}
