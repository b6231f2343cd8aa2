package common

import (
	"fmt"
	"slices"
	"strings"

	"hiredly/internal/errors"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// RequireText rejects blank values of a named input.
func RequireText(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s cannot be empty", name), nil)
	}
	return nil
}
