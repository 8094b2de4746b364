package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateSequenceLength checks that a sequence length is at least 1.
func ValidateSequenceLength(length int) error {
	if length < 1 {
		return &ValidationError{Field: "length", Value: length, Min: 1}
	}
	return nil
}

// ValidatePosition checks that a 1-based position lies in [1, length].
func ValidatePosition(field string, pos, length int) error {
	if pos < 1 || pos > length {
		return &ValidationError{Field: field, Value: pos, Min: 1, Max: length}
	}
	return nil
}

// ValidateSpan checks both ends of a feature span against the sequence length.
// The ends may arrive in either order; orientation is resolved by the caller.
func ValidateSpan(start, end, length int) error {
	if err := ValidateSequenceLength(length); err != nil {
		return err
	}
	if err := ValidatePosition("start", start, length); err != nil {
		return err
	}
	return ValidatePosition("end", end, length)
}

// ValidateFeatureName validates a feature label.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateFeatureName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "feature name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "feature name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "feature name contains invalid control characters")
		}
	}

	return nil
}

// dbNameRegex matches feature database names usable as URL path segments.
var dbNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// ValidateDBName validates a feature database name.
func ValidateDBName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "database name cannot be empty")
	}
	if strings.Contains(name, "..") || !dbNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid database name: %q", name)
	}
	return nil
}

// sequenceHashRegex matches a lowercase hex SHA-1 digest.
var sequenceHashRegex = regexp.MustCompile(`^[0-9a-f]{40}$`)

// ValidateSequenceHash validates a sequence identifier (hex SHA-1).
func ValidateSequenceHash(hash string) error {
	if !sequenceHashRegex.MatchString(hash) {
		return New(ErrCodeInvalidInput, "invalid sequence hash: %q", hash)
	}
	return nil
}

// ValidateURL validates a backend URL string for safety.
// It ensures the URL uses one of the allowed schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes %s", strings.Join(schemes, ", "))
}
