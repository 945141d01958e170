package metastore

import (
	"fmt"
	"regexp"
	"unicode"
)

var hexRegexp = regexp.MustCompile("^[a-fA-F0-9]+$")

// IsRevisionLike reports whether ref looks like a revision identifier of the given length
// (a fixed length hex string). Any other ref is treated as a tag name.
func IsRevisionLike(ref string, length int) bool {
	return len(ref) == length && hexRegexp.MatchString(ref)
}

// ValidateTagName rejects empty tag names and names holding whitespace or control characters.
// Backends may enforce a stricter charset on top.
func ValidateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name: %w", ErrInvalidTagName)
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%q: %w", name, ErrInvalidTagName)
		}
	}
	return nil
}
