package errors

import (
	"strings"
	"unicode"
)

// maxSegmentLen bounds identifiers that end up as a single path segment.
const maxSegmentLen = 255

// ValidateSegment validates a repository-supplied identifier (group id,
// artifact name, version or packaging) that is about to be used as part of a
// local file name. The remote indexes are untrusted input, so anything that
// could escape the destination tree is rejected:
//   - No empty values
//   - No control characters or null bytes
//   - No path separators
//   - No "." or ".." segments
//   - Maximum length of 255 bytes
//
// kind names the identifier in the error message ("group", "version", ...).
func ValidateSegment(kind, value string) error {
	if value == "" {
		return New(ErrCodeInvalidCoordinate, "%s cannot be empty", kind)
	}
	if len(value) > maxSegmentLen {
		return New(ErrCodeInvalidCoordinate, "%s too long (max %d characters)", kind, maxSegmentLen)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCoordinate, "%s contains invalid control characters", kind)
		}
	}
	if strings.ContainsAny(value, "/\\") {
		return New(ErrCodeInvalidCoordinate, "%s %q contains path separators", kind, value)
	}
	if value == "." || value == ".." {
		return New(ErrCodeInvalidCoordinate, "%s %q is not a valid name", kind, value)
	}
	return nil
}

// ValidateCoordinate validates all parts of a group/artifact/version triple.
func ValidateCoordinate(group, artifact, version string) error {
	if err := ValidateSegment("group", group); err != nil {
		return err
	}
	if err := ValidateSegment("artifact", artifact); err != nil {
		return err
	}
	return ValidateSegment("version", version)
}
