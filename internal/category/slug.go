package category

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
	colorFormat = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Slugify derives a category id from a display name: lower-case, runs of
// non-alphanumeric characters collapsed to a single '-', leading/trailing
// dashes trimmed. The id is immutable after creation.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonAlnumRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// validateColor checks for the #RRGGBB form.
func validateColor(color string) error {
	if !colorFormat.MatchString(color) {
		return fmt.Errorf("%w: color %q is not #RRGGBB", ErrValidation, color)
	}
	return nil
}

// normalizeAppKey lowers and trims an app key so that lookups are
// case-insensitive regardless of how the host delivered the identity.
func normalizeAppKey(appKey string) string {
	return strings.ToLower(strings.TrimSpace(appKey))
}
