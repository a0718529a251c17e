// Package validation holds input validation shared by services and handlers.
package validation

import (
	"regexp"

	goversion "github.com/hashicorp/go-version"

	"github.com/app-catalog/app-catalog/internal/catalog"
)

// appIDPattern constrains public app identifiers to a URL- and DNS-safe
// slug: lowercase alphanumerics separated by single dots, dashes, or
// underscores, 3-100 characters.
var appIDPattern = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*$`)

// ValidateAppID checks the public app identifier format.
func ValidateAppID(appID string) error {
	if len(appID) < 3 || len(appID) > 100 {
		return catalog.NewValidationError("appId", "must be between 3 and 100 characters")
	}
	if !appIDPattern.MatchString(appID) {
		return catalog.NewValidationError("appId", "must be a lowercase slug, e.g. com.example.myapp")
	}
	return nil
}

// ParseVersion parses a version string, tolerating a leading "v" prefix as
// commonly found in release tags. The parsed form is used for ordering;
// the original string is what gets stored.
func ParseVersion(raw string) (*goversion.Version, error) {
	if raw == "" {
		return nil, catalog.NewValidationError("version", "must not be empty")
	}
	v, err := goversion.NewVersion(raw)
	if err != nil {
		return nil, catalog.NewValidationError("version", "is not a valid version string")
	}
	return v, nil
}

// NormalizeTag strips the conventional "v" prefix from a release tag so
// "v1.2.0" and "1.2.0" refer to the same catalog version.
func NormalizeTag(tag string) string {
	if len(tag) > 1 && (tag[0] == 'v' || tag[0] == 'V') {
		if tag[1] >= '0' && tag[1] <= '9' {
			return tag[1:]
		}
	}
	return tag
}
