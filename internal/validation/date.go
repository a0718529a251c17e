package validation

import (
	"time"

	"github.com/app-catalog/app-catalog/internal/catalog"
)

// isoDateLayout is the wire format for release dates.
const isoDateLayout = "2006-01-02"

// ParseReleaseDate parses an ISO-8601 calendar date ("2024-03-01"). An empty
// string defaults to today (UTC), matching the behavior of browser date
// pickers that leave the field unset.
func ParseReleaseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse(isoDateLayout, raw)
	if err != nil {
		return time.Time{}, catalog.NewValidationError("releaseDate", "must be an ISO date, e.g. 2024-03-01")
	}
	return t, nil
}

// FormatReleaseDate renders a release date in the wire format.
func FormatReleaseDate(t time.Time) string {
	return t.Format(isoDateLayout)
}
