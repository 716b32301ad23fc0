package events

import (
	"strings"
	"time"

	"github.com/Noah170803/eventio/internal/validation"
	dateparser "github.com/markusmobius/go-dateparser"
)

// dateLayouts are tried in order before falling back to natural-language
// parsing. Values without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var dateParserConfig = &dateparser.Configuration{
	DefaultTimezone: time.UTC,
}

// ParseDate reads an ISO-8601 style date, accepting looser spellings such as
// "1 March 2025 18:00" as a fallback.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, validation.FieldError("date", "is required")
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return parsed.UTC(), nil
		}
	}

	parsed, err := dateparser.Parse(dateParserConfig, value)
	if err != nil || parsed.Time.IsZero() {
		return time.Time{}, validation.FieldError("date", "must be an ISO-8601 date")
	}
	return parsed.Time.UTC(), nil
}
