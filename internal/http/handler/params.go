package handler

import (
	"strings"
	"time"
)

// dateLayouts are accepted for date query and body parameters. Date-only
// values are midnight in the service time zone.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate returns nil for an empty value.
func parseDate(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
