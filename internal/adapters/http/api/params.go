package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Accepted ISO-8601 forms. Values without an offset are read as UTC.
var timeLayouts = []string{ //nolint:gochecknoglobals // immutable table
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses an ISO-8601 timestamp or date.
func ParseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	// An unescaped "+" in a query string arrives as a space.
	if i := strings.LastIndexByte(raw, ' '); i > 0 && strings.Contains(raw[:i], "T") {
		if t, err := time.Parse(time.RFC3339Nano, raw[:i]+"+"+raw[i+1:]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format %q, use ISO-8601", raw)
}

// timeParam returns the optional time bound named key.
func timeParam(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := ParseTime(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &t, nil
}

// intParam returns the integer named key within [lo, hi], or def when absent.
func intParam(q url.Values, key string, def, lo, hi int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s must be between %d and %d", key, lo, hi)
	}
	return n, nil
}
