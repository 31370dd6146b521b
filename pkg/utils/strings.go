package utils

import (
	"net/http"
	"strconv"
	"time"
)

// ParseInt parses a string to int with a fallback default value
func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}

// QueryInt reads an int query parameter clamped to [min, max].
func QueryInt(r *http.Request, key string, defaultVal, min, max int) int {
	v := ParseInt(r.URL.Query().Get(key), defaultVal)
	if v < min {
		return min
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

// QueryDate parses an RFC 3339 timestamp or a YYYY-MM-DD date. Empty input
// yields nil.
func QueryDate(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
