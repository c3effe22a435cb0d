package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// TagList is an ordered list of short tag strings stored as a JSON array in a
// TEXT column. Earlier deployments stored tags comma-joined; Scan still reads
// that form so old rows keep working, always degrading to an empty list
// rather than failing the read.
type TagList []string

// NormalizeTags trims entries and drops empty ones, preserving order.
func NormalizeTags(tags []string) TagList {
	out := make(TagList, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Value serializes the list as a JSON array.
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	payload, err := json.Marshal([]string(t))
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return string(payload), nil
}

// Scan reads a stored tag value. Malformed payloads never error.
func (t *TagList) Scan(src interface{}) error {
	*t = TagList{}
	if src == nil {
		return nil
	}

	var raw string
	switch v := src.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return nil
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parsed []string
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		*t = NormalizeTags(parsed)
		return nil
	}

	// Legacy comma-joined form
	*t = NormalizeTags(strings.Split(raw, ","))
	return nil
}
