// Package form reads the keyed-field maps the presentation layer submits
// (field name → value) into typed values.
package form

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout date fields use when submitted as text.
const DateLayout = "2006-01-02"

// ErrInvalidField is returned when a field holds a value of the wrong type.
var ErrInvalidField = errors.New("invalid field value")

// Fields maps a field name to its submitted value. A key that is present
// with a nil value is different from an absent key.
type Fields map[string]any

// Has reports whether key was submitted.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// String returns the text value of key. Absent or nil keys yield "".
func (f Fields) String(key string) (string, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case *string:
		if s == nil {
			return "", nil
		}
		return *s, nil
	case fmt.Stringer:
		return s.String(), nil
	}
	return "", fmt.Errorf("%w: %s is %T, want text", ErrInvalidField, key, v)
}

// Time returns the date value of key, or nil when absent or nil.
// Accepted values are time.Time, *time.Time and "2006-01-02" text.
func (f Fields) Time(key string) (*time.Time, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil, nil
		}
		return &t, nil
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil, nil
		}
		return t, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		parsed, err := time.Parse(DateLayout, strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidField, key, err)
		}
		return &parsed, nil
	}
	return nil, fmt.Errorf("%w: %s is %T, want a date", ErrInvalidField, key, v)
}
