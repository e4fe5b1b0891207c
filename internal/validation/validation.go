package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Errors maps a form field to its messages.
type Errors map[string][]string

func (v Errors) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

// Err returns nil when there are no messages.
func (v Errors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v Errors) fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (v Errors) Error() string {
	fields := v.fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(v[f], "; ")))
	}
	return strings.Join(parts, ", ")
}

// First returns the first message of field, or "".
func (v Errors) First(field string) string {
	if msgs := v[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// MaxLength adds msg when s has more than max characters.
func (v Errors) MaxLength(field, s string, max int, msg string) {
	if len([]rune(s)) > max {
		v.Add(field, msg)
	}
}

// Summary joins every message, ordered by field, for display to users.
func (v Errors) Summary() string {
	var msgs []string
	for _, f := range v.fields() {
		msgs = append(msgs, v[f]...)
	}
	return strings.Join(msgs, ". ")
}
