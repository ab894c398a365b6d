// Package validation checks request inputs before they reach the service
// layer. Validators return *Error with one message per offending field.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error aggregates per-field validation messages.
type Error struct {
	Fields map[string]string
}

// Error renders the messages in field order so the text is deterministic.
func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}
