package validation

import (
	"errors"
	"sort"
	"strings"
)

// Kind classifies a field-level failure.
type Kind string

const (
	// KindFormat is a malformed value: unparseable national id, non-numeric age.
	KindFormat Kind = "format"
	// KindRule is a business rule failure: out of range, not in enum, empty required field.
	KindRule Kind = "rule"
	// KindSecurity is a script, HTML tag, or SQL pattern match.
	KindSecurity Kind = "security"
)

// FieldError is a single failure scoped to one field.
type FieldError struct {
	Field   string
	Kind    Kind
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func formatError(field, message string) *FieldError {
	return &FieldError{Field: field, Kind: KindFormat, Message: message}
}

func ruleError(field, message string) *FieldError {
	return &FieldError{Field: field, Kind: KindRule, Message: message}
}

func securityError(field, message string) *FieldError {
	return &FieldError{Field: field, Kind: KindSecurity, Message: message}
}

// RuleViolation builds a rule failure for checks that need data outside the
// record, such as catalog lookups.
func RuleViolation(field, message string) *FieldError {
	return ruleError(field, message)
}

// ErrorMap groups field errors by field name. Messages for a field keep the order
// in which the chain produced them.
type ErrorMap map[string][]*FieldError

// Add records e under its field.
func (m ErrorMap) Add(e *FieldError) {
	m[e.Field] = append(m[e.Field], e)
}

// Len counts every recorded failure.
func (m ErrorMap) Len() int {
	n := 0
	for _, errs := range m {
		n += len(errs)
	}
	return n
}

// Has reports whether field failed with kind.
func (m ErrorMap) Has(field string, kind Kind) bool {
	for _, e := range m[field] {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// HasKind reports whether any field failed with kind.
func (m ErrorMap) HasKind(kind Kind) bool {
	for field := range m {
		if m.Has(field, kind) {
			return true
		}
	}
	return false
}

// Merge appends every failure of other.
func (m ErrorMap) Merge(other ErrorMap) {
	for _, field := range other.Fields() {
		m[field] = append(m[field], other[field]...)
	}
}

// Fields returns the failing field names, sorted.
func (m ErrorMap) Fields() []string {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Messages flattens the map into the human-readable form handed to callers.
func (m ErrorMap) Messages() map[string][]string {
	out := make(map[string][]string, len(m))
	for field, errs := range m {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Message
		}
		out[field] = msgs
	}
	return out
}

func (m ErrorMap) Error() string {
	parts := make([]string, 0, len(m))
	for _, field := range m.Fields() {
		for _, e := range m[field] {
			parts = append(parts, e.Error())
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsErrorMap extracts an ErrorMap from err's chain.
func AsErrorMap(err error) (ErrorMap, bool) {
	var m ErrorMap
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}
