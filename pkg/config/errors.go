package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Issue is a single rejected configuration field.
type Issue struct {
	// Field is the environment key, with an index suffix for list elements
	// (e.g. "ALLOWED_ORIGINS[1]").
	Field string `json:"field"`

	// Tag is the failed rule ("required", "url", "oneof", "number", "json").
	Tag string `json:"tag"`

	// Reason is a human readable explanation.
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	return i.Field + ": " + i.Reason
}

// ValidationError aggregates every issue found while parsing a configuration
// source. It is never returned with an empty Issues slice.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	lines := lo.Map(e.Issues, func(issue Issue, _ int) string { return "  - " + issue.String() })
	return fmt.Sprintf("failed to parse environment variables (%d issues):\n%s", len(e.Issues), strings.Join(lines, "\n"))
}

// Fields returns the distinct failing keys, element indexes stripped, in
// the order they were reported.
func (e *ValidationError) Fields() []string {
	return lo.Uniq(lo.Map(e.Issues, func(issue Issue, _ int) string { return baseField(issue.Field) }))
}

// Has reports whether any issue concerns the given key.
func (e *ValidationError) Has(field string) bool {
	return lo.ContainsBy(e.Issues, func(issue Issue) bool { return baseField(issue.Field) == field })
}

func baseField(field string) string {
	name, _, _ := strings.Cut(field, "[")
	return name
}
