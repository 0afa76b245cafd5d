// Package templates provides the fixed set of CV template configurations.
package templates

import "fmt"

// NotFoundError indicates the requested template name is not one of the
// known identifiers.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template file not found: %s", e.Name)
}

// ParseError wraps a YAML or schema failure while loading a template.
type ParseError struct {
	Name  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error loading template %s: %v", e.Name, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
