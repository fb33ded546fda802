package dataset

import "fmt"

// ParseError indicates a malformed line, usually a field count that does not match the schema.
type ParseError struct {
	Line int
	Got  int
	Want int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse line %d: got %d fields, want %d", e.Line, e.Got, e.Want)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TypeError indicates a numeric field that could not be converted to a float.
type TypeError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("line %d: column %s: cannot convert %q to float: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *TypeError) Unwrap() error { return e.Err }
