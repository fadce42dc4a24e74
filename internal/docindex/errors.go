package docindex

import "fmt"

// NotFoundError reports a missing source document or index file.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// DecodeError reports bytes that could not be decoded into text.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseError reports malformed JSON or CSV structure. Line and Column are
// set for CSV input, Offset for JSON input; zero means unknown.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("parse %s (line %d, column %d): %v", e.Path, e.Line, e.Column, e.Err)
	case e.Offset > 0:
		return fmt.Sprintf("parse %s (offset %d): %v", e.Path, e.Offset, e.Err)
	default:
		return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }
