package models

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax marks module text the grammar could not recognise.
	ErrSyntax = errors.New("syntax error")
	// ErrAnonymousDefault marks `export default <expression>` with no declared name.
	ErrAnonymousDefault = errors.New("default export has no declared name; add a default_aliases entry for this module")
	// ErrUnsupportedBinding marks destructuring patterns in exported variable statements.
	ErrUnsupportedBinding = errors.New("exported destructuring pattern is not supported")
)

// ScanError reports an unreadable directory or file.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// ParseError reports a module whose exports could not be extracted. Line and
// Column are 1-based; zero when unknown.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError reports a barrel file that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
