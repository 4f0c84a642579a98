package slidegen

import (
	"fmt"
)

// UnsupportedFormatError is returned when a data file has an extension the
// reader does not recognize. It is one of the two hard failures that abort a
// generation run.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unsupported data file format: missing file extension"
	}
	return fmt.Sprintf("unsupported data file format: %s (use .csv, .xlsx or .xls)", e.Ext)
}

// NewUnsupportedFormatError creates a new unsupported format error
func NewUnsupportedFormatError(ext string) error {
	return &UnsupportedFormatError{Ext: ext}
}

// EmptyDataError is returned when the data file contains no rows, or when
// aggregation yields no groups. It is the second hard failure.
type EmptyDataError struct {
	Source string
}

func (e *EmptyDataError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("no usable data in %s", e.Source)
	}
	return "no usable data"
}

// NewEmptyDataError creates a new empty data error
func NewEmptyDataError(source string) error {
	return &EmptyDataError{Source: source}
}

// DocumentError represents an error during document operations
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// TemplateError represents a problem with the template deck itself, such as a
// summary slide without a usable data table.
type TemplateError struct {
	Slide   int
	Message string
}

func (e *TemplateError) Error() string {
	if e.Slide >= 0 {
		return fmt.Sprintf("template error on slide %d: %s", e.Slide+1, e.Message)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

// NewTemplateError creates a new template error for the given slide index.
// Pass -1 when no single slide is at fault.
func NewTemplateError(slide int, message string) error {
	return &TemplateError{Slide: slide, Message: message}
}

// IsUnsupportedFormatError checks if an error is an unsupported format error
func IsUnsupportedFormatError(err error) bool {
	_, ok := err.(*UnsupportedFormatError)
	return ok
}

// IsEmptyDataError checks if an error is an empty data error
func IsEmptyDataError(err error) bool {
	_, ok := err.(*EmptyDataError)
	return ok
}

// IsDocumentError checks if an error is a document error
func IsDocumentError(err error) bool {
	_, ok := err.(*DocumentError)
	return ok
}

// IsTemplateError checks if an error is a template error
func IsTemplateError(err error) bool {
	_, ok := err.(*TemplateError)
	return ok
}
