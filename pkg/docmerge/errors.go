package docmerge

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTokenNotFound is matched by every TokenNotFoundError.
	ErrTokenNotFound = errors.New("token not found")
	// ErrBatchLength is returned when batch search and replace slices differ in length.
	ErrBatchLength = errors.New("search and replace batches differ in length")
	// ErrClosed is returned by operations on a closed template.
	ErrClosed = errors.New("template is closed")
	// ErrNoRow is returned when a placeholder passed to CloneRow is not inside a table row.
	ErrNoRow = errors.New("placeholder is not inside a table row")
)

// DocumentError represents an error during package operations
// (setup, extraction, persistence).
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

// XMLError reports a part whose XML could not be parsed.
type XMLError struct {
	Part  string
	Cause error
}

func (e *XMLError) Error() string {
	return fmt.Sprintf("malformed XML in '%s': %v", e.Part, e.Cause)
}

func (e *XMLError) Unwrap() error {
	return e.Cause
}

// NewXMLError creates a new XML error for the named part
func NewXMLError(part string, cause error) error {
	return &XMLError{Part: part, Cause: cause}
}

// TokenNotFoundError reports a placeholder that does not occur in the part searched.
type TokenNotFoundError struct {
	Token string
	Part  string
}

func (e *TokenNotFoundError) Error() string {
	if e.Part != "" {
		return fmt.Sprintf("token %s not found in '%s'", e.Token, e.Part)
	}
	return fmt.Sprintf("token %s not found", e.Token)
}

// Is makes errors.Is(err, ErrTokenNotFound) succeed.
func (e *TokenNotFoundError) Is(target error) bool {
	return target == ErrTokenNotFound
}

// Transform stages reported by TransformError.
const (
	StageImport     = "import"
	StageParameters = "parameters"
	StageTransform  = "transform"
)

// TransformError reports a failure while converting rich content (HTML or
// markdown) into native document markup.
type TransformError struct {
	Stage string
	Cause error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform failed at %s stage: %v", e.Stage, e.Cause)
}

func (e *TransformError) Unwrap() error {
	return e.Cause
}

// NewTransformError creates a new transform error
func NewTransformError(stage string, cause error) error {
	return &TransformError{Stage: stage, Cause: cause}
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.errors
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// ContextError adds context to an existing error
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	var contextParts []string
	for k, v := range e.Context {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
	}

	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

// IsDocumentError checks if an error is a document error
func IsDocumentError(err error) bool {
	var target *DocumentError
	return errors.As(err, &target)
}

// IsXMLError checks if an error is an XML error
func IsXMLError(err error) bool {
	var target *XMLError
	return errors.As(err, &target)
}

// IsTransformError checks if an error is a transform error
func IsTransformError(err error) bool {
	var target *TransformError
	return errors.As(err, &target)
}

// IsTokenNotFound checks if an error reports a missing placeholder
func IsTokenNotFound(err error) bool {
	return errors.Is(err, ErrTokenNotFound)
}
