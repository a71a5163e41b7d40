package errors

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig    Category = "config"
	CategoryRepo      Category = "repo"
	CategoryComponent Category = "component"
	CategoryCatalog   Category = "catalog"
	CategoryRegistry  Category = "registry"
	CategoryPublish   Category = "publish"
	CategoryCLI       Category = "cli"
)

// Location represents a position inside a data file (catalog YAML, components.json).
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ZooError is a structured error with an error code, a hint and an optional
// file location.
type ZooError struct {
	// Code is a unique error identifier (e.g., "E110").
	Code string

	// Category is the error type (config, repo, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position the error refers to, if any.
	Location *Location

	// Context contains the lines surrounding Location.
	Context []string

	// Hint tells the user how to recover.
	Hint string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ZooError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ZooError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location to the error and captures the lines
// around it.
func (e *ZooError) WithLocation(file string, line, column int) *ZooError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithHint adds a recovery hint to the error.
func (e *ZooError) WithHint(h string) *ZooError {
	e.Hint = h
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ZooError) WithDetail(d string) *ZooError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ZooError) Wrap(err error) *ZooError {
	e.Wrapped = err
	if e.Detail == "" && err != nil {
		e.Detail = err.Error()
	}
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a ZooError from a registered error code.
func New(code string) *ZooError {
	template, ok := registry[code]
	if !ok {
		return &ZooError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ZooError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Hint:     template.Hint,
	}
}

// Newf creates a new ZooError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ZooError {
	return &ZooError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ZooError unless it already is one.
func FromError(err error, code string) *ZooError {
	if err == nil {
		return nil
	}
	var ze *ZooError
	if errors.As(err, &ze) {
		return ze
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is, or wraps, a ZooError with the given code.
func HasCode(err error, code string) bool {
	var ze *ZooError
	for err != nil {
		if !errors.As(err, &ze) {
			return false
		}
		if ze.Code == code {
			return true
		}
		err = ze.Wrapped
	}
	return false
}
