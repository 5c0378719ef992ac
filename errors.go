package symdiff

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel classes. Use errors.Is to branch on them.
var (
	// ErrMalformedInput classifies every *ParseError.
	ErrMalformedInput = errors.New("symdiff: malformed input")
	// ErrUnsupportedExpression classifies every *CalculationError.
	ErrUnsupportedExpression = errors.New("symdiff: unsupported expression")
)

// ParseError reports malformed input text.
type ParseError struct {
	Pos int // rune offset into the input, -1 when unknown
	Msg string
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return "parse error: " + e.Msg
	}
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
}

func (e *ParseError) Is(target error) bool { return target == ErrMalformedInput }

func parseErrorf(pos int, format string, args ...interface{}) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// CalculationError reports a node no differentiation rule can handle.
type CalculationError struct {
	Node string // serialized node that failed
	Msg  string
}

func (e *CalculationError) Error() string {
	if e.Node == "" {
		return "calculation error: " + e.Msg
	}
	return fmt.Sprintf("calculation error on %s: %s", e.Node, e.Msg)
}

func (e *CalculationError) Is(target error) bool { return target == ErrUnsupportedExpression }

// IsParseError reports whether err (or anything it wraps) is a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsCalculationError reports whether err (or anything it wraps) is a *CalculationError.
func IsCalculationError(err error) bool {
	var ce *CalculationError
	return errors.As(err, &ce)
}
