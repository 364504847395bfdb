package param

import (
	"errors"
	"fmt"
	"strings"
)

// NotSupportedError is returned when an operation has no meaning for the
// parameter's variant, such as extracting a value from a token sequence.
// It signals that calling code skipped the Kind/Type check.
type NotSupportedError struct {
	Op        string
	Parameter string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("NOT_SUPPORTED: %s on token parameter %s (symbolic tokens have no concrete value; branch on Kind first)", e.Op, e.Parameter)
}

// IsNotSupported reports whether err is a NotSupportedError.
// Uses errors.As to handle wrapped errors.
func IsNotSupported(err error) bool {
	var ns *NotSupportedError
	return errors.As(err, &ns)
}

// ParseError reports literal text that could not be turned into a Parameter.
type ParseError struct {
	Text    string
	Offset  int // byte offset into Text
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at offset %d: %s", e.Text, e.Offset, e.Message)
}

// MismatchError is returned by MatchSequence when actual results do not
// line up with the expected parameters.
type MismatchError struct {
	Index    int // -1 for a length mismatch
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	var buf strings.Builder
	if e.Index < 0 {
		fmt.Fprintf(&buf, "Result count mismatch\n")
	} else {
		fmt.Fprintf(&buf, "Result [%d] mismatch\n", e.Index)
	}
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}
