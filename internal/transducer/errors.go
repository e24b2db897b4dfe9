package transducer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceUnavailable is returned when the input file cannot be read
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSinkUnavailable is returned when the output cannot be written
	ErrSinkUnavailable = errors.New("sink unavailable")
)

// MalformedFanCommandError is returned for a fan set command whose speed cannot be parsed.
// Every later restore depends on this value, so the whole transform is aborted.
type MalformedFanCommandError struct {
	// LineNumber is 1-based
	LineNumber int
	Line       string
	Err        error
}

func (e *MalformedFanCommandError) Error() string {
	return fmt.Sprintf("malformed fan command in line %d (%q): %v", e.LineNumber, strings.TrimSpace(e.Line), e.Err)
}

func (e *MalformedFanCommandError) Unwrap() error {
	return e.Err
}

// IsMalformedFanCommand reports whether err (or any error it wraps) is a MalformedFanCommandError
func IsMalformedFanCommand(err error) bool {
	var target *MalformedFanCommandError
	return errors.As(err, &target)
}
