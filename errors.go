// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"fmt"
	"log"
	"math"
)

// FormatError records the position at which a malformed input was detected.
// Line is zero when the error is not attached to a specific line (for
// instance with binary files).
type FormatError struct {
	File string
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	switch {
	case e.File == "" && e.Line == 0:
		return e.Err.Error()
	case e.Line == 0:
		return fmt.Sprintf("%s: %s", e.File, e.Err)
	default:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Err)
	}
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// formatf returns a FormatError wrapping ErrFormat.
func formatf(file string, line int, format string, a ...interface{}) error {
	return &FormatError{
		File: file,
		Line: line,
		Err:  fmt.Errorf(format+": %w", append(a, ErrFormat)...),
	}
}

// archerror returns an error wrapping ErrArchitecture. Those errors abort the
// current query.
func archerror(format string, a ...interface{}) error {
	err := fmt.Errorf(format+": %w", append(a, ErrArchitecture)...)
	if _DEBUG {
		log.Println(err)
	}
	return err
}

// checkProbability rejects values that cannot be surfaced as a probability.
func checkProbability(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return fmt.Errorf("%w: %v", ErrNumeric, p)
	}
	return nil
}
