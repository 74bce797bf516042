// Package ordercode keeps a local, optimistic copy of the backend's order-code
// counter so a pending order can be labelled before it is submitted.
//
// The backend is the only authoritative issuer of order codes. The Sequencer
// is a cache: two sessions seeded from the same backend value will hand out
// the same code.
package ordercode

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultFallback is used when the current code is unknown or malformed.
const DefaultFallback = "ORD-2025-0001"

const serialWidth = 4

// Code is a parsed PREFIX-YEAR-SERIAL order code.
type Code struct {
	Prefix string
	Year   string
	Serial int
}

// String formats the code with the serial padded to four digits.
func (c Code) String() string {
	return fmt.Sprintf("%s-%s-%0*d", c.Prefix, c.Year, serialWidth, c.Serial)
}

// Succ returns the code with the serial incremented by one.
func (c Code) Succ() Code {
	c.Serial++
	return c
}

// ParseError describes why a code string could not be parsed.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed order code %q: %s", e.Input, e.Reason)
}

// Parse splits s on '-' into exactly three segments with an integer serial.
func Parse(s string) (Code, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Code{}, &ParseError{Input: s, Reason: fmt.Sprintf("want 3 segments, got %d", len(parts))}
	}
	serial, err := strconv.Atoi(parts[2])
	if err != nil {
		return Code{}, &ParseError{Input: s, Reason: fmt.Sprintf("serial %q is not an integer", parts[2])}
	}
	return Code{Prefix: parts[0], Year: parts[1], Serial: serial}, nil
}
