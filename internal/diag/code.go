package diag

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// ErrMalformedCode is returned when a diagnostic code lacks the
// "<RuleId>-<OccurrenceId>" shape.
var ErrMalformedCode = errors.New("malformed diagnostic code")

// CodeSeparator splits the rule id from the occurrence id.
const CodeSeparator = "-"

// Code is the wire form of a diagnostic identifier: "<RuleId>-<OccurrenceId>".
type Code string

// MakeCode joins a rule id and an occurrence id.
func MakeCode(ruleID string, occurrence int) Code {
	return Code(ruleID + CodeSeparator + strconv.Itoa(occurrence))
}

// Split returns the rule id and numeric occurrence id.
func (c Code) Split() (ruleID string, occurrence int, err error) {
	raw := string(c)
	idx := strings.LastIndex(raw, CodeSeparator)
	if idx <= 0 || idx == len(raw)-1 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedCode, raw)
	}
	n, err := strconv.ParseUint(raw[idx+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %w", ErrMalformedCode, raw, err)
	}
	occurrence, err = safecast.Conv[int](n)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %w", ErrMalformedCode, raw, err)
	}
	return raw[:idx], occurrence, nil
}

// RuleID returns the prefix before the separator.
func (c Code) RuleID() (string, error) {
	ruleID, _, err := c.Split()
	return ruleID, err
}

// Occurrence returns the numeric suffix after the separator.
func (c Code) Occurrence() (int, error) {
	_, occurrence, err := c.Split()
	return occurrence, err
}

func (c Code) String() string {
	return string(c)
}
