// Package flow implements the reception dialog state machine: per-step input
// validation, flow definitions, host resolution, and the engine that advances
// a session one turn at a time.
package flow

import (
	"regexp"
	"strconv"
	"strings"
)

// Validation patterns. The CNIC is the national identity number in its fixed
// 5-7-1 digit grouping; phone numbers use the local 03XXXXXXXXX format.
var (
	nameRegex   = regexp.MustCompile(`^[A-Za-z ]+$`)
	cnicRegex   = regexp.MustCompile(`^\d{5}-\d{7}-\d$`)
	phoneRegex  = regexp.MustCompile(`^03\d{9}$`)
	emailRegex  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitsRegex = regexp.MustCompile(`^\d+$`)
)

// Group size bounds for a single visit.
const (
	MinGroupSize = 1
	MaxGroupSize = 10
)

// Fixed validation messages. The visitor only ever sees these exact strings on
// invalid input; the generation layer is never consulted for error text.
const (
	MsgInvalidName      = "Please enter a valid name using only letters and spaces."
	MsgInvalidCNIC      = "Please provide your CNIC in the format: 12345-1234567-1"
	MsgInvalidPhone     = "Please enter your phone number in the format: 03001234567"
	MsgInvalidEmail     = "Please provide a valid email address"
	MsgInvalidGroupSize = "Please enter a valid group size between 1 and 10"
	MsgInvalidSupplier  = "Please select a valid supplier from the list."
	MsgEmptyField       = "This field is required. Please provide the information."
)

// ValidName reports whether s is a plausible person name: letters and spaces
// only, trimmed length between 2 and 50.
func ValidName(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s) > 50 {
		return false
	}
	return nameRegex.MatchString(s)
}

// ValidCNIC reports whether s matches the exact DDDDD-DDDDDDD-D format.
func ValidCNIC(s string) bool {
	return cnicRegex.MatchString(strings.TrimSpace(s))
}

// ValidPhone reports whether s is an 11-digit local number starting with 03.
func ValidPhone(s string) bool {
	return phoneRegex.MatchString(strings.TrimSpace(s))
}

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// ValidGroupSize reports whether s is a plain digit string within group
// bounds. Signed forms like "+3" are rejected.
func ValidGroupSize(s string) bool {
	s = strings.TrimSpace(s)
	if !digitsRegex.MatchString(s) {
		return false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= MinGroupSize && n <= MaxGroupSize
}

// ValidSupplier reports whether s selects a supplier the same way the vendor
// flow accepts one: by list number or by name, case-insensitively. The "Other"
// escape value counts.
func ValidSupplier(s string) bool {
	_, ok := matchSupplier(s)
	return ok
}

// ValidRequired reports whether s carries any non-whitespace content. Bound to
// free-text steps that have no stricter format.
func ValidRequired(s string) bool {
	return strings.TrimSpace(s) != ""
}
