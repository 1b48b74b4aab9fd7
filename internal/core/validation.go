package core

// validation.go provides the row reader shared by the entity builders.
//
// A rowReader reads cells through the section's Layout and accumulates
// field errors. Checks happen at two levels:
//  1. Required: an empty required cell records VAL003 and stops further
//     checks for that field only
//  2. Value: the cell is passed to its Normalize* function; a rejection
//     records the FieldError and leaves the field unset
//
// Sibling fields on the same row always continue to validate.

import "fmt"

type rowReader struct {
	sec  *Section
	row  Row
	errs []ValidationError
}

func newRowReader(sec *Section, row Row) *rowReader {
	return &rowReader{sec: sec, row: row}
}

// value returns the cleaned cell of f.
func (r *rowReader) value(f Field) string {
	return r.sec.Layout.Get(r.row, f)
}

// required returns the cell of f and whether it is non-empty, recording
// VAL003 when a required column is empty.
func (r *rowReader) required(f Field) (string, bool) {
	v := r.value(f)
	if v == "" {
		if r.sec.Layout.Required(f) {
			r.fail(f, "", CodeRequired, f.Label()+"は必須です")
		}
		return "", false
	}
	return v, true
}

// fail records a field error on the current row.
func (r *rowReader) fail(f Field, value, code, message string) {
	r.errs = append(r.errs, ValidationError{
		Section:  r.sec.Name,
		Row:      r.row.Number,
		Field:    f.Label(),
		Message:  message,
		Value:    value,
		Code:     code,
		Severity: SeverityError,
	})
}

// reject records a normalizer rejection.
func (r *rowReader) reject(f Field, value string, fe *FieldError) {
	r.fail(f, value, fe.Code, fe.Message)
}

// sectionError builds a row-0 finding for a section or sheet.
func sectionError(section, message string) ValidationError {
	return ValidationError{
		Section:  section,
		Message:  message,
		Code:     CodeSectionEmpty,
		Severity: SeverityError,
	}
}

// documentError builds a row-0 business-rule finding.
func documentError(code, message string) ValidationError {
	return ValidationError{
		Section:  ruleSection,
		Message:  message,
		Code:     code,
		Severity: SeverityError,
	}
}

// checkOrder records VAL008 on the end field when end precedes start.
// Both values are ISO dates, so string order is date order.
func (r *rowReader) checkOrder(startField, endField Field, start, end string) bool {
	if start == "" || end == "" || start <= end {
		return true
	}
	r.fail(endField, end, CodeOrder, fmt.Sprintf("%sは%s以降にしてください", endField.Label(), startField.Label()))
	return false
}
