package record

import (
	"errors"
	"strings"
)

var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrRecordImmutable = errors.New("records are append-only and cannot be modified")
	ErrInvalidDuration = errors.New("duration must be a positive count of days, weeks or months")
)

// FieldError reports a single validation violation: the JSON path of the
// offending field and a human-readable reason.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidationErrors collects every violation of a draft at once, so a
// caller can correct all fields in one pass.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
