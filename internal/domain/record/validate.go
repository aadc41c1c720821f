package record

import (
	"fmt"
	"strings"
	"time"
)

// Draft is the unvalidated input to a record submission. The date travels
// as a string because it comes straight from the form layer.
type Draft struct {
	Professional       Professional
	DoctorName         string
	Hospital           string
	Date               string
	Symptoms           string
	SpecialInstruction string
	Medicines          []Medicine
	Tests              []Test
}

// Validate checks a draft against the record schema and returns every
// violation, one FieldError per field. It is a pure function: the draft is
// never mutated and no violation short-circuits the rest.
//
// The doctor/hospital invariant: both are required together exactly when
// the professional is not "self".
func Validate(d *Draft) ValidationErrors {
	var errs ValidationErrors

	if !d.Professional.IsValid() {
		errs = append(errs, FieldError{Field: "professional", Reason: "must be one of cardiologist, neurologist, dermatologist, general, self"})
	} else if d.Professional.RequiresDoctor() {
		if strings.TrimSpace(d.DoctorName) == "" {
			errs = append(errs, FieldError{Field: "doctor_name", Reason: "required unless professional is self"})
		}
		if strings.TrimSpace(d.Hospital) == "" {
			errs = append(errs, FieldError{Field: "hospital", Reason: "required unless professional is self"})
		}
	}

	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		errs = append(errs, FieldError{Field: "date", Reason: "must be a calendar date in YYYY-MM-DD form"})
	}

	if strings.TrimSpace(d.Symptoms) == "" {
		errs = append(errs, FieldError{Field: "symptoms", Reason: "required"})
	}

	for i, m := range d.Medicines {
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("medicines[%d].name", i), Reason: "required"})
		}
		if m.Duration.IsZero() {
			errs = append(errs, FieldError{Field: fmt.Sprintf("medicines[%d].duration", i), Reason: "required"})
		}
	}

	for i, t := range d.Tests {
		if strings.TrimSpace(t.TestName) == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("tests[%d].test_name", i), Reason: "required"})
		}
		if strings.TrimSpace(t.Instruction) == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("tests[%d].instruction", i), Reason: "required"})
		}
	}

	return errs
}
