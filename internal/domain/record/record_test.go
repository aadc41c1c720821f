package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDraft() *Draft {
	return &Draft{
		Professional: ProfessionalCardiologist,
		DoctorName:   "Dr. Mehta",
		Hospital:     "City Care",
		Date:         "2024-03-01",
		Symptoms:     "chest pain",
		Medicines: []Medicine{
			{Name: "Aspirin", Consumption: []Slot{SlotMorning}, Duration: Duration{Count: 7, Unit: UnitDays}},
		},
		Tests: []Test{
			{TestName: "ECG", Instruction: "fasting"},
		},
	}
}

func TestValidateCleanDraft(t *testing.T) {
	assert.Empty(t, Validate(validDraft()))
}

func TestValidateSelfSkipsDoctorFields(t *testing.T) {
	d := validDraft()
	d.Professional = ProfessionalSelf
	d.DoctorName = ""
	d.Hospital = ""

	assert.Empty(t, Validate(d))
}

func TestValidateDoctorFieldsRequired(t *testing.T) {
	d := validDraft()
	d.DoctorName = ""
	d.Hospital = "  "

	errs := Validate(d)
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{"doctor_name", "hospital"}, fields)
}

func TestValidateReportsEveryViolation(t *testing.T) {
	d := &Draft{
		Professional: Professional("dentist"),
		Date:         "01/03/2024",
		Medicines:    []Medicine{{Instruction: "after meals"}},
		Tests:        []Test{{}},
	}

	errs := Validate(d)
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{
		"professional",
		"date",
		"symptoms",
		"medicines[0].name",
		"medicines[0].duration",
		"tests[0].test_name",
		"tests[0].instruction",
	}, fields)
}

func TestValidateDoesNotMutateDraft(t *testing.T) {
	d := validDraft()
	d.DoctorName = ""
	before := *d

	Validate(d)
	assert.Equal(t, before, *d)
}

func TestParseLegacyDuration(t *testing.T) {
	cases := []struct {
		in   string
		want Duration
	}{
		{"7 days", Duration{Count: 7, Unit: UnitDays}},
		{"7", Duration{Count: 7, Unit: UnitDays}},
		{"1 day", Duration{Count: 1, Unit: UnitDays}},
		{"2w", Duration{Count: 2, Unit: UnitWeeks}},
		{"3 Weeks", Duration{Count: 3, Unit: UnitWeeks}},
		{"1 month", Duration{Count: 1, Unit: UnitMonths}},
		{" 10 days ", Duration{Count: 10, Unit: UnitDays}},
	}
	for _, tc := range cases {
		got, err := ParseLegacyDuration(tc.in)
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseLegacyDurationRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "soon", "0 days", "-3 days", "7 fortnights", "days 7"} {
		_, err := ParseLegacyDuration(in)
		assert.ErrorIs(t, err, ErrInvalidDuration, in)
	}
}

func TestDurationString(t *testing.T) {
	assert.Equal(t, "1 day", Duration{Count: 1, Unit: UnitDays}.String())
	assert.Equal(t, "3 weeks", Duration{Count: 3, Unit: UnitWeeks}.String())
}

func TestNormalizeConsumption(t *testing.T) {
	got := NormalizeConsumption([]Slot{SlotNight, SlotMorning, SlotNight, Slot("noonish")})
	assert.Equal(t, []Slot{SlotMorning, SlotNight}, got)
}

func TestNormalizeConsumptionOrderInsensitive(t *testing.T) {
	a := NormalizeConsumption([]Slot{SlotEvening, SlotMorning})
	b := NormalizeConsumption([]Slot{SlotMorning, SlotEvening})
	assert.Equal(t, a, b)
}
