// Package draft owns the in-progress record a user is editing: its scalar
// fields, the repeatable medicine/test rows and the staged attachment set.
// One draft exists per owner and nothing else mutates it.
package draft

import (
	"github.com/google/uuid"

	"github.com/inficare/inficare/internal/domain/record"
)

// MedicineRow is a medicine entry with a stable synthetic row ID. Rows are
// addressed by ID rather than slice index so removing a middle row cannot
// shift the identity of the ones after it.
type MedicineRow struct {
	ID uuid.UUID `json:"row_id"`
	record.Medicine
}

type TestRow struct {
	ID uuid.UUID `json:"row_id"`
	record.Test
}

// Draft is the editable state of an unsubmitted record.
type Draft struct {
	Professional       record.Professional `json:"professional"`
	DoctorName         string              `json:"doctor_name"`
	Hospital           string              `json:"hospital"`
	Date               string              `json:"date"`
	Symptoms           string              `json:"symptoms"`
	SpecialInstruction string              `json:"special_instruction"`

	Medicines []MedicineRow `json:"medicines"`
	Tests     []TestRow     `json:"tests"`

	// Staged holds uploaded-but-unsaved documents. Cleared only by a
	// successful submit or an explicit discard.
	Staged []record.Attachment `json:"documents"`
}

// FieldPatch carries partial scalar-field updates; nil means "leave as is".
type FieldPatch struct {
	Professional       *record.Professional `json:"professional"`
	DoctorName         *string              `json:"doctor_name"`
	Hospital           *string              `json:"hospital"`
	Date               *string              `json:"date"`
	Symptoms           *string              `json:"symptoms"`
	SpecialInstruction *string              `json:"special_instruction"`
}

func (d *Draft) apply(p FieldPatch) {
	if p.Professional != nil {
		d.Professional = *p.Professional
		// Switching to a self-recorded entry hides the doctor fields; a
		// previously filled-then-hidden value must not block submission.
		if !d.Professional.RequiresDoctor() {
			d.DoctorName = ""
			d.Hospital = ""
		}
	}
	if p.DoctorName != nil {
		d.DoctorName = *p.DoctorName
	}
	if p.Hospital != nil {
		d.Hospital = *p.Hospital
	}
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.Symptoms != nil {
		d.Symptoms = *p.Symptoms
	}
	if p.SpecialInstruction != nil {
		d.SpecialInstruction = *p.SpecialInstruction
	}
}

func (d *Draft) addMedicine(m record.Medicine) MedicineRow {
	m.Consumption = record.NormalizeConsumption(m.Consumption)
	row := MedicineRow{ID: uuid.New(), Medicine: m}
	d.Medicines = append(d.Medicines, row)
	return row
}

// removeMedicineByID is a no-op for an unknown row ID. Remaining rows keep
// their relative order.
func (d *Draft) removeMedicineByID(rowID uuid.UUID) {
	for i, row := range d.Medicines {
		if row.ID == rowID {
			d.removeMedicineAt(i)
			return
		}
	}
}

// removeMedicineAt is a no-op for an out-of-range index.
func (d *Draft) removeMedicineAt(i int) {
	if i < 0 || i >= len(d.Medicines) {
		return
	}
	d.Medicines = append(d.Medicines[:i], d.Medicines[i+1:]...)
}

func (d *Draft) addTest(t record.Test) TestRow {
	row := TestRow{ID: uuid.New(), Test: t}
	d.Tests = append(d.Tests, row)
	return row
}

func (d *Draft) removeTestByID(rowID uuid.UUID) {
	for i, row := range d.Tests {
		if row.ID == rowID {
			d.removeTestAt(i)
			return
		}
	}
}

func (d *Draft) removeTestAt(i int) {
	if i < 0 || i >= len(d.Tests) {
		return
	}
	d.Tests = append(d.Tests[:i], d.Tests[i+1:]...)
}

// toRecordDraft strips row IDs for validation and persistence.
func (d *Draft) toRecordDraft() *record.Draft {
	rd := &record.Draft{
		Professional:       d.Professional,
		DoctorName:         d.DoctorName,
		Hospital:           d.Hospital,
		Date:               d.Date,
		Symptoms:           d.Symptoms,
		SpecialInstruction: d.SpecialInstruction,
		Medicines:          make([]record.Medicine, len(d.Medicines)),
		Tests:              make([]record.Test, len(d.Tests)),
	}
	for i, row := range d.Medicines {
		rd.Medicines[i] = row.Medicine
	}
	for i, row := range d.Tests {
		rd.Tests[i] = row.Test
	}
	return rd
}

func (d *Draft) clone() *Draft {
	cp := *d
	cp.Medicines = append([]MedicineRow(nil), d.Medicines...)
	cp.Tests = append([]TestRow(nil), d.Tests...)
	cp.Staged = append([]record.Attachment(nil), d.Staged...)
	return &cp
}
