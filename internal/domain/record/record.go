package record

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Professional string

const (
	ProfessionalCardiologist  Professional = "cardiologist"
	ProfessionalNeurologist   Professional = "neurologist"
	ProfessionalDermatologist Professional = "dermatologist"
	ProfessionalGeneral       Professional = "general"
	ProfessionalSelf          Professional = "self"
)

func (p Professional) IsValid() bool {
	switch p {
	case ProfessionalCardiologist, ProfessionalNeurologist,
		ProfessionalDermatologist, ProfessionalGeneral, ProfessionalSelf:
		return true
	}
	return false
}

// RequiresDoctor reports whether doctor name and hospital are mandatory.
// Self-recorded entries carry neither.
func (p Professional) RequiresDoctor() bool {
	return p != ProfessionalSelf
}

// Slot is one consumption time of day. The four-slot variant is canonical;
// records written by the older three-slot form simply never contain
// "afternoon".
type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotAfternoon Slot = "afternoon"
	SlotEvening   Slot = "evening"
	SlotNight     Slot = "night"
)

var slotOrder = []Slot{SlotMorning, SlotAfternoon, SlotEvening, SlotNight}

func (s Slot) IsValid() bool {
	switch s {
	case SlotMorning, SlotAfternoon, SlotEvening, SlotNight:
		return true
	}
	return false
}

// NormalizeConsumption drops unknown and duplicate slots and returns the
// remainder in canonical day order. Input order is irrelevant; consumption
// is a set.
func NormalizeConsumption(slots []Slot) []Slot {
	seen := make(map[Slot]bool, len(slots))
	for _, s := range slots {
		if s.IsValid() {
			seen[s] = true
		}
	}
	out := make([]Slot, 0, len(seen))
	for _, s := range slotOrder {
		if seen[s] {
			out = append(out, s)
		}
	}
	return out
}

type DurationUnit string

const (
	UnitDays   DurationUnit = "days"
	UnitWeeks  DurationUnit = "weeks"
	UnitMonths DurationUnit = "months"
)

// Duration is the canonical treatment duration. Legacy records stored
// free text ("7 days") or a bare day count; ParseLegacyDuration maps both
// onto this form.
type Duration struct {
	Count int          `json:"count"`
	Unit  DurationUnit `json:"unit"`
}

func (d Duration) IsZero() bool {
	return d.Count == 0
}

func (d Duration) String() string {
	unit := string(d.Unit)
	if d.Count == 1 {
		unit = strings.TrimSuffix(unit, "s")
	}
	return strconv.Itoa(d.Count) + " " + unit
}

var legacyDurationRe = regexp.MustCompile(`^(\d+)\s*([A-Za-z]*)$`)

// ParseLegacyDuration normalizes a free-text duration from the old form
// variants. A bare number means days. Returns ErrInvalidDuration for
// anything it cannot interpret.
func ParseLegacyDuration(s string) (Duration, error) {
	m := legacyDurationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Duration{}, ErrInvalidDuration
	}

	count, err := strconv.Atoi(m[1])
	if err != nil || count <= 0 {
		return Duration{}, ErrInvalidDuration
	}

	switch strings.ToLower(m[2]) {
	case "", "d", "day", "days":
		return Duration{Count: count, Unit: UnitDays}, nil
	case "w", "week", "weeks":
		return Duration{Count: count, Unit: UnitWeeks}, nil
	case "m", "month", "months":
		return Duration{Count: count, Unit: UnitMonths}, nil
	}
	return Duration{}, ErrInvalidDuration
}

type Medicine struct {
	Name        string   `json:"name"`
	Consumption []Slot   `json:"consumption"`
	Duration    Duration `json:"duration"`
	Instruction string   `json:"instruction,omitempty"`
}

type Test struct {
	TestName    string `json:"test_name"`
	Instruction string `json:"instruction"`
}

// Attachment is an uploaded document reference. Name is unique within a
// record (timestamp-prefixed at upload time); URL is opaque to the core.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DateLayout is the calendar-date wire format for visit dates.
const DateLayout = "2006-01-02"

// Record is one persisted prescription entry. Records are append-only:
// once created they are never updated or deleted.
type Record struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	OwnerID uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`

	Professional       Professional `gorm:"column:professional;type:varchar(30);not null;index" json:"professional"`
	DoctorName         string       `gorm:"column:doctor_name;type:varchar(255)" json:"doctor_name,omitempty"`
	Hospital           string       `gorm:"column:hospital;type:varchar(255)" json:"hospital,omitempty"`
	Date               time.Time    `gorm:"column:visit_date;type:date;not null;index" json:"date"`
	Symptoms           string       `gorm:"column:symptoms;type:text;not null" json:"symptoms"`
	SpecialInstruction string       `gorm:"column:special_instruction;type:text" json:"special_instruction,omitempty"`

	Medicines []Medicine   `gorm:"column:medicines;serializer:json" json:"medicines"`
	Tests     []Test       `gorm:"column:tests;serializer:json" json:"tests"`
	Documents []Attachment `gorm:"column:documents;serializer:json" json:"documents"`
}

func (Record) TableName() string {
	return "clinical.records"
}

// DateString renders the visit date in the wire format used by the forms.
func (r *Record) DateString() string {
	return r.Date.Format(DateLayout)
}
