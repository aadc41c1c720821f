// Package history presents an owner's persisted records: newest visit
// first, optionally narrowed by a free-text query. It never mutates
// records; there is no update or delete in this design.
package history

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/inficare/inficare/internal/domain/record"
)

type View struct {
	repo record.Repository
}

func NewView(repo record.Repository) *View {
	return &View{repo: repo}
}

// Load fetches all of the owner's records sorted by visit date descending.
// The sort is stable, so records sharing a date keep their insertion
// order. No records is an empty slice, not an error.
func (v *View) Load(ctx context.Context, ownerID uuid.UUID) ([]*record.Record, error) {
	records, err := v.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	return records, nil
}

// Filter keeps records where any scalar field contains the query as a
// case-insensitive substring. The empty query matches everything. Filter
// is pure and idempotent.
func Filter(records []*record.Record, query string) []*record.Record {
	if query == "" {
		return records
	}
	q := strings.ToLower(query)

	out := make([]*record.Record, 0, len(records))
	for _, r := range records {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r *record.Record, q string) bool {
	fields := []string{
		string(r.Professional),
		r.DoctorName,
		r.Hospital,
		r.DateString(),
		r.Symptoms,
		r.SpecialInstruction,
	}
	for _, m := range r.Medicines {
		fields = append(fields, m.Name, m.Instruction, m.Duration.String())
		for _, s := range m.Consumption {
			fields = append(fields, string(s))
		}
	}
	for _, t := range r.Tests {
		fields = append(fields, t.TestName, t.Instruction)
	}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
