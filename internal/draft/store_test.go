package draft

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inficare/inficare/internal/domain/record"
)

type blobStoreMock struct {
	PutFunc    func(ctx context.Context, path string, content io.Reader) (string, error)
	DeleteFunc func(ctx context.Context, path string) error
}

func (m *blobStoreMock) Put(ctx context.Context, path string, content io.Reader) (string, error) {
	return m.PutFunc(ctx, path, content)
}

func (m *blobStoreMock) Delete(ctx context.Context, path string) error {
	return m.DeleteFunc(ctx, path)
}

type recordRepoMock struct {
	CreateFunc      func(ctx context.Context, r *record.Record) error
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*record.Record, error)
	ListByOwnerFunc func(ctx context.Context, ownerID uuid.UUID) ([]*record.Record, error)
}

func (m *recordRepoMock) Create(ctx context.Context, r *record.Record) error {
	return m.CreateFunc(ctx, r)
}

func (m *recordRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *recordRepoMock) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*record.Record, error) {
	return m.ListByOwnerFunc(ctx, ownerID)
}

func okBlobs() *blobStoreMock {
	return &blobStoreMock{
		PutFunc: func(_ context.Context, path string, _ io.Reader) (string, error) {
			return "https://blobs.local/" + path, nil
		},
		DeleteFunc: func(context.Context, string) error { return nil },
	}
}

func newTestStore(blobs BlobStore, repo record.Repository) *Store {
	s := NewStore(blobs, repo, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func fillValid(s *Store, ownerID uuid.UUID) {
	prof := record.ProfessionalGeneral
	doctor := "Dr. Rao"
	hospital := "General Hospital"
	date := "2024-02-10"
	symptoms := "fever"
	s.SetFields(ownerID, FieldPatch{
		Professional: &prof,
		DoctorName:   &doctor,
		Hospital:     &hospital,
		Date:         &date,
		Symptoms:     &symptoms,
	})
}

func TestRemoveMiddleMedicineKeepsOtherRows(t *testing.T) {
	s := newTestStore(okBlobs(), &recordRepoMock{})
	ownerID := uuid.New()

	first := s.AddMedicineRow(ownerID, record.Medicine{Name: "A"})
	second := s.AddMedicineRow(ownerID, record.Medicine{Name: "B"})
	third := s.AddMedicineRow(ownerID, record.Medicine{Name: "C"})

	s.RemoveMedicineRow(ownerID, second.ID)

	d := s.Snapshot(ownerID)
	require.Len(t, d.Medicines, 2)
	assert.Equal(t, first.ID, d.Medicines[0].ID)
	assert.Equal(t, "A", d.Medicines[0].Name)
	assert.Equal(t, third.ID, d.Medicines[1].ID)
	assert.Equal(t, "C", d.Medicines[1].Name)
}

func TestRemoveUnknownRowIsNoOp(t *testing.T) {
	s := newTestStore(okBlobs(), &recordRepoMock{})
	ownerID := uuid.New()

	s.AddMedicineRow(ownerID, record.Medicine{Name: "A"})
	s.AddTestRow(ownerID, record.Test{TestName: "CBC", Instruction: "none"})

	s.RemoveMedicineRow(ownerID, uuid.New())
	s.RemoveMedicineRowAt(ownerID, 5)
	s.RemoveMedicineRowAt(ownerID, -1)
	s.RemoveTestRow(ownerID, uuid.New())
	s.RemoveTestRowAt(ownerID, 99)

	d := s.Snapshot(ownerID)
	assert.Len(t, d.Medicines, 1)
	assert.Len(t, d.Tests, 1)
}

func TestAddMedicineNormalizesConsumption(t *testing.T) {
	s := newTestStore(okBlobs(), &recordRepoMock{})

	row := s.AddMedicineRow(uuid.New(), record.Medicine{
		Name:        "A",
		Consumption: []record.Slot{record.SlotNight, record.SlotMorning, record.SlotMorning},
	})

	assert.Equal(t, []record.Slot{record.SlotMorning, record.SlotNight}, row.Consumption)
}

func TestSwitchingToSelfClearsDoctorFields(t *testing.T) {
	s := newTestStore(okBlobs(), &recordRepoMock{})
	ownerID := uuid.New()
	fillValid(s, ownerID)

	self := record.ProfessionalSelf
	d := s.SetFields(ownerID, FieldPatch{Professional: &self})

	assert.Empty(t, d.DoctorName)
	assert.Empty(t, d.Hospital)
}

func TestSubmitPersistsAndResets(t *testing.T) {
	var created *record.Record
	repo := &recordRepoMock{
		CreateFunc: func(_ context.Context, r *record.Record) error {
			created = r
			return nil
		},
	}
	s := newTestStore(okBlobs(), repo)
	ownerID := uuid.New()
	fillValid(s, ownerID)
	s.AddMedicineRow(ownerID, record.Medicine{Name: "A", Duration: record.Duration{Count: 5, Unit: record.UnitDays}})

	_, err := s.StageAttachment(context.Background(), ownerID, "scan.pdf", strings.NewReader("data"))
	require.NoError(t, err)

	rec, err := s.Submit(context.Background(), ownerID)
	require.NoError(t, err)
	require.Same(t, created, rec)

	assert.Equal(t, ownerID, rec.OwnerID)
	assert.Equal(t, "2024-02-10", rec.DateString())
	assert.Equal(t, s.now(), rec.CreatedAt)
	require.Len(t, rec.Documents, 1)
	assert.Equal(t, "1709294400000_scan.pdf", rec.Documents[0].Name)

	d := s.Snapshot(ownerID)
	assert.Equal(t, Draft{}, *d)
}

func TestSubmitValidationFailureKeepsDraft(t *testing.T) {
	repo := &recordRepoMock{
		CreateFunc: func(context.Context, *record.Record) error {
			t.Fatal("must not persist an invalid draft")
			return nil
		},
	}
	s := newTestStore(okBlobs(), repo)
	ownerID := uuid.New()
	fillValid(s, ownerID)

	empty := ""
	s.SetFields(ownerID, FieldPatch{Symptoms: &empty})
	_, err := s.StageAttachment(context.Background(), ownerID, "scan.pdf", strings.NewReader("data"))
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), ownerID)
	var verrs record.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "symptoms", verrs[0].Field)

	d := s.Snapshot(ownerID)
	assert.Equal(t, "2024-02-10", d.Date)
	assert.Len(t, d.Staged, 1)
}

func TestSubmitRepositoryFailureKeepsDraft(t *testing.T) {
	repo := &recordRepoMock{
		CreateFunc: func(context.Context, *record.Record) error {
			return errors.New("connection reset")
		},
	}
	s := newTestStore(okBlobs(), repo)
	ownerID := uuid.New()
	fillValid(s, ownerID)

	_, err := s.Submit(context.Background(), ownerID)
	require.Error(t, err)

	d := s.Snapshot(ownerID)
	assert.Equal(t, "2024-02-10", d.Date)
}

func TestStageAttachmentUploadFailureLeavesStagedSet(t *testing.T) {
	blobs := okBlobs()
	blobs.PutFunc = func(context.Context, string, io.Reader) (string, error) {
		return "", errors.New("bucket unavailable")
	}
	s := newTestStore(blobs, &recordRepoMock{})
	ownerID := uuid.New()

	_, err := s.StageAttachment(context.Background(), ownerID, "scan.pdf", strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Empty(t, s.Snapshot(ownerID).Staged)
}

func TestRemoveAttachmentOptimistic(t *testing.T) {
	blobs := okBlobs()
	blobs.DeleteFunc = func(context.Context, string) error {
		return errors.New("bucket unavailable")
	}
	s := newTestStore(blobs, &recordRepoMock{})
	ownerID := uuid.New()

	att, err := s.StageAttachment(context.Background(), ownerID, "scan.pdf", strings.NewReader("data"))
	require.NoError(t, err)

	err = s.RemoveAttachment(context.Background(), ownerID, att.Name)
	assert.ErrorIs(t, err, ErrDeleteFailed)
	assert.Empty(t, s.Snapshot(ownerID).Staged)
}

func TestRemoveAttachmentUnknownNameIsNoOp(t *testing.T) {
	blobs := okBlobs()
	blobs.DeleteFunc = func(context.Context, string) error {
		t.Fatal("must not call the blob store for an unknown name")
		return nil
	}
	s := newTestStore(blobs, &recordRepoMock{})

	assert.NoError(t, s.RemoveAttachment(context.Background(), uuid.New(), "ghost.pdf"))
}

func TestDiscardResetsDraft(t *testing.T) {
	s := newTestStore(okBlobs(), &recordRepoMock{})
	ownerID := uuid.New()
	fillValid(s, ownerID)
	s.AddMedicineRow(ownerID, record.Medicine{Name: "A"})

	s.Discard(ownerID)

	d := s.Snapshot(ownerID)
	assert.Empty(t, d.Date)
	assert.Empty(t, d.Medicines)
	assert.Empty(t, d.Staged)
}

func TestDraftsAreIsolatedPerOwner(t *testing.T) {
	s := newTestStore(okBlobs(), &recordRepoMock{})
	alice := uuid.New()
	bob := uuid.New()

	s.AddMedicineRow(alice, record.Medicine{Name: "A"})

	assert.Len(t, s.Snapshot(alice).Medicines, 1)
	assert.Empty(t, s.Snapshot(bob).Medicines)
}
