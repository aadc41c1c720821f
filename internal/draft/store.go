package draft

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inficare/inficare/internal/domain/record"
)

var (
	// ErrUploadFailed means the blob store rejected an upload; the staged
	// set and draft are untouched and editing may continue.
	ErrUploadFailed = errors.New("attachment upload failed")

	// ErrDeleteFailed means the blob store could not confirm a deletion.
	// The attachment is removed from the staged set regardless; see the
	// orphaned-blob note in DESIGN.md.
	ErrDeleteFailed = errors.New("attachment delete failed")
)

// BlobStore is the external object-storage boundary. Path uniqueness is
// the caller's responsibility.
type BlobStore interface {
	Put(ctx context.Context, path string, content io.Reader) (url string, err error)
	Delete(ctx context.Context, path string) error
}

const blobPrefix = "documents/"

// Store holds one draft per owner and serializes all mutations to it, so
// rapid row operations land in the order they were issued.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*ownerDraft

	blobs   BlobStore
	records record.Repository
	log     *zap.Logger
	now     func() time.Time
}

type ownerDraft struct {
	mu    sync.Mutex
	draft Draft
}

func NewStore(blobs BlobStore, records record.Repository, log *zap.Logger) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*ownerDraft),
		blobs:    blobs,
		records:  records,
		log:      log,
		now:      time.Now,
	}
}

func (s *Store) session(ownerID uuid.UUID) *ownerDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	od, ok := s.sessions[ownerID]
	if !ok {
		od = &ownerDraft{}
		s.sessions[ownerID] = od
	}
	return od
}

// Snapshot returns a copy of the owner's current draft; a fresh empty
// draft if none exists yet.
func (s *Store) Snapshot(ownerID uuid.UUID) *Draft {
	od := s.session(ownerID)
	od.mu.Lock()
	defer od.mu.Unlock()
	return od.draft.clone()
}

func (s *Store) SetFields(ownerID uuid.UUID, patch FieldPatch) *Draft {
	od := s.session(ownerID)
	od.mu.Lock()
	defer od.mu.Unlock()
	od.draft.apply(patch)
	return od.draft.clone()
}

func (s *Store) AddMedicineRow(ownerID uuid.UUID, m record.Medicine) MedicineRow {
	od := s.session(ownerID)
	od.mu.Lock()
	defer od.mu.Unlock()
	return od.draft.addMedicine(m)
}

func (s *Store) RemoveMedicineRow(ownerID, rowID uuid.UUID) {
	od := s.session(ownerID)
	od.mu.Lock()
	defer od.mu.Unlock()
	od.draft.removeMedicineByID(rowID)
}

func (s *Store) RemoveMedicineRowAt(ownerID uuid.UUID, index int) {
	od := s.session(ownerID)
	od.mu.Lock()
	defer od.mu.Unlock()
	od.draft.removeMedicineAt(index)
}

func (s *Store) AddTestRow(ownerID uuid.UUID, t record.Test) TestRow {
	od := s.session(ownerID)
	od.mu.Lock()
	defer od.mu.Unlock()
	return od.draft.addTest(t)
}

func (s *Store) RemoveTestRow(ownerID, rowID uuid.UUID) {
	od := s.session(ownerID)
	od.mu.Lock()
	defer od.mu.Unlock()
	od.draft.removeTestByID(rowID)
}

func (s *Store) RemoveTestRowAt(ownerID uuid.UUID, index int) {
	od := s.session(ownerID)
	od.mu.Lock()
	defer od.mu.Unlock()
	od.draft.removeTestAt(index)
}

// StageAttachment uploads one document and adds it to the staged set. The
// stored name is timestamp-prefixed to keep it unique within the record.
// On upload failure nothing is staged and the draft is left untouched.
func (s *Store) StageAttachment(ctx context.Context, ownerID uuid.UUID, name string, content io.Reader) (record.Attachment, error) {
	unique := fmt.Sprintf("%d_%s", s.now().UnixMilli(), name)

	url, err := s.blobs.Put(ctx, blobPrefix+unique, content)
	if err != nil {
		s.log.Error("blob upload failed",
			zap.String("owner_id", ownerID.String()),
			zap.String("name", name),
			zap.Error(err),
		)
		return record.Attachment{}, ErrUploadFailed
	}

	att := record.Attachment{Name: unique, URL: url}

	od := s.session(ownerID)
	od.mu.Lock()
	od.draft.Staged = append(od.draft.Staged, att)
	od.mu.Unlock()

	return att, nil
}

// RemoveAttachment drops a staged document. Local removal is optimistic:
// if the blob store fails to delete, the attachment still leaves the
// staged set and ErrDeleteFailed reports the inconsistency. Unknown names
// are a no-op.
func (s *Store) RemoveAttachment(ctx context.Context, ownerID uuid.UUID, name string) error {
	od := s.session(ownerID)
	od.mu.Lock()
	found := false
	for i, att := range od.draft.Staged {
		if att.Name == name {
			od.draft.Staged = append(od.draft.Staged[:i], od.draft.Staged[i+1:]...)
			found = true
			break
		}
	}
	od.mu.Unlock()

	if !found {
		return nil
	}

	if err := s.blobs.Delete(ctx, blobPrefix+name); err != nil {
		s.log.Warn("blob delete failed, staged entry removed anyway",
			zap.String("owner_id", ownerID.String()),
			zap.String("name", name),
			zap.Error(err),
		)
		return ErrDeleteFailed
	}
	return nil
}

// Submit validates the draft and, if clean, persists it as an immutable
// record with the staged attachments merged in, then resets the owner to a
// fresh empty draft. On any failure the draft and staged set are unchanged
// (no partial save).
func (s *Store) Submit(ctx context.Context, ownerID uuid.UUID) (*record.Record, error) {
	od := s.session(ownerID)
	od.mu.Lock()
	defer od.mu.Unlock()

	rd := od.draft.toRecordDraft()
	if verrs := record.Validate(rd); len(verrs) > 0 {
		return nil, verrs
	}

	date, err := time.Parse(record.DateLayout, rd.Date)
	if err != nil {
		// Unreachable after Validate, kept as a guard.
		return nil, record.ValidationErrors{{Field: "date", Reason: "must be a calendar date in YYYY-MM-DD form"}}
	}

	rec := &record.Record{
		OwnerID:            ownerID,
		Professional:       rd.Professional,
		DoctorName:         rd.DoctorName,
		Hospital:           rd.Hospital,
		Date:               date,
		Symptoms:           rd.Symptoms,
		SpecialInstruction: rd.SpecialInstruction,
		Medicines:          rd.Medicines,
		Tests:              rd.Tests,
		Documents:          append([]record.Attachment(nil), od.draft.Staged...),
		CreatedAt:          s.now(),
	}

	if err := s.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("appending record: %w", err)
	}

	od.draft = Draft{}
	return rec, nil
}

// Discard resets the owner's draft and releases staged blobs in the
// background. Blob deletion is fire-and-forget: navigation away must not
// block on it, and failures are only logged.
func (s *Store) Discard(ownerID uuid.UUID) {
	od := s.session(ownerID)
	od.mu.Lock()
	staged := od.draft.Staged
	od.draft = Draft{}
	od.mu.Unlock()

	if len(staged) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, att := range staged {
			if err := s.blobs.Delete(ctx, blobPrefix+att.Name); err != nil {
				s.log.Warn("discard: blob delete failed",
					zap.String("owner_id", ownerID.String()),
					zap.String("name", att.Name),
					zap.Error(err),
				)
			}
		}
	}()
}
