package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inficare/inficare/internal/domain/record"
	"github.com/inficare/inficare/internal/draft"
	"github.com/inficare/inficare/internal/service"
	"github.com/inficare/inficare/pkg/metrics"
)

// DraftHandler exposes the per-user draft: scalar fields, medicine and
// test rows, staged attachments, submit and discard.
type DraftHandler struct {
	drafts    *draft.Store
	recordSvc *service.RecordService
	metrics   *metrics.Collector
	log       *zap.Logger
}

func NewDraftHandler(drafts *draft.Store, recordSvc *service.RecordService, collector *metrics.Collector, log *zap.Logger) *DraftHandler {
	return &DraftHandler{drafts: drafts, recordSvc: recordSvc, metrics: collector, log: log}
}

func (h *DraftHandler) Get(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	ownerID, _ := sess.OwnerID()

	respondOK(c, h.drafts.Snapshot(ownerID))
}

func (h *DraftHandler) SetFields(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	ownerID, _ := sess.OwnerID()

	var patch draft.FieldPatch
	if !bindJSON(c, &patch) {
		return
	}

	respondOK(c, h.drafts.SetFields(ownerID, patch))
}

type medicineRequest struct {
	Name        string   `json:"name" binding:"required"`
	Consumption []string `json:"consumption"`
	Duration    string   `json:"duration" binding:"required"`
	Instruction string   `json:"instruction"`
}

func (h *DraftHandler) AddMedicine(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	ownerID, _ := sess.OwnerID()

	var req medicineRequest
	if !bindJSON(c, &req) {
		return
	}

	dur, err := record.ParseLegacyDuration(req.Duration)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	slots := make([]record.Slot, len(req.Consumption))
	for i, s := range req.Consumption {
		slots[i] = record.Slot(s)
	}

	row := h.drafts.AddMedicineRow(ownerID, record.Medicine{
		Name:        req.Name,
		Consumption: slots,
		Duration:    dur,
		Instruction: req.Instruction,
	})

	respondCreated(c, row)
}

// RemoveMedicine accepts either a synthetic row ID or, for older clients,
// a zero-based position.
func (h *DraftHandler) RemoveMedicine(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	ownerID, _ := sess.OwnerID()

	raw := c.Param("row")
	if rowID, err := uuid.Parse(raw); err == nil {
		h.drafts.RemoveMedicineRow(ownerID, rowID)
	} else if index, err := strconv.Atoi(raw); err == nil {
		h.drafts.RemoveMedicineRowAt(ownerID, index)
	} else {
		respondError(c, http.StatusBadRequest, "invalid row: must be a row ID or position")
		return
	}

	respondOK(c, h.drafts.Snapshot(ownerID))
}

type testRequest struct {
	TestName    string `json:"test_name" binding:"required"`
	Instruction string `json:"instruction" binding:"required"`
}

func (h *DraftHandler) AddTest(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	ownerID, _ := sess.OwnerID()

	var req testRequest
	if !bindJSON(c, &req) {
		return
	}

	row := h.drafts.AddTestRow(ownerID, record.Test{
		TestName:    req.TestName,
		Instruction: req.Instruction,
	})

	respondCreated(c, row)
}

func (h *DraftHandler) RemoveTest(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	ownerID, _ := sess.OwnerID()

	raw := c.Param("row")
	if rowID, err := uuid.Parse(raw); err == nil {
		h.drafts.RemoveTestRow(ownerID, rowID)
	} else if index, err := strconv.Atoi(raw); err == nil {
		h.drafts.RemoveTestRowAt(ownerID, index)
	} else {
		respondError(c, http.StatusBadRequest, "invalid row: must be a row ID or position")
		return
	}

	respondOK(c, h.drafts.Snapshot(ownerID))
}

// UploadAttachments stages one or more documents from a multipart form.
// Files upload independently: a failure mid-batch keeps the ones that
// already succeeded staged.
func (h *DraftHandler) UploadAttachments(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	ownerID, _ := sess.OwnerID()

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	files := form.File["documents"]
	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, "no documents in request")
		return
	}

	staged := make([]record.Attachment, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			h.metrics.AttachmentOpsTotal.WithLabelValues("upload", "failure").Inc()
			respondError(c, http.StatusBadRequest, "unreadable document: "+fh.Filename)
			return
		}

		att, err := h.drafts.StageAttachment(c.Request.Context(), ownerID, fh.Filename, f)
		f.Close()
		if err != nil {
			h.metrics.AttachmentOpsTotal.WithLabelValues("upload", "failure").Inc()
			respondServiceError(c, err)
			return
		}

		h.metrics.AttachmentOpsTotal.WithLabelValues("upload", "success").Inc()
		staged = append(staged, att)
	}

	respondCreated(c, staged)
}

// RemoveAttachment drops a staged document. A blob-store delete failure
// still removes the local entry; the response carries a warning instead of
// an error status.
func (h *DraftHandler) RemoveAttachment(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	ownerID, _ := sess.OwnerID()

	name := c.Param("name")
	err := h.drafts.RemoveAttachment(c.Request.Context(), ownerID, name)
	if errors.Is(err, draft.ErrDeleteFailed) {
		h.metrics.AttachmentOpsTotal.WithLabelValues("delete", "failure").Inc()
		c.JSON(http.StatusOK, APIResponse[any]{
			Data:    h.drafts.Snapshot(ownerID),
			Message: "attachment removed; remote cleanup pending",
		})
		return
	}
	if err != nil {
		h.metrics.AttachmentOpsTotal.WithLabelValues("delete", "failure").Inc()
		respondServiceError(c, err)
		return
	}

	h.metrics.AttachmentOpsTotal.WithLabelValues("delete", "success").Inc()
	respondOK(c, h.drafts.Snapshot(ownerID))
}

func (h *DraftHandler) Submit(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	claims, _ := sess.Claims()

	rec, err := h.recordSvc.SubmitDraft(c.Request.Context(), claims, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, rec)
}

func (h *DraftHandler) Discard(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	ownerID, _ := sess.OwnerID()

	h.drafts.Discard(ownerID)
	respondOK(c, gin.H{"discarded": true})
}
