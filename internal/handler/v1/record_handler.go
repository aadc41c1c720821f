package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inficare/inficare/internal/service"
)

type RecordHandler struct {
	recordSvc *service.RecordService
	log       *zap.Logger
}

func NewRecordHandler(recordSvc *service.RecordService, log *zap.Logger) *RecordHandler {
	return &RecordHandler{recordSvc: recordSvc, log: log}
}

// List returns the caller's records newest-visit-first, narrowed by the
// optional free-text query in ?q=.
func (h *RecordHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	claims, _ := sess.Claims()

	records, err := h.recordSvc.History(c.Request.Context(), claims, c.Query("q"), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, records)
}

func (h *RecordHandler) Get(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	claims, _ := sess.Claims()

	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	rec, err := h.recordSvc.GetRecord(c.Request.Context(), id, claims, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, rec)
}
