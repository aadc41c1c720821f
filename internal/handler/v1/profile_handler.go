package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inficare/inficare/internal/service"
)

type ProfileHandler struct {
	profileSvc *service.ProfileService
	log        *zap.Logger
}

func NewProfileHandler(profileSvc *service.ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc, log: log}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	ownerID, _ := sess.OwnerID()

	p, err := h.profileSvc.Get(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, p)
}
