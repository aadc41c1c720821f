package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/inficare/inficare/config"
)

// SmartcardHandler renders the login QR: a PNG encoding the
// /login/{uid} deep link, scannable from the printed card.
type SmartcardHandler struct {
	cfg config.SmartcardConfig
	log *zap.Logger
}

func NewSmartcardHandler(cfg config.SmartcardConfig, log *zap.Logger) *SmartcardHandler {
	return &SmartcardHandler{cfg: cfg, log: log}
}

func (h *SmartcardHandler) QR(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	ownerID, _ := sess.OwnerID()

	loginURL := h.cfg.LoginBaseURL + "/" + ownerID.String()
	png, err := qrcode.Encode(loginURL, qrcode.Medium, 256)
	if err != nil {
		h.log.Error("failed to encode smart-card QR", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
