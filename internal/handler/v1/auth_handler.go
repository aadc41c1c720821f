package v1

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inficare/inficare/internal/service"
)

type AuthHandler struct {
	authSvc *service.AuthService
	log     *zap.Logger
}

func NewAuthHandler(authSvc *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, log: log}
}

type registerRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	Phone      string `json:"phone"`
	Age        int    `json:"age" binding:"required"`
	Gender     string `json:"gender"`
	BloodGroup string `json:"blood_group"`
	Weight     string `json:"weight"`
	Height     string `json:"height"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.authSvc.Register(c.Request.Context(), &service.RegisterCommand{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Phone:      req.Phone,
		Age:        req.Age,
		Gender:     req.Gender,
		BloodGroup: req.BloodGroup,
		Weight:     req.Weight,
		Height:     req.Height,
	}, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, pair)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, pair)
}

// LookupUID backs the smart-card scan: it shows who is signing in without
// exposing the full address.
func (h *AuthHandler) LookupUID(c *gin.Context) {
	uid, ok := parseUUID(c, "uid")
	if !ok {
		return
	}

	masked, err := h.authSvc.LookupLoginEmail(c.Request.Context(), uid)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"email": masked})
}

type uidLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) LoginByUID(c *gin.Context) {
	uid, ok := parseUUID(c, "uid")
	if !ok {
		return
	}

	var req uidLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.authSvc.LoginByUID(c.Request.Context(), uid, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, pair)
}
