package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/response"
	"github.com/gravadigital/navidad-api/internal/services"
)

type AuthHandler struct {
	auth   *auth.Service
	voting *services.VotingService
	log    *log.Logger
}

func NewAuthHandler(authService *auth.Service, voting *services.VotingService) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		voting: voting,
		log:    logger.Handler("auth_handler"),
	}
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token       string               `json:"token"`
	ExpiresAt   string               `json:"expires_at"`
	VoterKey    string               `json:"voter_key"`
	DisplayName string               `json:"display_name"`
	Status      *services.StatusView `json:"status,omitempty"`
}

// Roster lists the participant names offered at login
func (h *AuthHandler) Roster(c *gin.Context) {
	response.SuccessResponse(c, http.StatusOK, "", gin.H{"names": h.auth.Roster().Names()})
}

// Login authenticates a roster member and routes them by the current ledger
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body")
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Name, req.Password)
	if errors.Is(err, vote.ErrValidation) {
		response.ErrorWithKind(c, http.StatusBadRequest, "validation", "Please select your name and enter the password.", nil)
		return
	}
	if err != nil {
		errorResponse(c, h.log, err, nil)
		return
	}

	resp := LoginResponse{
		Token:       session.Token,
		ExpiresAt:   session.ExpiresAt.UTC().Format(timeFormat),
		VoterKey:    session.Principal.VoterKey,
		DisplayName: session.Principal.DisplayName,
	}

	// the login stands even if the ledger cannot be read right now
	status, err := h.voting.Status(c.Request.Context(), session.Principal)
	if err != nil {
		h.log.Warn("status unavailable after login", "voter_key", session.Principal.VoterKey, "error", err)
	} else {
		resp.Status = status
	}

	response.SuccessResponse(c, http.StatusOK, "logged in", resp)
}

// AdminLogin opens an admin session
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "username and password are required")
		return
	}

	session, err := h.auth.AdminLogin(req.Username, req.Password)
	if err != nil {
		errorResponse(c, h.log, err, nil)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "admin logged in", gin.H{
		"token":      session.Token,
		"expires_at": session.ExpiresAt.UTC().Format(timeFormat),
	})
}
