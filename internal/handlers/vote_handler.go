package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/navidad-api/internal/domain/vote"
	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/middleware/authn"
	"github.com/gravadigital/navidad-api/internal/response"
	"github.com/gravadigital/navidad-api/internal/services"
)

const timeFormat = time.RFC3339

type VoteHandler struct {
	voting    *services.VotingService
	keepAlive time.Duration
	log       *log.Logger
}

func NewVoteHandler(voting *services.VotingService) *VoteHandler {
	return &VoteHandler{
		voting:    voting,
		keepAlive: 25 * time.Second,
		log:       logger.Handler("vote_handler"),
	}
}

type CastVoteRequest struct {
	OptionID string `json:"option_id"`
}

// Options lists the proposals of the round
func (h *VoteHandler) Options(c *gin.Context) {
	response.SuccessResponse(c, http.StatusOK, "", gin.H{
		"options": h.voting.Options(c.Request.Context()),
	})
}

// Status returns the caller's phase and round progress
func (h *VoteHandler) Status(c *gin.Context) {
	p, _ := authn.Principal(c)

	status, err := h.voting.Status(c.Request.Context(), p)
	if err != nil {
		errorResponse(c, h.log, err, nil)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", status)
}

// CastVote records the caller's single ballot
func (h *VoteHandler) CastVote(c *gin.Context) {
	p, _ := authn.Principal(c)

	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body")
		return
	}

	ballot, phase, err := h.voting.Cast(c.Request.Context(), p, req.OptionID)
	if err != nil {
		var data any
		if errors.Is(err, vote.ErrAlreadyVoted) {
			data = gin.H{"phase": phase, "page": phase.Page()}
		}
		errorResponse(c, h.log, err, data)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "vote recorded", gin.H{
		"vote":  ballot,
		"phase": phase,
		"page":  phase.Page(),
	})
}

// Results returns the live tally
func (h *VoteHandler) Results(c *gin.Context) {
	res, err := h.voting.Results(c.Request.Context())
	if err != nil {
		errorResponse(c, h.log, err, nil)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", res)
}

// Stream pushes the caller's phase and the tally as server-sent events on
// every ledger change, until the client disconnects.
func (h *VoteHandler) Stream(c *gin.Context) {
	p, _ := authn.Principal(c)

	updates, stop, err := h.voting.Stream(c.Request.Context(), p)
	if err != nil {
		errorResponse(c, h.log, err, nil)
		return
	}
	defer stop()

	h.log.Debug("stream opened", "voter_key", p.VoterKey)
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case u, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("ledger", u)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(timeFormat))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.log.Debug("stream closed", "voter_key", p.VoterKey)
}
