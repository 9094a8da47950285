package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/middleware/authn"
	"github.com/gravadigital/navidad-api/internal/response"
	"github.com/gravadigital/navidad-api/internal/services"
)

type AdminHandler struct {
	voting *services.VotingService
	log    *log.Logger
}

func NewAdminHandler(voting *services.VotingService) *AdminHandler {
	return &AdminHandler{
		voting: voting,
		log:    logger.Handler("admin_handler"),
	}
}

// VoteRecord is one row of the admin vote listing
type VoteRecord struct {
	VoterKey string `json:"voter_key"`
	UserName string `json:"user_name"`
	OptionID string `json:"option_id"`
	VotedAt  string `json:"voted_at"`
}

// ListVotes returns every ballot in the ledger
func (h *AdminHandler) ListVotes(c *gin.Context) {
	p, _ := authn.Principal(c)

	votes, err := h.voting.AdminVotes(c.Request.Context(), p)
	if err != nil {
		errorResponse(c, h.log, err, nil)
		return
	}

	records := make([]VoteRecord, 0, len(votes))
	for _, v := range votes {
		records = append(records, VoteRecord{
			VoterKey: v.VoterKey,
			UserName: v.UserName,
			OptionID: v.OptionID,
			VotedAt:  v.VotedAt.UTC().Format(timeFormat),
		})
	}

	response.SuccessResponse(c, http.StatusOK, "", gin.H{"votes": records, "total": len(records)})
}

// ResetVotes clears the ledger and starts a new round
func (h *AdminHandler) ResetVotes(c *gin.Context) {
	p, _ := authn.Principal(c)

	deleted, err := h.voting.Reset(c.Request.Context(), p)
	if err != nil {
		errorResponse(c, h.log, err, nil)
		return
	}

	h.log.Warn("votes reset by admin", "admin", p.DisplayName, "deleted", deleted)
	response.SuccessResponse(c, http.StatusOK, "votes reset", gin.H{"deleted": deleted})
}
