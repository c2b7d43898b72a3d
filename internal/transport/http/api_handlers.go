package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dmarkhas/roomcast/internal/core"
	"github.com/dmarkhas/roomcast/internal/presence"
)

// APIHandlers provides the REST surface of the relay.
type APIHandlers struct {
	hub      *core.Hub
	presence *presence.Service
	log      *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, p *presence.Service, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub:      hub,
		presence: p,
		log:      logger,
	}
}

// LogoutRequest represents the logout request body. SessionID names the
// caller's own websocket session so the roster broadcast can skip it.
type LogoutRequest struct {
	ID           string         `json:"id" binding:"required"`
	UnreadCounts map[string]int `json:"unread_counts"`
	SessionID    string         `json:"session_id"`
}

// Health handles the liveness probe.
// GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Rooms returns the static configured room list.
// GET /rooms
func (h *APIHandlers) Rooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.RoomNames())
}

// Logout marks a user offline with its unread snapshot. The boundary
// maps every failure to a bare 400; no detail leaks to the caller.
// DELETE /logout
func (h *APIHandlers) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid logout request")
		c.Status(http.StatusBadRequest)
		return
	}

	if _, err := h.presence.MarkOffline(c.Request.Context(), req.ID, req.UnreadCounts, req.SessionID); err != nil {
		h.log.Warn().Err(err).Str("user_id", req.ID).Msg("logout failed")
		c.Status(http.StatusBadRequest)
		return
	}

	c.Status(http.StatusOK)
}
