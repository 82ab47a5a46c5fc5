package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avkor/securechat-server/internal/core"
)

// UserHandlers provides HTTP handlers for user presence reads.
type UserHandlers struct {
	presence *core.Presence
	log      *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(presence *core.Presence, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		presence: presence,
		log:      logger,
	}
}

// OnlineUsers returns everyone currently connected, excluding the caller.
// GET /api/users/online
func (h *UserHandlers) OnlineUsers(c *gin.Context) {
	currentUserID, exists := c.Get(ContextKeyUserID)
	if !exists {
		h.log.Error().Msg("user_id not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	uid, ok := currentUserID.(int64)
	if !ok {
		h.log.Error().Msg("invalid user_id type in context")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	online := h.presence.Online(uid)
	response := make([]UserResponse, 0, len(online))
	for _, identity := range online {
		response = append(response, UserResponse{
			ID:       identity.UserID,
			Username: identity.Username,
			Email:    identity.Email,
		})
	}

	c.JSON(http.StatusOK, response)
}
