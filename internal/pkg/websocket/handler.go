package websocket

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appauth "github.com/elihudev/elihudroom/internal/app/auth"
	"github.com/elihudev/elihudroom/internal/app/services"
	"github.com/elihudev/elihudroom/internal/middleware"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
)

// Handler upgrades feed requests to websocket connections
type Handler struct {
	posts  services.PostService
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewHandler creates a new websocket Handler
func NewHandler(posts services.PostService, authz *appauth.AuthorizationService, logger zerolog.Logger) *Handler {
	return &Handler{
		posts:  posts,
		authz:  authz,
		logger: logger,
	}
}

// HandleFeed godoc
// @Summary Subscribe to a live class feed
// @Description Upgrades the connection to a WebSocket that receives a full feed snapshot immediately and again after every post change
// @Tags classes, websocket
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} dto.APIResponse "Invalid class ID"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Class not found"
// @Router /classes/{id}/feed [get]
func (h *Handler) HandleFeed(c *gin.Context) {
	classID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid class id"))
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		middleware.HandleAPIError(c, apperrors.ErrTokenInvalid)
		return
	}

	// Access is checked before the upgrade so rejections still go out as
	// plain HTTP responses.
	if _, _, err := h.authz.RequireMember(c.Request.Context(), user, classID); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("classID", classID).
			Int64("userID", user.ID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		conn:    conn,
		send:    make(chan []byte, 8),
		userID:  user.ID,
		classID: classID,
		logger:  h.logger,
	}

	sub, err := h.posts.SubscribeFeed(c.Request.Context(), user, classID, client.enqueueSnapshot)
	if err != nil {
		// Lost a race with class deletion between the access check and here.
		h.logger.Warn().
			Err(err).
			Int64("classID", classID).
			Int64("userID", user.ID).
			Msg("Feed subscription failed after upgrade")
		conn.Close()
		return
	}
	client.sub = sub

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("classID", classID).
		Int64("userID", user.ID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("Feed connection established")
}
