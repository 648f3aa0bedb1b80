package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kjarir/echosphere/internal/catalog"
	"github.com/kjarir/echosphere/internal/core"
	"github.com/kjarir/echosphere/internal/identity"
	"github.com/kjarir/echosphere/internal/store"
)

// RoomHandlers provides HTTP handlers for the catalog and session endpoints.
type RoomHandlers struct {
	hub     *core.Hub
	catalog *catalog.Service
	ids     *identity.Provider
	log     *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, cat *catalog.Service, ids *identity.Provider, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub:     hub,
		catalog: cat,
		ids:     ids,
		log:     logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=120"`
	Topic       string `json:"topic" binding:"required,min=1,max=64"`
	Description string `json:"description" binding:"max=1000"`
	HostID      string `json:"host_id" binding:"required"`
	Capacity    int    `json:"capacity" binding:"min=0"`
	IsPrivate   bool   `json:"is_private"`
	ScheduledAt string `json:"scheduled_at"` // RFC3339, optional
}

// RoomResponse represents a catalog room in API responses.
type RoomResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Topic       string `json:"topic"`
	Description string `json:"description,omitempty"`
	HostID      string `json:"host_id"`
	Capacity    int    `json:"capacity,omitempty"`
	IsPrivate   bool   `json:"is_private,omitempty"`
	IsLive      bool   `json:"is_live"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// RoomListResponse groups live and upcoming rooms.
type RoomListResponse struct {
	Live     []RoomResponse `json:"live"`
	Upcoming []RoomResponse `json:"upcoming"`
}

// ProfileResponse represents an identity profile in API responses.
type ProfileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// CreateRoom handles catalog room creation.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	params := catalog.CreateRoomParams{
		Title:       req.Title,
		Topic:       req.Topic,
		Description: req.Description,
		HostID:      req.HostID,
		Capacity:    req.Capacity,
		IsPrivate:   req.IsPrivate,
	}
	if req.ScheduledAt != "" {
		t, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "scheduled_at must be RFC3339"})
			return
		}
		params.ScheduledAt = &t
	}

	room, err := h.catalog.CreateRoom(c.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrTitleRequired),
			errors.Is(err, catalog.ErrTopicRequired),
			errors.Is(err, catalog.ErrHostRequired):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case strings.Contains(err.Error(), "UNIQUE"):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "room already exists"})
		default:
			h.log.Error().Err(err).Str("title", req.Title).Msg("failed to create room")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, roomResponse(room))
}

// ListRooms handles listing the room catalog.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	ctx := c.Request.Context()

	live, err := h.catalog.ListLive(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list live rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	upcoming, err := h.catalog.ListUpcoming(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list upcoming rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := RoomListResponse{
		Live:     make([]RoomResponse, 0, len(live)),
		Upcoming: make([]RoomResponse, 0, len(upcoming)),
	}
	for _, r := range live {
		resp.Live = append(resp.Live, roomResponse(r))
	}
	for _, r := range upcoming {
		resp.Upcoming = append(resp.Upcoming, roomResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// ListEvents handles listing scheduled rooms ordered by start time.
// GET /api/events
func (h *RoomHandlers) ListEvents(c *gin.Context) {
	upcoming, err := h.catalog.ListUpcoming(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list events")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]RoomResponse, 0, len(upcoming))
	for _, r := range upcoming {
		resp = append(resp, roomResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// GetSnapshot handles the read-only point-in-time session view.
// GET /api/rooms/:id/snapshot
func (h *RoomHandlers) GetSnapshot(c *gin.Context) {
	roomID := c.Param("id")

	snap, err := h.hub.Snapshot(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		var coreErr *core.CoreError
		if errors.As(err, &coreErr) && coreErr.Code == core.ErrCodeNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room", roomID).Msg("failed to build snapshot")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, snapshotView(snap))
}

// GetProfile handles identity profile lookup.
// GET /api/profiles/:id
func (h *RoomHandlers) GetProfile(c *gin.Context) {
	profile, err := h.ids.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, identity.ErrUnknownIdentity) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
			return
		}
		h.log.Error().Err(err).Str("profile", c.Param("id")).Msg("failed to resolve profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
		Bio:         profile.Bio,
	})
}

func roomResponse(r *store.Room) RoomResponse {
	resp := RoomResponse{
		ID:          r.ID,
		Title:       r.Title,
		Topic:       r.Topic,
		Description: r.Description,
		HostID:      r.HostID,
		Capacity:    r.Capacity,
		IsPrivate:   r.IsPrivate,
		IsLive:      r.IsLive,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
	if r.ScheduledAt != nil {
		resp.ScheduledAt = r.ScheduledAt.Format(time.RFC3339)
	}
	return resp
}
