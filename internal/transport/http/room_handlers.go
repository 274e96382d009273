package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RoomHandlers exposes read-only views of live rooms.
type RoomHandlers struct {
	hub Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// ListRooms lists every room created since startup, empty ones included.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms := h.hub.Rooms()

	response := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		response = append(response, RoomResponse{Name: r.Name, Members: r.Members})
	}

	h.log.Debug().Int("room_count", len(response)).Msg("rooms listed")
	c.JSON(http.StatusOK, response)
}

// ListMembers returns the current roster of a room.
// GET /api/rooms/:room/members, with room path-escaped.
func (h *RoomHandlers) ListMembers(c *gin.Context) {
	room := c.Param("room")
	c.JSON(http.StatusOK, membersToProto(h.hub.MembersOf(room)))
}
