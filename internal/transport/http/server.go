package http

import (
	"context"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomchat/internal/auth"
	"github.com/vovakirdan/roomchat/internal/config"
	"github.com/vovakirdan/roomchat/internal/core"
)

// Hub is the part of the chat core the transport talks to.
type Hub interface {
	Connect(name string) *core.Client
	Dispatch(ctx context.Context, id core.ConnectionID, cmd *core.Command) error
	Disconnect(id core.ConnectionID)
	MembersOf(room string) []core.Member
	Rooms() []core.RoomSummary
}

// NewServer builds the HTTP server: auth API, room diagnostics and the WebSocket endpoint.
func NewServer(hub Hub, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	// Room names are arbitrary strings; clients path-escape them, so "a%2Fb" must match :room as "a/b".
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(gin.Recovery(), LoggerMiddleware(logger), CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, cfg, logger)))

	apiHandlers := NewAPIHandlers(authService, logger)
	roomHandlers := NewRoomHandlers(hub, logger)

	api := router.Group("/api")
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	rooms := api.Group("/rooms", AuthMiddleware(authService, logger))
	rooms.GET("", roomHandlers.ListRooms)
	rooms.GET("/:room/members", roomHandlers.ListMembers)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
