package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kjarir/echosphere/internal/catalog"
	"github.com/kjarir/echosphere/internal/config"
	"github.com/kjarir/echosphere/internal/core"
	"github.com/kjarir/echosphere/internal/identity"
)

// NewServer builds the HTTP server: REST catalog/session endpoints plus the
// websocket gateway.
func NewServer(hub *core.Hub, cat *catalog.Service, ids *identity.Provider, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	rooms := NewRoomHandlers(hub, cat, ids, logger)
	api := router.Group("/api")
	{
		api.GET("/rooms", rooms.ListRooms)
		api.POST("/rooms", rooms.CreateRoom)
		api.GET("/rooms/:id/snapshot", rooms.GetSnapshot)
		api.GET("/events", rooms.ListEvents)
		api.GET("/profiles/:id", rooms.GetProfile)
	}

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, ids, cfg.WSRateLimit, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
