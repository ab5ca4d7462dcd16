package api

import (
	"github.com/fadliRafidan/smart-lock-api/pkg/devicestate"
	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Handler contains all properties to serve the API
type Handler struct {
	nc          *nats.Conn
	baseSubject string
	coord       *devicestate.Coordinator
}

// NewHandler create a new API handler. nc may be nil, in which case the
// realtime events endpoint isn't registered.
func NewHandler(nc *nats.Conn, baseSubject string, coord *devicestate.Coordinator) *Handler {
	return &Handler{
		nc:          nc,
		baseSubject: baseSubject,
		coord:       coord,
	}
}

// RegisterRoutes attaches the handlers to the echo web server
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	log.Debug("Register API routes")

	device := e.Group("/device")
	device.GET("/:id/status", h.handleGetStatus)
	device.POST("/:id/update", h.handleUpdateStatus)

	api := e.Group("/api/v1")
	api.GET("/devices", h.handleFetchDevices)
	api.POST("/devices", h.handleCreateDevice)
	api.GET("/devices/:id", h.handleGetStatus)
	api.GET("/devices/:id/logs", h.handleFetchDeviceLogs)

	if h.nc != nil {
		api.Any("/realtime-events", h.realtimeEventsHandler())
	}
}
