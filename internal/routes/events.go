package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupEventRoutes sets up the event feed routes: paginated history over
// HTTP and a live websocket stream.
func SetupEventRoutes(r *gin.Engine, hub *handlers.StreamHub) {
	r.GET("/events", handlers.ListEvents)
	if hub != nil {
		r.GET("/ws/events", hub.HandleEventStream)
	}
}
