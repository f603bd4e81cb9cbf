package wire

import (
	"drone-delivery/internal/realtime"

	"github.com/go-chi/chi/v5"
)

// wireTracking mounts the websocket the map subscribes to for droneLocationUpdate
func wireTracking(r chi.Router, hub *realtime.Hub) {
	r.Get("/ws/tracking", hub.ServeWS)
}
