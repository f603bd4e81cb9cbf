package request

import "encoding/json"

// StartSimulationRequest carries the order and drone as the simulator sees them.
type StartSimulationRequest struct {
	Order json.RawMessage `json:"order" validate:"required"`
	Drone json.RawMessage `json:"drone" validate:"required"`
}
