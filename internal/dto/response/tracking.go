package response

import (
	"encoding/json"
	"time"
)

type SimulationResponse struct {
	Order     json.RawMessage `json:"order"`
	Drone     json.RawMessage `json:"drone"`
	StartedAt time.Time       `json:"startedAt"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
