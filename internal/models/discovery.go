package models

import "time"

// ProjectionCatalog is the reply to a projection discovery request
type ProjectionCatalog struct {
	Responder   string    `json:"responder"`
	Projections []string  `json:"projections"`
	Timestamp   time.Time `json:"timestamp"`
}
