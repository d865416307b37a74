package models

import "time"

type BoundingRegion struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLon float64 `json:"minLon"`
	MaxLon float64 `json:"maxLon"`
}

// Scene is the assembled payload served to the map client. A Scene is never
// mutated after it has been built.
type Scene struct {
	Flights     []Flight        `json:"flights"`
	Fires       []Fire          `json:"fires"`
	Bounds      *BoundingRegion `json:"bounds"`
	GeneratedAt time.Time       `json:"generated_at"`
}
