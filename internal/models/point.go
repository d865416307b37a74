package models

import "time"

// Point is one observation of one balloon at one time.
type Point struct {
	ID        string    `json:"id"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Altitude  *float64  `json:"altitude"`  // nil when the feed omits it
	Timestamp time.Time `json:"timestamp"` // derived from the snapshot hour, not the feed
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (p *Point) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  p.Lat,
		Longitude: p.Lon,
	}
}
