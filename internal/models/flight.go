package models

// Flight is the reconstructed track of one balloon. Track is ordered by
// timestamp ascending and Latest is always its final element.
type Flight struct {
	ID          string      `json:"id"`
	Track       []Point     `json:"track"`
	Latest      Point       `json:"latest"`
	FireSummary FireSummary `json:"fire_summary"`
}

// FireSummary is attached by the correlator. Both fields are nil when no
// fires were available.
type FireSummary struct {
	MinDistanceKM *float64 `json:"min_distance_km"`
	ClosestFire   *Fire    `json:"closest_fire"`
}
