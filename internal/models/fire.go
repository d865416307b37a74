package models

// Fire is one hotspot detection from the fire feed. Everything but the
// coordinates is passed through as reported.
type Fire struct {
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Brightness *float64 `json:"brightness"`
	Confidence string   `json:"confidence,omitempty"`
	AcqDate    string   `json:"acq_date,omitempty"`
	AcqTime    string   `json:"acq_time,omitempty"`
	Satellite  string   `json:"satellite,omitempty"`
}

func (f *Fire) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  f.Lat,
		Longitude: f.Lon,
	}
}
