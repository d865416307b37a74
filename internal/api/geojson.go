package api

import (
	"github.com/mr1hm/balloon-scene/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry coordinates are [lon, lat] for a Point and a list of those for a
// LineString.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func toGeoJSON(scene *models.Scene) FeatureCollection {
	features := make([]Feature, 0, len(scene.Flights)+len(scene.Fires))

	for _, f := range scene.Flights {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: trackGeometry(f.Track),
			Properties: map[string]any{
				"kind":             "flight",
				"id":               f.ID,
				"latest_timestamp": f.Latest.Timestamp,
				"altitude":         f.Latest.Altitude,
				"min_distance_km":  f.FireSummary.MinDistanceKM,
			},
		})
	}

	for _, fire := range scene.Fires {
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{fire.Lon, fire.Lat},
			},
			Properties: map[string]any{
				"kind":       "fire",
				"brightness": fire.Brightness,
				"confidence": fire.Confidence,
				"acq_date":   fire.AcqDate,
				"acq_time":   fire.AcqTime,
				"satellite":  fire.Satellite,
			},
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// A LineString needs two positions, so single-point tracks become Points.
func trackGeometry(track []models.Point) Geometry {
	if len(track) == 1 {
		return Geometry{
			Type:        "Point",
			Coordinates: []float64{track[0].Lon, track[0].Lat},
		}
	}

	coords := make([][]float64, 0, len(track))
	for _, p := range track {
		coords = append(coords, []float64{p.Lon, p.Lat})
	}
	return Geometry{
		Type:        "LineString",
		Coordinates: coords,
	}
}
