package scene

import (
	"math"

	"github.com/mr1hm/balloon-scene/internal/models"
)

// The fire feed rejects areas touching the poles or the antimeridian, so
// regions are kept just inside the valid range.
const (
	latLimit = 89.9
	lonLimit = 179.9
	minSpan  = 0.1
)

// ComputeBounds returns the box enclosing every track point, padded by
// paddingDeg on each side and clamped to the valid range. It returns nil when
// there are no points.
func ComputeBounds(flights []models.Flight, paddingDeg float64) *models.BoundingRegion {
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	found := false

	for _, f := range flights {
		for _, p := range f.Track {
			found = true
			minLat = math.Min(minLat, p.Lat)
			maxLat = math.Max(maxLat, p.Lat)
			minLon = math.Min(minLon, p.Lon)
			maxLon = math.Max(maxLon, p.Lon)
		}
	}
	if !found {
		return nil
	}

	minLat, maxLat = clampAxis(minLat-paddingDeg, maxLat+paddingDeg, latLimit)
	minLon, maxLon = clampAxis(minLon-paddingDeg, maxLon+paddingDeg, lonLimit)

	return &models.BoundingRegion{
		MinLat: minLat,
		MaxLat: maxLat,
		MinLon: minLon,
		MaxLon: maxLon,
	}
}

// clampAxis clamps [lo, hi] to [-limit, limit] and widens it to minSpan if
// clamping (or zero padding) collapsed it.
func clampAxis(lo, hi, limit float64) (float64, float64) {
	lo = math.Max(-limit, math.Min(lo, limit))
	hi = math.Max(-limit, math.Min(hi, limit))

	if hi-lo < minSpan {
		if lo+minSpan <= limit {
			hi = lo + minSpan
		} else {
			lo, hi = limit-minSpan, limit
		}
	}
	return lo, hi
}
