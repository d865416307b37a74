package scene

import (
	"math"

	"github.com/mr1hm/balloon-scene/internal/models"
)

const earthRadiusKM = 6371.0

// HaversineKM is the great-circle distance between a and b in kilometers.
func HaversineKM(a, b models.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, h)

	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

// Correlate sets FireSummary on every flight to the nearest fire. By default
// only the flight's latest position is considered; fullTrack measures from
// every track point instead. With no fires the summary stays empty.
func Correlate(flights []models.Flight, fires []models.Fire, fullTrack bool) {
	for i := range flights {
		flights[i].FireSummary = nearestFire(&flights[i], fires, fullTrack)
	}
}

func nearestFire(f *models.Flight, fires []models.Fire, fullTrack bool) models.FireSummary {
	if len(fires) == 0 {
		return models.FireSummary{}
	}

	positions := []models.Point{f.Latest}
	if fullTrack && len(f.Track) > 0 {
		positions = f.Track
	}

	best, bestIdx := math.Inf(1), -1
	for _, p := range positions {
		from := p.Coordinates()
		for j := range fires {
			if d := HaversineKM(from, fires[j].Coordinates()); d < best {
				best, bestIdx = d, j
			}
		}
	}

	closest := fires[bestIdx]
	return models.FireSummary{
		MinDistanceKM: &best,
		ClosestFire:   &closest,
	}
}
