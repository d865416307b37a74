package scene

import (
	"sort"
	"time"

	"github.com/mr1hm/balloon-scene/internal/ingestion"
	"github.com/mr1hm/balloon-scene/internal/models"
)

// minDownsampleLen is the longest track that is never downsampled.
const minDownsampleLen = 3

// Reconstruct merges hourly snapshots into one Flight per identity.
// snapshots[h] is the snapshot taken h hours before now; nil entries are hours
// that could not be fetched.
//
// Identity comes from ingestion.Normalize, which falls back to the record's
// position in its snapshot. That only lines up across hours if the feed keeps
// a stable ordering, which is assumed but not guaranteed.
func Reconstruct(snapshots []ingestion.Snapshot, now time.Time, stride int) []models.Flight {
	var order []string
	tracks := make(map[string][]models.Point)

	for hour, snap := range snapshots {
		if snap == nil {
			continue
		}
		ts := now.Add(-time.Duration(hour) * time.Hour).UTC()

		for i, rec := range snap {
			p, ok := ingestion.Normalize(rec, ts, i)
			if !ok {
				continue
			}
			if _, seen := tracks[p.ID]; !seen {
				order = append(order, p.ID)
			}
			tracks[p.ID] = append(tracks[p.ID], p)
		}
	}

	flights := make([]models.Flight, 0, len(order))
	for _, id := range order {
		track := tracks[id]
		// stable, so equal timestamps keep fetch order
		sort.SliceStable(track, func(i, j int) bool {
			return track[i].Timestamp.Before(track[j].Timestamp)
		})
		track = Downsample(track, stride)

		flights = append(flights, models.Flight{
			ID:     id,
			Track:  track,
			Latest: track[len(track)-1],
		})
	}

	return flights
}

// Downsample keeps every stride-th point of track plus its final point.
// Tracks of minDownsampleLen points or fewer are returned unchanged, and the
// first point is always kept.
func Downsample(track []models.Point, stride int) []models.Point {
	if stride <= 1 || len(track) <= minDownsampleLen {
		return track
	}

	last := len(track) - 1
	out := make([]models.Point, 0, len(track)/stride+2)
	for i := 0; i < last; i += stride {
		out = append(out, track[i])
	}
	return append(out, track[last])
}
