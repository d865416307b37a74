package scene

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mr1hm/balloon-scene/internal/config"
	"github.com/mr1hm/balloon-scene/internal/ingestion"
	"github.com/mr1hm/balloon-scene/internal/models"
	"github.com/mr1hm/balloon-scene/internal/worker"
)

type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, hour int) (ingestion.Snapshot, bool)
}

type FireFetcher interface {
	FetchFires(ctx context.Context, region models.BoundingRegion) []models.Fire
}

// Builder runs the assembly pipeline: fetch snapshots, reconstruct flights,
// bound them, fetch fires for the region, correlate.
type Builder struct {
	balloons  SnapshotFetcher
	fires     FireFetcher
	workers   int
	stride    int
	padding   float64
	fullTrack bool
	now       func() time.Time
}

func NewBuilder(cfg *config.Config, balloons SnapshotFetcher, fires FireFetcher) *Builder {
	return &Builder{
		balloons:  balloons,
		fires:     fires,
		workers:   cfg.Balloons.FetchWorkers,
		stride:    cfg.Balloons.TrackStride,
		padding:   cfg.Scene.PaddingDeg,
		fullTrack: cfg.Scene.MatchFullTrack,
		now:       time.Now,
	}
}

func (b *Builder) Build(ctx context.Context) (*models.Scene, error) {
	start := b.now()

	snapshots := b.fetchSnapshots(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scene build cancelled: %w", err)
	}

	flights := Reconstruct(snapshots, start, b.stride)
	bounds := ComputeBounds(flights, b.padding)

	fires := []models.Fire{}
	if bounds != nil {
		fires = b.fires.FetchFires(ctx, *bounds)
	}

	Correlate(flights, fires, b.fullTrack)

	scene := &models.Scene{
		Flights:     flights,
		Fires:       fires,
		Bounds:      bounds,
		GeneratedAt: b.now().UTC(),
	}

	slog.Info("scene built", "flights", len(flights), "fires", len(fires), "duration", b.now().Sub(start))
	return scene, nil
}

// fetchSnapshots fetches every hour concurrently. Each worker writes only its
// own slot, and worker.Run returns after all of them are done.
func (b *Builder) fetchSnapshots(ctx context.Context) []ingestion.Snapshot {
	hours := make([]int, ingestion.SnapshotHours)
	for h := range hours {
		hours[h] = h
	}
	snapshots := make([]ingestion.Snapshot, ingestion.SnapshotHours)

	worker.Run(ctx, b.workers, hours, func(ctx context.Context, hour int) error {
		snap, ok := b.balloons.FetchSnapshot(ctx, hour)
		if !ok {
			return fmt.Errorf("hour %02d unavailable", hour)
		}
		snapshots[hour] = snap
		return nil
	})

	available := 0
	for _, s := range snapshots {
		if s != nil {
			available++
		}
	}
	slog.Debug("snapshots fetched", "available", available, "total", len(snapshots))

	return snapshots
}
