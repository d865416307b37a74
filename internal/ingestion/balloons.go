package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mr1hm/balloon-scene/internal/config"
	"github.com/mr1hm/balloon-scene/internal/metrics"
)

// SnapshotHours is the size of the rolling window; hour 0 is the newest.
const SnapshotHours = 24

type BalloonClient struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
}

func NewBalloonClient(cfg config.BalloonConfig, m *metrics.Metrics) *BalloonClient {
	return &BalloonClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: m,
	}
}

// FetchSnapshot retrieves the snapshot for hour. Any failure is logged and
// reported as ok == false so the remaining hours are unaffected.
func (c *BalloonClient) FetchSnapshot(ctx context.Context, hour int) (Snapshot, bool) {
	snap, err := c.fetchSnapshot(ctx, hour)
	if err != nil {
		slog.Warn("balloon snapshot unavailable", "hour", hour, "error", err)
		c.metrics.UpstreamFailure(metrics.FeedBalloon)
		return nil, false
	}
	return snap, true
}

func (c *BalloonClient) snapshotURL(hour int) string {
	return fmt.Sprintf("%s/%02d.json", c.baseURL, hour)
}

func (c *BalloonClient) fetchSnapshot(ctx context.Context, hour int) (Snapshot, error) {
	if hour < 0 || hour >= SnapshotHours {
		return nil, fmt.Errorf("hour out of range: %d", hour)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.snapshotURL(hour), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	// A non-array body fails here since Snapshot is a slice.
	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("snapshot body is null")
	}

	return snap, nil
}
