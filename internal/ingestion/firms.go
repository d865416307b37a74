package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mr1hm/balloon-scene/internal/config"
	"github.com/mr1hm/balloon-scene/internal/metrics"
	"github.com/mr1hm/balloon-scene/internal/models"
)

var errMissingHeader = errors.New("response has no latitude/longitude header")

type FireClient struct {
	baseURL  string
	mapKey   string
	source   string
	dayRange int
	maxFires int
	client   *http.Client
	metrics  *metrics.Metrics
}

func NewFireClient(cfg config.FireConfig, m *metrics.Metrics) *FireClient {
	return &FireClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		mapKey:   cfg.MapKey,
		source:   cfg.Source,
		dayRange: cfg.DayRange,
		maxFires: cfg.MaxFires,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: m,
	}
}

// FetchFires returns the hotspots inside region, at most maxFires of them in
// the feed's own order. Without a map key no request is made. Failures yield
// an empty set.
func (c *FireClient) FetchFires(ctx context.Context, region models.BoundingRegion) []models.Fire {
	if c.mapKey == "" {
		slog.Warn("FIRMS map key not configured, skipping fire feed")
		return []models.Fire{}
	}

	fires, err := c.fetchFires(ctx, region)
	if err != nil {
		slog.Error("fire feed fetch failed", "source", c.source, "error", err)
		c.metrics.UpstreamFailure(metrics.FeedFire)
		return []models.Fire{}
	}

	slog.Debug("fire feed fetched", "source", c.source, "count", len(fires))
	return fires
}

// AreaString formats region in the west,south,east,north order the feed expects.
func AreaString(region models.BoundingRegion) string {
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", region.MinLon, region.MinLat, region.MaxLon, region.MaxLat)
}

func (c *FireClient) areaURL(region models.BoundingRegion) string {
	return fmt.Sprintf("%s/%s/%s/%s/%d",
		c.baseURL,
		url.PathEscape(c.mapKey),
		url.PathEscape(c.source),
		AreaString(region),
		c.dayRange,
	)
}

func (c *FireClient) fetchFires(ctx context.Context, region models.BoundingRegion) ([]models.Fire, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.areaURL(region), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	fires, err := ParseFireCSV(resp.Body, c.maxFires)
	if err != nil {
		return nil, fmt.Errorf("error parsing fire CSV: %w", err)
	}
	return fires, nil
}

// ParseFireCSV reads a header row followed by data rows. Rows whose
// latitude/longitude are not finite numbers are skipped; reading stops once
// maxFires records have been collected (maxFires <= 0 means no cap).
func ParseFireCSV(r io.Reader, maxFires int) ([]models.Fire, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []models.Fire{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["latitude"]; !ok {
		return nil, errMissingHeader
	}
	if _, ok := cols["longitude"]; !ok {
		return nil, errMissingHeader
	}

	fires := []models.Fire{}
	for maxFires <= 0 || len(fires) < maxFires {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				// a malformed line only costs that line
				slog.Debug("skipping malformed fire row", "line", perr.Line, "error", err)
				continue
			}
			return nil, fmt.Errorf("error reading row: %w", err)
		}

		f, ok := fireFromRow(cols, row)
		if !ok {
			continue
		}
		fires = append(fires, f)
	}

	return fires, nil
}

func fireFromRow(cols map[string]int, row []string) (models.Fire, bool) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	lat, latOK := parseFinite(field("latitude"))
	lon, lonOK := parseFinite(field("longitude"))
	if !latOK || !lonOK {
		return models.Fire{}, false
	}

	f := models.Fire{
		Lat:        lat,
		Lon:        lon,
		Confidence: field("confidence"),
		AcqDate:    field("acq_date"),
		AcqTime:    field("acq_time"),
		Satellite:  field("satellite"),
	}

	brightness := field("brightness")
	if brightness == "" {
		// VIIRS products report the I-4 channel instead
		brightness = field("bright_ti4")
	}
	if b, ok := parseFinite(brightness); ok {
		f.Brightness = &b
	}

	return f, true
}

func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
