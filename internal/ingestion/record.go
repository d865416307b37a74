package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mr1hm/balloon-scene/internal/models"
)

type RecordKind int

const (
	RecordUnknown RecordKind = iota
	RecordTuple              // [lat, lon, altitude?]
	RecordObject             // {"lat"|"latitude", "lon"|"longitude", "alt"|"altitude"?, "id"?}
)

func (k RecordKind) String() string {
	switch k {
	case RecordTuple:
		return "tuple"
	case RecordObject:
		return "object"
	default:
		return "unknown"
	}
}

// Record is one element of a balloon snapshot. The feed has no documented
// schema, so the shape is resolved once when the element is decoded.
type Record struct {
	Kind   RecordKind
	Tuple  []any
	Object map[string]any
}

// Snapshot is one hour's feed document.
type Snapshot []Record

// UnmarshalJSON never fails: the outer decoder has already checked the
// syntax, and an element that cannot be decoded is RecordUnknown so it costs
// only itself, not the whole snapshot. Numbers are kept as json.Number so a
// value such as 1e400 invalidates just the field holding it.
func (r *Record) UnmarshalJSON(b []byte) error {
	*r = Record{}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		r.Kind = RecordUnknown
		return nil
	}

	switch t := v.(type) {
	case []any:
		r.Kind = RecordTuple
		r.Tuple = t
	case map[string]any:
		r.Kind = RecordObject
		r.Object = t
	default:
		r.Kind = RecordUnknown
	}
	return nil
}

// Normalize converts a record into a Point stamped with ts. index is the
// record's position in its snapshot and becomes the identity when the record
// carries none. Records without two finite numeric coordinates are rejected.
func Normalize(r Record, ts time.Time, index int) (models.Point, bool) {
	var (
		lat, lon float64
		alt      *float64
		id       string
		ok       bool
	)

	switch r.Kind {
	case RecordTuple:
		lat, lon, alt, ok = fromTuple(r.Tuple)
	case RecordObject:
		lat, lon, alt, id, ok = fromObject(r.Object)
	}
	if !ok {
		return models.Point{}, false
	}

	if id == "" {
		id = DefaultID(index)
	}

	return models.Point{
		ID:        id,
		Lat:       lat,
		Lon:       lon,
		Altitude:  alt,
		Timestamp: ts,
	}, true
}

// DefaultID is the identity given to the record at index within a snapshot.
// It is only a valid cross-hour key while the feed keeps a stable ordering.
//
// Explicit ids share this namespace: an object carrying "id": "balloon-3"
// joins the positional track of index 3. The feed publishes no ids today, so
// the two schemes are not expected to mix within one window.
func DefaultID(index int) string {
	return fmt.Sprintf("balloon-%d", index)
}

func fromTuple(t []any) (lat, lon float64, alt *float64, ok bool) {
	if len(t) < 2 {
		return 0, 0, nil, false
	}
	lat, latOK := number(t[0])
	lon, lonOK := number(t[1])
	if !latOK || !lonOK {
		return 0, 0, nil, false
	}
	if len(t) > 2 {
		if a, aOK := number(t[2]); aOK {
			alt = &a
		}
	}
	return lat, lon, alt, true
}

func fromObject(o map[string]any) (lat, lon float64, alt *float64, id string, ok bool) {
	lat, latOK := firstNumber(o, "lat", "latitude")
	lon, lonOK := firstNumber(o, "lon", "longitude")
	if !latOK || !lonOK {
		return 0, 0, nil, "", false
	}
	if a, aOK := firstNumber(o, "alt", "altitude"); aOK {
		alt = &a
	}

	switch v := o["id"].(type) {
	case string:
		id = v
	case json.Number:
		id = v.String()
	}
	return lat, lon, alt, id, true
}

func firstNumber(o map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		// a present but unusable key falls through to the next alias
		if f, ok := number(o[k]); ok {
			return f, true
		}
	}
	return 0, false
}

func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
