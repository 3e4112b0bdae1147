// Package snapshot owns loading and normalizing the current region snapshot
// from its backing source. The store never fails its caller: every error
// path degrades to an empty snapshot and logs the condition for operators.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/curbz/skywatch/internal/model"
)

// Source fetches the raw snapshot document. Implementations must bound
// their own blocking (the HTTP source carries a client timeout) so a stuck
// upstream degrades instead of hanging the caller.
type Source interface {
	Fetch() ([]byte, error)
}

// FileSource reads the snapshot from a local file, the shape the upstream
// pipeline drops on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file %s: %w", s.Path, err)
	}
	return data, nil
}

// HTTPSource fetches the snapshot document from a URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) HTTPSource {
	return HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (s HTTPSource) Fetch() ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing HTTP GET to %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("received non-OK status code %d from snapshot source. Response: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// Store reads the current region snapshot through a Source.
type Store struct {
	source Source
	log    *logrus.Entry
}

func New(source Source, log *logrus.Logger) *Store {
	return &Store{
		source: source,
		log:    log.WithField("component", "snapshot"),
	}
}

// Load returns the current snapshot. It is total: a missing file, an
// unreachable source or a malformed document all yield the empty snapshot,
// never an error.
func (s *Store) Load() *model.RegionSnapshot {
	raw, err := s.source.Fetch()
	if err != nil {
		s.log.Warnf("snapshot source unavailable, degrading to empty snapshot: %v", err)
		return empty()
	}

	snap, ok := Normalize(raw)
	if !ok {
		s.log.Warn("snapshot document has invalid structure, degrading to empty snapshot")
		return empty()
	}
	return snap
}

func empty() *model.RegionSnapshot {
	return &model.RegionSnapshot{Timestamp: 0, Flights: []model.FlightRecord{}}
}

// Normalize parses and validates a raw snapshot document. The second return
// is false when the document cannot be salvaged; callers then degrade to
// the empty snapshot.
//
// The upstream pipeline sometimes wraps the snapshot object in a
// single-element array; exactly that shape is unwrapped before validating.
// The root after unwrapping must be an object whose "snapshot" field is a
// list. A missing timestamp defaults to 0, which is not an error.
func Normalize(raw []byte) (*model.RegionSnapshot, bool) {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, false
	}

	if list, isList := root.([]any); isList {
		if len(list) != 1 {
			return nil, false
		}
		root = list[0]
	}

	obj, isObj := root.(map[string]any)
	if !isObj {
		return nil, false
	}

	rawFlights, isList := obj["snapshot"].([]any)
	if !isList {
		return nil, false
	}

	snap := &model.RegionSnapshot{
		Timestamp: coerceTimestamp(obj["timestamp"]),
		Flights:   make([]model.FlightRecord, 0, len(rawFlights)),
	}

	for _, rf := range rawFlights {
		fields, isObj := rf.(map[string]any)
		if !isObj {
			// tolerate junk elements, keep source order for the rest
			continue
		}
		snap.Flights = append(snap.Flights, normalizeFlight(fields))
	}

	return snap, true
}

func normalizeFlight(fields map[string]any) model.FlightRecord {
	return model.FlightRecord{
		ICAO24:       coerceString(fields["icao24"]),
		Callsign:     coerceString(fields["callsign"]),
		Latitude:     coerceFloat(fields["latitude"]),
		Longitude:    coerceFloat(fields["longitude"]),
		GeoAltitude:  coerceFloat(fields["geo_altitude"]),
		BaroAltitude: coerceFloat(fields["baro_altitude"]),
		Velocity:     coerceFloat(fields["velocity"]),
		VerticalRate: coerceFloat(fields["vertical_rate"]),
	}
}

// coerceFloat maps absent or non-numeric values to nil. Numeric strings are
// accepted since some feeds quote their numbers.
func coerceFloat(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

func coerceString(v any) string {
	s, _ := v.(string)
	return s
}

func coerceTimestamp(v any) int64 {
	if f, ok := v.(float64); ok {
		return int64(f)
	}
	return 0
}
