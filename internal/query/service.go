// Package query exposes the three read operations of the flight data
// service: region snapshot, single-flight lookup and active-alert listing.
// Anomaly labels are recomputed on every call and attached to the returned
// view only, never persisted back to the backing source.
package query

import (
	"strconv"

	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"

	"github.com/curbz/skywatch/internal/anomaly"
	"github.com/curbz/skywatch/internal/model"
	"github.com/curbz/skywatch/internal/snapshot"
	"github.com/curbz/skywatch/pkg/util"
)

// API is the query surface the analyst roles and the front door consume.
// Service implements it in-process; RemoteService implements it over HTTP.
type API interface {
	RegionSnapshot(region string) (*model.RegionSnapshot, error)
	FlightByIdentifier(ident string) (*model.FlightRecord, error)
	ActiveAlerts() ([]model.AlertRecord, error)
}

// Service answers queries straight from a snapshot store. Every call reads
// the store fresh, so there is no shared mutable state between requests.
type Service struct {
	store *snapshot.Store
	log   *logrus.Entry
}

func NewService(store *snapshot.Store, log *logrus.Logger) *Service {
	return &Service{
		store: store,
		log:   log.WithField("component", "query"),
	}
}

// RegionSnapshot returns the current snapshot with a freshly computed
// anomaly label attached to each flight. It never fails: an empty store
// yields an empty flight list. The region name partitions the backing
// source upstream; a single store serves exactly one region.
func (s *Service) RegionSnapshot(region string) (*model.RegionSnapshot, error) {
	snap := s.store.Load()
	for i := range snap.Flights {
		snap.Flights[i].AnomalyLabel = anomaly.Label(&snap.Flights[i])
	}
	s.log.Debugf("region %s snapshot served: %d flights", region, len(snap.Flights))
	return snap, nil
}

// FlightByIdentifier finds the first record, in snapshot order, whose
// trimmed case-insensitive callsign or case-insensitive ICAO24 matches.
// Duplicate identifiers resolve to the first match; no disambiguation is
// attempted. Returns NotFoundError when nothing matches.
func (s *Service) FlightByIdentifier(ident string) (*model.FlightRecord, error) {
	want := util.NormalizeIdent(ident)
	snap := s.store.Load()

	for i := range snap.Flights {
		fl := &snap.Flights[i]
		if util.NormalizeIdent(fl.Callsign) == want || util.NormalizeIdent(fl.ICAO24) == want {
			// Detach the returned record from the snapshot so callers can
			// hold it past this request without aliasing store state.
			rec := deepcopy.Copy(fl).(*model.FlightRecord)
			rec.AnomalyLabel = anomaly.Label(rec)
			return rec, nil
		}
	}

	s.log.Infof("no flight matched identifier %q", ident)
	return nil, &NotFoundError{Ident: ident}
}

// ActiveAlerts lists every flight the classifier currently flags, in
// snapshot order. No severity sorting is applied.
func (s *Service) ActiveAlerts() ([]model.AlertRecord, error) {
	snap := s.store.Load()
	alerts := make([]model.AlertRecord, 0)

	for i := range snap.Flights {
		fl := &snap.Flights[i]
		label := anomaly.Classify(fl)
		if label == "" {
			continue
		}
		alerts = append(alerts, model.AlertRecord{
			Callsign:     callsignOrICAO(fl),
			ICAO24:       fl.ICAO24,
			Latitude:     fl.Latitude,
			Longitude:    fl.Longitude,
			AnomalyLabel: label,
			Details:      formatDetails(fl),
		})
	}

	s.log.Debugf("%d active alerts", len(alerts))
	return alerts, nil
}

func callsignOrICAO(fl *model.FlightRecord) string {
	if fl.Callsign != "" {
		return fl.Callsign
	}
	return fl.ICAO24
}

// formatDetails renders the kinematics line shown on alert listings, with
// "N/A" standing in for values the feed did not carry.
func formatDetails(fl *model.FlightRecord) string {
	return "Alt: " + floatOrNA(fl.GeoAltitude) + "m, " +
		"Speed: " + floatOrNA(fl.Velocity) + "m/s, " +
		"VRate: " + floatOrNA(fl.VerticalRate) + "m/s"
}

func floatOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
