// Package simulate stands in for the upstream feed pipeline: it moves a
// small baseline fleet along great-circle tracks and writes the region
// snapshot document the store consumes. A few aircraft are held inside
// anomalous envelopes so the classifier always has something to flag.
package simulate

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"

	"github.com/curbz/skywatch/internal/model"
	"github.com/curbz/skywatch/pkg/geometry"
)

// simAircraft is a flight record plus the track it moves along.
type simAircraft struct {
	Record model.FlightRecord
	Track  float64
	// pinned aircraft keep their kinematics inside an anomaly envelope
	// instead of taking jitter
	Pinned bool
}

type Simulator struct {
	outputFile string
	fleet      []simAircraft
	rng        *rand.Rand
	log        *logrus.Entry
}

func New(outputFile string, log *logrus.Logger) *Simulator {
	return &Simulator{
		outputFile: outputFile,
		fleet:      baselineFleet(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		log:        log.WithField("component", "simulator"),
	}
}

func baselineFleet() []simAircraft {
	return []simAircraft{
		// nominal traffic
		{Record: record("a1b2c3", "UAL321", 40.71, -74.00, 10500, 235, 0.5), Track: 85},
		{Record: record("d4e5f6", "BAW22", 51.47, -0.45, 11200, 248, -0.3), Track: 260},
		{Record: record("778899", "AFR11", 48.85, 2.35, 9800, 220, 1.2), Track: 190},
		{Record: record("aabb01", "DLH402", 50.03, 8.57, 11900, 252, 0), Track: 300},
		// low speed at high altitude
		{Record: record("bad001", "GLIDR1", 39.86, -104.67, 4200, 32, 1), Track: 45, Pinned: true},
		// rapid vertical change
		{Record: record("bad002", "DIVER2", 34.05, -118.24, 2500, 180, -22), Track: 120, Pinned: true},
		// stationary at low altitude
		{Record: record("bad003", "HOVER3", 30.00, -90.00, 120, 2, 0), Track: 0, Pinned: true},
	}
}

func record(icao, callsign string, lat, lon, alt, vel, vrate float64) model.FlightRecord {
	return model.FlightRecord{
		ICAO24:       icao,
		Callsign:     callsign,
		Latitude:     model.Float(lat),
		Longitude:    model.Float(lon),
		GeoAltitude:  model.Float(alt),
		Velocity:     model.Float(vel),
		VerticalRate: model.Float(vrate),
	}
}

// Run writes a fresh snapshot every interval until stop closes.
func (s *Simulator) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Infof("writing snapshots to %s every %v", s.outputFile, interval)
	for {
		select {
		case <-ticker.C:
			if err := s.Tick(interval.Seconds()); err != nil {
				s.log.Warnf("tick failed: %v", err)
			}
		case <-stop:
			s.log.Info("simulator stopping")
			return
		}
	}
}

// Tick advances the fleet by dt seconds and writes the snapshot file.
func (s *Simulator) Tick(dt float64) error {
	// work on a copy so a failed write never leaves the baseline half
	// advanced
	next := deepcopy.Copy(s.fleet).([]simAircraft)

	for i := range next {
		s.advance(&next[i], dt)
	}

	if err := s.write(next); err != nil {
		return err
	}

	s.fleet = next
	return nil
}

func (s *Simulator) advance(ac *simAircraft, dt float64) {
	rec := &ac.Record
	lat, lon := geometry.Destination(*rec.Latitude, *rec.Longitude, ac.Track, *rec.Velocity*dt)
	*rec.Latitude = lat
	*rec.Longitude = lon

	// pinned aircraft move but keep their kinematics fixed inside the
	// anomaly envelope
	if ac.Pinned {
		return
	}
	*rec.GeoAltitude += *rec.VerticalRate * dt

	// small random walk on the free-flying traffic
	*rec.Velocity += (s.rng.Float64() - 0.5) * 4
	*rec.VerticalRate += (s.rng.Float64() - 0.5) * 0.6
	ac.Track += (s.rng.Float64() - 0.5) * 2
	if *rec.Velocity < 60 {
		*rec.Velocity = 60
	}
	if *rec.GeoAltitude < 1000 {
		*rec.GeoAltitude = 1000
	}
}

func (s *Simulator) write(fleet []simAircraft) error {
	flights := make([]model.FlightRecord, 0, len(fleet))
	for _, ac := range fleet {
		flights = append(flights, ac.Record)
	}

	doc := map[string]any{
		"timestamp": time.Now().Unix(),
		"snapshot":  flights,
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp := s.outputFile + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	// rename so the store never reads a half-written document
	if err := os.Rename(tmp, s.outputFile); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	s.log.Debugf("wrote %d flights", len(flights))
	return nil
}
