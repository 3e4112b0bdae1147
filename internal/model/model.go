package model

// FlightRecord is one aircraft's latest observed state. Every kinematic
// field is optional in the upstream feed, so the numerics are pointers and
// nil means absent.
type FlightRecord struct {
	ICAO24       string   `json:"icao24,omitempty"`
	Callsign     string   `json:"callsign,omitempty"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	GeoAltitude  *float64 `json:"geo_altitude"`
	BaroAltitude *float64 `json:"baro_altitude"`
	Velocity     *float64 `json:"velocity"`
	VerticalRate *float64 `json:"vertical_rate"`

	// AnomalyLabel is derived, never stored upstream. It is recomputed on
	// every read and attached to the view only.
	AnomalyLabel *string `json:"anomaly_label"`
}

// RegionSnapshot is the unit of data exchange: a timestamped, source-ordered
// list of flight records.
type RegionSnapshot struct {
	Timestamp int64          `json:"timestamp"`
	Flights   []FlightRecord `json:"flights"`
}

// AlertRecord is a denormalized view of one anomalous flight for listing.
type AlertRecord struct {
	Callsign     string   `json:"callsign"`
	ICAO24       string   `json:"icao24"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	AnomalyLabel string   `json:"anomaly_label"`
	Details      string   `json:"details"`
}

// OperationalReport bundles the ops analyst's view of one region. RawData
// carries the queried flights so downstream consumers can re-render without
// another fetch.
type OperationalReport struct {
	Region           string        `json:"region"`
	Timestamp        int64         `json:"timestamp"`
	TotalFlights     int           `json:"total_flights"`
	AnomalousFlights int           `json:"anomalous_flights"`
	Analysis         string        `json:"analysis"`
	RawData          ReportRawData `json:"raw_data"`
}

type ReportRawData struct {
	AllFlights []FlightRecord `json:"all_flights"`
	Alerts     []FlightRecord `json:"alerts"`
}

// TravelerReport is the traveler role's answer for one tracked flight.
type TravelerReport struct {
	FlightID string        `json:"flight_id"`
	Summary  string        `json:"summary"`
	Issues   string        `json:"issues,omitempty"`
	RawData  *FlightRecord `json:"raw_data,omitempty"`
}

// Float returns a pointer to v, for building records in fixtures and the
// simulator.
func Float(v float64) *float64 {
	return &v
}
