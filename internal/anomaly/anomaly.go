// Package anomaly flags flights whose kinematic state falls outside normal
// flight-envelope expectations. The thresholds are hand-tuned heuristics
// and the rule order is significant: the first matching rule wins, so an
// aircraft satisfying several rules surfaces a single deliberate label.
package anomaly

import (
	"math"

	"github.com/curbz/skywatch/internal/model"
)

// Anomaly labels, in rule precedence order.
const (
	LabelLowSpeedHighAlt = "low speed at high altitude"
	LabelRapidVertical   = "rapid vertical change"
	LabelStationaryLow   = "stationary at low altitude"
)

// reading is the coerced kinematic state a rule predicate sees. Absent or
// unusable source values have already been normalized to 0.
type reading struct {
	Altitude     float64 // metres, geometric preferred over barometric
	Speed        float64 // m/s
	VerticalRate float64 // m/s, signed
}

type rule struct {
	label string
	match func(reading) bool
}

// rules is evaluated in order with early exit. Keep new rules at the end
// unless they are meant to shadow an existing one.
var rules = []rule{
	{
		label: LabelLowSpeedHighAlt,
		match: func(r reading) bool { return r.Altitude > 3000 && r.Speed < 40 },
	},
	{
		label: LabelRapidVertical,
		match: func(r reading) bool { return math.Abs(r.VerticalRate) > 15 },
	},
	{
		label: LabelStationaryLow,
		match: func(r reading) bool { return r.Altitude < 300 && r.Speed < 5 },
	},
}

// Classify maps one flight record to an anomaly label, or "" when none
// applies. It is pure and total: no I/O, no mutation, never fails.
func Classify(f *model.FlightRecord) string {
	r := coerce(f)
	for _, rl := range rules {
		if rl.match(r) {
			return rl.label
		}
	}
	return ""
}

// Label is Classify returning the pointer form used on wire views: nil for
// no anomaly.
func Label(f *model.FlightRecord) *string {
	if l := Classify(f); l != "" {
		return &l
	}
	return nil
}

// coerce collapses the optional source fields into concrete numbers.
// Absence is defined to mean zero, never "unknown" - a record with no
// kinematics at all therefore reads as stationary on the ground.
func coerce(f *model.FlightRecord) reading {
	alt := f.GeoAltitude
	if alt == nil {
		alt = f.BaroAltitude
	}
	return reading{
		Altitude:     safeFloat(alt),
		Speed:        safeFloat(f.Velocity),
		VerticalRate: safeFloat(f.VerticalRate),
	}
}

func safeFloat(v *float64) float64 {
	if v == nil {
		return 0.0
	}
	return *v
}
