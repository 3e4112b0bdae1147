package geometry

import (
	"math"
	"testing"
)

func TestDistNM(t *testing.T) {
	tests := []struct {
		label                  string
		la1, lo1, la2, lo2     float64
		want, tol              float64
	}{
		{"same point", 51.47, -0.45, 51.47, -0.45, 0, 0.001},
		{"one degree of latitude", 51.0, 0.0, 52.0, 0.0, 60.0, 0.2},
		{"dateline crossing", 0.0, 179.5, 0.0, -179.5, 60.0, 0.2},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.label, func(t *testing.T) {
			got := DistNM(tc.la1, tc.lo1, tc.la2, tc.lo2)
			if math.Abs(got-tc.want) > tc.tol {
				t.Fatalf("DistNM = %f, want %f +/- %f", got, tc.want, tc.tol)
			}
		})
	}
}

func TestDestination(t *testing.T) {
	// Project 60nm due north and measure the distance back.
	lat, lon := Destination(40.0, -74.0, 0, 60*1852.0)
	if lat <= 40.0 {
		t.Fatalf("expected northward movement, got lat %f", lat)
	}
	if back := DistNM(40.0, -74.0, lat, lon); math.Abs(back-60.0) > 0.2 {
		t.Fatalf("round trip distance = %f, want ~60", back)
	}
}

func TestDestinationWrapsLongitude(t *testing.T) {
	_, lon := Destination(0.0, 179.9, 90, 60*1852.0)
	if lon > 180 || lon < -180 {
		t.Fatalf("longitude not wrapped: %f", lon)
	}
	if lon > 0 {
		t.Fatalf("expected wrap to negative longitude, got %f", lon)
	}
}
