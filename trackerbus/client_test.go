package trackerbus

import (
	"testing"
)

func TestWriteTargetPosition_Validation(t *testing.T) {
	client := &TrackerClient{}

	tests := []struct {
		name      string
		azimuth   float64
		elevation float64
	}{
		{"azimuth negative", -1, 45},
		{"azimuth 360", 360, 45},
		{"elevation below -90", 180, -91},
		{"elevation above 90", 180, 91},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := client.WriteTargetPosition(tt.azimuth, tt.elevation); err == nil {
				t.Errorf("Expected error for azimuth=%.1f elevation=%.1f", tt.azimuth, tt.elevation)
			}
		})
	}
}

func TestRegisterCodec(t *testing.T) {
	if got := bytesToU16([]byte{0x8C, 0xA0}); got != 36000 {
		t.Errorf("bytesToU16: expected 36000, got %d", got)
	}
	if got := bytesToS16([]byte{0xDC, 0xD8}); got != -9000 {
		t.Errorf("bytesToS16: expected -9000, got %d", got)
	}
}

func TestGetTrackerState(t *testing.T) {
	if s := getTrackerState(StateTracking); s != "Tracking" {
		t.Errorf("Expected Tracking, got %s", s)
	}
	if s := getTrackerState(99); s != "Unknown (99)" {
		t.Errorf("Expected Unknown (99), got %s", s)
	}
}
