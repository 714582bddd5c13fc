package shake

import (
	"math"
	"testing"

	"github.com/relabs-tech/shake_dice/internal/motion"
)

func TestMagnitude(t *testing.T) {
	tests := []struct {
		name   string
		sample motion.Sample
		want   float64
	}{
		{name: "zero", sample: motion.Sample{}, want: 0},
		{name: "all positive", sample: motion.Sample{X: 1, Y: 1, Z: 1}, want: 3},
		{name: "mixed signs", sample: motion.Sample{X: -1.5, Y: 0.5, Z: -0.25}, want: 2.25},
		{name: "NaN counts as zero", sample: motion.Sample{X: math.NaN(), Y: 1, Z: 1}, want: 2},
		{name: "Inf counts as zero", sample: motion.Sample{X: math.Inf(1), Y: math.Inf(-1), Z: 0.5}, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Magnitude(tt.sample); got != tt.want {
				t.Errorf("Magnitude(%+v) = %v, want %v", tt.sample, got, tt.want)
			}
		})
	}
}

func TestDetector_Trigger(t *testing.T) {
	d := NewDetector(DefaultThreshold)

	tests := []struct {
		name    string
		sample  motion.Sample
		rolling bool
		want    bool
	}{
		{name: "strong while resting", sample: motion.Sample{X: 1, Y: 1, Z: 1}, want: true},
		{name: "strong while rolling", sample: motion.Sample{X: 1, Y: 1, Z: 1}, rolling: true, want: false},
		{name: "weak while resting", sample: motion.Sample{X: 0.5, Y: 0.5, Z: 0.5}, want: false},
		{name: "weak while rolling", sample: motion.Sample{X: 0.5, Y: 0.5, Z: 0.5}, rolling: true, want: false},
		{name: "exactly at threshold", sample: motion.Sample{X: 1, Y: 1, Z: 0.5}, want: false},
		{name: "negative axes", sample: motion.Sample{X: -2, Y: 0, Z: -1}, want: true},
		{name: "garbage input", sample: motion.Sample{X: math.NaN(), Y: math.Inf(1), Z: math.NaN()}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Trigger(tt.sample, tt.rolling); got != tt.want {
				t.Errorf("Trigger(%+v, rolling=%v) = %v, want %v", tt.sample, tt.rolling, got, tt.want)
			}
		})
	}
}

func TestNewDetector_InvalidThreshold(t *testing.T) {
	for _, th := range []float64{0, -1, math.NaN()} {
		if d := NewDetector(th); d.Threshold != DefaultThreshold {
			t.Errorf("NewDetector(%v).Threshold = %v, want %v", th, d.Threshold, DefaultThreshold)
		}
	}
}
