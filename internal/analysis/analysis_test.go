package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/dynachem/internal/dynamo"
	"github.com/san-kum/dynachem/internal/sim"
)

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		n    int
		dt   float64
		freq float64
	}{
		{"power of two", 256, 0.01, 5},
		{"odd length", 300, 0.01, 10},
		{"femtosecond scale", 400, 1e-17, 2.5e15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]float64, tt.n)
			for i := range data {
				data[i] = 3 + math.Sin(2*math.Pi*tt.freq*float64(i)*tt.dt)
			}

			got, err := DominantFrequency(data, tt.dt)
			if err != nil {
				t.Fatal(err)
			}
			resolution := 1 / (float64(tt.n) * tt.dt)
			if math.Abs(got-tt.freq) > resolution {
				t.Errorf("expected %g Hz, got %g", tt.freq, got)
			}
		})
	}
}

func TestDominantFrequencyShort(t *testing.T) {
	if _, err := DominantFrequency([]float64{1, 2}, 1); !errors.Is(err, ErrShortSeries) {
		t.Errorf("expected ErrShortSeries, got %v", err)
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	ps := PowerSpectrum([]float64{5, 5, 5, 5, 5, 5, 5, 5})
	for k, v := range ps {
		if v > 1e-12 {
			t.Errorf("bin %d: expected 0, got %g", k, v)
		}
	}
	if PowerSpectrum(nil) != nil {
		t.Error("expected nil spectrum for empty input")
	}
}

func samples() []sim.Sample {
	return []sim.Sample{
		{Energy: -1, Particles: []sim.ParticleState{
			{ID: 1, Position: mgl64.Vec3{0, 0, 0}},
			{ID: 2, Position: mgl64.Vec3{3, 4, 0}},
		}},
		{Energy: -2, Particles: []sim.ParticleState{
			{ID: 1, Position: mgl64.Vec3{1, 0, 0}},
			{ID: 2, Position: mgl64.Vec3{1, 0, 2}},
		}},
	}
}

func TestSeries(t *testing.T) {
	sep, err := SeparationSeries(samples(), 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if sep[0] != 5 || sep[1] != 2 {
		t.Errorf("unexpected separations %v", sep)
	}

	xs, err := RelativeCoordinate(samples(), 2, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if xs[0] != 4 || xs[1] != 0 {
		t.Errorf("unexpected coordinates %v", xs)
	}

	es := EnergySeries(samples())
	if es[0] != -1 || es[1] != -2 {
		t.Errorf("unexpected energies %v", es)
	}
}

func TestSeriesErrors(t *testing.T) {
	if _, err := SeparationSeries(samples(), 1, 9); !errors.Is(err, dynamo.ErrUnknownParticle) {
		t.Errorf("expected unknown particle, got %v", err)
	}
	if _, err := RelativeCoordinate(samples(), 1, 2, 3); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected invalid axis, got %v", err)
	}
}
