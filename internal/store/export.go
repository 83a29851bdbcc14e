package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/sim"
)

// Trace is the exported record of a finished run.
type Trace struct {
	Preset      string             `json:"preset,omitempty"`
	Dt          float64            `json:"dt"`
	Substeps    int                `json:"substeps"`
	Frames      int                `json:"frames"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	Samples     []sim.Sample       `json:"samples"`
}

func NewTrace(preset string, cfg sim.Config, result *sim.Result) Trace {
	return Trace{
		Preset:      preset,
		Dt:          cfg.Dt,
		Substeps:    cfg.Substeps,
		Frames:      result.FramesTaken,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
		Samples:     result.Samples,
	}
}

func WriteJSON(w io.Writer, trace Trace) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(trace)
}

var csvHeader = []string{"frame", "time", "energy", "id", "species", "x", "y", "z", "vx", "vy", "vz"}

// WriteCSV writes one row per particle per sample.
func WriteCSV(w io.Writer, samples []sim.Sample) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range samples {
		for _, p := range s.Particles {
			row := []string{
				strconv.Itoa(s.Frame),
				formatFloat(s.Time),
				formatFloat(s.Energy),
				strconv.FormatUint(uint64(p.ID), 10),
				p.Species,
			}
			for _, v := range p.Position {
				row = append(row, formatFloat(v))
			}
			for _, v := range p.Velocity {
				row = append(row, formatFloat(v))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ReadCSV parses a trace written by WriteCSV. Consecutive rows with the same
// frame form one sample.
func ReadCSV(r io.Reader) ([]sim.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty trace")
	}

	samples := make([]sim.Sample, 0)
	for i, record := range records[1:] {
		line := i + 2

		frame, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		nums := make([]float64, 0, 8)
		for _, field := range []string{record[1], record[2], record[5], record[6], record[7], record[8], record[9], record[10]} {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			nums = append(nums, v)
		}
		id, err := strconv.ParseUint(record[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if len(samples) == 0 || samples[len(samples)-1].Frame != frame {
			samples = append(samples, sim.Sample{Frame: frame, Time: nums[0], Energy: nums[1]})
		}
		last := &samples[len(samples)-1]
		last.Particles = append(last.Particles, sim.ParticleState{
			ID:       particle.ID(id),
			Species:  record[4],
			Position: mgl64.Vec3{nums[2], nums[3], nums[4]},
			Velocity: mgl64.Vec3{nums[5], nums[6], nums[7]},
		})
	}
	return samples, nil
}
