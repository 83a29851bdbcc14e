package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/dynachem/internal/config"
	"github.com/san-kum/dynachem/internal/dynamo"
	"github.com/san-kum/dynachem/internal/sim"
)

type SweepPoint struct {
	Substeps    int
	EnergyDrift float64
	Result      *sim.Result
}

// Sweep runs cfg once per substep count, concurrently, and reports the energy
// drift of each run. The frame dt is the same for all runs.
func Sweep(ctx context.Context, cfg *config.Config, substeps []int, limit int) ([]SweepPoint, error) {
	members := make([]sim.Member, 0, len(substeps))
	for _, n := range substeps {
		if n < 1 {
			return nil, fmt.Errorf("substeps must be at least 1, got %d: %w", n, dynamo.ErrInvalidConfig)
		}

		run := *cfg
		run.Substeps = n
		run.RecordEvery = 0

		e, err := New(&run)
		if err != nil {
			return nil, err
		}
		members = append(members, sim.Member{System: e.simulator, Frames: run.Frames, Source: e.script})
	}

	ens := sim.NewEnsemble(members...)
	if limit > 0 {
		ens.SetLimit(limit)
	}
	results, err := ens.Run(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(results))
	for i, r := range results {
		points[i] = SweepPoint{Substeps: substeps[i], EnergyDrift: r.EnergyDrift, Result: r}
	}
	return points, nil
}
