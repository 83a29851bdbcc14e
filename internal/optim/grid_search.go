// Package optim searches run parameters for the value that minimizes a metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/dynachem/internal/config"
	"github.com/san-kum/dynachem/internal/experiment"
)

var ErrNoCandidate = errors.New("no parameter combination completed")

// Params are the tunable knobs of a run, by name.
var Params = map[string]func(cfg *config.Config, v float64){
	"stiffness": func(c *config.Config, v float64) { c.Spring.Stiffness = v },
	"damping":   func(c *config.Config, v float64) { c.Spring.Damping = v },
	"max_force": func(c *config.Config, v float64) { c.Spring.MaxForce = v },
	"substeps":  func(c *config.Config, v float64) { c.Substeps = int(v) },
	"dt":        func(c *config.Config, v float64) { c.Dt = v },
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d params but %d ranges", len(params), len(ranges))
	}
	for _, name := range params {
		if _, ok := Params[name]; !ok {
			return nil, fmt.Errorf("unknown parameter: %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs base with every combination of the grid and returns the
// combination with the smallest value of metricName. Combinations that fail
// to build or run are skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, ok := evaluate(ctx, base, current, metricName)
		if ok && val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, base *config.Config, params map[string]float64, metricName string) (float64, bool) {
	cfg := *base
	cfg.RecordEvery = 0
	for name, v := range params {
		Params[name](&cfg, v)
	}

	exp, err := experiment.New(&cfg)
	if err != nil {
		return 0, false
	}
	if err := exp.Setup(experiment.NewRegistry(), []string{metricName}); err != nil {
		return 0, false
	}

	result, err := exp.Run(ctx)
	if err != nil {
		return 0, false
	}
	val, ok := result.Metrics[metricName]
	if !ok || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func ParamNames() []string {
	names := make([]string, 0, len(Params))
	for name := range Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
