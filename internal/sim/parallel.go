package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Member is one independent run of an Ensemble.
type Member struct {
	System *System
	Frames int
	Source AnchorSource
}

// Ensemble runs independent systems concurrently. Members must not share
// particles or anchor sources.
type Ensemble struct {
	members []Member
	limit   int
}

func NewEnsemble(members ...Member) *Ensemble {
	return &Ensemble{members: members, limit: -1}
}

// SetLimit caps the number of members running at once. Negative means no cap.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run returns one result per member, in member order. The first failing
// member cancels the others.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.members))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i, m := range e.members {
		g.Go(func() error {
			res, err := m.System.Run(ctx, m.Frames, m.Source)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
