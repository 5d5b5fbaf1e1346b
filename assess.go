package signalmap

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/signalmap/pkg/assess"
	"github.com/agentstation/signalmap/pkg/constants"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/logging"
)

// Assess asks an external assessor for a secondary opinion on every profile
// of res and attaches it. The deterministic scores are never changed.
// A failed assessment is recorded on its profile and does not stop the
// others; Assess only fails when ctx is done.
func Assess(ctx context.Context, res *Result, a assess.Assessor) error {
	if res == nil || len(res.Profiles) == 0 {
		return nil
	}
	if a == nil {
		return errors.NewValidationError("assessor", nil, "cannot be nil")
	}
	logger := logging.FromContext(ctx)

	var g errgroup.Group
	g.SetLimit(constants.AssessmentConcurrency)
	for i := range res.Profiles {
		if ctx.Err() != nil {
			break
		}
		sp := &res.Profiles[i]
		g.Go(func() error {
			got, err := a.Assess(ctx, assess.Summarize(sp.Profile))
			if err == nil {
				err = got.Validate()
			}
			if err != nil {
				sp.AssessmentError = err.Error()
				logger.Warn().
					Str("name", sp.Profile.CanonicalName).
					Bool("rate_limited", errors.IsRateLimited(err)).
					Err(err).
					Msg("Assessment failed")
				return nil // recorded on the profile
			}
			sp.Assessment = &got
			return nil
		})
	}
	_ = g.Wait()
	return errors.WrapCanceled(ctx.Err())
}
