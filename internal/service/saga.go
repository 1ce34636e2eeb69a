package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// sagaStep pairs a forward action with the compensation that undoes it. The
// compensation only runs when a later step fails.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// saga runs steps in order and unwinds completed steps in reverse when one
// fails. Compensation failures are logged and swallowed so the original error
// surfaces to the caller.
type saga struct {
	steps  []sagaStep
	logger zerolog.Logger
}

func newSaga(logger zerolog.Logger) *saga {
	return &saga{logger: logger}
}

func (s *saga) add(name string, run, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, sagaStep{name: name, run: run, compensate: compensate})
}

func (s *saga) execute(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.run(ctx); err != nil {
			s.unwind(ctx, i-1)
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

func (s *saga) unwind(ctx context.Context, from int) {
	for i := from; i >= 0; i-- {
		step := s.steps[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil {
			s.logger.Error().Err(err).Str("step", step.name).Msg("saga compensation failed")
		}
	}
}
