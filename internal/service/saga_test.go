package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSagaRunsStepsInOrder(t *testing.T) {
	var order []string

	chain := newSaga(zerolog.Nop())
	chain.add("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	}, nil)
	chain.add("second", func(context.Context) error {
		order = append(order, "second")
		return nil
	}, nil)

	require.NoError(t, chain.execute(context.Background()))
	require.Equal(t, []string{"first", "second"}, order)
}

func TestSagaUnwindsCompletedStepsInReverse(t *testing.T) {
	var events []string
	boom := errors.New("boom")

	chain := newSaga(zerolog.Nop())
	chain.add("first",
		func(context.Context) error { events = append(events, "run first"); return nil },
		func(context.Context) error { events = append(events, "undo first"); return nil },
	)
	chain.add("second",
		func(context.Context) error { events = append(events, "run second"); return nil },
		func(context.Context) error { events = append(events, "undo second"); return nil },
	)
	chain.add("third",
		func(context.Context) error { return boom },
		func(context.Context) error { events = append(events, "undo third"); return nil },
	)

	err := chain.execute(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"run first", "run second", "undo second", "undo first"}, events)
}

func TestSagaCompensationFailureDoesNotMaskOriginalError(t *testing.T) {
	boom := errors.New("boom")

	chain := newSaga(zerolog.Nop())
	chain.add("first",
		func(context.Context) error { return nil },
		func(context.Context) error { return errors.New("compensation failed") },
	)
	chain.add("second",
		func(context.Context) error { return boom },
		nil,
	)

	err := chain.execute(context.Background())
	require.ErrorIs(t, err, boom)
}
