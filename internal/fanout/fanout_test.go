package fanout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vicut/vicut/internal/executor"
)

func TestRunPreservesInputOrder(t *testing.T) {
	items := []WorkItem{
		{Source: "a", Input: "The quick brown fox", Run: moveAndCapture("dw")},
		{Source: "b", Input: "one two three", Run: moveAndCapture("dw")},
		{Source: "c", Input: "red green blue", Run: moveAndCapture("dw")},
	}

	units := Run(context.Background(), items, 2)
	require.Len(t, units, 3)
	require.Equal(t, "a", units[0].Source)
	require.Equal(t, "b", units[1].Source)
	require.Equal(t, "c", units[2].Source)
	require.Equal(t, "quick brown fox", units[0].Buffer)
	require.Equal(t, "two three", units[1].Buffer)
	require.Equal(t, "green blue", units[2].Buffer)
}

func TestRunRecordsPerUnitErrorWithoutAbortingOthers(t *testing.T) {
	items := []WorkItem{
		{Source: "ok", Input: "abc", Run: moveAndCapture("l")},
		{Source: "bad", Input: "abc", Run: func(_ context.Context, _ *executor.Executor) (string, []string, error) {
			return "", nil, errors.New("boom")
		}},
		{Source: "ok2", Input: "abc", Run: moveAndCapture("l")},
	}

	units := Run(context.Background(), items, 2)
	require.Len(t, units, 3)
	require.NoError(t, units[0].Err)
	require.Error(t, units[1].Err)
	require.NoError(t, units[2].Err)
}

func TestRunRecoversPanicAsPerUnitError(t *testing.T) {
	items := []WorkItem{
		{Source: "panics", Input: "abc", Run: func(_ context.Context, _ *executor.Executor) (string, []string, error) {
			panic("kaboom")
		}},
		{Source: "fine", Input: "abc", Run: moveAndCapture("l")},
	}

	units := Run(context.Background(), items, 2)
	require.Len(t, units, 2)
	require.Error(t, units[0].Err)
	require.Contains(t, units[0].Err.Error(), "kaboom")
	require.NoError(t, units[1].Err)
}

func TestJobsDefaultsWhenNonPositive(t *testing.T) {
	require.Greater(t, Jobs(0), 0)
	require.Greater(t, Jobs(-1), 0)
	require.Equal(t, 4, Jobs(4))
}

func moveAndCapture(keys string) func(context.Context, *executor.Executor) (string, []string, error) {
	return func(ctx context.Context, ex *executor.Executor) (string, []string, error) {
		if err := ex.MoveCursor(ctx, keys); err != nil {
			return "", nil, err
		}
		return ex.Buffer(), nil, nil
	}
}
