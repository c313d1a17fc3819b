package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/testutil"
)

type flakySweeper struct {
	failures int
	calls    int
	seen     []time.Time
}

func (s *flakySweeper) Execute(_ context.Context, now time.Time) (int, error) {
	s.calls++
	s.seen = append(s.seen, now)
	if s.calls <= s.failures {
		return 0, errors.New("database is unavailable")
	}
	return 3, nil
}

func TestExpireHoldsJob_RetriesUntilSuccess(t *testing.T) {
	sweeper := &flakySweeper{failures: 2}
	clock := testutil.NewClock(testutil.Monday)
	job := NewExpireHoldsJob(sweeper, clock, SweepSettings{MaxRetries: 3, RetryDelay: time.Millisecond}, testutil.Logger{})

	count, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, sweeper.calls)
}

func TestExpireHoldsJob_GivesUp(t *testing.T) {
	sweeper := &flakySweeper{failures: 10}
	job := NewExpireHoldsJob(sweeper, testutil.NewClock(testutil.Monday),
		SweepSettings{MaxRetries: 2, RetryDelay: time.Millisecond}, testutil.Logger{})

	_, err := job.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, sweeper.calls)
}

func TestExpireHoldsJob_StopsOnContextCancel(t *testing.T) {
	sweeper := &flakySweeper{failures: 10}
	job := NewExpireHoldsJob(sweeper, testutil.NewClock(testutil.Monday),
		SweepSettings{MaxRetries: 5, RetryDelay: time.Hour}, testutil.Logger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := job.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sweeper.calls)
}

func TestService_AddJobValidation(t *testing.T) {
	s, err := New(testutil.Logger{})
	require.NoError(t, err)
	s.Start()
	defer func() { _ = s.Stop() }()

	_, err = s.AddJob("", "* * * * *", func() {})
	assert.ErrorIs(t, err, ErrEmptyJobName)

	_, err = s.AddJob("job", " ", func() {})
	assert.ErrorIs(t, err, ErrEmptyCronExpr)

	_, err = s.AddJob("job", "not a cron", func() {})
	assert.Error(t, err)

	job := NewExpireHoldsJob(&flakySweeper{}, testutil.NewClock(testutil.Monday),
		SweepSettings{Cron: "* * * * *"}, testutil.Logger{})
	require.NoError(t, job.Register(s))
}
