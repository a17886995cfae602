package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSweeper) SweepPastAppointments(ctx context.Context) (int, error) {
	f.calls.Add(1)
	return 2, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegisterRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(quietLogger())
	err := s.RegisterAppointmentSweep("every now and then", &fakeSweeper{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), AppointmentSweepJob)

	// six fields are not accepted either
	require.Error(t, s.RegisterAppointmentSweep("0 */15 * * * *", &fakeSweeper{}))
}

func TestRegisterAcceptsFiveFieldSchedule(t *testing.T) {
	s := NewScheduler(quietLogger())
	require.NoError(t, s.RegisterAppointmentSweep("*/15 * * * *", &fakeSweeper{}))
	assert.Len(t, s.cron.Entries(), 1)
}

func TestRunNowReportsErrors(t *testing.T) {
	s := NewScheduler(quietLogger())
	sweeper := &fakeSweeper{err: errors.New("store down")}

	ran := s.RunNow(AppointmentSweepJob, func(ctx context.Context) error {
		_, err := sweeper.SweepPastAppointments(ctx)
		return err
	})
	assert.True(t, ran)
	assert.Equal(t, int32(1), sweeper.calls.Load())
}

func TestRunNowSkipsOverlappingRun(t *testing.T) {
	s := NewScheduler(quietLogger())
	var inner bool
	ran := s.RunNow("job", func(ctx context.Context) error {
		inner = s.RunNow("job", func(ctx context.Context) error { return nil })
		return nil
	})
	assert.True(t, ran)
	assert.False(t, inner)

	// the slot is released afterwards
	assert.True(t, s.RunNow("job", func(ctx context.Context) error { return nil }))
}

func TestStopWithoutStart(t *testing.T) {
	s := NewScheduler(quietLogger())
	s.Stop(context.Background())
}
