//go:build unit

package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinebooking/internal/infra/lock"
	"cinebooking/internal/usecase/commands"
	"cinebooking/internal/worker"
	commandsmock "cinebooking/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type stubLocker struct {
	granted  bool
	err      error
	released int
}

func (l *stubLocker) TryAcquire(context.Context, string, time.Duration) (lock.Release, bool, error) {
	if l.err != nil || !l.granted {
		return nil, false, l.err
	}
	return func(context.Context) error {
		l.released++
		return nil
	}, true, nil
}

func TestSweeper_RunOnce(t *testing.T) {
	ctx := context.Background()
	cfg := worker.SweeperConfig{Interval: time.Minute, LockKey: "lock:booking:sweep"}

	t.Run("sweeps and releases the lock", func(t *testing.T) {
		expiry := commandsmock.NewMockExpiryCommands(gomock.NewController(t))
		locker := &stubLocker{granted: true}
		expiry.EXPECT().SweepExpired(gomock.Any()).Return(commands.SweepReport{Scanned: 1, Cancelled: 1}, nil)

		worker.NewSweeper(expiry, locker, cfg, nil).RunOnce(ctx)
		assert.Equal(t, 1, locker.released)
	})

	t.Run("skips when another instance holds the lock", func(t *testing.T) {
		expiry := commandsmock.NewMockExpiryCommands(gomock.NewController(t))
		expiry.EXPECT().SweepExpired(gomock.Any()).Times(0)

		worker.NewSweeper(expiry, &stubLocker{}, cfg, nil).RunOnce(ctx)
	})

	t.Run("skips when the lock backend is down", func(t *testing.T) {
		expiry := commandsmock.NewMockExpiryCommands(gomock.NewController(t))
		expiry.EXPECT().SweepExpired(gomock.Any()).Times(0)

		worker.NewSweeper(expiry, &stubLocker{err: errors.New("redis: connection refused")}, cfg, nil).RunOnce(ctx)
	})

	t.Run("sweep error still releases the lock", func(t *testing.T) {
		expiry := commandsmock.NewMockExpiryCommands(gomock.NewController(t))
		locker := &stubLocker{granted: true}
		expiry.EXPECT().SweepExpired(gomock.Any()).Return(commands.SweepReport{}, errors.New("store down"))

		worker.NewSweeper(expiry, locker, cfg, nil).RunOnce(ctx)
		assert.Equal(t, 1, locker.released)
	})
}

func TestSweeper_StartStop(t *testing.T) {
	expiry := commandsmock.NewMockExpiryCommands(gomock.NewController(t))
	swept := make(chan struct{}, 16)
	expiry.EXPECT().SweepExpired(gomock.Any()).DoAndReturn(func(context.Context) (commands.SweepReport, error) {
		select {
		case swept <- struct{}{}:
		default:
		}
		return commands.SweepReport{}, nil
	}).MinTimes(2)

	s := worker.NewSweeper(expiry, nil, worker.SweeperConfig{Interval: 10 * time.Millisecond}, nil)
	s.Start()

	for n := 0; n < 2; n++ {
		select {
		case <-swept:
		case <-time.After(2 * time.Second):
			t.Fatal("sweeper did not run")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
