package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/leadtime/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecuteCheck_Passed(t *testing.T) {
	cfg := testConfig()
	cfg.CheckCycle = cycleAt(5, 0)
	cfg.Now = cycleAt(5, 5)
	observations := append(history(4),
		obs(cfg.CheckCycle, 0, 3*time.Hour+40*time.Minute),
		obs(cfg.CheckCycle, 6, 4*time.Hour+10*time.Minute),
	)

	w := &MockOutputWriter{}
	w.On("WriteCheck", mock.MatchedBy(func(r *schema.CheckResult) bool {
		return r.Passed && r.Counts[schema.OnTimeStatus] == 2
	}), cfg, mock.AnythingOfType("time.Duration")).Return(nil)

	err := ExecuteCheck(context.Background(), cfg, &sliceSource{observations: observations}, w)
	require.NoError(t, err)
	w.AssertExpectations(t)
}

func TestExecuteCheck_FailedWritesTextfile(t *testing.T) {
	cfg := testConfig()
	cfg.CheckCycle = cycleAt(5, 0)
	cfg.Now = cycleAt(5, 6)
	cfg.Textfile = filepath.Join(t.TempDir(), "textfile", "leadtime.prom")
	observations := append(history(4), obs(cfg.CheckCycle, 0, 4*time.Hour)) // fh 6 never arrives

	w := &MockOutputWriter{}
	w.On("WriteCheck", mock.Anything, cfg, mock.Anything).Return(nil)

	err := ExecuteCheck(context.Background(), cfg, &sliceSource{observations: observations}, w)
	require.ErrorIs(t, err, ErrCheckFailed)

	result := w.Calls[0].Arguments.Get(0).(*schema.CheckResult)
	require.Len(t, result.Items, 2)
	assert.Equal(t, schema.LateStatus, result.Items[0].Status)
	assert.Equal(t, 20*time.Minute, result.Items[0].Deviation)
	assert.Equal(t, schema.MissingStatus, result.Items[1].Status)

	data, err := os.ReadFile(cfg.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `leadtime_check_passed{cycle="2025030500",start_hour="00"} 0`)
}

func TestExecuteCheck_Errors(t *testing.T) {
	t.Run("load error", func(t *testing.T) {
		cfg := testConfig()
		cfg.CheckCycle = cycleAt(5, 0)
		w := &MockOutputWriter{}
		err := ExecuteCheck(context.Background(), cfg, &sliceSource{err: errors.New("boom")}, w)
		assert.EqualError(t, err, "boom")
		w.AssertNotCalled(t, "WriteCheck", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("writer error", func(t *testing.T) {
		cfg := testConfig()
		cfg.CheckCycle = cycleAt(5, 0)
		cfg.Now = cycleAt(5, 1)
		w := &MockOutputWriter{}
		w.On("WriteCheck", mock.Anything, cfg, mock.Anything).Return(errors.New("disk full"))
		err := ExecuteCheck(context.Background(), cfg, &sliceSource{observations: history(4)}, w)
		assert.EqualError(t, err, "disk full")
	})

	t.Run("missing cycle", func(t *testing.T) {
		cfg := testConfig()
		src := &sliceSource{}
		err := ExecuteCheck(context.Background(), cfg, src, &MockOutputWriter{})
		require.Error(t, err)
		assert.Zero(t, src.loads)
	})
}

func TestCheck_Embedded(t *testing.T) {
	cfg := testConfig()
	cfg.CheckCycle = cycleAt(5, 0)
	cfg.Now = cycleAt(5, 1)

	result, err := Check(context.Background(), cfg, &sliceSource{observations: history(4)})
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 2, result.Counts[schema.PendingStatus])
}

func TestWatchCheck_RequiresLocalFile(t *testing.T) {
	cfg := testConfig()
	err := WatchCheck(context.Background(), cfg, &sliceSource{}, &MockOutputWriter{})
	assert.ErrorContains(t, err, "--watch")

	cfg.Input = "messages"
	cfg.InputFormat = schema.StoreInput
	err = WatchCheck(context.Background(), cfg, &sliceSource{}, &MockOutputWriter{})
	assert.ErrorContains(t, err, "--watch")
}

func TestWatchCheck_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "messages.csv")
	require.NoError(t, os.WriteFile(input, []byte("start_time,forecast_hour,time\n"), 0o644))

	cfg := testConfig()
	cfg.Input = input
	cfg.InputFormat = schema.CSVInput
	cfg.CheckCycle = cycleAt(5, 0)
	cfg.Now = cycleAt(5, 1)

	written := make(chan struct{}, 1)
	w := &MockOutputWriter{}
	w.On("WriteCheck", mock.Anything, cfg, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		select {
		case written <- struct{}{}:
		default:
		}
	})
	src := &sliceSource{observations: history(4)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- WatchCheck(ctx, cfg, src, w) }()

	select {
	case <-written:
	case <-time.After(5 * time.Second):
		t.Fatal("watch never ran the first check")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
