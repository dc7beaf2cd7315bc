package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleJobs(t *testing.T) {
	s := New(time.UTC)

	require.NoError(t, s.Daily("snapshot", "00:30", func() {}))
	require.NoError(t, s.Every("sweep", time.Hour, func() {}))
	assert.Equal(t, 2, s.Len())
}

func TestDailyRejectsBadTime(t *testing.T) {
	s := New(time.UTC)
	assert.Error(t, s.Daily("snapshot", "25:99", func() {}))
}

func TestEveryRunsAndRecoversPanics(t *testing.T) {
	s := New(time.UTC)
	var runs int32

	require.NoError(t, s.Every("tick", 50*time.Millisecond, func() {
		atomic.AddInt32(&runs, 1)
		panic("boom")
	}))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, 2*time.Second, 10*time.Millisecond)
}
