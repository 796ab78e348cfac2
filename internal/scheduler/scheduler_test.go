package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingJob struct {
	calls atomic.Int32
	err   error
}

func (j *countingJob) SampleAndStore(ctx context.Context) error {
	j.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	return j.err
}

func TestStartRunsJobImmediately(t *testing.T) {
	job := &countingJob{}
	s := New(job, time.Minute, zap.NewNop())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStartWithoutJob(t *testing.T) {
	s := New(nil, time.Minute, nil)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestRunSwallowsJobErrors(t *testing.T) {
	job := &countingJob{err: errors.New("disk full")}
	s := New(job, 0, zap.NewNop())

	s.run()
	s.run()
	assert.Equal(t, int32(2), job.calls.Load())
}
