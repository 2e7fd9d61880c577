package service

import (
	"context"
	"errors"
	"testing"

	"github.com/2sn/starfit-server/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQueue = "starfit:jobs:test"

func TestEnqueue(t *testing.T) {
	rdb, _ := newRedis(t)
	repo := newMemJobRepo()
	queue := NewQueueService(repo, rdb, testQueue)
	cfg := gaConfig()
	cfg.Email = "user@example.com"
	cfg.MailRequested = true

	job, err := queue.Enqueue(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, model.JobStatusQueued, job.Status)
	assert.Equal(t, testStart, job.StartTime)

	ids, err := rdb.LRange(context.Background(), testQueue, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{job.ID}, ids)

	stored, err := repo.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)
	decoded, err := stored.Config()
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)

	depth, err := queue.Depth(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, depth)
}

func TestEnqueue_RepositoryFailureQueuesNothing(t *testing.T) {
	rdb, _ := newRedis(t)
	repo := newMemJobRepo()
	repo.err = errors.New("db down")
	queue := NewQueueService(repo, rdb, testQueue)

	_, err := queue.Enqueue(context.Background(), gaConfig())
	require.Error(t, err)

	depth, err := queue.Depth(context.Background())
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestEnqueue_PushFailureMarksJobFailed(t *testing.T) {
	// nothing listens on this address
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer rdb.Close()
	repo := newMemJobRepo()
	queue := NewQueueService(repo, rdb, testQueue)

	_, err := queue.Enqueue(context.Background(), gaConfig())
	require.Error(t, err)

	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		assert.Equal(t, model.JobStatusFailed, job.Status)
		require.NotNil(t, job.LastError)
		assert.Contains(t, *job.LastError, "could not be queued")
	}
}

func TestListJobs_ClampsLimit(t *testing.T) {
	rdb, _ := newRedis(t)
	repo := newMemJobRepo()
	queue := NewQueueService(repo, rdb, testQueue)
	for i := 0; i < 3; i++ {
		_, err := queue.Enqueue(context.Background(), gaConfig())
		require.NoError(t, err)
	}

	jobs, err := queue.ListJobs(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	jobs, err = queue.ListJobs(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
}
