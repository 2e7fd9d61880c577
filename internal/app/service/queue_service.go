package service

import (
	"context"
	"encoding/json"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"
	"github.com/2sn/starfit-server/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// QueueService persists emailed jobs and hands their ids to the worker.
type QueueService struct {
	jobRepo   repository.JobRepository
	rdb       *redis.Client
	queueName string
}

func NewQueueService(jobRepo repository.JobRepository, rdb *redis.Client, queueName string) *QueueService {
	return &QueueService{jobRepo: jobRepo, rdb: rdb, queueName: queueName}
}

// Enqueue creates the job record and pushes its id to Redis. The record is
// written first so the worker always finds it; a failed push marks it failed.
func (s *QueueService) Enqueue(ctx context.Context, cfg *model.JobConfig) (*model.Job, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, common.Errorf("failed to marshal job config: %w", err)
	}

	job := &model.Job{
		ID:        uuid.NewString(),
		StartTime: cfg.StartTime,
		Algorithm: cfg.Algorithm,
		Email:     cfg.Email,
		Status:    model.JobStatusQueued,
		Payload:   payload,
	}

	if err := s.jobRepo.CreateJob(ctx, nil, job); err != nil {
		return nil, common.Errorf("failed to create job in DB: %w", err)
	}

	if err := s.rdb.LPush(ctx, s.queueName, job.ID).Err(); err != nil {
		msg := "could not be queued: " + err.Error()
		if uerr := s.jobRepo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusFailed, &msg); uerr != nil {
			log.WithError(uerr).WithField("job_id", job.ID).Error("Failed to mark unqueued job as failed")
		}
		return nil, common.Errorf("failed to push job ID to Redis queue: %w", err)
	}

	log.WithFields(log.Fields{"job_id": job.ID, "algorithm": job.Algorithm, "start_time": job.StartTime}).Info("Job enqueued")
	return job, nil
}

// Depth is the number of jobs waiting in the queue.
func (s *QueueService) Depth(ctx context.Context) (int64, error) {
	return s.rdb.LLen(ctx, s.queueName).Result()
}

// GetJob returns a job record.
func (s *QueueService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return s.jobRepo.GetJobByID(ctx, id)
}

// ListJobs returns the most recent job records, newest first.
func (s *QueueService) ListJobs(ctx context.Context, limit int) ([]*model.Job, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.jobRepo.ListRecentJobs(ctx, limit)
}
