package worker

import (
	"context"
	"errors"
	"time"

	"github.com/2sn/starfit-server/internal/app/service"
	"github.com/2sn/starfit-server/internal/domain/model"
	"github.com/2sn/starfit-server/internal/domain/repository"
	"github.com/2sn/starfit-server/internal/platform/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// releaseLock deletes the lock only while we still own it.
var releaseLock = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Runner executes a job and renders its pages.
type Runner interface {
	Execute(ctx context.Context, cfg *model.JobConfig) (*service.Outcome, error)
	JobInfo(status string, err error) *model.JobInfo
}

// Notifier emails job outcomes.
type Notifier interface {
	SendResults(ctx context.Context, cfg *model.JobConfig, outcome *service.Outcome) error
	SendFailure(ctx context.Context, cfg *model.JobConfig, info *model.JobInfo) error
}

// Cleaner removes the scratch files of a job.
type Cleaner interface {
	Cleanup(startTime string) error
}

type Options struct {
	QueueName string
	LockKey   string
	LockTTL   time.Duration
}

// JobWorker runs emailed jobs from the Redis queue one at a time.
type JobWorker struct {
	rdb      *redis.Client
	jobRepo  repository.JobRepository
	runner   Runner
	notifier Notifier
	scratch  Cleaner
	opts     Options
}

func NewJobWorker(rdb *redis.Client, jobRepo repository.JobRepository, runner Runner, notifier Notifier, scratch Cleaner, opts Options) *JobWorker {
	return &JobWorker{
		rdb:      rdb,
		jobRepo:  jobRepo,
		runner:   runner,
		notifier: notifier,
		scratch:  scratch,
		opts:     opts,
	}
}

func (w *JobWorker) Start(ctx context.Context) {
	log.WithField("queue", w.opts.QueueName).Info("Job worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Job worker stopping...")
			return
		default:
		}

		// a finite timeout lets the loop notice shutdown
		res, err := w.rdb.BRPop(ctx, 5*time.Second, w.opts.QueueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			log.WithError(err).WithField("queue", w.opts.QueueName).Error("Failed to BRPop from Redis queue")
			sleep(ctx, 5*time.Second)
			continue
		}

		// res is [queueName, value]
		if len(res) < 2 || res[1] == "" {
			log.Warn("BRPop returned empty job ID")
			continue
		}
		if depth, err := w.rdb.LLen(ctx, w.opts.QueueName).Result(); err == nil {
			metrics.QueueDepth.Set(float64(depth))
		}

		if !w.ProcessWithLock(ctx, res[1]) {
			sleep(ctx, time.Second)
		}
	}
}

// ProcessWithLock runs one job while holding the single-runner lock. A job
// that cannot get the lock goes back on the queue and false is returned.
func (w *JobWorker) ProcessWithLock(ctx context.Context, jobID string) bool {
	logger := log.WithField("job_id", jobID)
	lockValue := uuid.NewString()

	ok, err := w.rdb.SetNX(ctx, w.opts.LockKey, lockValue, w.opts.LockTTL).Result()
	if err != nil {
		logger.WithError(err).Error("Failed to attempt lock acquisition")
		w.requeue(ctx, jobID)
		return false
	}
	if !ok {
		logger.Info("Run lock held elsewhere, re-queueing job")
		w.requeue(ctx, jobID)
		return false
	}

	defer func() {
		deleted, err := releaseLock.Run(context.WithoutCancel(ctx), w.rdb, []string{w.opts.LockKey}, lockValue).Int64()
		switch {
		case err != nil:
			logger.WithError(err).Error("Failed to release run lock")
		case deleted != 1:
			logger.Warn("Run lock expired before release")
		}
	}()

	w.Process(ctx, jobID)
	return true
}

func (w *JobWorker) requeue(ctx context.Context, jobID string) {
	if err := w.rdb.RPush(ctx, w.opts.QueueName, jobID).Err(); err != nil {
		log.WithError(err).WithField("job_id", jobID).Error("Failed to re-queue job")
	}
}

// Process runs a queued job and emails the outcome. Jobs are tried once.
func (w *JobWorker) Process(ctx context.Context, jobID string) {
	logger := log.WithField("job_id", jobID)

	job, err := w.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		logger.WithError(err).Error("Failed to fetch job")
		return
	}
	if job.Status != model.JobStatusQueued {
		logger.WithField("status", job.Status).Warn("Job already processed, skipping")
		return
	}

	cfg, err := job.Config()
	if err != nil {
		w.fail(ctx, job.ID, "corrupt job payload: "+err.Error())
		return
	}
	logger = logger.WithFields(log.Fields{"algorithm": cfg.Algorithm, "start_time": cfg.StartTime})
	defer func() {
		if err := w.scratch.Cleanup(cfg.StartTime); err != nil {
			logger.WithError(err).Warn("Failed to remove scratch files")
		}
	}()

	if err := w.jobRepo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusRunning, nil); err != nil {
		logger.WithError(err).Error("Failed to mark job running")
	}
	if err := w.jobRepo.IncrementJobAttempts(ctx, nil, job.ID); err != nil {
		logger.WithError(err).Error("Failed to count job attempt")
	}

	outcome, err := w.runner.Execute(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("Job failed")
		w.fail(ctx, job.ID, err.Error())
		metrics.Submissions.WithLabelValues(string(cfg.Algorithm), "failed").Inc()
		if nerr := w.notifier.SendFailure(ctx, cfg, w.runner.JobInfo(model.JobStatusFailed, err)); nerr != nil {
			logger.WithError(nerr).Error("Failed to email job failure")
		}
		return
	}
	metrics.Submissions.WithLabelValues(string(cfg.Algorithm), "completed").Inc()

	if err := w.jobRepo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusCompleted, nil); err != nil {
		logger.WithError(err).Error("Failed to mark job completed")
	}

	if err := w.notifier.SendResults(ctx, cfg, outcome); err != nil {
		logger.WithError(err).Error("Failed to email results")
		w.fail(ctx, job.ID, err.Error())
		return
	}
	if err := w.jobRepo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusMailed, nil); err != nil {
		logger.WithError(err).Error("Failed to mark job mailed")
	}
	logger.Info("Job results mailed")
}

func (w *JobWorker) fail(ctx context.Context, jobID, msg string) {
	if err := w.jobRepo.UpdateJobStatus(ctx, nil, jobID, model.JobStatusFailed, &msg); err != nil {
		log.WithError(err).WithField("job_id", jobID).Error("Failed to mark job failed")
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
