package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/2sn/starfit-server/internal/app/jobconfig"
	"github.com/2sn/starfit-server/internal/app/render"
	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"
	"github.com/2sn/starfit-server/internal/domain/repository"
	"github.com/2sn/starfit-server/internal/platform/metrics"

	log "github.com/sirupsen/logrus"
)

// ConfigBuilder turns decoded fields into a validated configuration.
type ConfigBuilder interface {
	Build(ctx context.Context, raw *jobconfig.RawFields) (*model.JobConfig, error)
}

// JobQueue accepts jobs whose results are emailed.
type JobQueue interface {
	Enqueue(ctx context.Context, cfg *model.JobConfig) (*model.Job, error)
}

// Page is a rendered HTML response.
type Page struct {
	Status int
	HTML   string
	JobID  string
}

// JobService handles web form submissions.
type JobService struct {
	builder      ConfigBuilder
	queue        JobQueue
	runner       *RunnerService
	renderer     *render.Renderer
	suppressions repository.SuppressionRepository
}

func NewJobService(builder ConfigBuilder, queue JobQueue, runner *RunnerService, renderer *render.Renderer, suppressions repository.SuppressionRepository) *JobService {
	return &JobService{
		builder:      builder,
		queue:        queue,
		runner:       runner,
		renderer:     renderer,
		suppressions: suppressions,
	}
}

// Submit decodes, builds and then either queues or runs a job. Malformed
// submissions return an error matching common.ErrSchema and no page; every
// other outcome is a page.
func (s *JobService) Submit(ctx context.Context, form jobconfig.Form) (*Page, error) {
	raw, err := jobconfig.DecodeForm(form)
	if err != nil {
		metrics.Submissions.WithLabelValues("unknown", "malformed").Inc()
		return nil, err
	}

	cfg, err := s.builder.Build(ctx, raw)
	if err == nil && cfg.MailRequested {
		if err = s.checkSuppressed(ctx, cfg.Email); err != nil {
			s.runner.cleanup(cfg)
		}
	}
	if err != nil {
		if errors.Is(err, common.ErrConfiguration) {
			return s.configError(raw.Algorithm, err)
		}
		return nil, err
	}

	if cfg.MailRequested {
		job, err := s.queue.Enqueue(ctx, cfg)
		if err != nil {
			return nil, err
		}
		metrics.Submissions.WithLabelValues(string(cfg.Algorithm), "queued").Inc()
		data := s.runner.PageData(cfg, nil, s.runner.JobInfo(model.JobStatusQueued, nil))
		data.JobID = job.ID
		html, err := s.renderer.Render(render.PageSendMail, data)
		if err != nil {
			return nil, err
		}
		return &Page{Status: http.StatusAccepted, HTML: html, JobID: job.ID}, nil
	}

	html, runErr := s.runner.RunInteractive(ctx, cfg)
	if html == "" {
		return nil, runErr
	}
	if runErr != nil {
		status := common.HTTPStatusFromError(runErr)
		if status < http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}
		return &Page{Status: status, HTML: html}, nil
	}
	return &Page{Status: http.StatusOK, HTML: html}, nil
}

func (s *JobService) checkSuppressed(ctx context.Context, email string) error {
	if s.suppressions == nil {
		return nil
	}
	suppressed, err := s.suppressions.IsSuppressed(ctx, email)
	if err != nil {
		return common.Errorf("failed to check suppression list: %w", err)
	}
	if suppressed {
		return jobconfig.Unsubscribed(email)
	}
	return nil
}

func (s *JobService) configError(algorithm string, err error) (*Page, error) {
	messages := jobconfig.Messages(err)
	log.WithField("errors", messages).Info("Submission rejected")
	metrics.ConfigurationErrors.Inc()
	if !model.Algorithm(algorithm).Valid() {
		algorithm = "unknown"
	}
	metrics.Submissions.WithLabelValues(algorithm, "rejected").Inc()

	html, rerr := s.renderer.Render(render.PageConfigError, render.Data{
		Errors:   messages,
		JobInfo:  s.runner.JobInfo("Rejected", nil),
		Hostname: s.runner.hostname,
	})
	if rerr != nil {
		return nil, rerr
	}
	return &Page{Status: common.HTTPStatusFromError(err), HTML: html}, nil
}
