package service

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/2sn/starfit-server/internal/app/render"
	"github.com/2sn/starfit-server/internal/common/security"
	"github.com/2sn/starfit-server/internal/domain/model"
	"github.com/2sn/starfit-server/internal/platform/mailer"
	"github.com/2sn/starfit-server/internal/platform/metrics"

	log "github.com/sirupsen/logrus"
)

const (
	resultsSubject = "StarFit Results"
	failureSubject = "StarFit job failed"

	unsubscribeMailto = "?subject=Unsubscribe&body=%5BAutomated%20message%5D%0D%0APlease%20unsubscribe%20me%20from%20all%20future%20emails."
)

// NotifyService emails job results and failures to submitters.
type NotifyService struct {
	sender   mailer.Sender
	runner   *RunnerService
	renderer *render.Renderer
	hostname string
	bcc      string
}

func NewNotifyService(sender mailer.Sender, runner *RunnerService, renderer *render.Renderer, hostname, bcc string) *NotifyService {
	return &NotifyService{sender: sender, runner: runner, renderer: renderer, hostname: hostname, bcc: bcc}
}

// SendResults mails the result page with the plots, the plot data and, when
// present, the full multi-star table and the uploaded star file attached.
func (s *NotifyService) SendResults(ctx context.Context, cfg *model.JobConfig, outcome *Outcome) error {
	data := s.runner.PageData(cfg, outcome, s.runner.JobInfo(model.JobStatusCompleted, nil))
	unsubscribe, err := s.unsubscribeURL(cfg.Email)
	if err != nil {
		return err
	}
	data.UnsubscribeURL = unsubscribe

	body, err := s.renderer.Render(render.PageEmail, data)
	if err != nil {
		return err
	}

	attachments := make([]mailer.Attachment, 0, len(outcome.Plots)+3)
	for _, p := range outcome.Plots {
		attachments = append(attachments, mailer.Attachment{Name: p.Name, Data: p.Data})
	}
	if cfg.Algorithm == model.AlgorithmMulti {
		attachments = append(attachments, mailer.Attachment{Name: "full_results.txt", Data: outcome.FullResults})
	}
	attachments = append(attachments, mailer.Attachment{
		Name: fmt.Sprintf("plot_data_points_%s.txt", cfg.StellarData.Filename),
		Data: outcome.PlotData,
	})
	if cfg.StellarData.Uploaded {
		upload, err := os.ReadFile(cfg.StellarData.Path)
		if err != nil {
			log.WithError(err).WithField("start_time", cfg.StartTime).Warn("Uploaded star file missing, not attaching it")
		} else {
			attachments = append(attachments, mailer.Attachment{Name: cfg.StellarData.Filename, Data: upload})
		}
	}

	return s.send("results", s.envelope(cfg.Email, resultsSubject, body, unsubscribe, attachments))
}

// SendFailure mails the failure page for a queued job that could not run.
func (s *NotifyService) SendFailure(ctx context.Context, cfg *model.JobConfig, info *model.JobInfo) error {
	data := s.runner.PageData(cfg, nil, info)
	body, err := s.renderer.Render(render.PageJobFail, data)
	if err != nil {
		return err
	}
	unsubscribe, err := s.unsubscribeURL(cfg.Email)
	if err != nil {
		return err
	}
	return s.send("failure", s.envelope(cfg.Email, failureSubject, body, unsubscribe, nil))
}

func (s *NotifyService) envelope(to, subject, body, unsubscribe string, attachments []mailer.Attachment) mailer.Envelope {
	return mailer.Envelope{
		From:    fmt.Sprintf("StarFit <results@%s>", s.hostname),
		To:      to,
		Bcc:     s.bcc,
		Subject: subject,
		Headers: map[string]string{
			"List-Unsubscribe": fmt.Sprintf("<mailto:%s%s>, <%s>", s.bcc, unsubscribeMailto, unsubscribe),
		},
		HTMLBody:    body,
		Attachments: attachments,
	}
}

func (s *NotifyService) send(kind string, e mailer.Envelope) error {
	if err := s.sender.Send(mailer.Compose(e)); err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "failed").Inc()
		return err
	}
	metrics.EmailsSent.WithLabelValues(kind, "sent").Inc()
	log.WithFields(log.Fields{"to": e.To, "kind": kind, "attachments": len(e.Attachments)}).Info("Email sent")
	return nil
}

func (s *NotifyService) unsubscribeURL(email string) (string, error) {
	token, err := security.UnsubscribeToken(email)
	if err != nil {
		return "", fmt.Errorf("failed to sign unsubscribe token: %w", err)
	}
	return fmt.Sprintf("https://%s/unsubscribe?token=%s", s.hostname, url.QueryEscape(token)), nil
}
