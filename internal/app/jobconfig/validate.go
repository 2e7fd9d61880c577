package jobconfig

import (
	"context"
	"fmt"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

const (
	maxSolSize          = 10
	maxPopSize          = 1000
	maxInteractiveLimit = 60
)

// StarChecker reports whether the fitting service can read a star file.
type StarChecker interface {
	CheckStar(ctx context.Context, path string) error
}

// EmailChecker rejects unusable addresses with an *EmailError.
type EmailChecker interface {
	Verify(ctx context.Context, address string) error
}

// DatabaseCatalog knows the database ids a deployment offers.
type DatabaseCatalog interface {
	Has(id string) bool
}

// Validator applies the submission rules to a derived configuration.
type Validator struct {
	stars   StarChecker
	emails  EmailChecker
	catalog DatabaseCatalog
}

func NewValidator(stars StarChecker, emails EmailChecker, catalog DatabaseCatalog) *Validator {
	return &Validator{stars: stars, emails: emails, catalog: catalog}
}

// Validate runs every rule in order and returns a *ConfigurationError holding
// all violations, or nil.
func (v *Validator) Validate(ctx context.Context, cfg *model.JobConfig) error {
	var result *multierror.Error
	logger := log.WithField("start_time", cfg.StartTime)

	if err := v.stars.CheckStar(ctx, cfg.StellarData.Path); err != nil {
		logger.WithError(err).Warn("Stellar data rejected")
		result = multierror.Append(result, &RuleError{
			Message: msgStarData,
			Cause:   fmt.Errorf("%w: %w", common.ErrData, err),
		})
	}

	if cfg.SolSize > maxSolSize {
		result = multierror.Append(result, &RuleError{Message: msgGeneSize})
	}

	if cfg.PopSize > maxPopSize {
		result = multierror.Append(result, &RuleError{Message: msgPopSize})
	}

	if cfg.TimeLimit > maxInteractiveLimit && !cfg.MailRequested {
		result = multierror.Append(result, &RuleError{Message: msgMailTimeLimit})
	}

	if cfg.MailRequested {
		if err := v.emails.Verify(ctx, cfg.Email); err != nil {
			logger.WithError(err).Info("Email address rejected")
			result = multierror.Append(result, &RuleError{
				Message: fmt.Sprintf(msgInvalidEmail, cfg.Email),
				Cause:   err,
			})
		}
	}

	if v.catalog != nil {
		for _, db := range cfg.Databases {
			if !v.catalog.Has(db) {
				result = multierror.Append(result, &RuleError{Message: fmt.Sprintf(msgUnknownDB, db)})
			}
		}
	}

	return fromMultierror(result)
}
