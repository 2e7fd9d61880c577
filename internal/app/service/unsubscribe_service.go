package service

import (
	"context"
	"fmt"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/common/security"
	"github.com/2sn/starfit-server/internal/domain/repository"

	log "github.com/sirupsen/logrus"
)

// UnsubscribeService adds addresses from signed unsubscribe links to the
// suppression list.
type UnsubscribeService struct {
	suppressions repository.SuppressionRepository
}

func NewUnsubscribeService(suppressions repository.SuppressionRepository) *UnsubscribeService {
	return &UnsubscribeService{suppressions: suppressions}
}

// Unsubscribe validates token and suppresses the address it was issued for.
func (s *UnsubscribeService) Unsubscribe(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrBadRequest
	}
	email, err := security.ParseUnsubscribeToken(token)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, common.ErrBadRequest)
	}
	if err := s.suppressions.Add(ctx, email); err != nil {
		return "", err
	}
	log.WithField("email", email).Info("Address unsubscribed")
	return email, nil
}
