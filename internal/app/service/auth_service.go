package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/common/security"
)

// AuthService logs in the single operator account configured for the job API.
type AuthService struct {
	username     string
	passwordHash string
	tokenTTL     time.Duration
}

func NewAuthService(username, passwordHash string, tokenTTL time.Duration) *AuthService {
	return &AuthService{username: username, passwordHash: passwordHash, tokenTTL: tokenTTL}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}
	// no hash configured means operator login is disabled
	if s.passwordHash == "" {
		return nil, common.ErrUnauthorized
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	passOK := security.CheckPasswordHash(req.Password, s.passwordHash)
	if !userOK || !passOK {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(s.username, security.RoleOperator, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{
		Username:  s.username,
		Role:      security.RoleOperator,
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenTTL),
	}, nil
}
