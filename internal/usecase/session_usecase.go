package usecase

import (
	"context"
	"time"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/apperror"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/infrastructure/cache"
	"clinic-scheduler/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidRole    = apperror.Validation("INVALID_ROLE", "unknown role")
	ErrMissingTokenID = apperror.Validation("TOKEN_ID_REQUIRED", "token id is required")
)

// SessionUsecase signs and revokes access tokens. Credentials are checked by
// the identity service before a token is issued.
type SessionUsecase interface {
	IssueToken(ctx context.Context, req *dto.IssueTokenRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, tokenID string) error
}

type sessionUsecase struct {
	log        *logrus.Logger
	jwtService *jwt.JWTService
	tokenStore cache.TokenRevocationStore
}

func NewSessionUsecase(log *logrus.Logger, jwtService *jwt.JWTService, tokenStore cache.TokenRevocationStore) SessionUsecase {
	return &sessionUsecase{
		log:        log,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

func (u *sessionUsecase) IssueToken(ctx context.Context, req *dto.IssueTokenRequest) (*dto.TokenResponse, error) {
	if req.UserID == uuid.Nil {
		return nil, apperror.Validation("USER_REQUIRED", "user_id is required")
	}
	if !entity.IsValidRoleID(req.RoleID) {
		return nil, ErrInvalidRole
	}

	token, tokenID, err := u.jwtService.GenerateAccessToken(req.UserID, req.Email, req.RoleID)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	u.log.Infof("Access token issued: user=%s, token=%s", req.UserID, tokenID)
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(u.jwtService.GetAccessExpiry() / time.Second),
	}, nil
}

// Logout revokes the token for the rest of its lifetime.
func (u *sessionUsecase) Logout(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return ErrMissingTokenID
	}

	if err := u.tokenStore.Revoke(ctx, tokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to revoke token %s: %+v", tokenID, err)
		return err
	}

	u.log.Infof("Access token revoked: token=%s", tokenID)
	return nil
}
