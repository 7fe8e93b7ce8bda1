// Package services implements the application workflows on top of the
// repository layer: authentication, content management, aggregation
// and the asset pipeline.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nvoloshin/folio/internal/common"
	"github.com/nvoloshin/folio/internal/dbx"
	"github.com/nvoloshin/folio/internal/logging"
	"github.com/nvoloshin/folio/internal/server/auth"
	"github.com/nvoloshin/folio/internal/server/config"
	"github.com/nvoloshin/folio/internal/server/models"
	"github.com/nvoloshin/folio/internal/server/repositories/repomanager"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		logger:                       logger.With("module", "users_service"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func (s *UserService) issueTokenPair(userID string) (*TokenPair, error) {
	access, err := auth.IssueToken(userID, auth.TokenKindAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.IssueToken(userID, auth.TokenKindRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Login checks the credentials and returns a fresh token pair. Every
// failure branch collapses into ErrUnauthorized so callers cannot tell
// a wrong password from an unknown email.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Burn the same bcrypt cost as a real comparison so
			// response timing does not reveal account existence.
			auth.CheckDummyPassword(password)
			return nil, common.ErrUnauthorized
		}
		s.logger.Error(ctx, "login lookup failed", "error", err)
		return nil, common.ErrInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrUnauthorized
	}

	if !user.IsActive {
		return nil, common.ErrUnauthorized
	}

	var tokenPair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
			return err
		}
		tokenPair, err = s.issueTokenPair(user.ID)
		return err
	})

	if err != nil {
		s.logger.Error(ctx, "login failed", "error", err)
		return nil, common.ErrInternal
	}

	return tokenPair, nil
}

// Refresh validates a refresh token and rotates it into a new pair.
// Access tokens are rejected here regardless of validity.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	if claims.Kind != auth.TokenKindRefresh {
		return nil, common.ErrUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		s.logger.Error(ctx, "refresh lookup failed", "error", err)
		return nil, common.ErrInternal
	}
	if !user.IsActive {
		return nil, common.ErrUnauthorized
	}

	tokenPair, err := s.issueTokenPair(user.ID)
	if err != nil {
		s.logger.Error(ctx, "refresh failed", "error", err)
		return nil, common.ErrInternal
	}

	return tokenPair, nil
}

// CurrentUser resolves an access token to its user.
func (s *UserService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	if claims.Kind != auth.TokenKindAccess {
		return nil, common.ErrUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		s.logger.Error(ctx, "current user lookup failed", "error", err)
		return nil, common.ErrInternal
	}
	if !user.IsActive {
		return nil, common.ErrUnauthorized
	}

	return user, nil
}
