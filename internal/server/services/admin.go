// AdminService handles the operator login contract and issues/refreshes JWTs
// plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/voicetasker/voicetasker/internal/common"
	"github.com/voicetasker/voicetasker/internal/dbx"
	"github.com/voicetasker/voicetasker/internal/server/auth"
	"github.com/voicetasker/voicetasker/internal/server/config"
	"github.com/voicetasker/voicetasker/internal/server/models"
	"github.com/voicetasker/voicetasker/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AdminService verifies the single operator credential record and manages
// the admin session tokens.
type AdminService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AdminService {
	return &AdminService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Login checks the submitted username/password against the fixed credential
// record:
//   - ErrMissingFields when either field is empty,
//   - ErrAdminConfigMissing when the record does not exist,
//   - ErrInvalidCredentials when the username or password does not match.
//
// On success it returns a fresh TokenPair.
func (s *AdminService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	if username == "" || password == "" {
		return nil, common.ErrMissingFields
	}

	repo := s.repomanager.Admins(s.db)
	cred, err := repo.GetByName(ctx, common.AdminCredentialName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAdminConfigMissing
		}
		return nil, common.ErrorInternal
	}

	if cred.Username != username {
		return nil, common.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, username, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *AdminService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, common.AdminCredentialName, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// VerifyAccessToken parses an access token and reports whether the session
// is valid. Expired tokens surface ErrTokenExpired so the caller can refresh.
func (s *AdminService) VerifyAccessToken(tokenString string) error {
	_, err := auth.GetUsernameFromToken(tokenString, s.jwtSecret)
	return err
}

// Provision writes the credential record with a bcrypt hash of password.
// Used by the bootstrap path, never by login.
func (s *AdminService) Provision(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrorInternal
	}
	repo := s.repomanager.Admins(s.db)
	return repo.Upsert(ctx, &models.AdminCredential{
		Name:         common.AdminCredentialName,
		Username:     username,
		PasswordHash: hash,
	})
}

// --- helpers below ---

func (s *AdminService) generateTokenPair(ctx context.Context, username string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(username, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
