package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracker-server/internal/models"
	"tracker-server/internal/repository"
)

// TokenService issues and resolves the opaque API tokens that authenticate
// progress requests.
type TokenService interface {
	// CreateToken issues a new token for the user. Fails with
	// models.ErrTokenLimitReached once the per-user cap is hit.
	CreateToken(ctx context.Context, userID, note string, permissions []string) (*models.APIToken, error)
	ListTokens(ctx context.Context, userID string) ([]models.APIToken, error)
	// DeleteToken revokes a token the user owns; models.ErrTokenNotFound
	// for unknown values and tokens of other users.
	DeleteToken(ctx context.Context, userID, tokenValue string) error
	// ResolveToken authenticates a token value, bumping its usage counter.
	// models.ErrTokenNotFound for unknown or revoked values.
	ResolveToken(ctx context.Context, tokenValue string) (*models.APIToken, error)
}

var _ TokenService = (*tokenService)(nil)

type tokenService struct {
	logger    *zap.Logger
	repo      repository.TokenRepository
	cache     repository.TokenCache
	db        repository.DBTX
	maxTokens int
	cacheTTL  time.Duration
}

func NewTokenService(
	repo repository.TokenRepository,
	cache repository.TokenCache,
	db repository.DBTX,
	maxTokens int,
	cacheTTL time.Duration,
	logger *zap.Logger,
) TokenService {
	return &tokenService{
		logger:    logger.Named("TokenService"),
		repo:      repo,
		cache:     cache,
		db:        db,
		maxTokens: maxTokens,
		cacheTTL:  cacheTTL,
	}
}

func (s *tokenService) CreateToken(ctx context.Context, userID, note string, permissions []string) (*models.APIToken, error) {
	if err := validatePermissions(permissions); err != nil {
		return nil, err
	}

	count, err := s.repo.CountByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}
	if count >= s.maxTokens {
		return nil, fmt.Errorf("%w: at most %d tokens per user", models.ErrTokenLimitReached, s.maxTokens)
	}

	token := &models.APIToken{
		Token:       uuid.NewString(),
		UserID:      userID,
		Note:        note,
		Permissions: permissions,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, s.db, token); err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	s.cacheSet(ctx, token)
	s.logger.Info("API token created",
		zap.String("userId", userID), zap.Strings("permissions", permissions))
	return token, nil
}

func (s *tokenService) ListTokens(ctx context.Context, userID string) ([]models.APIToken, error) {
	tokens, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

func (s *tokenService) DeleteToken(ctx context.Context, userID, tokenValue string) error {
	if err := s.repo.Delete(ctx, s.db, tokenValue, userID); err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}

	if err := s.cache.Delete(ctx, tokenValue); err != nil {
		// Просроченный кэш сам истечёт по TTL.
		s.logger.Warn("Failed to evict token from cache", zap.Error(err))
	}
	s.logger.Info("API token revoked", zap.String("userId", userID))
	return nil
}

func (s *tokenService) ResolveToken(ctx context.Context, tokenValue string) (*models.APIToken, error) {
	token, err := s.cache.Get(ctx, tokenValue)
	if err != nil {
		if !errors.Is(err, models.ErrTokenNotFound) {
			s.logger.Warn("Token cache lookup failed", zap.Error(err))
		}
		token, err = s.repo.GetByToken(ctx, s.db, tokenValue)
		if err != nil {
			if errors.Is(err, models.ErrTokenNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to resolve token: %w", err)
		}
		s.cacheSet(ctx, token)
	}

	if err := s.repo.IncrementCalls(ctx, s.db, tokenValue); err != nil {
		// Счётчик вызовов не должен ронять аутентификацию.
		s.logger.Warn("Failed to increment token call counter", zap.Error(err))
	}
	return token, nil
}

func (s *tokenService) cacheSet(ctx context.Context, token *models.APIToken) {
	if err := s.cache.Set(ctx, token, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache token", zap.Error(err))
	}
}

func validatePermissions(permissions []string) error {
	if len(permissions) == 0 {
		return fmt.Errorf("%w: at least one permission required", models.ErrInvalidInput)
	}
	for _, p := range permissions {
		switch p {
		case models.PermissionGetProgress, models.PermissionTeamProgress, models.PermissionWriteProgress:
		default:
			return fmt.Errorf("%w: unknown permission %q", models.ErrInvalidInput, p)
		}
	}
	return nil
}
