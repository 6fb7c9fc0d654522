package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"tracker-server/internal/models"
)

var _ TokenRepository = (*pgTokenRepository)(nil)

type pgTokenRepository struct {
	logger *zap.Logger
}

// NewPgTokenRepository creates a Postgres-backed API token store.
func NewPgTokenRepository(logger *zap.Logger) TokenRepository {
	return &pgTokenRepository{logger: logger.Named("PgTokenRepo")}
}

const createTokenQuery = `
INSERT INTO api_tokens (token, user_id, note, permissions, calls, created_at)
VALUES ($1, $2, $3, $4, 0, $5)`

const getTokenQuery = `
SELECT token, user_id, note, permissions, calls, created_at, last_used_at
FROM api_tokens
WHERE token = $1`

const listTokensQuery = `
SELECT token, user_id, note, permissions, calls, created_at, last_used_at
FROM api_tokens
WHERE user_id = $1
ORDER BY created_at`

const deleteTokenQuery = `
DELETE FROM api_tokens WHERE token = $1 AND user_id = $2`

const countTokensQuery = `
SELECT COUNT(*) FROM api_tokens WHERE user_id = $1`

const incrementTokenCallsQuery = `
UPDATE api_tokens SET calls = calls + 1, last_used_at = NOW() WHERE token = $1`

func (r *pgTokenRepository) Create(ctx context.Context, querier DBTX, token *models.APIToken) error {
	_, err := querier.Exec(ctx, createTokenQuery,
		token.Token,
		token.UserID,
		token.Note,
		pq.Array(token.Permissions),
		token.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create api token", zap.String("userId", token.UserID), zap.Error(err))
		return err
	}
	r.logger.Debug("Created api token", zap.String("userId", token.UserID))
	return nil
}

func (r *pgTokenRepository) GetByToken(ctx context.Context, querier DBTX, tokenValue string) (*models.APIToken, error) {
	token, err := scanToken(querier.QueryRow(ctx, getTokenQuery, tokenValue))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTokenNotFound
		}
		r.logger.Error("Failed to get api token", zap.Error(err))
		return nil, err
	}
	return token, nil
}

func (r *pgTokenRepository) ListByUser(ctx context.Context, querier DBTX, userID string) ([]models.APIToken, error) {
	rows, err := querier.Query(ctx, listTokensQuery, userID)
	if err != nil {
		r.logger.Error("Failed to list api tokens", zap.String("userId", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tokens := make([]models.APIToken, 0)
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			r.logger.Error("Failed to scan api token row", zap.String("userId", userID), zap.Error(err))
			return nil, err
		}
		tokens = append(tokens, *token)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *pgTokenRepository) Delete(ctx context.Context, querier DBTX, tokenValue, userID string) error {
	cmdTag, err := querier.Exec(ctx, deleteTokenQuery, tokenValue, userID)
	if err != nil {
		r.logger.Error("Failed to delete api token", zap.String("userId", userID), zap.Error(err))
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrTokenNotFound
	}
	r.logger.Debug("Deleted api token", zap.String("userId", userID))
	return nil
}

func (r *pgTokenRepository) CountByUser(ctx context.Context, querier DBTX, userID string) (int, error) {
	var count int
	if err := querier.QueryRow(ctx, countTokensQuery, userID).Scan(&count); err != nil {
		r.logger.Error("Failed to count api tokens", zap.String("userId", userID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (r *pgTokenRepository) IncrementCalls(ctx context.Context, querier DBTX, tokenValue string) error {
	if _, err := querier.Exec(ctx, incrementTokenCallsQuery, tokenValue); err != nil {
		r.logger.Error("Failed to increment token calls", zap.Error(err))
		return err
	}
	return nil
}

func scanToken(row pgx.Row) (*models.APIToken, error) {
	token := &models.APIToken{}
	var permissions pq.StringArray
	err := row.Scan(
		&token.Token,
		&token.UserID,
		&token.Note,
		&permissions,
		&token.Calls,
		&token.CreatedAt,
		&token.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	token.Permissions = []string(permissions)
	return token, nil
}
