package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"tracker-server/internal/models"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ ProgressRepository = (*pgProgressRepository)(nil)

type pgProgressRepository struct {
	logger *zap.Logger
}

// NewPgProgressRepository creates a Postgres-backed progress store. The
// querier is passed per call so methods compose with transactions.
func NewPgProgressRepository(logger *zap.Logger) ProgressRepository {
	return &pgProgressRepository{logger: logger.Named("PgProgressRepo")}
}

const getProgressQuery = `
SELECT doc FROM user_progress WHERE user_id = $1`

const getManyProgressQuery = `
SELECT user_id, doc FROM user_progress WHERE user_id = ANY($1)`

const ensureProgressQuery = `
INSERT INTO user_progress (user_id, doc) VALUES ($1, '{}'::jsonb)
ON CONFLICT (user_id) DO NOTHING`

const lockProgressQuery = `
SELECT doc FROM user_progress WHERE user_id = $1 FOR UPDATE`

const saveProgressQuery = `
UPDATE user_progress SET doc = $2, updated_at = NOW() WHERE user_id = $1`

func (r *pgProgressRepository) Get(ctx context.Context, querier DBTX, userID string) (*models.RawProgress, error) {
	var raw []byte
	err := querier.QueryRow(ctx, getProgressQuery, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get progress document", zap.String("userId", userID), zap.Error(err))
		return nil, err
	}
	return decodeProgress(raw)
}

func (r *pgProgressRepository) GetMany(ctx context.Context, querier DBTX, userIDs []string) (map[string]*models.RawProgress, error) {
	result := make(map[string]*models.RawProgress, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	rows, err := querier.Query(ctx, getManyProgressQuery, pq.Array(userIDs))
	if err != nil {
		r.logger.Error("Failed to query progress documents", zap.Int("count", len(userIDs)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var raw []byte
		if err := rows.Scan(&userID, &raw); err != nil {
			r.logger.Error("Failed to scan progress row", zap.Error(err))
			return nil, err
		}
		progress, err := decodeProgress(raw)
		if err != nil {
			// Повреждённый документ не должен ронять командный запрос.
			r.logger.Error("Skipping malformed progress document", zap.String("userId", userID), zap.Error(err))
			continue
		}
		result[userID] = progress
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *pgProgressRepository) ApplyPatches(ctx context.Context, querier DBTX, userID string, patches models.PatchSet) error {
	if len(patches) == 0 {
		return nil
	}

	if _, err := querier.Exec(ctx, ensureProgressQuery, userID); err != nil {
		r.logger.Error("Failed to ensure progress document", zap.String("userId", userID), zap.Error(err))
		return err
	}

	// Row lock holds concurrent patch-sets apart for the same user.
	var raw []byte
	if err := querier.QueryRow(ctx, lockProgressQuery, userID).Scan(&raw); err != nil {
		r.logger.Error("Failed to lock progress document", zap.String("userId", userID), zap.Error(err))
		return err
	}

	var doc map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			r.logger.Error("Failed to decode progress document", zap.String("userId", userID), zap.Error(err))
			return err
		}
	}
	doc = applyPatchSet(doc, patches)

	encoded, err := json.Marshal(doc)
	if err != nil {
		r.logger.Error("Failed to encode patched document", zap.String("userId", userID), zap.Error(err))
		return err
	}
	if _, err := querier.Exec(ctx, saveProgressQuery, userID, encoded); err != nil {
		r.logger.Error("Failed to save patched document", zap.String("userId", userID), zap.Error(err))
		return err
	}

	r.logger.Debug("Applied progress patches", zap.String("userId", userID), zap.Int("patches", len(patches)))
	return nil
}

func decodeProgress(raw []byte) (*models.RawProgress, error) {
	progress := &models.RawProgress{}
	if len(raw) == 0 {
		return progress, nil
	}
	if err := json.Unmarshal(raw, progress); err != nil {
		return nil, err
	}
	return progress, nil
}
