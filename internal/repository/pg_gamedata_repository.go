package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"tracker-server/internal/models"
)

var _ GameDataRepository = (*pgGameDataRepository)(nil)

type pgGameDataRepository struct {
	logger *zap.Logger
}

// NewPgGameDataRepository creates the snapshot store for reference data.
func NewPgGameDataRepository(logger *zap.Logger) GameDataRepository {
	return &pgGameDataRepository{logger: logger.Named("PgGameDataRepo")}
}

const upsertSnapshotQuery = `
INSERT INTO game_data (kind, payload, fetched_at)
VALUES ($1, $2, $3)
ON CONFLICT (kind) DO UPDATE SET
    payload = EXCLUDED.payload,
    fetched_at = EXCLUDED.fetched_at`

const getSnapshotQuery = `
SELECT payload, fetched_at FROM game_data WHERE kind = $1`

func (r *pgGameDataRepository) UpsertSnapshot(ctx context.Context, querier DBTX, kind string, payload []byte, fetchedAt time.Time) error {
	_, err := querier.Exec(ctx, upsertSnapshotQuery, kind, payload, fetchedAt)
	if err != nil {
		r.logger.Error("Failed to upsert game data snapshot", zap.String("kind", kind), zap.Error(err))
		return err
	}
	r.logger.Debug("Upserted game data snapshot",
		zap.String("kind", kind), zap.Int("bytes", len(payload)), zap.Time("fetchedAt", fetchedAt))
	return nil
}

func (r *pgGameDataRepository) GetSnapshot(ctx context.Context, querier DBTX, kind string) ([]byte, time.Time, error) {
	var payload []byte
	var fetchedAt time.Time
	err := querier.QueryRow(ctx, getSnapshotQuery, kind).Scan(&payload, &fetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, time.Time{}, models.ErrNotFound
		}
		r.logger.Error("Failed to get game data snapshot", zap.String("kind", kind), zap.Error(err))
		return nil, time.Time{}, err
	}
	return payload, fetchedAt, nil
}
