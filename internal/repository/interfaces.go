package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tracker-server/internal/models"
)

// DBTX is the querier abstraction shared by *pgxpool.Pool and pgx.Tx, so
// every repository method can run standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ProgressRepository stores raw per-user progress documents. Documents are
// created implicitly on first write and never deleted here.
type ProgressRepository interface {
	// Get returns one user's raw document. models.ErrNotFound when the
	// user has never written anything.
	Get(ctx context.Context, querier DBTX, userID string) (*models.RawProgress, error)
	// GetMany returns the documents of the given users keyed by user id.
	// Users without a document are simply absent from the result.
	GetMany(ctx context.Context, querier DBTX, userIDs []string) (map[string]*models.RawProgress, error)
	// ApplyPatches applies one patch-set to a user's document, creating
	// the document when absent. Callers run it inside a transaction so
	// the whole set lands atomically.
	ApplyPatches(ctx context.Context, querier DBTX, userID string, patches models.PatchSet) error
}

// TokenRepository persists API tokens.
type TokenRepository interface {
	Create(ctx context.Context, querier DBTX, token *models.APIToken) error
	// GetByToken returns models.ErrTokenNotFound for unknown values.
	GetByToken(ctx context.Context, querier DBTX, tokenValue string) (*models.APIToken, error)
	ListByUser(ctx context.Context, querier DBTX, userID string) ([]models.APIToken, error)
	// Delete removes the token only when it belongs to userID;
	// models.ErrTokenNotFound otherwise.
	Delete(ctx context.Context, querier DBTX, tokenValue, userID string) error
	CountByUser(ctx context.Context, querier DBTX, userID string) (int, error)
	// IncrementCalls bumps the usage counter and the last-used time.
	IncrementCalls(ctx context.Context, querier DBTX, tokenValue string) error
}

// TeamRepository persists teams and memberships. A user owns at most one
// team and belongs to at most one team at a time.
type TeamRepository interface {
	Create(ctx context.Context, querier DBTX, team *models.Team) error
	// GetByID returns models.ErrTeamNotFound for unknown ids.
	GetByID(ctx context.Context, querier DBTX, teamID string) (*models.Team, error)
	// GetByIDForUpdate additionally takes a row lock; call inside a
	// transaction.
	GetByIDForUpdate(ctx context.Context, querier DBTX, teamID string) (*models.Team, error)
	// Delete disbands a team; memberships go with it.
	Delete(ctx context.Context, querier DBTX, teamID string) error

	AddMember(ctx context.Context, querier DBTX, member *models.TeamMember) error
	RemoveMember(ctx context.Context, querier DBTX, teamID, userID string) error
	// GetMembership returns the caller's membership row or
	// models.ErrNotInTeam.
	GetMembership(ctx context.Context, querier DBTX, userID string) (*models.TeamMember, error)
	ListMembers(ctx context.Context, querier DBTX, teamID string) ([]models.TeamMember, error)
	CountMembers(ctx context.Context, querier DBTX, teamID string) (int, error)
	UpdateHiddenTeammates(ctx context.Context, querier DBTX, teamID, userID string, hidden []string) error
}

// GameDataRepository persists reference-data snapshots so a restart can
// serve formatted progress before the first upstream fetch completes.
type GameDataRepository interface {
	UpsertSnapshot(ctx context.Context, querier DBTX, kind string, payload []byte, fetchedAt time.Time) error
	// GetSnapshot returns models.ErrNotFound when the kind was never stored.
	GetSnapshot(ctx context.Context, querier DBTX, kind string) ([]byte, time.Time, error)
}

// TokenCache is the short-TTL cache in front of TokenRepository, keyed by
// token value. It must return models.ErrTokenNotFound on a miss.
type TokenCache interface {
	Get(ctx context.Context, tokenValue string) (*models.APIToken, error)
	Set(ctx context.Context, token *models.APIToken, ttl time.Duration) error
	Delete(ctx context.Context, tokenValue string) error
}
