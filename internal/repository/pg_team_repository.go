package repository

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"tracker-server/internal/models"
)

var _ TeamRepository = (*pgTeamRepository)(nil)

type pgTeamRepository struct {
	logger *zap.Logger
}

// NewPgTeamRepository creates a Postgres-backed team store.
func NewPgTeamRepository(logger *zap.Logger) TeamRepository {
	return &pgTeamRepository{logger: logger.Named("PgTeamRepo")}
}

const createTeamQuery = `
INSERT INTO teams (id, owner_id, password, max_members, created_at)
VALUES ($1, $2, $3, $4, $5)`

const getTeamQuery = `
SELECT id, owner_id, password, max_members, created_at
FROM teams
WHERE id = $1`

const getTeamForUpdateQuery = getTeamQuery + `
FOR UPDATE`

const deleteTeamQuery = `
DELETE FROM teams WHERE id = $1`

const addMemberQuery = `
INSERT INTO team_members (team_id, user_id, joined_at, hide_teammates)
VALUES ($1, $2, $3, $4)`

const removeMemberQuery = `
DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`

const getMembershipQuery = `
SELECT team_id, user_id, joined_at, hide_teammates
FROM team_members
WHERE user_id = $1`

const listMembersQuery = `
SELECT team_id, user_id, joined_at, hide_teammates
FROM team_members
WHERE team_id = $1
ORDER BY joined_at`

const countMembersQuery = `
SELECT COUNT(*) FROM team_members WHERE team_id = $1`

const updateHiddenTeammatesQuery = `
UPDATE team_members SET hide_teammates = $3 WHERE team_id = $1 AND user_id = $2`

func (r *pgTeamRepository) Create(ctx context.Context, querier DBTX, team *models.Team) error {
	_, err := querier.Exec(ctx, createTeamQuery,
		team.ID,
		team.OwnerID,
		team.Password,
		team.MaxMembers,
		team.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create team", zap.String("ownerId", team.OwnerID), zap.Error(err))
		return err
	}
	r.logger.Debug("Created team", zap.String("teamId", team.ID), zap.String("ownerId", team.OwnerID))
	return nil
}

func (r *pgTeamRepository) GetByID(ctx context.Context, querier DBTX, teamID string) (*models.Team, error) {
	team := &models.Team{}
	err := pgxscan.Get(ctx, querier, team, getTeamQuery, teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTeamNotFound
		}
		r.logger.Error("Failed to get team", zap.String("teamId", teamID), zap.Error(err))
		return nil, err
	}
	return team, nil
}

// GetByIDForUpdate locks the team row for the rest of the transaction so
// concurrent joins serialize on the capacity check.
func (r *pgTeamRepository) GetByIDForUpdate(ctx context.Context, querier DBTX, teamID string) (*models.Team, error) {
	team := &models.Team{}
	err := pgxscan.Get(ctx, querier, team, getTeamForUpdateQuery, teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTeamNotFound
		}
		r.logger.Error("Failed to lock team", zap.String("teamId", teamID), zap.Error(err))
		return nil, err
	}
	return team, nil
}

func (r *pgTeamRepository) Delete(ctx context.Context, querier DBTX, teamID string) error {
	cmdTag, err := querier.Exec(ctx, deleteTeamQuery, teamID)
	if err != nil {
		r.logger.Error("Failed to delete team", zap.String("teamId", teamID), zap.Error(err))
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrTeamNotFound
	}
	r.logger.Info("Deleted team", zap.String("teamId", teamID))
	return nil
}

func (r *pgTeamRepository) AddMember(ctx context.Context, querier DBTX, member *models.TeamMember) error {
	_, err := querier.Exec(ctx, addMemberQuery,
		member.TeamID,
		member.UserID,
		member.JoinedAt,
		pq.Array(member.HideTeammates),
	)
	if err != nil {
		r.logger.Error("Failed to add team member",
			zap.String("teamId", member.TeamID), zap.String("userId", member.UserID), zap.Error(err))
		return err
	}
	r.logger.Debug("Added team member", zap.String("teamId", member.TeamID), zap.String("userId", member.UserID))
	return nil
}

func (r *pgTeamRepository) RemoveMember(ctx context.Context, querier DBTX, teamID, userID string) error {
	cmdTag, err := querier.Exec(ctx, removeMemberQuery, teamID, userID)
	if err != nil {
		r.logger.Error("Failed to remove team member",
			zap.String("teamId", teamID), zap.String("userId", userID), zap.Error(err))
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotInTeam
	}
	r.logger.Debug("Removed team member", zap.String("teamId", teamID), zap.String("userId", userID))
	return nil
}

func (r *pgTeamRepository) GetMembership(ctx context.Context, querier DBTX, userID string) (*models.TeamMember, error) {
	member, err := scanMember(querier.QueryRow(ctx, getMembershipQuery, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotInTeam
		}
		r.logger.Error("Failed to get membership", zap.String("userId", userID), zap.Error(err))
		return nil, err
	}
	return member, nil
}

func (r *pgTeamRepository) ListMembers(ctx context.Context, querier DBTX, teamID string) ([]models.TeamMember, error) {
	rows, err := querier.Query(ctx, listMembersQuery, teamID)
	if err != nil {
		r.logger.Error("Failed to list team members", zap.String("teamId", teamID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			r.logger.Error("Failed to scan team member row", zap.String("teamId", teamID), zap.Error(err))
			return nil, err
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *pgTeamRepository) CountMembers(ctx context.Context, querier DBTX, teamID string) (int, error) {
	var count int
	if err := querier.QueryRow(ctx, countMembersQuery, teamID).Scan(&count); err != nil {
		r.logger.Error("Failed to count team members", zap.String("teamId", teamID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (r *pgTeamRepository) UpdateHiddenTeammates(ctx context.Context, querier DBTX, teamID, userID string, hidden []string) error {
	cmdTag, err := querier.Exec(ctx, updateHiddenTeammatesQuery, teamID, userID, pq.Array(hidden))
	if err != nil {
		r.logger.Error("Failed to update hidden teammates",
			zap.String("teamId", teamID), zap.String("userId", userID), zap.Error(err))
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotInTeam
	}
	return nil
}

func scanMember(row pgx.Row) (*models.TeamMember, error) {
	member := &models.TeamMember{}
	var hidden pq.StringArray
	err := row.Scan(
		&member.TeamID,
		&member.UserID,
		&member.JoinedAt,
		&hidden,
	)
	if err != nil {
		return nil, err
	}
	member.HideTeammates = []string(hidden)
	return member, nil
}
