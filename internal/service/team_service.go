package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tracker-server/internal/models"
	"tracker-server/internal/repository"
)

// TeamWithMembers is a team together with its current member list.
type TeamWithMembers struct {
	Team    *models.Team
	Members []models.TeamMember
}

// TeamService manages teams and memberships. A user belongs to at most one
// team at a time.
type TeamService interface {
	// CreateTeam creates a team owned by the user and joins them to it.
	// models.ErrAlreadyInTeam when the user already belongs somewhere.
	CreateTeam(ctx context.Context, userID string) (*models.Team, error)
	// GetMyTeam returns the caller's team and members, or
	// models.ErrNotInTeam.
	GetMyTeam(ctx context.Context, userID string) (*TeamWithMembers, error)
	// JoinTeam adds the user to a team by id and invite password.
	JoinTeam(ctx context.Context, userID, teamID, password string) (*models.Team, error)
	// LeaveTeam removes the user from their team. The owner leaving
	// disbands the whole team.
	LeaveTeam(ctx context.Context, userID string) error
	// KickMember removes another member; owner only, never the owner
	// themselves.
	KickMember(ctx context.Context, ownerID, targetID string) error
	// SetHiddenTeammates replaces the caller's hidden-teammates list.
	SetHiddenTeammates(ctx context.Context, userID string, hidden []string) error
}

var _ TeamService = (*teamService)(nil)

type teamService struct {
	logger     *zap.Logger
	repo       repository.TeamRepository
	db         repository.DBTX
	pool       *pgxpool.Pool
	maxMembers int
}

func NewTeamService(
	repo repository.TeamRepository,
	db repository.DBTX,
	pool *pgxpool.Pool,
	maxMembers int,
	logger *zap.Logger,
) TeamService {
	if maxMembers <= 0 {
		maxMembers = models.DefaultTeamMaxMembers
	}
	return &teamService{
		logger:     logger.Named("TeamService"),
		repo:       repo,
		db:         db,
		pool:       pool,
		maxMembers: maxMembers,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, userID string) (*models.Team, error) {
	if err := s.ensureNotInTeam(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	team := &models.Team{
		ID:         uuid.NewString(),
		OwnerID:    userID,
		Password:   uuid.NewString(),
		MaxMembers: s.maxMembers,
		CreatedAt:  now,
	}
	owner := &models.TeamMember{
		TeamID:   team.ID,
		UserID:   userID,
		JoinedAt: now,
	}

	// Команда и членство владельца появляются строго вместе.
	err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.repo.Create(ctx, tx, team); err != nil {
			return err
		}
		return s.repo.AddMember(ctx, tx, owner)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	s.logger.Info("Team created", zap.String("teamId", team.ID), zap.String("ownerId", userID))
	return team, nil
}

func (s *teamService) GetMyTeam(ctx context.Context, userID string) (*TeamWithMembers, error) {
	membership, err := s.repo.GetMembership(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotInTeam) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve membership: %w", err)
	}

	team, err := s.repo.GetByID(ctx, s.db, membership.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	members, err := s.repo.ListMembers(ctx, s.db, membership.TeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return &TeamWithMembers{Team: team, Members: members}, nil
}

func (s *teamService) JoinTeam(ctx context.Context, userID, teamID, password string) (*models.Team, error) {
	if err := s.ensureNotInTeam(ctx, userID); err != nil {
		return nil, err
	}

	team, err := s.repo.GetByID(ctx, s.db, teamID)
	if err != nil {
		if errors.Is(err, models.ErrTeamNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	if team.Password != password {
		return nil, models.ErrTeamWrongPassword
	}

	member := &models.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	// Вставка под блокировкой строки команды, чтобы два одновременных
	// вступления не переполнили команду.
	err = repository.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		locked, lockErr := s.repo.GetByIDForUpdate(ctx, tx, teamID)
		if lockErr != nil {
			return lockErr
		}
		count, countErr := s.repo.CountMembers(ctx, tx, teamID)
		if countErr != nil {
			return countErr
		}
		if count >= locked.MaxMembers {
			return models.ErrTeamFull
		}
		return s.repo.AddMember(ctx, tx, member)
	})
	if err != nil {
		if errors.Is(err, models.ErrTeamFull) || errors.Is(err, models.ErrTeamNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to join team: %w", err)
	}

	s.logger.Info("User joined team", zap.String("teamId", teamID), zap.String("userId", userID))
	return team, nil
}

func (s *teamService) LeaveTeam(ctx context.Context, userID string) error {
	membership, err := s.repo.GetMembership(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotInTeam) {
			return err
		}
		return fmt.Errorf("failed to resolve membership: %w", err)
	}

	team, err := s.repo.GetByID(ctx, s.db, membership.TeamID)
	if err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}

	if team.OwnerID == userID {
		// Уход владельца распускает команду целиком.
		if err := s.repo.Delete(ctx, s.db, team.ID); err != nil {
			return fmt.Errorf("failed to disband team: %w", err)
		}
		s.logger.Info("Team disbanded by owner", zap.String("teamId", team.ID))
		return nil
	}

	if err := s.repo.RemoveMember(ctx, s.db, team.ID, userID); err != nil {
		return fmt.Errorf("failed to leave team: %w", err)
	}
	s.logger.Info("User left team", zap.String("teamId", team.ID), zap.String("userId", userID))
	return nil
}

func (s *teamService) KickMember(ctx context.Context, ownerID, targetID string) error {
	if ownerID == targetID {
		return fmt.Errorf("%w: use leave to remove yourself", models.ErrInvalidInput)
	}

	membership, err := s.repo.GetMembership(ctx, s.db, ownerID)
	if err != nil {
		if errors.Is(err, models.ErrNotInTeam) {
			return err
		}
		return fmt.Errorf("failed to resolve membership: %w", err)
	}
	team, err := s.repo.GetByID(ctx, s.db, membership.TeamID)
	if err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}
	if team.OwnerID != ownerID {
		return models.ErrNotTeamOwner
	}

	if err := s.repo.RemoveMember(ctx, s.db, team.ID, targetID); err != nil {
		if errors.Is(err, models.ErrNotInTeam) {
			return err
		}
		return fmt.Errorf("failed to kick member: %w", err)
	}
	s.logger.Info("Member kicked from team",
		zap.String("teamId", team.ID), zap.String("ownerId", ownerID), zap.String("userId", targetID))
	return nil
}

func (s *teamService) SetHiddenTeammates(ctx context.Context, userID string, hidden []string) error {
	membership, err := s.repo.GetMembership(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotInTeam) {
			return err
		}
		return fmt.Errorf("failed to resolve membership: %w", err)
	}

	if hidden == nil {
		hidden = []string{}
	}
	if err := s.repo.UpdateHiddenTeammates(ctx, s.db, membership.TeamID, userID, hidden); err != nil {
		return fmt.Errorf("failed to update hidden teammates: %w", err)
	}
	return nil
}

func (s *teamService) ensureNotInTeam(ctx context.Context, userID string) error {
	_, err := s.repo.GetMembership(ctx, s.db, userID)
	switch {
	case err == nil:
		return models.ErrAlreadyInTeam
	case errors.Is(err, models.ErrNotInTeam):
		return nil
	default:
		return fmt.Errorf("failed to resolve membership: %w", err)
	}
}
