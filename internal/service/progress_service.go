package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tracker-server/internal/gamedata"
	"tracker-server/internal/models"
	"tracker-server/internal/progress"
	"tracker-server/internal/repository"
)

// TeamProgressResult bundles the formatted progress of visible teammates
// with the viewer's hidden-teammates preference.
type TeamProgressResult struct {
	Members []*models.FormattedProgress
	Hidden  []string
}

// ProgressService reads and mutates player progress.
type ProgressService interface {
	// GetProgress returns the caller's formatted progress. Users without a
	// stored document get the defaults, not an error.
	GetProgress(ctx context.Context, userID string) (*models.FormattedProgress, error)
	// GetTeamProgress returns formatted progress for the caller's visible
	// teammates. Callers without a team see only themselves.
	GetTeamProgress(ctx context.Context, userID string) (*TeamProgressResult, error)
	SetPlayerLevel(ctx context.Context, userID string, level int) error
	// UpdateTask moves a task to the given state and applies the follow-up
	// patches (alternatives, dependent unlocks) atomically.
	UpdateTask(ctx context.Context, userID, taskID string, state models.TaskState) error
	// UpdateObjective updates an objective's completion state and/or
	// collected count. Both arguments optional, but not both absent.
	UpdateObjective(ctx context.Context, userID, objectiveID string, state *models.TaskState, count *int) error
}

var _ ProgressService = (*progressService)(nil)

type progressService struct {
	logger    *zap.Logger
	provider  gamedata.Provider
	repo      repository.ProgressRepository
	teamRepo  repository.TeamRepository
	db        repository.DBTX
	pool      *pgxpool.Pool
	formatter *progress.Formatter
}

func NewProgressService(
	provider gamedata.Provider,
	repo repository.ProgressRepository,
	teamRepo repository.TeamRepository,
	db repository.DBTX,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) ProgressService {
	return &progressService{
		logger:    logger.Named("ProgressService"),
		provider:  provider,
		repo:      repo,
		teamRepo:  teamRepo,
		db:        db,
		pool:      pool,
		formatter: progress.NewFormatter(logger),
	}
}

func (s *progressService) GetProgress(ctx context.Context, userID string) (*models.FormattedProgress, error) {
	raw, err := s.repo.Get(ctx, s.db, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	// Отсутствие документа означает "ещё ничего не делал", не ошибку.
	return s.formatter.Format(s.provider.Graph(), userID, raw), nil
}

func (s *progressService) GetTeamProgress(ctx context.Context, userID string) (*TeamProgressResult, error) {
	memberIDs := []string{userID}
	var hidden []string

	membership, err := s.teamRepo.GetMembership(ctx, s.db, userID)
	switch {
	case err == nil:
		members, listErr := s.teamRepo.ListMembers(ctx, s.db, membership.TeamID)
		if listErr != nil {
			return nil, fmt.Errorf("failed to list team members: %w", listErr)
		}
		hidden = membership.HideTeammates
		memberIDs = visibleMemberIDs(userID, members, hidden)
	case errors.Is(err, models.ErrNotInTeam):
		// Без команды отдаём только собственный прогресс.
	default:
		return nil, fmt.Errorf("failed to resolve team membership: %w", err)
	}

	raws, err := s.repo.GetMany(ctx, s.db, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load team progress: %w", err)
	}

	graph := s.provider.Graph()
	result := &TeamProgressResult{
		Members: make([]*models.FormattedProgress, 0, len(memberIDs)),
		Hidden:  hidden,
	}
	if result.Hidden == nil {
		result.Hidden = []string{}
	}
	for _, id := range memberIDs {
		// Для участников без документа форматируем пустой прогресс.
		result.Members = append(result.Members, s.formatter.Format(graph, id, raws[id]))
	}
	return result, nil
}

// visibleMemberIDs keeps the viewer first and drops hidden teammates. The
// viewer is always visible to themselves.
func visibleMemberIDs(viewerID string, members []models.TeamMember, hidden []string) []string {
	hiddenSet := make(map[string]struct{}, len(hidden))
	for _, id := range hidden {
		hiddenSet[id] = struct{}{}
	}

	ids := []string{viewerID}
	for _, member := range members {
		if member.UserID == viewerID {
			continue
		}
		if _, ok := hiddenSet[member.UserID]; ok {
			continue
		}
		ids = append(ids, member.UserID)
	}
	return ids
}

func (s *progressService) SetPlayerLevel(ctx context.Context, userID string, level int) error {
	if level < 1 {
		return fmt.Errorf("%w: player level must be at least 1", models.ErrInvalidInput)
	}

	patches := models.PatchSet{"level": level}
	if err := s.applyPatches(ctx, userID, patches); err != nil {
		return err
	}
	s.logger.Debug("Player level updated", zap.String("userId", userID), zap.Int("level", level))
	return nil
}

func (s *progressService) UpdateTask(ctx context.Context, userID, taskID string, state models.TaskState) error {
	graph := s.provider.Graph()
	if graph == nil {
		// Без графа нельзя посчитать ни альтернативы, ни разблокировки.
		return models.ErrGameDataUnavailable
	}

	raw, err := s.loadRaw(ctx, userID)
	if err != nil {
		return err
	}

	patches, err := progress.UpdateTaskState(graph, raw, taskID, state, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(patches) == 0 {
		// Неизвестная задача: записывать нечего.
		s.logger.Debug("Task update produced no patches",
			zap.String("userId", userID), zap.String("taskId", taskID))
		return nil
	}

	if err := s.applyPatches(ctx, userID, patches); err != nil {
		return err
	}
	s.logger.Debug("Task state updated",
		zap.String("userId", userID), zap.String("taskId", taskID),
		zap.String("state", string(state)), zap.Int("patches", len(patches)))
	return nil
}

func (s *progressService) UpdateObjective(ctx context.Context, userID, objectiveID string, state *models.TaskState, count *int) error {
	if state == nil && count == nil {
		return fmt.Errorf("%w: objective update requires a state or a count", models.ErrInvalidInput)
	}

	now := time.Now().UTC()
	patches := models.PatchSet{}
	prefix := "taskObjectives." + objectiveID

	if state != nil {
		switch *state {
		case models.TaskStateCompleted:
			patches[prefix+".complete"] = true
			patches[prefix+".timestamp"] = now
		case models.TaskStateUncompleted:
			patches[prefix+".complete"] = false
			patches[prefix+".timestamp"] = models.DeleteField
		default:
			// Цели не проваливаются, у них только два состояния.
			return fmt.Errorf("%w: %q", models.ErrInvalidTaskState, *state)
		}
	}
	if count != nil {
		if *count < 0 {
			return fmt.Errorf("%w: objective count must not be negative", models.ErrInvalidInput)
		}
		patches[prefix+".count"] = *count
	}

	if err := s.applyPatches(ctx, userID, patches); err != nil {
		return err
	}
	s.logger.Debug("Objective updated",
		zap.String("userId", userID), zap.String("objectiveId", objectiveID))
	return nil
}

func (s *progressService) loadRaw(ctx context.Context, userID string) (*models.RawProgress, error) {
	raw, err := s.repo.Get(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &models.RawProgress{}, nil
		}
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return raw, nil
}

func (s *progressService) applyPatches(ctx context.Context, userID string, patches models.PatchSet) error {
	err := repository.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return s.repo.ApplyPatches(ctx, tx, userID, patches)
	})
	if err != nil {
		return fmt.Errorf("failed to apply progress patches: %w", err)
	}
	return nil
}
