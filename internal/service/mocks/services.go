package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tracker-server/internal/models"
	"tracker-server/internal/service"
)

// Mock ProgressService
type ProgressService struct {
	mock.Mock
}

var _ service.ProgressService = (*ProgressService)(nil)

func (m *ProgressService) GetProgress(ctx context.Context, userID string) (*models.FormattedProgress, error) {
	args := m.Called(ctx, userID)
	var formatted *models.FormattedProgress
	if args.Get(0) != nil {
		formatted = args.Get(0).(*models.FormattedProgress)
	}
	return formatted, args.Error(1)
}

func (m *ProgressService) GetTeamProgress(ctx context.Context, userID string) (*service.TeamProgressResult, error) {
	args := m.Called(ctx, userID)
	var result *service.TeamProgressResult
	if args.Get(0) != nil {
		result = args.Get(0).(*service.TeamProgressResult)
	}
	return result, args.Error(1)
}

func (m *ProgressService) SetPlayerLevel(ctx context.Context, userID string, level int) error {
	args := m.Called(ctx, userID, level)
	return args.Error(0)
}

func (m *ProgressService) UpdateTask(ctx context.Context, userID, taskID string, state models.TaskState) error {
	args := m.Called(ctx, userID, taskID, state)
	return args.Error(0)
}

func (m *ProgressService) UpdateObjective(ctx context.Context, userID, objectiveID string, state *models.TaskState, count *int) error {
	args := m.Called(ctx, userID, objectiveID, state, count)
	return args.Error(0)
}

// Mock TokenService
type TokenService struct {
	mock.Mock
}

var _ service.TokenService = (*TokenService)(nil)

func (m *TokenService) CreateToken(ctx context.Context, userID, note string, permissions []string) (*models.APIToken, error) {
	args := m.Called(ctx, userID, note, permissions)
	var token *models.APIToken
	if args.Get(0) != nil {
		token = args.Get(0).(*models.APIToken)
	}
	return token, args.Error(1)
}

func (m *TokenService) ListTokens(ctx context.Context, userID string) ([]models.APIToken, error) {
	args := m.Called(ctx, userID)
	var tokens []models.APIToken
	if args.Get(0) != nil {
		tokens = args.Get(0).([]models.APIToken)
	}
	return tokens, args.Error(1)
}

func (m *TokenService) DeleteToken(ctx context.Context, userID, tokenValue string) error {
	args := m.Called(ctx, userID, tokenValue)
	return args.Error(0)
}

func (m *TokenService) ResolveToken(ctx context.Context, tokenValue string) (*models.APIToken, error) {
	args := m.Called(ctx, tokenValue)
	var token *models.APIToken
	if args.Get(0) != nil {
		token = args.Get(0).(*models.APIToken)
	}
	return token, args.Error(1)
}

// Mock TeamService
type TeamService struct {
	mock.Mock
}

var _ service.TeamService = (*TeamService)(nil)

func (m *TeamService) CreateTeam(ctx context.Context, userID string) (*models.Team, error) {
	args := m.Called(ctx, userID)
	var team *models.Team
	if args.Get(0) != nil {
		team = args.Get(0).(*models.Team)
	}
	return team, args.Error(1)
}

func (m *TeamService) GetMyTeam(ctx context.Context, userID string) (*service.TeamWithMembers, error) {
	args := m.Called(ctx, userID)
	var team *service.TeamWithMembers
	if args.Get(0) != nil {
		team = args.Get(0).(*service.TeamWithMembers)
	}
	return team, args.Error(1)
}

func (m *TeamService) JoinTeam(ctx context.Context, userID, teamID, password string) (*models.Team, error) {
	args := m.Called(ctx, userID, teamID, password)
	var team *models.Team
	if args.Get(0) != nil {
		team = args.Get(0).(*models.Team)
	}
	return team, args.Error(1)
}

func (m *TeamService) LeaveTeam(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *TeamService) KickMember(ctx context.Context, ownerID, targetID string) error {
	args := m.Called(ctx, ownerID, targetID)
	return args.Error(0)
}

func (m *TeamService) SetHiddenTeammates(ctx context.Context, userID string, hidden []string) error {
	args := m.Called(ctx, userID, hidden)
	return args.Error(0)
}
