package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"tracker-server/internal/models"
	"tracker-server/internal/repository"
)

// Mock ProgressRepository
type ProgressRepository struct {
	mock.Mock
}

var _ repository.ProgressRepository = (*ProgressRepository)(nil)

func (m *ProgressRepository) Get(ctx context.Context, querier repository.DBTX, userID string) (*models.RawProgress, error) {
	args := m.Called(ctx, querier, userID)
	var progress *models.RawProgress
	if args.Get(0) != nil {
		progress = args.Get(0).(*models.RawProgress)
	}
	return progress, args.Error(1)
}

func (m *ProgressRepository) GetMany(ctx context.Context, querier repository.DBTX, userIDs []string) (map[string]*models.RawProgress, error) {
	args := m.Called(ctx, querier, userIDs)
	var result map[string]*models.RawProgress
	if args.Get(0) != nil {
		result = args.Get(0).(map[string]*models.RawProgress)
	}
	return result, args.Error(1)
}

func (m *ProgressRepository) ApplyPatches(ctx context.Context, querier repository.DBTX, userID string, patches models.PatchSet) error {
	args := m.Called(ctx, querier, userID, patches)
	return args.Error(0)
}

// Mock TokenRepository
type TokenRepository struct {
	mock.Mock
}

var _ repository.TokenRepository = (*TokenRepository)(nil)

func (m *TokenRepository) Create(ctx context.Context, querier repository.DBTX, token *models.APIToken) error {
	args := m.Called(ctx, querier, token)
	return args.Error(0)
}

func (m *TokenRepository) GetByToken(ctx context.Context, querier repository.DBTX, tokenValue string) (*models.APIToken, error) {
	args := m.Called(ctx, querier, tokenValue)
	var token *models.APIToken
	if args.Get(0) != nil {
		token = args.Get(0).(*models.APIToken)
	}
	return token, args.Error(1)
}

func (m *TokenRepository) ListByUser(ctx context.Context, querier repository.DBTX, userID string) ([]models.APIToken, error) {
	args := m.Called(ctx, querier, userID)
	var tokens []models.APIToken
	if args.Get(0) != nil {
		tokens = args.Get(0).([]models.APIToken)
	}
	return tokens, args.Error(1)
}

func (m *TokenRepository) Delete(ctx context.Context, querier repository.DBTX, tokenValue, userID string) error {
	args := m.Called(ctx, querier, tokenValue, userID)
	return args.Error(0)
}

func (m *TokenRepository) CountByUser(ctx context.Context, querier repository.DBTX, userID string) (int, error) {
	args := m.Called(ctx, querier, userID)
	return args.Int(0), args.Error(1)
}

func (m *TokenRepository) IncrementCalls(ctx context.Context, querier repository.DBTX, tokenValue string) error {
	args := m.Called(ctx, querier, tokenValue)
	return args.Error(0)
}

// Mock TeamRepository
type TeamRepository struct {
	mock.Mock
}

var _ repository.TeamRepository = (*TeamRepository)(nil)

func (m *TeamRepository) Create(ctx context.Context, querier repository.DBTX, team *models.Team) error {
	args := m.Called(ctx, querier, team)
	return args.Error(0)
}

func (m *TeamRepository) GetByID(ctx context.Context, querier repository.DBTX, teamID string) (*models.Team, error) {
	args := m.Called(ctx, querier, teamID)
	var team *models.Team
	if args.Get(0) != nil {
		team = args.Get(0).(*models.Team)
	}
	return team, args.Error(1)
}

func (m *TeamRepository) GetByIDForUpdate(ctx context.Context, querier repository.DBTX, teamID string) (*models.Team, error) {
	args := m.Called(ctx, querier, teamID)
	var team *models.Team
	if args.Get(0) != nil {
		team = args.Get(0).(*models.Team)
	}
	return team, args.Error(1)
}

func (m *TeamRepository) Delete(ctx context.Context, querier repository.DBTX, teamID string) error {
	args := m.Called(ctx, querier, teamID)
	return args.Error(0)
}

func (m *TeamRepository) AddMember(ctx context.Context, querier repository.DBTX, member *models.TeamMember) error {
	args := m.Called(ctx, querier, member)
	return args.Error(0)
}

func (m *TeamRepository) RemoveMember(ctx context.Context, querier repository.DBTX, teamID, userID string) error {
	args := m.Called(ctx, querier, teamID, userID)
	return args.Error(0)
}

func (m *TeamRepository) GetMembership(ctx context.Context, querier repository.DBTX, userID string) (*models.TeamMember, error) {
	args := m.Called(ctx, querier, userID)
	var member *models.TeamMember
	if args.Get(0) != nil {
		member = args.Get(0).(*models.TeamMember)
	}
	return member, args.Error(1)
}

func (m *TeamRepository) ListMembers(ctx context.Context, querier repository.DBTX, teamID string) ([]models.TeamMember, error) {
	args := m.Called(ctx, querier, teamID)
	var members []models.TeamMember
	if args.Get(0) != nil {
		members = args.Get(0).([]models.TeamMember)
	}
	return members, args.Error(1)
}

func (m *TeamRepository) CountMembers(ctx context.Context, querier repository.DBTX, teamID string) (int, error) {
	args := m.Called(ctx, querier, teamID)
	return args.Int(0), args.Error(1)
}

func (m *TeamRepository) UpdateHiddenTeammates(ctx context.Context, querier repository.DBTX, teamID, userID string, hidden []string) error {
	args := m.Called(ctx, querier, teamID, userID, hidden)
	return args.Error(0)
}

// Mock GameDataRepository
type GameDataRepository struct {
	mock.Mock
}

var _ repository.GameDataRepository = (*GameDataRepository)(nil)

func (m *GameDataRepository) UpsertSnapshot(ctx context.Context, querier repository.DBTX, kind string, payload []byte, fetchedAt time.Time) error {
	args := m.Called(ctx, querier, kind, payload, fetchedAt)
	return args.Error(0)
}

func (m *GameDataRepository) GetSnapshot(ctx context.Context, querier repository.DBTX, kind string) ([]byte, time.Time, error) {
	args := m.Called(ctx, querier, kind)
	var payload []byte
	if args.Get(0) != nil {
		payload = args.Get(0).([]byte)
	}
	return payload, args.Get(1).(time.Time), args.Error(2)
}

// Mock TokenCache
type TokenCache struct {
	mock.Mock
}

var _ repository.TokenCache = (*TokenCache)(nil)

func (m *TokenCache) Get(ctx context.Context, tokenValue string) (*models.APIToken, error) {
	args := m.Called(ctx, tokenValue)
	var token *models.APIToken
	if args.Get(0) != nil {
		token = args.Get(0).(*models.APIToken)
	}
	return token, args.Error(1)
}

func (m *TokenCache) Set(ctx context.Context, token *models.APIToken, ttl time.Duration) error {
	args := m.Called(ctx, token, ttl)
	return args.Error(0)
}

func (m *TokenCache) Delete(ctx context.Context, tokenValue string) error {
	args := m.Called(ctx, tokenValue)
	return args.Error(0)
}
