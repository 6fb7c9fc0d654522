package gamedata_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tracker-server/internal/gamedata"
	"tracker-server/internal/messaging"
	messagingmocks "tracker-server/internal/messaging/mocks"
	"tracker-server/internal/models"
	"tracker-server/internal/repository/mocks"
)

// fakeFetcher подменяет внешний API в тестах сервиса.
type fakeFetcher struct {
	mock.Mock
}

func (m *fakeFetcher) FetchGameData(ctx context.Context) (*models.GameData, error) {
	args := m.Called(ctx)
	var data *models.GameData
	if args.Get(0) != nil {
		data = args.Get(0).(*models.GameData)
	}
	return data, args.Error(1)
}

func snapshotFixture() *models.GameData {
	return &models.GameData{
		Tasks: []models.Task{
			{ID: "t1", Name: "Deal One", Objectives: []models.TaskObjective{{ID: "t1-o1"}}},
		},
		Stations: []models.HideoutStation{
			{ID: "stash", Levels: []models.HideoutLevel{{ID: "stash-1", Level: 1}}},
		},
		FetchedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestServiceRefresh(t *testing.T) {
	ctx := context.Background()
	data := snapshotFixture()

	t.Run("persists both kinds, swaps cache and announces", func(t *testing.T) {
		fetcher := new(fakeFetcher)
		repo := new(mocks.GameDataRepository)
		publisher := new(messagingmocks.RefreshPublisher)
		svc := gamedata.NewService(fetcher, repo, nil, publisher, time.Hour, zap.NewNop())

		fetcher.On("FetchGameData", ctx).Return(data, nil).Once()
		repo.On("UpsertSnapshot", ctx, nil, models.GameDataKindTasks, mock.Anything, data.FetchedAt).Return(nil).Once()
		repo.On("UpsertSnapshot", ctx, nil, models.GameDataKindHideout, mock.Anything, data.FetchedAt).Return(nil).Once()
		publisher.On("PublishRefresh", ctx, mock.MatchedBy(func(e messaging.GameDataRefreshEvent) bool {
			return e.FetchedAt.Equal(data.FetchedAt) && len(e.Kinds) == 2
		})).Return(nil).Once()

		require.False(t, svc.Ready())
		require.NoError(t, svc.Refresh(ctx))

		assert.True(t, svc.Ready())
		require.NotNil(t, svc.Graph())
		assert.NotNil(t, svc.Graph().Task("t1"))
		assert.Equal(t, data, svc.Data())

		fetcher.AssertExpectations(t)
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("keeps fresh data when persistence fails", func(t *testing.T) {
		fetcher := new(fakeFetcher)
		repo := new(mocks.GameDataRepository)
		svc := gamedata.NewService(fetcher, repo, nil, nil, time.Hour, zap.NewNop())

		fetcher.On("FetchGameData", ctx).Return(data, nil).Once()
		repo.On("UpsertSnapshot", ctx, nil, models.GameDataKindTasks, mock.Anything, data.FetchedAt).
			Return(errors.New("db down")).Once()

		// Ошибка сохранения не должна лишать процесс свежих данных.
		require.NoError(t, svc.Refresh(ctx))
		assert.True(t, svc.Ready())
		repo.AssertExpectations(t)
	})

	t.Run("propagates fetch errors without touching the cache", func(t *testing.T) {
		fetcher := new(fakeFetcher)
		repo := new(mocks.GameDataRepository)
		svc := gamedata.NewService(fetcher, repo, nil, nil, time.Hour, zap.NewNop())

		fetcher.On("FetchGameData", ctx).Return(nil, errors.New("upstream down")).Once()

		require.Error(t, svc.Refresh(ctx))
		assert.False(t, svc.Ready())
		assert.Nil(t, svc.Graph())
		repo.AssertNotCalled(t, "UpsertSnapshot", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestServiceReloadFromStore(t *testing.T) {
	ctx := context.Background()
	data := snapshotFixture()

	tasksPayload, err := json.Marshal(data.Tasks)
	require.NoError(t, err)
	hideoutPayload, err := json.Marshal(data.Stations)
	require.NoError(t, err)

	t.Run("rebuilds the graph from stored snapshots", func(t *testing.T) {
		repo := new(mocks.GameDataRepository)
		svc := gamedata.NewService(new(fakeFetcher), repo, nil, nil, time.Hour, zap.NewNop())

		olderAt := data.FetchedAt.Add(-30 * time.Minute)
		repo.On("GetSnapshot", ctx, nil, models.GameDataKindTasks).Return(tasksPayload, data.FetchedAt, nil).Once()
		repo.On("GetSnapshot", ctx, nil, models.GameDataKindHideout).Return(hideoutPayload, olderAt, nil).Once()

		require.NoError(t, svc.ReloadFromStore(ctx))
		require.True(t, svc.Ready())
		assert.NotNil(t, svc.Graph().Task("t1"))
		assert.NotNil(t, svc.Graph().Station("stash"))
		// Снапшот датируется самой старой из его частей.
		assert.Equal(t, olderAt, svc.Data().FetchedAt)
		repo.AssertExpectations(t)
	})

	t.Run("fails when a kind was never stored", func(t *testing.T) {
		repo := new(mocks.GameDataRepository)
		svc := gamedata.NewService(new(fakeFetcher), repo, nil, nil, time.Hour, zap.NewNop())

		repo.On("GetSnapshot", ctx, nil, models.GameDataKindTasks).
			Return(nil, time.Time{}, models.ErrNotFound).Once()

		err := svc.ReloadFromStore(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.False(t, svc.Ready())
	})
}

func TestServiceLoadFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	data := snapshotFixture()

	tasksPayload, err := json.Marshal(data.Tasks)
	require.NoError(t, err)
	hideoutPayload, err := json.Marshal(data.Stations)
	require.NoError(t, err)

	t.Run("uses stored snapshot when upstream is down", func(t *testing.T) {
		fetcher := new(fakeFetcher)
		repo := new(mocks.GameDataRepository)
		svc := gamedata.NewService(fetcher, repo, nil, nil, time.Hour, zap.NewNop())

		fetcher.On("FetchGameData", ctx).Return(nil, errors.New("upstream down")).Once()
		repo.On("GetSnapshot", ctx, nil, models.GameDataKindTasks).Return(tasksPayload, data.FetchedAt, nil).Once()
		repo.On("GetSnapshot", ctx, nil, models.GameDataKindHideout).Return(hideoutPayload, data.FetchedAt, nil).Once()

		require.NoError(t, svc.Load(ctx))
		assert.True(t, svc.Ready())
	})

	t.Run("reports both failures when nothing is available", func(t *testing.T) {
		fetcher := new(fakeFetcher)
		repo := new(mocks.GameDataRepository)
		svc := gamedata.NewService(fetcher, repo, nil, nil, time.Hour, zap.NewNop())

		fetcher.On("FetchGameData", ctx).Return(nil, errors.New("upstream down")).Once()
		repo.On("GetSnapshot", ctx, nil, models.GameDataKindTasks).
			Return(nil, time.Time{}, models.ErrNotFound).Once()

		err := svc.Load(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Contains(t, err.Error(), "upstream down")
		assert.False(t, svc.Ready())
	})
}
