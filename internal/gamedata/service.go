package gamedata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tracker-server/internal/messaging"
	"tracker-server/internal/models"
	"tracker-server/internal/progress"
	"tracker-server/internal/repository"
)

// Provider отдаёт актуальный снапшот справочных данных потребителям.
type Provider interface {
	// Graph returns the current task/hideout graph, nil until the first
	// successful load.
	Graph() *progress.Graph
	// Data returns the snapshot backing the graph.
	Data() *models.GameData
	// Ready reports whether a snapshot has been loaded.
	Ready() bool
}

var (
	_ Provider                   = (*Service)(nil)
	_ messaging.GameDataReloader = (*Service)(nil)
)

// Service управляет снапшотом справочных данных: периодически обновляет его
// из внешнего API, сохраняет в БД и обеспечивает потокобезопасный доступ.
type Service struct {
	logger          *zap.Logger
	client          Fetcher
	repo            repository.GameDataRepository
	db              repository.DBTX
	publisher       messaging.RefreshPublisher
	refreshInterval time.Duration

	mu    sync.RWMutex
	data  *models.GameData
	graph *progress.Graph
}

// NewService создает новый экземпляр Service. Данные загружаются отдельным
// вызовом Load, чтобы вызывающая сторона управляла ретраями при старте.
func NewService(
	client Fetcher,
	repo repository.GameDataRepository,
	db repository.DBTX,
	publisher messaging.RefreshPublisher,
	refreshInterval time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		logger:          logger.Named("GameDataService"),
		client:          client,
		repo:            repo,
		db:              db,
		publisher:       publisher,
		refreshInterval: refreshInterval,
	}
}

// Load наполняет кэш при старте: сначала пробует внешний API, при неудаче
// поднимает последний сохранённый снапшот из БД.
func (s *Service) Load(ctx context.Context) error {
	refreshErr := s.Refresh(ctx)
	if refreshErr == nil {
		return nil
	}
	s.logger.Warn("Initial refresh failed, falling back to stored snapshot", zap.Error(refreshErr))

	if storeErr := s.ReloadFromStore(ctx); storeErr != nil {
		return fmt.Errorf("refresh failed (%v) and no stored snapshot: %w", refreshErr, storeErr)
	}
	return nil
}

// Refresh запрашивает свежие данные, сохраняет их и подменяет кэш.
func (s *Service) Refresh(ctx context.Context) error {
	data, err := s.client.FetchGameData(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch game data: %w", err)
	}

	if err := s.persist(ctx, data); err != nil {
		// Кэш всё равно обновляем: свежие данные полезнее сохранённых.
		s.logger.Error("Failed to persist game data snapshot", zap.Error(err))
	}

	s.swap(data)
	s.announce(ctx, data)
	return nil
}

// ReloadFromStore поднимает последний сохранённый снапшот без похода во
// внешний API. Вызывается консьюмером события обновления.
func (s *Service) ReloadFromStore(ctx context.Context) error {
	tasksPayload, tasksAt, err := s.repo.GetSnapshot(ctx, s.db, models.GameDataKindTasks)
	if err != nil {
		return fmt.Errorf("failed to load tasks snapshot: %w", err)
	}
	hideoutPayload, hideoutAt, err := s.repo.GetSnapshot(ctx, s.db, models.GameDataKindHideout)
	if err != nil {
		return fmt.Errorf("failed to load hideout snapshot: %w", err)
	}

	var tasks []models.Task
	if err := json.Unmarshal(tasksPayload, &tasks); err != nil {
		return fmt.Errorf("failed to decode tasks snapshot: %w", err)
	}
	var stations []models.HideoutStation
	if err := json.Unmarshal(hideoutPayload, &stations); err != nil {
		return fmt.Errorf("failed to decode hideout snapshot: %w", err)
	}

	// Снапшот не свежее самой старой из его частей.
	fetchedAt := tasksAt
	if hideoutAt.Before(fetchedAt) {
		fetchedAt = hideoutAt
	}

	s.swap(&models.GameData{Tasks: tasks, Stations: stations, FetchedAt: fetchedAt})
	s.logger.Info("Loaded game data from store",
		zap.Int("tasks", len(tasks)), zap.Int("stations", len(stations)),
		zap.Time("fetchedAt", fetchedAt))
	return nil
}

// Run периодически обновляет данные до отмены контекста.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	s.logger.Info("Started periodic game data refresh", zap.Duration("interval", s.refreshInterval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping periodic game data refresh")
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Error("Periodic game data refresh failed", zap.Error(err))
			}
		}
	}
}

func (s *Service) persist(ctx context.Context, data *models.GameData) error {
	tasksPayload, err := json.Marshal(data.Tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}
	hideoutPayload, err := json.Marshal(data.Stations)
	if err != nil {
		return fmt.Errorf("failed to marshal stations: %w", err)
	}

	// Каждый вид снапшота самодостаточен, поэтому пишем их независимо.
	if err := s.repo.UpsertSnapshot(ctx, s.db, models.GameDataKindTasks, tasksPayload, data.FetchedAt); err != nil {
		return fmt.Errorf("failed to store tasks snapshot: %w", err)
	}
	if err := s.repo.UpsertSnapshot(ctx, s.db, models.GameDataKindHideout, hideoutPayload, data.FetchedAt); err != nil {
		return fmt.Errorf("failed to store hideout snapshot: %w", err)
	}
	return nil
}

func (s *Service) swap(data *models.GameData) {
	graph := progress.NewGraph(data.Tasks, data.Stations)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.graph = graph
}

func (s *Service) announce(ctx context.Context, data *models.GameData) {
	if s.publisher == nil {
		return
	}
	event := messaging.GameDataRefreshEvent{
		Kinds:     []string{models.GameDataKindTasks, models.GameDataKindHideout},
		FetchedAt: data.FetchedAt,
	}
	if err := s.publisher.PublishRefresh(ctx, event); err != nil {
		// Остальные реплики подтянут снапшот по своему таймеру.
		s.logger.Warn("Failed to publish game data refresh event", zap.Error(err))
	}
}

// Graph возвращает текущий граф задач и убежища (nil до первой загрузки).
func (s *Service) Graph() *progress.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// Data возвращает текущий снапшот справочных данных.
func (s *Service) Data() *models.GameData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Ready сообщает, загружен ли хотя бы один снапшот.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data != nil
}
