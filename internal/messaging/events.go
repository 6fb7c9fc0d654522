package messaging

import (
	"context"
	"time"
)

const (
	gameDataRefreshExchange     = "gamedata_refresh_exchange"
	gameDataRefreshExchangeType = "fanout"
)

// GameDataRefreshEvent announces that one replica has fetched fresh
// reference data and persisted the snapshots. Receivers reload from the
// snapshot store instead of hitting the upstream API again.
type GameDataRefreshEvent struct {
	Kinds     []string  `json:"kinds"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// RefreshPublisher fans a refresh announcement out to all replicas.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, event GameDataRefreshEvent) error
}

// GameDataReloader is implemented by the reference-data cache; the
// consumer calls it on every announcement.
type GameDataReloader interface {
	ReloadFromStore(ctx context.Context) error
}
