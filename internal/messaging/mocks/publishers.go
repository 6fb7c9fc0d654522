package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tracker-server/internal/messaging"
)

// Mock RefreshPublisher
type RefreshPublisher struct {
	mock.Mock
}

var _ messaging.RefreshPublisher = (*RefreshPublisher)(nil)

func (m *RefreshPublisher) PublishRefresh(ctx context.Context, event messaging.GameDataRefreshEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
