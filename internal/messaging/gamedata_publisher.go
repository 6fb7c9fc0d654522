package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var _ RefreshPublisher = (*RabbitMQRefreshPublisher)(nil)

// RabbitMQRefreshPublisher publishes refresh announcements to a durable
// fanout exchange.
type RabbitMQRefreshPublisher struct {
	conn         *amqp091.Connection
	ch           *amqp091.Channel
	logger       *zap.Logger
	exchangeName string
}

// NewRabbitMQRefreshPublisher создает издателя и объявляет exchange.
func NewRabbitMQRefreshPublisher(conn *amqp091.Connection, logger *zap.Logger) (*RabbitMQRefreshPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Failed to open a channel for gamedata refresh", zap.Error(err))
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		gameDataRefreshExchange,
		gameDataRefreshExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		logger.Error("Failed to declare gamedata refresh exchange",
			zap.String("exchange", gameDataRefreshExchange), zap.Error(err))
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", gameDataRefreshExchange, err)
	}

	return &RabbitMQRefreshPublisher{
		conn:         conn,
		ch:           ch,
		logger:       logger.Named("GameDataRefreshPublisher"),
		exchangeName: gameDataRefreshExchange,
	}, nil
}

// PublishRefresh публикует событие обновления справочных данных.
func (p *RabbitMQRefreshPublisher) PublishRefresh(ctx context.Context, event GameDataRefreshEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal refresh event", zap.Error(err))
		return fmt.Errorf("failed to marshal refresh event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchangeName,
		"",    // routing key (не используется для fanout)
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish refresh event", zap.Error(err))
		return fmt.Errorf("failed to publish refresh event: %w", err)
	}

	p.logger.Debug("Gamedata refresh event published", zap.Strings("kinds", event.Kinds))
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *RabbitMQRefreshPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
