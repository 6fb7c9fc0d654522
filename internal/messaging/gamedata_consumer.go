package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// GameDataRefreshConsumer re-loads the local reference-data cache
// whenever another replica announces a refresh. Each instance gets its
// own broker-named exclusive queue bound to the fanout exchange.
type GameDataRefreshConsumer struct {
	conn         *amqp091.Connection
	ch           *amqp091.Channel
	reloader     GameDataReloader
	logger       *zap.Logger
	exchangeName string
	queueName    string
	consumerTag  string
}

func NewGameDataRefreshConsumer(
	conn *amqp091.Connection,
	reloader GameDataReloader,
	logger *zap.Logger,
) (*GameDataRefreshConsumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	if reloader == nil {
		return nil, fmt.Errorf("gamedata reloader is nil")
	}

	consumerTag := fmt.Sprintf("gamedata_refresh_consumer_%d", time.Now().UnixNano())
	consumer := &GameDataRefreshConsumer{
		conn:         conn,
		reloader:     reloader,
		logger:       logger.Named("GameDataRefreshConsumer").With(zap.String("consumerTag", consumerTag)),
		exchangeName: gameDataRefreshExchange,
		consumerTag:  consumerTag,
	}

	if err := consumer.setupChannelAndQueue(); err != nil {
		return nil, err
	}

	consumer.logger.Info("GameDataRefreshConsumer initialized",
		zap.String("exchange", consumer.exchangeName), zap.String("queue", consumer.queueName))
	return consumer, nil
}

func (c *GameDataRefreshConsumer) setupChannelAndQueue() error {
	var err error
	c.ch, err = c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	err = c.ch.ExchangeDeclare(
		c.exchangeName,
		gameDataRefreshExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to declare exchange '%s': %w", c.exchangeName, err)
	}

	// Временная эксклюзивная очередь, имя берём у брокера.
	q, err := c.ch.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	c.queueName = q.Name

	err = c.ch.QueueBind(
		c.queueName,
		"", // routing key
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		_ = c.ch.Close()
		return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.queueName, c.exchangeName, err)
	}

	return nil
}

// StartConsuming registers the consumer and handles deliveries until the
// channel closes. Reload errors are logged and the message is still
// acked: the next announcement or the periodic refresh covers the gap.
func (c *GameDataRefreshConsumer) StartConsuming(ctx context.Context) error {
	deliveries, err := c.ch.Consume(
		c.queueName,
		c.consumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("Listening for gamedata refresh events...")

	go func() {
		for d := range deliveries {
			var event GameDataRefreshEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				c.logger.Error("Failed to unmarshal refresh event", zap.Error(err))
				if nackErr := d.Nack(false, false); nackErr != nil {
					c.logger.Error("Failed to reject malformed message", zap.Error(nackErr))
				}
				continue
			}

			c.logger.Info("Received gamedata refresh event",
				zap.Strings("kinds", event.Kinds), zap.Time("fetchedAt", event.FetchedAt))
			if err := c.reloader.ReloadFromStore(ctx); err != nil {
				c.logger.Error("Failed to reload gamedata from store", zap.Error(err))
			}

			if err := d.Ack(false); err != nil {
				c.logger.Error("Failed to acknowledge message", zap.Error(err))
			}
		}
		c.logger.Info("Gamedata refresh deliveries channel closed")
	}()

	return nil
}

// Stop отменяет подписку и закрывает канал.
func (c *GameDataRefreshConsumer) Stop() {
	c.logger.Info("Stopping GameDataRefreshConsumer...")
	if c.ch != nil {
		if err := c.ch.Cancel(c.consumerTag, false); err != nil {
			c.logger.Warn("Failed to cancel consumer", zap.Error(err))
		}
		if err := c.ch.Close(); err != nil {
			c.logger.Warn("Failed to close channel", zap.Error(err))
		}
	}
}
