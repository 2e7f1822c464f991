package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"skillxintell/internal/config"
	"skillxintell/internal/domain/verification"
	"skillxintell/internal/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
)

// Publisher sends verification events to a topic exchange, using the event
// type as routing key. A publisher built without a URL is disabled and drops
// every event.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	enabled  bool
	logger   logger.Logger
}

func NewPublisher(ctx context.Context, cfg config.RabbitMQConfig, log logger.Logger) (*Publisher, error) {
	exchange := strings.TrimSpace(cfg.Exchange)
	if strings.TrimSpace(cfg.URL) == "" {
		if log != nil {
			log.Warn("rabbitmq url is empty, event publishing is disabled")
		}
		return &Publisher{exchange: exchange, logger: log}, nil
	}

	var conn *amqp.Connection
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := amqp.Dial(cfg.URL)
		if err != nil {
			if log != nil {
				log.Warn("rabbitmq dial failed, retrying", "err", err)
			}
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if log != nil {
		log.Info("event publisher initialized", "exchange", exchange)
	}
	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		enabled:  true,
		logger:   log,
	}, nil
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.enabled
}

func (p *Publisher) Notify(ctx context.Context, ev verification.Event) error {
	if !p.Enabled() {
		return nil
	}

	msg, err := buildMessage(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.PublishWithContext(ctx, p.exchange, string(ev.Type), false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil && p.logger != nil {
			p.logger.Warn("closing rabbitmq channel", "err", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	return nil
}

func buildMessage(ev verification.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	ts := ev.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.RequestID.String() + ":" + string(ev.Type),
		Timestamp:    ts,
		Body:         body,
		Headers: amqp.Table{
			"event_type":   string(ev.Type),
			"request_id":   ev.RequestID.String(),
			"requester_id": ev.RequesterID.String(),
			"reviewer_id":  ev.ReviewerID.String(),
		},
	}, nil
}
