// Package events рассылает события о создании и отмене бронирований.
package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Leganyst/room-booking/internal/model"
	"github.com/Leganyst/room-booking/internal/repository"
)

// Publisher доставляет событие подписчикам. Ошибка публикации не отменяет
// уже записанное бронирование.
type Publisher interface {
	Publish(ctx context.Context, ev model.Event) error
}

// Encode сериализует событие для передачи по сети.
func Encode(ev model.Event) ([]byte, error) {
	return json.Marshal(ev)
}

// LogPublisher пишет события в лог.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, ev model.Event) error {
	p.logger.Info("booking event",
		zap.String("type", string(ev.EventType)),
		zap.String("slot_key", ev.SlotKey),
		zap.String("teacher", ev.TeacherName),
		zap.Int("week", ev.WeekNumber),
	)
	return nil
}

// AuditPublisher сохраняет события в журнал аудита.
type AuditPublisher struct {
	repo repository.EventRepository
}

func NewAuditPublisher(repo repository.EventRepository) *AuditPublisher {
	return &AuditPublisher{repo: repo}
}

func (p *AuditPublisher) Publish(ctx context.Context, ev model.Event) error {
	if err := p.repo.Create(ctx, &ev); err != nil {
		return fmt.Errorf("audit event: %w", err)
	}
	return nil
}

// AMQPPublisher публикует события в topic-exchange RabbitMQ,
// ключ маршрутизации — тип события.
type AMQPPublisher struct {
	channel  *amqp091.Channel
	exchange string
}

func NewAMQPPublisher(conn *amqp091.Connection, exchange string) (*AMQPPublisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, amqp091.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		return nil, fmt.Errorf("amqp declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{channel: channel, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev model.Event) error {
	body, err := Encode(ev)
	if err != nil {
		return err
	}

	message := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		MessageId:    ev.ID.String(),
		Timestamp:    ev.CreatedAt,
		Type:         string(ev.EventType),
	}
	if err := p.channel.PublishWithContext(ctx, p.exchange, string(ev.EventType), false, false, message); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.channel.Close()
}

// Multi публикует событие во все издатели и собирает их ошибки.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev model.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
