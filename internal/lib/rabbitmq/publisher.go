package rabbitmq

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/streadway/amqp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Channel — часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher публикует JSON-сообщения в обменник.
type Publisher struct {
	ch       Channel
	exchange string
}

// NewPublisher создаёт Publisher для обменника exchange.
func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Publish сериализует message и отправляет его с ключом routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) error {
	const op = "rabbitmq.Publish"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return PublishMessage(p.ch, p.exchange, routingKey, message)
}

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch Channel, exchange string, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
