// Package rabbitmq содержит подключение к RabbitMQ, объявление обменника
// "notifications" с очередями напоминаний и обёртки для публикации и чтения сообщений.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect подключается к брокеру, делая до retries попыток с паузой delay.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	err := fmt.Errorf("no connection attempts made")

	for i := range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		if i < retries-1 {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал, объявляет direct-обменник NotificationsExchange
// и привязывает к нему переданные очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(NotificationsExchange, "direct", true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, NotificationsExchange, false, nil); err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
