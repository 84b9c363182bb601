package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/streadway/amqp"
)

// ErrDrop оборачивается обработчиком, когда сообщение нельзя обработать повторно
// (например, битый JSON). Такое сообщение отклоняется без возврата в очередь.
var ErrDrop = errors.New("drop message")

// Handler обрабатывает тело сообщения.
type Handler func(ctx context.Context, body []byte) error

// ConsumerMessage запускает чтение очереди queueName. Сообщения обрабатываются
// параллельно, не более prefetchCount одновременно. При ошибке обработчика
// сообщение возвращается в очередь. Чтение прекращается по отмене ctx.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler Handler) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(sl.Op(op), slog.String("queue", queueName))
	go consume(ctx, log, delivery, handler)
	return nil
}

// acknowledger — часть amqp.Delivery для подтверждения сообщений.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func consume(ctx context.Context, log *slog.Logger, delivery <-chan amqp.Delivery, handler Handler) {
	sem := make(chan struct{}, prefetchCount)
	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				log.Info("delivery channel closed")
				return
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				settle(ctx, log, d, d.Body, handler)
			}(d)
		case <-ctx.Done():
			return
		}
	}
}

func settle(ctx context.Context, log *slog.Logger, ack acknowledger, body []byte, handler Handler) {
	err := handler(ctx, body)
	if err == nil {
		if ackErr := ack.Ack(false); ackErr != nil {
			log.Error("failed to ack message", sl.Err(ackErr))
		}
		return
	}

	requeue := !errors.Is(err, ErrDrop)
	log.Warn("message handling failed", sl.Err(err), slog.Bool("requeue", requeue))
	if nackErr := ack.Nack(false, requeue); nackErr != nil {
		log.Error("failed to nack message", sl.Err(nackErr))
	}
}
