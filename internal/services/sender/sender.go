// Package sender получает напоминания из RabbitMQ и отправляет письма читателям.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"github.com/magabrotheeeer/library-management/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/lib/smtp"
	"github.com/magabrotheeeer/library-management/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Transport открывает SMTP-сессию.
type Transport interface {
	Connect(ctx context.Context) (smtp.Client, error)
	From() string
}

// Service отправляет письма по напоминаниям о выдачах.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(transport Transport, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendDueSoon отправляет письмо о сроке возврата в ближайшие сутки.
func (s *Service) SendDueSoon(ctx context.Context, body []byte) error {
	const op = "sender.SendDueSoon"
	notice, err := decodeNotice(body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	text := fmt.Sprintf("Здравствуйте, %s!\n\nСрок возврата книги «%s» истекает %s.\n\nПожалуйста, верните её вовремя.",
		notice.Name, notice.BookTitle, notice.DueDate.Format("02.01.2006 15:04 MST"))
	if err := s.send(ctx, op, notice.Email, "Напоминание о сроке возврата книги", text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendOverdue отправляет письмо о просрочке с текущим штрафом.
func (s *Service) SendOverdue(ctx context.Context, body []byte) error {
	const op = "sender.SendOverdue"
	notice, err := decodeNotice(body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	text := fmt.Sprintf("Здравствуйте, %s!\n\nСрок возврата книги «%s» истёк %s.\nНачисленный штраф на сегодня: %d.\n\nШтраф растёт за каждый день просрочки.",
		notice.Name, notice.BookTitle, notice.DueDate.Format("02.01.2006"), notice.FineAmount)
	if err := s.send(ctx, op, notice.Email, "Просрочен возврат книги", text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// decodeNotice разбирает сообщение. Битое сообщение не возвращается в очередь.
func decodeNotice(body []byte) (models.LoanNotice, error) {
	var notice models.LoanNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		return notice, fmt.Errorf("%w: unmarshal notice: %w", rabbitmq.ErrDrop, err)
	}
	if notice.Email == "" {
		return notice, fmt.Errorf("%w: notice without recipient", rabbitmq.ErrDrop)
	}
	return notice, nil
}

func (s *Service) send(ctx context.Context, op, to, subject, text string) error {
	log := s.log.With(sl.Op(op), slog.String("to", to))

	client, err := s.transport.Connect(ctx)
	if err != nil {
		log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	msg := smtp.Message{
		From:    s.transport.From(),
		To:      to,
		Subject: subject,
		Body:    text,
	}
	if err := smtp.Send(client, msg); err != nil {
		log.Error("failed to send email", sl.Err(err))
		return err
	}

	log.Info("email sent successfully")
	return nil
}
