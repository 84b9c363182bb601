package smtp

import (
	"fmt"
	"strings"
)

// Message — текстовое письмо одному получателю.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Bytes собирает письмо в формате RFC 5322 с телом в UTF-8.
func (m Message) Bytes() []byte {
	return []byte(strings.Join([]string{
		fmt.Sprintf("From: %s", m.From),
		fmt.Sprintf("To: %s", m.To),
		fmt.Sprintf("Subject: %s", m.Subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		strings.ReplaceAll(m.Body, "\n", "\r\n"),
	}, "\r\n"))
}

// Send передаёт письмо через уже подключённый клиент и завершает сессию.
func Send(c Client, m Message) error {
	const op = "smtp.Send"
	defer c.Close()

	if err := c.Mail(m.From); err != nil {
		return fmt.Errorf("%s: failed to set mail sender: %w", op, err)
	}
	if err := c.Rcpt(m.To); err != nil {
		return fmt.Errorf("%s: failed to set recipient %s: %w", op, m.To, err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("%s: failed to get write closer: %w", op, err)
	}
	if _, err := wc.Write(m.Bytes()); err != nil {
		_ = wc.Close()
		return fmt.Errorf("%s: failed to write message: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%s: failed to close write closer: %w", op, err)
	}
	if err := c.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}
	return nil
}
