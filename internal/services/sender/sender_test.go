package sender

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/library-management/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/library-management/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect(ctx context.Context) (smtp.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) From() string {
	return m.Called().String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

// bufWriter собирает тело письма.
type bufWriter struct {
	strings.Builder
}

func (w *bufWriter) Close() error { return nil }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const notice = `{"loanId":"6b0a3c0e-4a59-4d8e-9d5f-1b2c3d4e5f60","email":"alice@library.local","name":"Alice","bookTitle":"Dune","dueDate":"2025-03-11T12:00:00Z","fineAmount":15}`

func expectDelivery(tr *MockTransport) (*MockSMTPClient, *bufWriter) {
	client := new(MockSMTPClient)
	w := &bufWriter{}
	tr.On("From").Return("library@library.local")
	tr.On("Connect", mock.Anything).Return(client, nil).Once()
	client.On("Mail", "library@library.local").Return(nil).Once()
	client.On("Rcpt", "alice@library.local").Return(nil).Once()
	client.On("Data").Return(w, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()
	return client, w
}

func TestService_Send(t *testing.T) {
	tests := []struct {
		name     string
		send     func(s *Service, ctx context.Context, body []byte) error
		wantText []string
	}{
		{
			name:     "due soon",
			send:     (*Service).SendDueSoon,
			wantText: []string{"Subject: Напоминание о сроке возврата книги", "Alice", "Dune", "11.03.2025"},
		},
		{
			name:     "overdue",
			send:     (*Service).SendOverdue,
			wantText: []string{"Subject: Просрочен возврат книги", "Dune", "15"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := new(MockTransport)
			client, w := expectDelivery(tr)

			err := tt.send(NewService(tr, newNoopLogger()), context.Background(), []byte(notice))
			require.NoError(t, err)
			for _, s := range tt.wantText {
				assert.Contains(t, w.String(), s)
			}
			assert.Contains(t, w.String(), "To: alice@library.local")
			client.AssertExpectations(t)
			tr.AssertExpectations(t)
		})
	}
}

func TestService_SendErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(*MockTransport)
		wantDrop bool
	}{
		{
			name:     "invalid JSON",
			body:     `invalid json`,
			setup:    func(*MockTransport) {},
			wantDrop: true,
		},
		{
			name:     "no recipient",
			body:     `{"name":"Alice","bookTitle":"Dune"}`,
			setup:    func(*MockTransport) {},
			wantDrop: true,
		},
		{
			name: "SMTP connection error",
			body: notice,
			setup: func(tr *MockTransport) {
				tr.On("Connect", mock.Anything).Return(nil, errors.New("connection refused")).Once()
			},
		},
		{
			name: "recipient rejected",
			body: notice,
			setup: func(tr *MockTransport) {
				client := new(MockSMTPClient)
				tr.On("From").Return("library@library.local")
				tr.On("Connect", mock.Anything).Return(client, nil).Once()
				client.On("Mail", "library@library.local").Return(nil)
				client.On("Rcpt", "alice@library.local").Return(errors.New("550 mailbox unavailable"))
				client.On("Close").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := new(MockTransport)
			tt.setup(tr)

			err := NewService(tr, newNoopLogger()).SendOverdue(context.Background(), []byte(tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.wantDrop, errors.Is(err, rabbitmq.ErrDrop))
			if tt.wantDrop {
				tr.AssertNotCalled(t, "Connect", mock.Anything)
			}
		})
	}
}
