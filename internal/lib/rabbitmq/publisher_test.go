package rabbitmq

import (
	"context"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestPublisher_Publish(t *testing.T) {
	type notice struct {
		LoanID string `json:"loanId"`
		Fine   int    `json:"fineAmount"`
	}

	tests := []struct {
		name       string
		message    any
		publishErr error
		wantBody   string
		wantErr    bool
	}{
		{
			name:     "success",
			message:  notice{LoanID: "l-1", Fine: 15},
			wantBody: `{"loanId":"l-1","fineAmount":15}`,
		},
		{
			name:       "broker error",
			message:    notice{LoanID: "l-2"},
			publishErr: errors.New("channel closed"),
			wantBody:   `{"loanId":"l-2","fineAmount":0}`,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := new(MockChannel)
			ch.On("Publish", NotificationsExchange, RoutingKeyOverdue, false, false,
				mock.MatchedBy(func(p amqp.Publishing) bool {
					return string(p.Body) == tt.wantBody &&
						p.ContentType == "application/json" &&
						p.DeliveryMode == amqp.Persistent
				})).Return(tt.publishErr).Once()

			p := NewPublisher(ch, NotificationsExchange)
			err := p.Publish(context.Background(), RoutingKeyOverdue, tt.message)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
			} else {
				require.NoError(t, err)
			}
			ch.AssertExpectations(t)
		})
	}
}

func TestPublisher_MarshalError(t *testing.T) {
	ch := new(MockChannel)
	p := NewPublisher(ch, NotificationsExchange)

	err := p.Publish(context.Background(), RoutingKeyDueSoon, struct {
		Ch chan int `json:"ch"`
	}{Ch: make(chan int)})

	require.Error(t, err)
	ch.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublisher_CanceledContext(t *testing.T) {
	ch := new(MockChannel)
	p := NewPublisher(ch, NotificationsExchange)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, RoutingKeyDueSoon, map[string]string{"a": "b"})
	require.ErrorIs(t, err, context.Canceled)
	ch.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
