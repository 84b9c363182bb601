package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanQueues(t *testing.T) {
	queues := LoanQueues()
	require.Len(t, queues, 2)

	routingKeys := map[string]string{}
	seen := map[string]bool{}
	for _, q := range queues {
		assert.Falsef(t, seen[q.QueueName], "duplicate queue name: %s", q.QueueName)
		seen[q.QueueName] = true
		routingKeys[q.RoutingKey] = q.QueueName
	}

	assert.Equal(t, "loan_due_soon_queue", routingKeys[RoutingKeyDueSoon])
	assert.Equal(t, "loan_overdue_queue", routingKeys[RoutingKeyOverdue])
}
