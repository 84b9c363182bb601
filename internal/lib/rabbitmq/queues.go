package rabbitmq

const (
	// NotificationsExchange — обменник для напоминаний о выдачах.
	NotificationsExchange = "notifications"

	// RoutingKeyDueSoon — выдача, срок которой истекает в ближайшие сутки.
	RoutingKeyDueSoon = "loan.due_soon"
	// RoutingKeyOverdue — просроченная выдача с начисленным штрафом.
	RoutingKeyOverdue = "loan.overdue"

	// QueueDueSoon и QueueOverdue — очереди отправщика писем.
	QueueDueSoon = "loan_due_soon_queue"
	QueueOverdue = "loan_overdue_queue"

	prefetchCount = 10
)

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// LoanQueues возвращает очереди, которые слушает отправщик писем.
func LoanQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueDueSoon, RoutingKey: RoutingKeyDueSoon},
		{QueueName: QueueOverdue, RoutingKey: RoutingKeyOverdue},
	}
}
