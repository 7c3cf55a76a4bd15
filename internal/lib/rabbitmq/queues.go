package rabbitmq

const (
	MailExchange       = "mail"
	RecoveryQueue      = "mail.recovery"
	RecoveryRoutingKey = "recovery"

	prefetch = 10
	// maxDeliveries после стольких неудачных доставок сообщение отбрасывается.
	maxDeliveries = 3
)

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

func GetMailQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: RecoveryQueue, RoutingKey: RecoveryRoutingKey},
	}
}
