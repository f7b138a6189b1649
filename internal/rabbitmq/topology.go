package rabbitmq

// Обменники и очереди конвейера оплаты.
const (
	ExchangeOrders        = "orders"
	ExchangeNotifications = "notifications"

	RoutingKeyPaid = "paid"
	RoutingKeyPush = "push"

	QueueOrdersPaid        = "orders.paid"
	QueuePushNotifications = "notifications.push"
)

// QueueConfig описывает очередь и её привязку к обменнику
type QueueConfig struct {
	Exchange   string
	QueueName  string
	RoutingKey string
}

// Topology возвращает все очереди, которые объявляют сервисы.
func Topology() []QueueConfig {
	return []QueueConfig{
		{Exchange: ExchangeOrders, QueueName: QueueOrdersPaid, RoutingKey: RoutingKeyPaid},
		{Exchange: ExchangeNotifications, QueueName: QueuePushNotifications, RoutingKey: RoutingKeyPush},
	}
}
