package models

// RecoveryMail письмо со ссылкой для сброса пароля.
// В режиме очереди публикуется в RabbitMQ в виде JSON.
type RecoveryMail struct {
	Email string `json:"email"`
	Link  string `json:"link"`
}
