package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/clinic-api/internal/lib/sl"
)

// ErrDrop обработчик возвращает его, если сообщение не имеет смысла доставлять повторно.
var ErrDrop = errors.New("drop message")

// ConsumerMessage читает очередь, пока не отменён ctx или не закрыт канал.
// Возвращённый done закрывается после завершения всех обработчиков.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, handler func([]byte) error) (<-chan struct{}, error) {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	done := make(chan struct{})
	sem := make(chan struct{}, prefetch)
	var wg sync.WaitGroup
	go func() {
		defer close(done)
		defer wg.Wait()
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				wg.Add(1)
				go func(delivery amqp.Delivery) {
					defer wg.Done()
					defer func() { <-sem }()
					if err := handler(delivery.Body); err != nil {
						requeue := shouldRequeue(delivery, err)
						log.Error("failed to handle message", slog.String("queue", queueName), slog.Bool("requeue", requeue), sl.Err(err))
						if nackErr := delivery.Nack(false, requeue); nackErr != nil {
							log.Error("failed to nack message", sl.Err(nackErr))
						}
						return
					}
					if ackErr := delivery.Ack(false); ackErr != nil {
						log.Error("failed to ack message", sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return done, nil
}

// shouldRequeue возвращает сообщение в очередь, пока не исчерпан лимит доставок.
// Quorum-очереди передают счётчик в x-delivery-count, классические только флаг
// Redelivered, поэтому там допускается одна повторная доставка.
func shouldRequeue(d amqp.Delivery, err error) bool {
	if errors.Is(err, ErrDrop) {
		return false
	}
	if n, ok := deliveryCount(d.Headers); ok {
		return n+1 < maxDeliveries
	}
	return !d.Redelivered
}

func deliveryCount(headers amqp.Table) (int64, bool) {
	switch v := headers["x-delivery-count"].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
