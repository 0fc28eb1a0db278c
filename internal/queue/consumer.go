package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/chesterguides/guiding-backend/internal/notify"
)

// StartPaymentConsumer connects to RabbitMQ, declares the
// payment.completed queue (durable), and starts consuming messages.
// Each event fans out a "tour paid" push notification to the guide's
// registered devices. The function runs a reconnect loop with capped
// backoff; processing errors are logged and the offending message is
// rejected without requeue so the consumer keeps draining.
func StartPaymentConsumer(notifier notify.Notifier, logger *logrus.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			logger.WithError(err).Warnf("payment-consumer: failed to dial broker; retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, notifier, logger); err != nil {
			logger.WithError(err).Warn("payment-consumer: consume loop ended; reconnecting")
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, notifier notify.Notifier, logger *logrus.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.WithError(err).Warn("payment-consumer: set QoS failed")
	}

	_, err = ch.QueueDeclare(paymentQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(paymentQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, notifier); err != nil {
			logger.WithError(err).Warn("payment-consumer: handle message failed")
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, notifier notify.Notifier) error {
	var ev PaymentCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.GuideUserID == "" {
		return errors.New("event has no guide user")
	}
	amountText := ""
	if ev.AmountPence > 0 {
		amountText = fmt.Sprintf(" (%d.%02d %s)", ev.AmountPence/100, ev.AmountPence%100, ev.Currency)
	}
	msg := notify.Message{
		Title: "Tour paid",
		Body:  fmt.Sprintf("Your tour has been marked as paid%s.", amountText),
		Data: map[string]string{
			"type":    "tour_paid",
			"slot_id": fmt.Sprintf("%d", ev.SlotID),
		},
	}
	return notifier.NotifyUser(context.Background(), ev.GuideUserID, msg)
}
