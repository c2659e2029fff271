// Package notifier records outbound notifications and publishes dispatch
// requests to RabbitMQ. Delivery happens in the background consumer; the
// request path only writes the pending row and enqueues.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/truckpitstop/garage-backend/internal/model"
	"github.com/truckpitstop/garage-backend/internal/queue"
	"github.com/truckpitstop/garage-backend/internal/repository"
)

type Notifier struct {
	notifications *repository.NotificationRepo
	frontendURL   string
}

func New(notifications *repository.NotificationRepo, frontendURL string) *Notifier {
	return &Notifier{notifications: notifications, frontendURL: frontendURL}
}

// Enqueue persists the notification in pending state and publishes a
// dispatch request. A publish failure is recorded on the row so it shows up
// as failed instead of staying pending forever.
func (n *Notifier) Enqueue(ctx context.Context, note *model.Notification) error {
	note.Status = model.NotifyPending
	if err := n.notifications.Create(ctx, note); err != nil {
		return err
	}

	ev := queue.NotificationRequestedEvent{
		NotificationID: note.ID,
		TenantID:       note.TenantID,
		Type:           note.Type,
		RecipientEmail: note.RecipientEmail,
		RecipientPhone: note.RecipientPhone,
		Subject:        note.Subject,
		Body:           note.Body,
		RequestedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := publish(ctx, ev); err != nil {
		if markErr := n.notifications.MarkFailed(ctx, note.ID, "publish: "+err.Error()); markErr != nil {
			log.Printf("notifier: mark failed after publish error: %v", markErr)
		}
		return err
	}
	return nil
}

// SendPasswordReset emails a reset link built from the configured frontend
// URL. The raw token appears only in the link; it is never logged.
func (n *Notifier) SendPasswordReset(ctx context.Context, user *model.User, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", n.frontendURL, token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received a request to reset your password. The link below is valid for one hour and can be used once.</p><p><a href=%q>Reset your password</a></p><p>If you did not request this, you can ignore this email.</p>",
		user.FirstName, link)

	note := &model.Notification{
		Type:           model.NotifyEmail,
		RecipientEmail: user.Email,
		Subject:        "Reset your password",
		Body:           body,
		TemplateName:   "password_reset",
	}
	if user.TenantID != nil {
		note.TenantID = *user.TenantID
	}
	return n.Enqueue(ctx, note)
}

// publish opens a short-lived connection per message. Notification volume is
// low enough that connection reuse is not worth the lifecycle management.
func publish(ctx context.Context, ev queue.NotificationRequestedEvent) error {
	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.NotificationQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queue.NotificationQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
