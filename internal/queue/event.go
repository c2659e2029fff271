// Package queue defines message payloads exchanged over the message broker
// and the background consumer that dispatches them.
package queue

// NotificationQueueName is the durable queue carrying outbound notification
// requests from the API to the dispatcher.
const NotificationQueueName = "notification.dispatch"

// NotificationRequestedEvent is published when a notification row has been
// written in pending state. The consumer delivers it through the matching
// provider and records the outcome against NotificationID.
type NotificationRequestedEvent struct {
	NotificationID uint64 `json:"notification_id"`
	TenantID       uint64 `json:"tenant_id"`
	Type           string `json:"type"` // email or sms
	RecipientEmail string `json:"recipient_email,omitempty"`
	RecipientPhone string `json:"recipient_phone,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Body           string `json:"body"`
	RequestedAt    string `json:"requested_at"`
}
