package model

import "time"

// Notification channel and delivery states.
const (
	NotifyEmail = "email"
	NotifySMS   = "sms"

	NotifyPending   = "pending"
	NotifySent      = "sent"
	NotifyFailed    = "failed"
	NotifyDelivered = "delivered"
)

// Notification mirrors the `notifications` table. Rows are written pending
// before dispatch and updated with the gateway outcome, so every outbound
// message has a local status record.
type Notification struct {
	ID       uint64 `json:"id"`
	TenantID uint64 `json:"tenant_id"`

	Type   string `json:"type"`
	Status string `json:"status"`

	RecipientEmail string `json:"recipient_email,omitempty"`
	RecipientPhone string `json:"recipient_phone,omitempty"`

	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`

	TemplateName string `json:"template_name,omitempty"`
	ExternalID   string `json:"external_id,omitempty"` // Twilio/Resend message id
	ErrorMessage string `json:"error_message,omitempty"`

	SentAt      *time.Time `json:"sent_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
