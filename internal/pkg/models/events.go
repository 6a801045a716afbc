package models

import "time"

// PaymentStatusEvent is produced to Kafka on every controller transition.
type PaymentStatusEvent struct {
	EventID        string            `json:"eventId"`
	TrackingNumber string            `json:"trackingNumber"`
	Reference      string            `json:"reference"`
	PhoneNumber    string            `json:"phoneNumber"`
	Amount         int64             `json:"amount"`
	State          string            `json:"state"`
	Status         TransactionStatus `json:"status,omitempty"`
	Message        string            `json:"message,omitempty"`
	StopReason     string            `json:"stopReason,omitempty"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

type SmsNotificationParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SmsNotificationRequest is published to the notification topic.
type SmsNotificationRequest struct {
	Msisdn          string                     `json:"msisdn"`
	SmsDbEventName  string                     `json:"sms_db_event_name"`
	NotifParameters []SmsNotificationParameter `json:"notif_parameters"`
}
