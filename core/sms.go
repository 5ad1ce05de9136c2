package core

import "strings"

type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliverySkipped DeliveryStatus = "skipped"
	DeliveryFailed  DeliveryStatus = "failed"
)

type (
	// SMSMessage is a text message bound for a guardian's phone.
	// Body may contain any unicode content, emoji included.
	SMSMessage struct {
		To   string `json:"to"`
		Body string `json:"body"`
	}

	// DeliveryResult reports the outcome of a single send attempt.
	// SID is the provider-assigned message identifier on success.
	DeliveryResult struct {
		Status DeliveryStatus `json:"status"`
		SID    string         `json:"sid,omitempty"`
		Err    error          `json:"-"`
	}

	// SMSService is any service that can send text messages.
	// An empty destination is reported as skipped, never as an error,
	// and a failed delivery never aborts the caller's batch.
	SMSService interface {
		Send(msg SMSMessage) DeliveryResult
	}
)

func (m *SMSMessage) HasDestination() bool {
	return strings.TrimSpace(m.To) != ""
}

// DeliveryReport aggregates delivery outcomes over a batch.
type DeliveryReport struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func (r *DeliveryReport) Add(res DeliveryResult) {
	switch res.Status {
	case DeliverySent:
		r.Sent++
	case DeliverySkipped:
		r.Skipped++
	case DeliveryFailed:
		r.Failed++
	}
}
