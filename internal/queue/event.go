// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// ActivationQueueName is the durable queue carrying activation mail requests.
const ActivationQueueName = "user.activation"

// ActivationRequestedEvent is published when an admin creates an account.
// The consumer turns it into an activation mail.
type ActivationRequestedEvent struct {
	Email       string    `json:"email"`
	Link        string    `json:"link"`
	RequestedAt time.Time `json:"requested_at"`
}
