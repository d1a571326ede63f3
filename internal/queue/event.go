// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// GigCreatedQueue is the durable queue gig creation events are routed to.
const GigCreatedQueue = "gig.created"

// GigCreatedEvent is published after a gig has been persisted. It carries
// enough of the record that the consumer never reads the store.
type GigCreatedEvent struct {
	GigID     string `json:"gig_id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Location  string `json:"location"`
	Category  string `json:"category"`
	Contact   string `json:"contact_name"`
	CreatedAt string `json:"created_at"` // RFC 3339, UTC
}
