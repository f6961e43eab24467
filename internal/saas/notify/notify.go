// Package notify delivers best-effort event notifications to contract and
// link participants. Delivery is asynchronous; a failed or dropped
// notification never fails the request that produced it.
package notify

import "context"

// Event is one notification to dispatch.
type Event struct {
	// Kind names the event, e.g. "contract.created" or "link.accepted".
	Kind string
	// RecipientIDs are user ids to notify.
	RecipientIDs []string
	// EmployeeEmails are addresses of workspace staff referenced by the
	// subject. Employees have no user account, so they are addressed by
	// email.
	EmployeeEmails []string
	// Subject is the id of the entity the event concerns.
	Subject string
	// ActorID is the user who caused the event.
	ActorID string
	// Message is a short human-readable summary.
	Message string
	// Attachment is an optional document reference to include, such as a
	// contract file.
	Attachment string
}

// Sink delivers a single event.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}
