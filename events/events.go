// events.go - Domain notifications and their fan-out to transports

// Package events describes domain notifications and fans them out to transports.
package events

import (
	"context"
	"time"

	"go-jobmarket-backend/models"
)

const (
	TypeJobCreated               = "job.created"
	TypeApplicationCreated       = "application.created"
	TypeApplicationStatusUpdated = "application.status_updated"
)

// Event is a notification about a domain change. Recipients lists the users the
// event is addressed to; an empty list means every connected user.
type Event struct {
	Type       string    `json:"type"`
	Recipients []uint    `json:"-"`
	Data       any       `json:"data"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notifier delivers events. Implementations must not block the request path
// for long and must never fail the request.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Multi forwards every event to each notifier in order.
type Multi []Notifier

// Notify forwards e to every non-nil notifier.
func (m Multi) Notify(ctx context.Context, e Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, e)
		}
	}
}

// Nop drops events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// JobCreated is broadcast to every connected user.
func JobCreated(j *models.Job) Event {
	return Event{Type: TypeJobCreated, Data: j, Timestamp: time.Now().UTC()}
}

// ApplicationCreated is addressed to the owner of the job.
func ApplicationCreated(a *models.Application, ownerID uint) Event {
	return Event{Type: TypeApplicationCreated, Recipients: []uint{ownerID}, Data: a, Timestamp: time.Now().UTC()}
}

// ApplicationStatusUpdated is addressed to the applicant.
func ApplicationStatusUpdated(a *models.Application) Event {
	return Event{Type: TypeApplicationStatusUpdated, Recipients: []uint{a.UserID}, Data: a, Timestamp: time.Now().UTC()}
}
