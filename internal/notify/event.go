// Package notify delivers tournament events to users over their preferred channel.
// Delivery is best effort: failures are logged and never reported to the caller.
package notify

import (
	users "github.com/AdamBeresnev/courtside/internal/user"
)

type Kind string

const (
	KindWelcome      Kind = "welcome"
	KindInvitation   Kind = "tournament-invitation"
	KindRegistration Kind = "registration-confirmation"
	KindWithdrawal   Kind = "withdrawal-confirmation"
	KindStatusUpdate Kind = "status-update"
	KindResults      Kind = "results"
	KindDeleted      Kind = "tournament-deleted"
)

const (
	StatusStarted = "started"
	StatusReset   = "reset"
)

// Event is one notification. A nil Recipient means a broadcast announcement.
type Event struct {
	Kind       Kind
	Recipient  *users.User
	Tournament string
	// Status carries the entry status for registrations and the new tournament
	// status for status updates.
	Status  string
	Results string
}

func Welcome(u *users.User) Event {
	return Event{Kind: KindWelcome, Recipient: u}
}

func Invitation(u *users.User, tournament string) Event {
	return Event{Kind: KindInvitation, Recipient: u, Tournament: tournament}
}

func Registration(u *users.User, tournament, status string) Event {
	return Event{Kind: KindRegistration, Recipient: u, Tournament: tournament, Status: status}
}

func Withdrawal(u *users.User, tournament string) Event {
	return Event{Kind: KindWithdrawal, Recipient: u, Tournament: tournament}
}

func StatusUpdate(u *users.User, tournament, status string) Event {
	return Event{Kind: KindStatusUpdate, Recipient: u, Tournament: tournament, Status: status}
}

func Results(u *users.User, tournament, results string) Event {
	return Event{Kind: KindResults, Recipient: u, Tournament: tournament, Results: results}
}

func Deleted(tournament string) Event {
	return Event{Kind: KindDeleted, Tournament: tournament}
}

func (e Event) IsBroadcast() bool {
	return e.Recipient == nil
}

// Notifier is the collaborator the services report events to.
type Notifier interface {
	Notify(events ...Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Notify(...Event) {}
