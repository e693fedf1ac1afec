package tournament

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type EntryStatus string

const (
	EntryConfirmed EntryStatus = "confirmed"
	EntryWaitlist  EntryStatus = "waitlist"
)

// WaitlistCap is the maximum number of waitlisted entries per tournament.
const WaitlistCap = 3

type Entry struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	TournamentID uuid.UUID   `db:"tournament_id" json:"tournamentId"`
	UserID       uuid.UUID   `db:"user_id" json:"userId"`
	Status       EntryStatus `db:"status" json:"status"`
	// Position is the admission sequence number. The waitlist is served in Position order.
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Roster splits a tournament's entries into the confirmed list and the FIFO waitlist queue.
type Roster struct {
	Confirmed []Entry
	Waitlist  []Entry
}

func NewRoster(entries []Entry) Roster {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	var r Roster
	for _, e := range sorted {
		if e.Status == EntryWaitlist {
			r.Waitlist = append(r.Waitlist, e)
		} else {
			r.Confirmed = append(r.Confirmed, e)
		}
	}
	return r
}

// AdmitStatus decides the status of a new entry. ok is false when the tournament
// is full and the waitlist has no free slot.
func (r Roster) AdmitStatus(t *Tournament) (status EntryStatus, ok bool) {
	if !t.HasCapacity() || len(r.Confirmed) < *t.MaxParticipants {
		return EntryConfirmed, true
	}
	if len(r.Waitlist) >= WaitlistCap {
		return "", false
	}
	return EntryWaitlist, true
}

// NextPosition returns the position a newly admitted entry takes at the back of the queue.
func (r Roster) NextPosition() int {
	last := 0
	for _, list := range [][]Entry{r.Confirmed, r.Waitlist} {
		for _, e := range list {
			if e.Position > last {
				last = e.Position
			}
		}
	}
	return last + 1
}

// Head returns the earliest waitlisted entry.
func (r Roster) Head() (Entry, bool) {
	if len(r.Waitlist) == 0 {
		return Entry{}, false
	}
	return r.Waitlist[0], true
}

func (r Roster) Find(userID uuid.UUID) (Entry, bool) {
	for _, list := range [][]Entry{r.Confirmed, r.Waitlist} {
		for _, e := range list {
			if e.UserID == userID {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// ConfirmedPlayers returns the confirmed user IDs in queue order.
func (r Roster) ConfirmedPlayers() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Confirmed))
	for _, e := range r.Confirmed {
		ids = append(ids, e.UserID)
	}
	return ids
}
