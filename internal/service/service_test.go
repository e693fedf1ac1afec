package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/courtside/internal/db"
	"github.com/AdamBeresnev/courtside/internal/notify"
	"github.com/AdamBeresnev/courtside/internal/store"
	"github.com/AdamBeresnev/courtside/internal/tournament"
	users "github.com/AdamBeresnev/courtside/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "file://../../migrations"), "Failed to apply migrations")
	return database
}

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(events ...notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recorder) kinds(kind notify.Kind) []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	db          *sqlx.DB
	tStore      *store.TournamentStore
	uStore      *store.UserStore
	notes       *recorder
	entries     *EntryService
	tournaments *TournamentService
	schedule    *ScheduleService
	matches     *MatchService
	users       *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := setupTestDB(t)
	ts := store.NewTournamentStore()
	us := store.NewUserStore()
	notes := &recorder{}

	return &testEnv{
		db:          database,
		tStore:      ts,
		uStore:      us,
		notes:       notes,
		entries:     NewEntryService(database, ts, us, notes),
		tournaments: NewTournamentService(database, ts, us, notes),
		schedule:    NewScheduleService(database, ts, us),
		matches:     NewMatchService(database, ts, us),
		users:       NewUserService(database, us, ts, notes),
	}
}

func (e *testEnv) player(t *testing.T, name string, rating float64) *users.User {
	t.Helper()
	u := &users.User{
		ID:                  uuid.New(),
		Email:               name + "@example.com",
		FullName:            name,
		Role:                users.RolePlayer,
		Rating:              rating,
		SkillCategory:       "Beginner",
		NotificationChannel: users.NotifyNone,
		CreatedAt:           time.Now().UTC(),
	}
	require.NoError(t, e.uStore.CreateUser(context.Background(), e.db, u))
	return u
}

func (e *testEnv) organizer(t *testing.T) *users.User {
	t.Helper()
	u := e.player(t, "organizer", users.DefaultRating)
	u.Role = users.RoleOrganizer
	require.NoError(t, e.uStore.UpdateUserProfile(context.Background(), e.db, u))
	return u
}

// tournament inserts a tournament directly, so nobody is entered yet.
func (e *testEnv) tournament(t *testing.T, owner *users.User, configure func(*tournament.Tournament)) *tournament.Tournament {
	t.Helper()
	tour := &tournament.Tournament{
		ID:          uuid.New(),
		OwnerID:     owner.ID,
		Name:        "Thursday Social",
		CourtsCount: 1,
		Mode:        tournament.ModeFixed,
		MatchType:   tournament.Singles,
		Status:      tournament.StatusOpen,
		CreatedAt:   time.Now().UTC(),
	}
	if configure != nil {
		configure(tour)
	}
	require.NoError(t, e.tStore.CreateTournament(context.Background(), e.db, tour))
	return tour
}

func (e *testEnv) join(t *testing.T, tourID uuid.UUID, players ...*users.User) {
	t.Helper()
	for _, p := range players {
		_, err := e.entries.Join(context.Background(), p, tourID)
		require.NoError(t, err)
	}
}

func (e *testEnv) setStatus(t *testing.T, tour *tournament.Tournament, status tournament.Status) {
	t.Helper()
	tour.Status = status
	require.NoError(t, e.tStore.UpdateTournament(context.Background(), e.db, tour))
}

func (e *testEnv) rating(t *testing.T, id uuid.UUID) float64 {
	t.Helper()
	u, err := e.uStore.GetUser(context.Background(), e.db, id)
	require.NoError(t, err)
	return u.Rating
}

func (e *testEnv) players(t *testing.T, n int) []*users.User {
	t.Helper()
	out := make([]*users.User, n)
	for i := range out {
		out[i] = e.player(t, "p"+string(rune('a'+i)), users.DefaultRating)
	}
	return out
}

func ids(list []users.User) []uuid.UUID {
	out := make([]uuid.UUID, len(list))
	for i, u := range list {
		out[i] = u.ID
	}
	return out
}
