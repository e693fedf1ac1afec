package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/courtside/internal/db"
	"github.com/AdamBeresnev/courtside/internal/middleware"
	"github.com/AdamBeresnev/courtside/internal/notify"
	"github.com/AdamBeresnev/courtside/internal/service"
	"github.com/AdamBeresnev/courtside/internal/store"
	"github.com/AdamBeresnev/courtside/internal/tournament"
	users "github.com/AdamBeresnev/courtside/internal/user"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "file://../../migrations"))

	ts := store.NewTournamentStore()
	us := store.NewUserStore()
	notifier := notify.Discard{}
	app := &application{
		db:          database,
		userStore:   us,
		users:       service.NewUserService(database, us, ts, notifier),
		tournaments: service.NewTournamentService(database, ts, us, notifier),
		entries:     service.NewEntryService(database, ts, us, notifier),
		schedule:    service.NewScheduleService(database, ts, us),
		matches:     service.NewMatchService(database, ts, us),
	}

	srv := httptest.NewServer(newRouter(app, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, userID string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.UserHeader, userID)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestTournamentFlow(t *testing.T) {
	srv := newTestServer(t)

	var org users.User
	status := call(t, srv, http.MethodPost, "/users", "", map[string]any{"email": "org@example.com", "fullName": "Org"}, &org)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, users.RoleOrganizer, org.Role)

	var pl users.User
	status = call(t, srv, http.MethodPost, "/users", "", map[string]any{"email": "pl@example.com", "fullName": "Pl"}, &pl)
	require.Equal(t, http.StatusCreated, status)

	status = call(t, srv, http.MethodPost, "/users", "", map[string]any{"email": "PL@example.com", "fullName": "Again"}, nil)
	assert.Equal(t, http.StatusConflict, status)

	// anonymous and unknown users are rejected on protected routes
	assert.Equal(t, http.StatusUnauthorized, call(t, srv, http.MethodPost, "/tournaments", "", map[string]any{"name": "x"}, nil))
	assert.Equal(t, http.StatusUnauthorized, call(t, srv, http.MethodPost, "/tournaments", "not-a-uuid", map[string]any{"name": "x"}, nil))

	assert.Equal(t, http.StatusForbidden, call(t, srv, http.MethodPost, "/tournaments", pl.ID.String(), map[string]any{"name": "x"}, nil))

	var tour tournament.Tournament
	status = call(t, srv, http.MethodPost, "/tournaments", org.ID.String(), map[string]any{"name": "Open Night", "maxParticipants": 2}, &tour)
	require.Equal(t, http.StatusCreated, status)

	var entry tournament.Entry
	status = call(t, srv, http.MethodPost, "/tournaments/"+tour.ID.String()+"/join", pl.ID.String(), nil, &entry)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, tournament.EntryConfirmed, entry.Status)
	assert.Equal(t, http.StatusConflict, call(t, srv, http.MethodPost, "/tournaments/"+tour.ID.String()+"/join", pl.ID.String(), nil, nil))

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/tournaments/"+tour.ID.String()+"/start", org.ID.String(), nil, nil))

	var matches []tournament.Match
	status = call(t, srv, http.MethodPost, "/tournaments/"+tour.ID.String()+"/generate-schedule", org.ID.String(), nil, &matches)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, matches, 1)

	path := "/matches/" + matches[0].ID.String()
	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPatch, path, pl.ID.String(), map[string]any{"score1": 11}, nil))
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPatch, path, pl.ID.String(), map[string]any{"score1": 11, "score2": 7}, nil))

	var rows []service.StandingRow
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/tournaments/"+tour.ID.String()+"/standings", "", nil, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Won)

	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodGet, "/tournaments/00000000-0000-0000-0000-000000000000", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodGet, "/tournaments/nope", "", nil, nil))
}
