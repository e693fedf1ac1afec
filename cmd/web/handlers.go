package main

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/courtside/internal/httputil"
	"github.com/AdamBeresnev/courtside/internal/middleware"
	"github.com/AdamBeresnev/courtside/internal/service"
	"github.com/AdamBeresnev/courtside/internal/tournament"
	users "github.com/AdamBeresnev/courtside/internal/user"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid ID", err)
		return uuid.Nil, false
	}
	return id, true
}

type lifecycleFunc func(ctx context.Context, acting *users.User, id uuid.UUID) (*tournament.Tournament, error)

func lifecycle(fn lifecycleFunc, failure string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		t, err := fn(r.Context(), middleware.ActingUser(r.Context()), id)
		if err != nil {
			httputil.WriteError(w, failure, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, t)
	}
}

type generateFunc func(ctx context.Context, acting *users.User, id uuid.UUID) ([]tournament.Match, error)

func generate(fn generateFunc, failure string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		matches, err := fn(r.Context(), middleware.ActingUser(r.Context()), id)
		if err != nil {
			httputil.WriteError(w, failure, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, matches)
	}
}

type progressFunc func(ctx context.Context, acting *users.User, id uuid.UUID, court int) (*service.TournamentData, error)

// roundProgress reads the optional {"court": n} body used in shuffle mode.
func roundProgress(fn progressFunc, failure string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var body struct {
			Court int `json:"court"`
		}
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.BadRequest(w, "Invalid JSON body", err)
			return
		}
		data, err := fn(r.Context(), middleware.ActingUser(r.Context()), id, body.Court)
		if err != nil {
			httputil.WriteError(w, failure, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, data)
	}
}
