package main

import (
	"net/http"

	"github.com/AdamBeresnev/courtside/internal/httputil"
	"github.com/AdamBeresnev/courtside/internal/middleware"
	"github.com/AdamBeresnev/courtside/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func newRouter(app *application, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.UserHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.LoadActingUser(app.db, app.userStore))

	r.Post("/users", func(w http.ResponseWriter, r *http.Request) {
		var in service.RegisterInput
		if err := httputil.DecodeJSON(r, &in); err != nil {
			httputil.BadRequest(w, "Invalid JSON body", err)
			return
		}
		user, err := app.users.Register(r.Context(), in)
		if err != nil {
			httputil.WriteError(w, "Failed to register user", err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, user)
	})

	r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
		list, err := app.users.List(r.Context())
		if err != nil {
			httputil.WriteError(w, "Failed to list users", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, list)
	})

	r.Get("/rankings", func(w http.ResponseWriter, r *http.Request) {
		ranked, err := app.users.Rankings(r.Context())
		if err != nil {
			httputil.WriteError(w, "Failed to compute rankings", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, ranked)
	})

	r.Get("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		list, err := app.tournaments.List(r.Context())
		if err != nil {
			httputil.WriteError(w, "Failed to list tournaments", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, list)
	})

	r.Get("/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		data, err := app.tournaments.Get(r.Context(), id)
		if err != nil {
			httputil.WriteError(w, "Failed to get tournament", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, data)
	})

	r.Get("/tournaments/{id}/participants", func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		parts, err := app.entries.Participants(r.Context(), id)
		if err != nil {
			httputil.WriteError(w, "Failed to get participants", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, parts)
	})

	r.Get("/tournaments/{id}/standings", func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		rows, err := app.tournaments.Standings(r.Context(), id)
		if err != nil {
			httputil.WriteError(w, "Failed to compute standings", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, rows)
	})

	r.Get("/tournaments/{id}/matches", func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		matches, err := app.matches.Matches(r.Context(), id)
		if err != nil {
			httputil.WriteError(w, "Failed to list matches", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, matches)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Patch("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := idParam(w, r)
			if !ok {
				return
			}
			var patch service.ProfilePatch
			if err := httputil.DecodeJSON(r, &patch); err != nil {
				httputil.BadRequest(w, "Invalid JSON body", err)
				return
			}
			user, err := app.users.UpdateProfile(r.Context(), middleware.ActingUser(r.Context()), id, patch)
			if err != nil {
				httputil.WriteError(w, "Failed to update user", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, user)
		})

		r.Post("/users/{id}/promote-organizer", func(w http.ResponseWriter, r *http.Request) {
			id, ok := idParam(w, r)
			if !ok {
				return
			}
			user, err := app.users.PromoteOrganizer(r.Context(), middleware.ActingUser(r.Context()), id)
			if err != nil {
				httputil.WriteError(w, "Failed to promote user", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, user)
		})

		r.Post("/users/{id}/revoke-organizer", func(w http.ResponseWriter, r *http.Request) {
			id, ok := idParam(w, r)
			if !ok {
				return
			}
			user, err := app.users.RevokeOrganizer(r.Context(), middleware.ActingUser(r.Context()), id)
			if err != nil {
				httputil.WriteError(w, "Failed to revoke organizer", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, user)
		})

		r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
			var in service.TournamentInput
			if err := httputil.DecodeJSON(r, &in); err != nil {
				httputil.BadRequest(w, "Invalid JSON body", err)
				return
			}
			t, err := app.tournaments.Create(r.Context(), middleware.ActingUser(r.Context()), in)
			if err != nil {
				httputil.WriteError(w, "Failed to create tournament", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, t)
		})

		r.Delete("/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := idParam(w, r)
			if !ok {
				return
			}
			if err := app.tournaments.Delete(r.Context(), middleware.ActingUser(r.Context()), id); err != nil {
				httputil.WriteError(w, "Failed to delete tournament", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/tournaments/{id}/join", func(w http.ResponseWriter, r *http.Request) {
			id, ok := idParam(w, r)
			if !ok {
				return
			}
			entry, err := app.entries.Join(r.Context(), middleware.ActingUser(r.Context()), id)
			if err != nil {
				httputil.WriteError(w, "Failed to join tournament", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, entry)
		})

		r.Post("/tournaments/{id}/leave", func(w http.ResponseWriter, r *http.Request) {
			id, ok := idParam(w, r)
			if !ok {
				return
			}
			if err := app.entries.Leave(r.Context(), middleware.ActingUser(r.Context()), id); err != nil {
				httputil.WriteError(w, "Failed to leave tournament", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/tournaments/{id}/start", lifecycle(app.tournaments.Start, "Failed to start tournament"))
		r.Post("/tournaments/{id}/finish", lifecycle(app.tournaments.Finish, "Failed to finish tournament"))
		r.Post("/tournaments/{id}/reset", lifecycle(app.tournaments.Reset, "Failed to reset tournament"))

		r.Post("/tournaments/{id}/generate-schedule", generate(app.schedule.GenerateSchedule, "Failed to generate schedule"))
		r.Post("/tournaments/{id}/rounds/next", generate(app.schedule.NextRound, "Failed to generate next round"))

		r.Post("/tournaments/{id}/round/start", roundProgress(app.schedule.StartRound, "Failed to start round"))
		r.Post("/tournaments/{id}/round/finish", roundProgress(app.schedule.FinishRound, "Failed to finish round"))

		r.Patch("/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := idParam(w, r)
			if !ok {
				return
			}
			var body struct {
				Score1 *int `json:"score1"`
				Score2 *int `json:"score2"`
			}
			if err := httputil.DecodeJSON(r, &body); err != nil {
				httputil.BadRequest(w, "Invalid JSON body", err)
				return
			}
			if body.Score1 == nil || body.Score2 == nil {
				httputil.BadRequest(w, "score1 and score2 are required", nil)
				return
			}
			m, err := app.matches.RecordScore(r.Context(), middleware.ActingUser(r.Context()), id, *body.Score1, *body.Score2)
			if err != nil {
				httputil.WriteError(w, "Failed to record score", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, m)
		})
	})

	return r
}
