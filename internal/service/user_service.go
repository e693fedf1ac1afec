package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/AdamBeresnev/courtside/internal/notify"
	"github.com/AdamBeresnev/courtside/internal/rating"
	"github.com/AdamBeresnev/courtside/internal/standings"
	"github.com/AdamBeresnev/courtside/internal/store"
	users "github.com/AdamBeresnev/courtside/internal/user"
	"github.com/AdamBeresnev/courtside/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const defaultSkillCategory = "Beginner"

type UserService struct {
	db          *sqlx.DB
	store       *store.UserStore
	tournaments *store.TournamentStore
	notifier    notify.Notifier
}

func NewUserService(db *sqlx.DB, store *store.UserStore, tournaments *store.TournamentStore, notifier notify.Notifier) *UserService {
	return &UserService{db: db, store: store, tournaments: tournaments, notifier: notifier}
}

type RegisterInput struct {
	Email               string                    `json:"email"`
	FullName            string                    `json:"fullName"`
	Role                users.Role                `json:"role"`
	Rating              *float64                  `json:"rating"`
	SkillCategory       string                    `json:"skillCategory"`
	NotificationChannel users.NotificationChannel `json:"notificationChannel"`
	TelegramChatID      *int64                    `json:"telegramChatId"`
}

// ProfilePatch holds the fields to change; nil fields are left alone.
type ProfilePatch struct {
	FullName            *string                    `json:"fullName"`
	SkillCategory       *string                    `json:"skillCategory"`
	NotificationChannel *users.NotificationChannel `json:"notificationChannel"`
	TelegramChatID      *int64                     `json:"telegramChatId"`
	Role                *users.Role                `json:"role"`
}

func validChannel(c users.NotificationChannel) bool {
	switch c {
	case users.NotifyNone, users.NotifyEmail, users.NotifyTelegram:
		return true
	}
	return false
}

// Register creates a user. Nobody can sign up as Organizer once one exists; until
// then the new user becomes the Organizer.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*users.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("a valid email is required")
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, invalid("fullName is required")
	}

	channel := in.NotificationChannel
	if channel == "" {
		channel = users.NotifyNone
	}
	if !validChannel(channel) {
		return nil, invalid("unknown notification channel %q", channel)
	}
	if channel == users.NotifyTelegram && in.TelegramChatID == nil {
		return nil, invalid("telegramChatId is required for Telegram notifications")
	}

	u := &users.User{
		ID:                  uuid.New(),
		Email:               email,
		FullName:            fullName,
		Role:                users.RolePlayer,
		Rating:              users.DefaultRating,
		SkillCategory:       defaultSkillCategory,
		NotificationChannel: channel,
		TelegramChatID:      in.TelegramChatID,
		CreatedAt:           time.Now().UTC(),
	}
	if in.Rating != nil && *in.Rating >= rating.Floor {
		u.Rating = *in.Rating
	}
	if c := strings.TrimSpace(in.SkillCategory); c != "" {
		u.SkillCategory = c
	}

	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := s.store.GetUserByEmail(ctx, tx, email)
		if err == nil {
			return fmt.Errorf("email %s: %w", email, ErrDuplicateEntry)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		organizers, err := s.store.CountOrganizers(ctx, tx)
		if err != nil {
			return err
		}
		if organizers == 0 {
			u.Role = users.RoleOrganizer
		}
		return s.store.CreateUser(ctx, tx, u)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.Welcome(u))
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*users.User, error) {
	u, err := s.store.GetUser(ctx, s.db, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]users.User, error) {
	return s.store.ListUsers(ctx, s.db)
}

// UpdateProfile applies a patch to a user. Users may edit themselves; organizers may
// edit anyone and are the only ones who can change roles.
func (s *UserService) UpdateProfile(ctx context.Context, acting *users.User, id uuid.UUID, patch ProfilePatch) (*users.User, error) {
	if acting == nil {
		return nil, ErrForbidden
	}
	if acting.ID != id && !acting.IsOrganizer() {
		return nil, ErrForbidden
	}
	if patch.Role != nil && !acting.IsOrganizer() {
		return nil, fmt.Errorf("%w: only organizers can change roles", ErrForbidden)
	}

	var u *users.User
	var subscribed bool
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		u, err = s.store.GetUser(ctx, tx, id)
		if err != nil {
			return notFound(err, "user")
		}

		if patch.FullName != nil {
			name := strings.TrimSpace(*patch.FullName)
			if name == "" {
				return invalid("fullName must not be empty")
			}
			u.FullName = name
		}
		if patch.SkillCategory != nil {
			u.SkillCategory = strings.TrimSpace(*patch.SkillCategory)
		}

		oldChatID := utils.OrZero(u.TelegramChatID)
		if patch.TelegramChatID != nil {
			u.TelegramChatID = patch.TelegramChatID
		}
		if patch.NotificationChannel != nil {
			if !validChannel(*patch.NotificationChannel) {
				return invalid("unknown notification channel %q", *patch.NotificationChannel)
			}
			u.NotificationChannel = *patch.NotificationChannel
		}
		if u.NotificationChannel == users.NotifyTelegram && u.TelegramChatID == nil {
			return invalid("telegramChatId is required for Telegram notifications")
		}
		subscribed = u.NotificationChannel == users.NotifyTelegram && utils.OrZero(u.TelegramChatID) != oldChatID

		if patch.Role != nil {
			if err := s.changeRole(ctx, tx, u, *patch.Role); err != nil {
				return err
			}
		}
		return s.store.UpdateUserProfile(ctx, tx, u)
	})
	if err != nil {
		return nil, err
	}

	if subscribed {
		s.notifier.Notify(notify.Welcome(u))
	}
	return u, nil
}

func (s *UserService) PromoteOrganizer(ctx context.Context, acting *users.User, id uuid.UUID) (*users.User, error) {
	return s.setRole(ctx, acting, id, users.RoleOrganizer)
}

// RevokeOrganizer demotes an organizer to player. The last organizer cannot be demoted.
func (s *UserService) RevokeOrganizer(ctx context.Context, acting *users.User, id uuid.UUID) (*users.User, error) {
	return s.setRole(ctx, acting, id, users.RolePlayer)
}

func (s *UserService) setRole(ctx context.Context, acting *users.User, id uuid.UUID, role users.Role) (*users.User, error) {
	if !acting.IsOrganizer() {
		return nil, ErrForbidden
	}

	var u *users.User
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		u, err = s.store.GetUser(ctx, tx, id)
		if err != nil {
			return notFound(err, "user")
		}
		if err := s.changeRole(ctx, tx, u, role); err != nil {
			return err
		}
		return s.store.UpdateUserProfile(ctx, tx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) changeRole(ctx context.Context, tx *sqlx.Tx, u *users.User, role users.Role) error {
	if role != users.RoleOrganizer && role != users.RolePlayer {
		return invalid("unknown role %q", role)
	}
	if u.Role == users.RoleOrganizer && role != users.RoleOrganizer {
		n, err := s.store.CountOrganizers(ctx, tx)
		if err != nil {
			return err
		}
		if n <= 1 {
			return badState("cannot revoke the last organizer")
		}
	}
	u.Role = role
	return nil
}

// Rankings is the global leaderboard across every completed match.
func (s *UserService) Rankings(ctx context.Context) ([]standings.Ranking, error) {
	list, err := s.store.ListUsers(ctx, s.db)
	if err != nil {
		return nil, err
	}
	matches, err := s.tournaments.GetCompletedMatches(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return standings.Rank(list, matches), nil
}
