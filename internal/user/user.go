package users

import (
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const UserKey ContextKey = "user"

type Role string

const (
	RoleOrganizer Role = "Organizer"
	RolePlayer    Role = "Player"
)

type NotificationChannel string

const (
	NotifyNone     NotificationChannel = "None"
	NotifyEmail    NotificationChannel = "Email"
	NotifyTelegram NotificationChannel = "Telegram"
)

// DefaultRating is the dynamic rating of a player with no static rating on record.
const DefaultRating = 1.0

type User struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Email    string    `db:"email" json:"email"`
	FullName string    `db:"full_name" json:"fullName"`
	Role     Role      `db:"role" json:"role"`

	// Rating is the dynamic skill estimate maintained by the rating updater.
	Rating float64 `db:"rating" json:"rating"`
	// SkillCategory is a human-facing label ("Beginner", "Advanced"...) and is never used for scheduling.
	SkillCategory string `db:"skill_category" json:"skillCategory"`

	NotificationChannel NotificationChannel `db:"notification_channel" json:"notificationChannel"`
	TelegramChatID      *int64              `db:"telegram_chat_id" json:"telegramChatId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (u *User) IsOrganizer() bool {
	return u != nil && u.Role == RoleOrganizer
}
