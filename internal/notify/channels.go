package notify

import (
	"context"
	"errors"
	"net/http"

	users "github.com/AdamBeresnev/courtside/internal/user"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/resend/resend-go/v2"
)

var errNoAddress = errors.New("recipient has no address for this channel")

// Channel delivers a rendered message to one user.
type Channel interface {
	Send(ctx context.Context, to *users.User, msg Message) error
}

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailChannel struct {
	emails emailSender
	from   string
}

func NewEmailChannel(apiKey, from string) *EmailChannel {
	return &EmailChannel{emails: resend.NewClient(apiKey).Emails, from: from}
}

func (c *EmailChannel) Send(ctx context.Context, to *users.User, msg Message) error {
	if to.Email == "" {
		return errNoAddress
	}
	_, err := c.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to.Email},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	return err
}

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel sends plain text chat messages. Broadcasts go to a single group chat.
type TelegramChannel struct {
	bot         botSender
	broadcastID int64
}

func NewTelegramChannel(token string, broadcastChatID int64) (*TelegramChannel, error) {
	client := &http.Client{Timeout: sendTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, err
	}
	return &TelegramChannel{bot: bot, broadcastID: broadcastChatID}, nil
}

func (c *TelegramChannel) Send(ctx context.Context, to *users.User, msg Message) error {
	if to.TelegramChatID == nil {
		return errNoAddress
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.bot.Send(tgbotapi.NewMessage(*to.TelegramChatID, msg.Text))
	return err
}

// Broadcast posts to the group chat, if one is configured.
func (c *TelegramChannel) Broadcast(ctx context.Context, msg Message) error {
	if c.broadcastID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.bot.Send(tgbotapi.NewMessage(c.broadcastID, msg.Text))
	return err
}
