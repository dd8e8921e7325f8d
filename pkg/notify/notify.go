// Package notify tells the admin chat about driver registrations waiting
// for approval.
package notify

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
)

type Notifier interface {
	DriverRegistered(ctx context.Context, driver *models.Driver) error
}

// New returns a Telegram notifier, or a no-op one when the token or chat id
// is missing.
func New(token string, adminChatID int64, log logger.ILogger) (Notifier, error) {
	if token == "" || adminChatID == 0 {
		log.Info("telegram notifications disabled")
		return Nop{}, nil
	}

	b, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	return &Telegram{sender: b, chat: &tele.User{ID: adminChatID}, log: log}, nil
}

type Nop struct{}

func (Nop) DriverRegistered(context.Context, *models.Driver) error { return nil }

type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Telegram struct {
	sender sender
	chat   tele.Recipient
	log    logger.ILogger
}

func (t *Telegram) DriverRegistered(_ context.Context, d *models.Driver) error {
	area := "-"
	if d.ServiceAreaName != nil {
		area = *d.ServiceAreaName
	}
	text := fmt.Sprintf("🔔 New driver waiting for approval\n👤 %s\n📧 %s\n📞 %s\n📍 %s",
		d.Name, d.Email, d.PhoneNumber, area)

	if _, err := t.sender.Send(t.chat, text); err != nil {
		t.log.Error("failed to notify admin chat", logger.Error(err), logger.Int64("driver_id", d.ID))
		return err
	}
	return nil
}
