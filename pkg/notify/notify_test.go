package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v3"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
)

type recordingSender struct {
	to   tele.Recipient
	text string
	err  error
}

func (s *recordingSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	s.to = to
	s.text, _ = what.(string)
	return &tele.Message{}, s.err
}

func TestNewWithoutTokenIsNop(t *testing.T) {
	n, err := New("", 42, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(Nop); !ok {
		t.Fatalf("New without token = %T, want Nop", n)
	}
}

func TestTelegramDriverRegistered(t *testing.T) {
	s := &recordingSender{}
	n := &Telegram{sender: s, chat: &tele.User{ID: 42}, log: logger.NewNop()}

	area := "Arima"
	err := n.DriverRegistered(context.Background(), &models.Driver{
		Name: "Ann", Email: "ann@example.com", PhoneNumber: "868-555-0101", ServiceAreaName: &area,
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.to.Recipient() != "42" {
		t.Errorf("recipient = %q, want 42", s.to.Recipient())
	}
	for _, want := range []string{"Ann", "ann@example.com", "868-555-0101", "Arima"} {
		if !strings.Contains(s.text, want) {
			t.Errorf("message %q does not mention %q", s.text, want)
		}
	}
}

func TestTelegramSendFailure(t *testing.T) {
	s := &recordingSender{err: errors.New("boom")}
	n := &Telegram{sender: s, chat: &tele.User{ID: 1}, log: logger.NewNop()}

	if err := n.DriverRegistered(context.Background(), &models.Driver{Name: "Bob"}); err == nil {
		t.Fatal("expected send error")
	}
}
