package notifier

import (
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/julianstephens/flashdo/internal/models"
)

type recordingSender struct {
	failures int
	calls    int
	texts    []string
}

func (r *recordingSender) Notify(text string) error {
	r.calls++
	if r.calls <= r.failures {
		return errors.New("unavailable")
	}
	r.texts = append(r.texts, text)
	return nil
}

func TestNotifyWithRetry(t *testing.T) {
	old := retryDelay
	retryDelay = 0
	defer func() { retryDelay = old }()

	flaky := &recordingSender{failures: 2}
	if err := NotifyWithRetry(flaky, "hi"); err != nil {
		t.Fatalf("NotifyWithRetry() error = %v", err)
	}
	if flaky.calls != 3 {
		t.Errorf("calls = %d, want 3", flaky.calls)
	}

	down := &recordingSender{failures: 10}
	if err := NotifyWithRetry(down, "hi"); err == nil {
		t.Error("expected error when every attempt fails")
	}
	if down.calls != 3 {
		t.Errorf("calls = %d, want 3", down.calls)
	}
}

func TestMulti(t *testing.T) {
	ok := &recordingSender{}
	bad := &recordingSender{failures: 1}

	err := Multi{bad, ok}.Notify("hello")
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(ok.texts) != 1 || ok.texts[0] != "hello" {
		t.Errorf("healthy sender got %v", ok.texts)
	}
	if err := (Multi{}).Notify("hello"); err != nil {
		t.Errorf("empty Multi error = %v", err)
	}
}

func TestReminderText(t *testing.T) {
	r := models.Routine{Name: "Stretch", Schedule: models.AtTime("23:30")}
	got := ReminderText(r)
	if !strings.Contains(got, `"Stretch"`) || !strings.Contains(got, "22:30-00:30") {
		t.Errorf("ReminderText() = %q", got)
	}
}

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func TestTelegramNotify(t *testing.T) {
	bot := &fakeBot{}
	tg := &Telegram{bot: bot, chatID: 42}

	if err := tg.Notify("reminder"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(bot.sent))
	}
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", bot.sent[0])
	}
	if msg.ChatID != 42 || msg.Text != "reminder" {
		t.Errorf("message = chat %d text %q", msg.ChatID, msg.Text)
	}

	bot.err = errors.New("forbidden")
	if err := tg.Notify("again"); err == nil {
		t.Error("expected send error")
	}
}

func TestNewTelegram_Validation(t *testing.T) {
	if _, err := NewTelegram("", 1); err == nil {
		t.Error("expected error for empty token")
	}
	if _, err := NewTelegram("token", 0); err == nil {
		t.Error("expected error for empty chat id")
	}
}
