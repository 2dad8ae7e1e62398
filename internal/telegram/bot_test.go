package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"levsim/internal/study"
)

type fakeRunner struct {
	ran []string
	err error
}

func (f *fakeRunner) Run(_ context.Context, s study.Study) (*study.Result, error) {
	f.ran = append(f.ran, s.Name)
	if f.err != nil {
		return nil, f.err
	}
	return testResult(), nil
}

func newTestBot(r StudyRunner) (*Bot, *fakeSender) {
	f := &fakeSender{}
	b := NewBot(NewPublisherWithSender(f, 1, nil), r, nil)
	b.dispatch = func(fn func()) { fn() }
	return b, f
}

func message(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
}

func texts(sent []tgbotapi.Chattable) []string {
	var out []string
	for _, c := range sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func TestHandleMessage_Study(t *testing.T) {
	r := &fakeRunner{}
	b, f := newTestBot(r)

	b.HandleMessage(context.Background(), message(42, "/study@levsim_bot tracking"))

	assert.Equal(t, []string{"tracking"}, r.ran)
	require.Len(t, f.sent, 4, "ack, two charts, report")
	assert.Equal(t, "Running tracking…", texts(f.sent)[0])
	photo := f.sent[1].(tgbotapi.PhotoConfig)
	assert.Equal(t, int64(42), photo.ChatID, "replies go to the asking chat")
}

func TestHandleMessage_UnknownAndFailures(t *testing.T) {
	r := &fakeRunner{err: errors.New("no data")}
	b, f := newTestBot(r)

	b.HandleMessage(context.Background(), message(1, "/study bogus"))
	b.HandleMessage(context.Background(), message(1, "/study inception"))

	got := texts(f.sent)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], `Unknown study "bogus"`)
	assert.Equal(t, "Study failed: no data", got[2])
}

func TestHandleMessage_ListAndHelp(t *testing.T) {
	b, f := newTestBot(&fakeRunner{})
	b.HandleMessage(context.Background(), message(1, "/studies"))
	b.HandleMessage(context.Background(), message(1, "/help"))
	b.HandleMessage(context.Background(), message(1, "just chatting"))

	got := texts(f.sent)
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "- hypothetical:")
	assert.Contains(t, got[0], "- tracking:")
	assert.True(t, strings.HasPrefix(got[1], "Commands"))
}

func TestWebhookHandler(t *testing.T) {
	r := &fakeRunner{}
	b, f := newTestBot(r)

	rec := httptest.NewRecorder()
	b.WebhookHandler(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	body := `{"update_id":1,"message":{"message_id":5,"date":0,"chat":{"id":9,"type":"private"},"text":"/studies"}}`
	b.WebhookHandler(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.sent, 1)
	assert.Equal(t, int64(9), f.sent[0].(tgbotapi.MessageConfig).ChatID)

	rec = httptest.NewRecorder()
	b.WebhookHandler(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(`{"update_id":2}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.sent, 1)
}
