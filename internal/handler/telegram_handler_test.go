package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/bot"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/telegram"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

type dialogueMock struct {
	reply       bot.Reply
	gotPlatform models.Platform
	gotChatID   int64
	gotText     string
	calls       int
}

func (m *dialogueMock) HandleMessage(_ context.Context, platform models.Platform, chatID int64, text string) bot.Reply {
	m.calls++
	m.gotPlatform, m.gotChatID, m.gotText = platform, chatID, text
	if m.reply == nil {
		return bot.HelpReply{}
	}
	return m.reply
}

type telegramSenderMock struct {
	err     error
	chatIDs []int64
	sent    []bot.Rendered
}

func (m *telegramSenderMock) SendMessage(_ context.Context, chatID int64, msg bot.Rendered) error {
	m.chatIDs = append(m.chatIDs, chatID)
	m.sent = append(m.sent, msg)
	return m.err
}

func newTelegramRouter(h *TelegramHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/telegram_webhook_s3cret", h.Webhook)
	return router
}

func telegramUpdateBody(t *testing.T, chatID int64, text string) *bytes.Reader {
	t.Helper()
	update := telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 10,
			Chat:      telegram.Chat{ID: chatID, Type: "private"},
			Text:      text,
		},
	}
	body, err := json.Marshal(update)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func postTelegramUpdate(router *gin.Engine, body *bytes.Reader, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/telegram_webhook_s3cret", body)
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestTelegramWebhookProcessesMessage(t *testing.T) {
	dialogue := &dialogueMock{}
	sender := &telegramSenderMock{}
	router := newTelegramRouter(NewTelegramHandler(dialogue, sender, nil, "s3cret", nil))

	recorder := postTelegramUpdate(router, telegramUpdateBody(t, 42, "расписание"), "s3cret")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())

	assert.Equal(t, models.PlatformTelegram, dialogue.gotPlatform)
	assert.Equal(t, int64(42), dialogue.gotChatID)
	assert.Equal(t, "расписание", dialogue.gotText)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.chatIDs[0])
	assert.NotEmpty(t, sender.sent[0].Text)
}

func TestTelegramWebhookRejectsWrongSecret(t *testing.T) {
	dialogue := &dialogueMock{}
	router := newTelegramRouter(NewTelegramHandler(dialogue, &telegramSenderMock{}, nil, "s3cret", nil))

	recorder := postTelegramUpdate(router, telegramUpdateBody(t, 42, "расписание"), "wrong")

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Zero(t, dialogue.calls)
}

func TestTelegramWebhookIgnoresNonTextUpdates(t *testing.T) {
	dialogue := &dialogueMock{}
	sender := &telegramSenderMock{}
	router := newTelegramRouter(NewTelegramHandler(dialogue, sender, nil, "s3cret", nil))

	recorder := postTelegramUpdate(router, bytes.NewReader([]byte(`{"update_id": 7}`)), "s3cret")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())
	assert.Zero(t, dialogue.calls)
	assert.Empty(t, sender.sent)
}

func TestTelegramWebhookAcksWhenSendFails(t *testing.T) {
	sender := &telegramSenderMock{err: appErrors.Gateway(errors.New("dial timeout"), "telegram api is unreachable")}
	router := newTelegramRouter(NewTelegramHandler(&dialogueMock{}, sender, nil, "s3cret", nil))

	recorder := postTelegramUpdate(router, telegramUpdateBody(t, 42, "помощь"), "s3cret")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())
}

func TestTelegramWebhookMalformedPayloadIs400(t *testing.T) {
	router := newTelegramRouter(NewTelegramHandler(&dialogueMock{}, &telegramSenderMock{}, nil, "s3cret", nil))

	recorder := postTelegramUpdate(router, bytes.NewReader([]byte(`{`)), "s3cret")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
