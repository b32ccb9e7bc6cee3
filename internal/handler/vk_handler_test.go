package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/bot"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/config"
)

type vkSenderMock struct {
	err   error
	peers []int64
	sent  []bot.Rendered
}

func (m *vkSenderMock) SendMessage(_ context.Context, peerID int64, msg bot.Rendered) error {
	m.peers = append(m.peers, peerID)
	m.sent = append(m.sent, msg)
	return m.err
}

func newVKRouter(dialogue *dialogueMock, sender *vkSenderMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewVKHandler(dialogue, sender, nil, config.VKConfig{
		AccessToken:      "vk-token",
		ConfirmationCode: "deadbeef",
		Secret:           "vks",
		GroupID:          222,
	}, nil)
	router := gin.New()
	router.POST("/v1/vk_callback", handler.Callback)
	return router
}

func postVKCallback(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/vk_callback", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestVKCallbackConfirmation(t *testing.T) {
	dialogue := &dialogueMock{}
	router := newVKRouter(dialogue, &vkSenderMock{})

	recorder := postVKCallback(router, `{"type": "confirmation", "group_id": 222, "secret": "vks"}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "deadbeef", recorder.Body.String())
	assert.Zero(t, dialogue.calls)
}

func TestVKCallbackMessageNew(t *testing.T) {
	dialogue := &dialogueMock{}
	sender := &vkSenderMock{}
	router := newVKRouter(dialogue, sender)

	recorder := postVKCallback(router, `{
		"type": "message_new",
		"group_id": 222,
		"secret": "vks",
		"object": {"message": {"from_id": 7, "peer_id": 7, "text": "помощь"}}
	}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())

	assert.Equal(t, models.PlatformVK, dialogue.gotPlatform)
	assert.Equal(t, int64(7), dialogue.gotChatID)
	assert.Equal(t, "помощь", dialogue.gotText)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(7), sender.peers[0])
	assert.NotEmpty(t, sender.sent[0].Text)
}

func TestVKCallbackWrongSecretIs403(t *testing.T) {
	dialogue := &dialogueMock{}
	router := newVKRouter(dialogue, &vkSenderMock{})

	recorder := postVKCallback(router, `{"type": "message_new", "group_id": 222, "secret": "stolen"}`)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Zero(t, dialogue.calls)
}

func TestVKCallbackForeignGroupIs403(t *testing.T) {
	dialogue := &dialogueMock{}
	router := newVKRouter(dialogue, &vkSenderMock{})

	recorder := postVKCallback(router, `{"type": "confirmation", "group_id": 999, "secret": "vks"}`)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestVKCallbackUnknownTypeIsAcked(t *testing.T) {
	dialogue := &dialogueMock{}
	router := newVKRouter(dialogue, &vkSenderMock{})

	recorder := postVKCallback(router, `{"type": "message_typing", "group_id": 222, "secret": "vks"}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())
	assert.Zero(t, dialogue.calls)
}

func TestVKCallbackAttachmentOnlyMessageIsAcked(t *testing.T) {
	dialogue := &dialogueMock{}
	sender := &vkSenderMock{}
	router := newVKRouter(dialogue, sender)

	recorder := postVKCallback(router, `{
		"type": "message_new",
		"group_id": 222,
		"secret": "vks",
		"object": {"message": {"from_id": 7, "peer_id": 7, "text": ""}}
	}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())
	assert.Zero(t, dialogue.calls)
	assert.Empty(t, sender.sent)
}
