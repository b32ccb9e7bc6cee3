package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/bot"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/service"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/telegram"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/response"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type botDialogue interface {
	HandleMessage(ctx context.Context, platform models.Platform, chatID int64, text string) bot.Reply
}

type telegramSender interface {
	SendMessage(ctx context.Context, chatID int64, msg bot.Rendered) error
}

// TelegramHandler receives Bot API webhook updates.
type TelegramHandler struct {
	dialogue botDialogue
	sender   telegramSender
	metrics  *service.MetricsService
	secret   string
	logger   *zap.Logger
}

// NewTelegramHandler constructs handler.
func NewTelegramHandler(dialogue botDialogue, sender telegramSender, metrics *service.MetricsService, secret string, logger *zap.Logger) *TelegramHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TelegramHandler{
		dialogue: dialogue,
		sender:   sender,
		metrics:  metrics,
		secret:   secret,
		logger:   logger,
	}
}

// Webhook answers POST /v1/telegram_webhook_<secret>. The route path
// already carries the bot secret; the header set via setWebhook is
// verified on top of it.
func (h *TelegramHandler) Webhook(c *gin.Context) {
	if h.secret != "" && c.GetHeader(telegramSecretHeader) != h.secret {
		response.Text(c, http.StatusForbidden, "forbidden")
		return
	}

	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, appErrors.User("malformed update payload"))
		return
	}
	if update.Message == nil || update.Message.Text == "" {
		response.Text(c, http.StatusOK, "ok")
		return
	}

	h.metrics.RecordBotUpdate(string(models.PlatformTelegram))

	chatID := update.Message.Chat.ID
	reply := h.dialogue.HandleMessage(c.Request.Context(), models.PlatformTelegram, chatID, update.Message.Text)
	rendered := bot.Render(reply, models.PlatformTelegram)
	if err := h.sender.SendMessage(c.Request.Context(), chatID, rendered); err != nil {
		// A non-2xx answer would make Telegram redeliver the update and
		// replay the dialogue step; log and acknowledge instead.
		h.logger.Error("failed to send telegram reply",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	response.Text(c, http.StatusOK, "ok")
}
