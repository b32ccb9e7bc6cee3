package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/bot"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/service"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/vk"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/config"
	"github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/response"
)

type vkSender interface {
	SendMessage(ctx context.Context, peerID int64, msg bot.Rendered) error
}

// VKHandler receives Callback API events.
type VKHandler struct {
	dialogue         botDialogue
	sender           vkSender
	metrics          *service.MetricsService
	confirmationCode string
	secret           string
	groupID          int64
	logger           *zap.Logger
}

// NewVKHandler constructs handler.
func NewVKHandler(dialogue botDialogue, sender vkSender, metrics *service.MetricsService, cfg config.VKConfig, logger *zap.Logger) *VKHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VKHandler{
		dialogue:         dialogue,
		sender:           sender,
		metrics:          metrics,
		confirmationCode: cfg.ConfirmationCode,
		secret:           cfg.Secret,
		groupID:          cfg.GroupID,
		logger:           logger,
	}
}

// Callback answers POST /v1/vk_callback. VK expects the literal
// confirmation code for the confirmation event and "ok" for everything
// else; any other body triggers redelivery.
func (h *VKHandler) Callback(c *gin.Context) {
	var callback vk.Callback
	if err := c.ShouldBindJSON(&callback); err != nil {
		response.Text(c, http.StatusBadRequest, "malformed callback payload")
		return
	}
	if h.secret != "" && callback.Secret != h.secret {
		response.Text(c, http.StatusForbidden, "forbidden")
		return
	}
	if h.groupID != 0 && callback.GroupID != h.groupID {
		response.Text(c, http.StatusForbidden, "forbidden")
		return
	}

	switch callback.Type {
	case vk.CallbackConfirmation:
		response.Text(c, http.StatusOK, h.confirmationCode)
	case vk.CallbackMessageNew:
		h.handleMessage(c, callback.Object)
	default:
		response.Text(c, http.StatusOK, "ok")
	}
}

func (h *VKHandler) handleMessage(c *gin.Context, object json.RawMessage) {
	var event vk.MessageNew
	if err := json.Unmarshal(object, &event); err != nil {
		// Acknowledge anyway: a permanently bad payload would otherwise
		// be redelivered forever.
		h.logger.Warn("undecodable message_new object", zap.Error(err))
		response.Text(c, http.StatusOK, "ok")
		return
	}
	if event.Message.Text == "" {
		response.Text(c, http.StatusOK, "ok")
		return
	}

	h.metrics.RecordBotUpdate(string(models.PlatformVK))

	peerID := event.Message.PeerID
	reply := h.dialogue.HandleMessage(c.Request.Context(), models.PlatformVK, peerID, event.Message.Text)
	rendered := bot.Render(reply, models.PlatformVK)
	if err := h.sender.SendMessage(c.Request.Context(), peerID, rendered); err != nil {
		h.logger.Error("failed to send vk reply",
			zap.Int64("peer_id", peerID),
			zap.Error(err))
	}
	response.Text(c, http.StatusOK, "ok")
}
