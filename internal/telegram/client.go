package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/bot"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

const defaultBaseURL = "https://api.telegram.org"

// Client is the outbound Telegram Bot API client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client against the public Bot API.
func NewClient(token string, logger *zap.Logger) *Client {
	return NewClientWithBaseURL(token, defaultBaseURL, logger)
}

// NewClientWithBaseURL exists for tests against a local server.
func NewClientWithBaseURL(token, baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// SendMessage delivers a rendered reply to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, msg bot.Rendered) error {
	body := map[string]any{
		"chat_id": chatID,
		"text":    msg.Text,
	}
	if markup := replyKeyboard(msg.Keyboard); markup != nil {
		body["reply_markup"] = markup
	}
	return c.callAPI(ctx, "sendMessage", body)
}

// SetWebhook registers the webhook URL with the Bot API. Registration
// runs at startup when the network may still be settling, so it retries
// before giving up.
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secretToken string) error {
	body := map[string]any{
		"url":             webhookURL,
		"allowed_updates": []string{"message"},
	}
	if secretToken != "" {
		body["secret_token"] = secretToken
	}
	return retry.Do(
		func() error { return c.callAPI(ctx, "setWebhook", body) },
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}

// callAPI posts JSON to a Bot API method and checks the ok/description
// envelope.
func (c *Client) callAPI(ctx context.Context, method string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return appErrors.Internal(err, "failed to encode telegram request")
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return appErrors.Internal(err, "failed to build telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Gateway(err, "telegram api is unreachable")
	}
	defer resp.Body.Close()

	var envelope struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
		ErrorCode   int    `json:"error_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return appErrors.Internal(err, "failed to decode telegram response")
	}
	if !envelope.OK {
		return appErrors.Gateway(
			fmt.Errorf("telegram api error %d: %s", envelope.ErrorCode, envelope.Description),
			"telegram api rejected the request")
	}

	c.logger.Debug("telegram api call",
		zap.String("method", method),
		zap.Duration("latency", time.Since(start)))
	return nil
}

// replyKeyboard translates dialogue buttons into Bot API markup.
func replyKeyboard(rows [][]bot.Button) *ReplyKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	keyboard := make([][]KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]KeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, KeyboardButton{Text: b.Label})
		}
		keyboard = append(keyboard, buttons)
	}
	return &ReplyKeyboardMarkup{Keyboard: keyboard, ResizeKeyboard: true}
}
