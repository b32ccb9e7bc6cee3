package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/bot"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

const (
	defaultBaseURL = "https://api.vk.com"
	apiVersion     = "5.199"
)

// Client is the outbound VK API client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client against the public VK API.
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

// SendMessage delivers a rendered reply to a peer via messages.send.
func (c *Client) SendMessage(ctx context.Context, peerID int64, msg bot.Rendered) error {
	form := url.Values{}
	form.Set("access_token", c.token)
	form.Set("v", apiVersion)
	form.Set("peer_id", strconv.FormatInt(peerID, 10))
	form.Set("message", msg.Text)
	// VK dedupes by (peer_id, random_id); a random value per call keeps
	// legitimate repeats deliverable.
	form.Set("random_id", strconv.FormatInt(rand.Int63(), 10))

	if len(msg.Keyboard) > 0 {
		payload, err := json.Marshal(replyKeyboard(msg.Keyboard))
		if err != nil {
			return appErrors.Internal(err, "failed to encode vk keyboard")
		}
		form.Set("keyboard", string(payload))
	}

	endpoint := c.baseURL + "/method/messages.send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return appErrors.Internal(err, "failed to build vk request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Gateway(err, "vk api is unreachable")
	}
	defer resp.Body.Close()

	var envelope struct {
		Response json.RawMessage `json:"response"`
		Error    *struct {
			Code    int    `json:"error_code"`
			Message string `json:"error_msg"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return appErrors.Internal(err, "failed to decode vk response")
	}
	if envelope.Error != nil {
		return appErrors.Gateway(
			fmt.Errorf("vk api error %d: %s", envelope.Error.Code, envelope.Error.Message),
			"vk api rejected the request")
	}

	c.logger.Debug("vk api call",
		zap.String("method", "messages.send"),
		zap.Duration("latency", time.Since(start)))
	return nil
}

// replyKeyboard translates dialogue buttons into VK's keyboard payload.
func replyKeyboard(rows [][]bot.Button) Keyboard {
	buttons := make([][]Button, 0, len(rows))
	for _, row := range rows {
		line := make([]Button, 0, len(row))
		for _, b := range row {
			line = append(line, Button{Action: ButtonAction{Type: "text", Label: b.Label}})
		}
		buttons = append(buttons, line)
	}
	return Keyboard{Buttons: buttons}
}
