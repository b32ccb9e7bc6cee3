// Package upstream talks to the university timetable provider. It exposes
// the two provider operations the service needs, with transport failures
// classified as gateway errors and malformed payloads as internal ones.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/tonykolomeytsev/mpeix-backend-sub000/internal/models"
	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

const upstreamDateLayout = "2006.01.02"

// SearchResult is one row of the provider's search response.
type SearchResult struct {
	ID          int64  `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Class is one scheduled lesson as the provider reports it. Times are
// "HH:MM" wall clock, dates are dotted "YYYY.MM.DD".
type Class struct {
	Auditorium  string `json:"auditorium"`
	BeginLesson string `json:"beginLesson"`
	EndLesson   string `json:"endLesson"`
	Date        string `json:"date"`
	Discipline  string `json:"discipline"`
	KindOfWork  string `json:"kindOfWork"`
	Lecturer    string `json:"lecturer"`
	Stream      string `json:"stream"`
	Group       string `json:"group"`
	SubGroup    string `json:"subGroup"`
}

// Client is an HTTP client for the timetable provider.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	// Observe, when set, receives the latency of every provider exchange.
	Observe func(time.Duration)
}

// NewClient builds a client for the provider at baseURL. The transport
// follows the provider's quirks: no redirects, a 3 s connect budget and a
// 15 s budget for the whole exchange.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 3 * time.Second}).DialContext,
			},
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// Search queries the provider for schedules matching term.
func (c *Client) Search(ctx context.Context, term string, typ models.ScheduleType) ([]SearchResult, error) {
	query := url.Values{}
	query.Set("term", term)
	query.Set("type", string(typ))

	var results []SearchResult
	if err := c.getJSON(ctx, "/api/search?"+query.Encode(), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetSchedule fetches all classes of the schedule in [start, end].
func (c *Client) GetSchedule(ctx context.Context, typ models.ScheduleType, id int64, start, end models.Date) ([]Class, error) {
	query := url.Values{}
	query.Set("start", start.Format(upstreamDateLayout))
	query.Set("finish", end.Format(upstreamDateLayout))
	path := fmt.Sprintf("/api/schedule/%s/%d?%s", typ, id, query.Encode())

	var classes []Class
	if err := c.getJSON(ctx, path, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return appErrors.Internal(err, "failed to build timetable provider request")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Gateway(err, "timetable provider is unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck

	latency := time.Since(start)
	if c.Observe != nil {
		c.Observe(latency)
	}
	c.logger.Debug("timetable provider request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", latency))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return appErrors.Gateway(
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			"timetable provider rejected the request")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return appErrors.Internal(err, "failed to decode timetable provider response")
	}
	return nil
}
