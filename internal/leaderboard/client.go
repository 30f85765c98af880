// Package leaderboard talks to the hosted leaderboard service and owns the
// one ranking order used everywhere leaderboard rows are displayed.
package leaderboard

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"scalper-journal-go/internal/config"
	"scalper-journal-go/internal/journal"
)

// Row is one leaderboard entry as served by the remote aggregate view.
type Row struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	StartingCapital float64 `json:"starting_capital"`
	TotalPnl        float64 `json:"total_pnl"`
	Sessions        int     `json:"sessions"`
	Equity          float64 `json:"equity"`
	LastSessionAt   string  `json:"last_session_at,omitempty"` // ISO instant
}

// Client is a REST client for the leaderboard service. It also implements
// journal.SessionRecorder for the outbound session-close notification.
type Client struct {
	client  *resty.Client
	apiKey  string
	logger  *zap.Logger
	limiter *rate.Limiter
}

var _ journal.SessionRecorder = (*Client)(nil)

// NewClient builds a client from the leaderboard configuration.
func NewClient(cfg *config.Leaderboard, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	return &Client{
		client:  client,
		apiKey:  cfg.ApiKey,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
	}
}

// Fetch returns the raw leaderboard rows. Rows missing a precomputed equity
// get it derived from starting capital and total pnl.
func (c *Client) Fetch(ctx context.Context) ([]Row, error) {
	var result struct {
		Rows []Row `json:"rows"`
	}
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetResult(&result)

	if _, err := c.doRequest(ctx, "GET", "/leaderboard", req); err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}

	rows := result.Rows
	for i := range rows {
		if rows[i].Equity == 0 {
			rows[i].Equity = round2(rows[i].StartingCapital + rows[i].TotalPnl)
		}
	}
	return rows, nil
}

// RecordClose posts a closed-session summary. The caller treats any error
// as log-only; nothing local depends on the outcome.
func (c *Client) RecordClose(ctx context.Context, closed journal.ClosedSession) error {
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(closed)

	if _, err := c.doRequest(ctx, "POST", "/sessions/close", req); err != nil {
		return fmt.Errorf("failed to record closed session: %w", err)
	}
	return nil
}

// doRequest executes a request behind the rate limiter with bounded retries
// on throttling, server errors, and transport failures.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		resp, err = req.Execute(method, url)
		if err == nil && !resp.IsError() {
			return resp, nil
		}

		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
		} else {
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Leaderboard request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err))

		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
