// Package push delivers notifications to devices through the Expo push
// service.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamanr/shift_service/internal/config"
	"github.com/adamanr/shift_service/internal/metrics"
	"github.com/google/uuid"
)

const (
	DefaultEndpoint  = "https://exp.host/--/api/v2/push/send"
	MaxChunkSize     = 100
	maxResponseBytes = 1 << 20
)

var ErrDelivery = errors.New("push delivery failed")

type Message struct {
	To       []string `json:"to"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Data     any      `json:"data"`
	Sound    string   `json:"sound"`
	Priority string   `json:"priority"`
}

type Ticket struct {
	Status  string         `json:"status"`
	ID      string         `json:"id,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type sendResponse struct {
	Data   []Ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Report summarizes one Send call.
type Report struct {
	DispatchID string
	Tokens     int
	Chunks     int
	Failed     int
}

type Client struct {
	httpClient  *http.Client
	endpoint    string
	accessToken string
	chunkSize   int
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewClient(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *Client {
	endpoint := cfg.Push.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	chunkSize := cfg.Push.ChunkSize
	if chunkSize <= 0 || chunkSize > MaxChunkSize {
		chunkSize = MaxChunkSize
	}

	timeout := cfg.Push.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		endpoint:    endpoint,
		accessToken: cfg.Push.AccessToken,
		chunkSize:   chunkSize,
		metrics:     m,
		logger:      logger,
	}
}

// Send delivers one message per chunk of tokens. Per-token failures reported
// by the provider are logged and counted; only transport or provider-level
// failures are returned, wrapped in ErrDelivery.
func (c *Client) Send(ctx context.Context, tokens []string, title, body string, data any) (Report, error) {
	report := Report{DispatchID: uuid.NewString()}

	tokens = Compact(tokens)
	report.Tokens = len(tokens)
	if len(tokens) == 0 {
		c.logger.Debug("No push tokens, skipping delivery", slog.String("dispatch_id", report.DispatchID))
		return report, nil
	}

	if data == nil {
		data = map[string]any{}
	}

	var errs []error
	for i, chunk := range Chunk(tokens, c.chunkSize) {
		report.Chunks++

		failed, err := c.sendChunk(ctx, Message{
			To:       chunk,
			Title:    title,
			Body:     body,
			Data:     data,
			Sound:    "default",
			Priority: "high",
		})
		report.Failed += failed

		logger := c.logger.With(
			slog.String("dispatch_id", report.DispatchID),
			slog.Int("chunk", i),
			slog.Int("tokens", len(chunk)),
		)

		if err != nil {
			c.count("error")
			logger.Error("Error send push chunk", slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}

		c.count("ok")
		logger.Info("Push chunk sent", slog.Int("failed_tickets", failed))
	}

	if len(errs) > 0 {
		return report, fmt.Errorf("%w: %w", ErrDelivery, errors.Join(errs...))
	}

	return report, nil
}

func (c *Client) sendChunk(ctx context.Context, msg Message) (int, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return 0, fmt.Errorf("push provider responded %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var decoded sendResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		c.logger.Warn("Unreadable push provider response", slog.String("error", err.Error()))
		return 0, nil
	}

	if len(decoded.Errors) > 0 {
		return 0, fmt.Errorf("push provider error %s: %s", decoded.Errors[0].Code, decoded.Errors[0].Message)
	}

	failed := 0
	for i, ticket := range decoded.Data {
		if c.metrics != nil {
			c.metrics.PushTickets.WithLabelValues(ticket.Status).Inc()
		}
		if ticket.Status == "ok" {
			continue
		}

		failed++

		token := ""
		if i < len(msg.To) {
			token = msg.To[i]
		}
		c.logger.Warn("Push ticket failed",
			slog.String("token", token),
			slog.String("message", ticket.Message),
			slog.Any("details", ticket.Details),
		)
	}

	return failed, nil
}

func (c *Client) count(result string) {
	if c.metrics != nil {
		c.metrics.PushChunks.WithLabelValues(result).Inc()
	}
}

// Compact drops empty and repeated tokens, keeping first-seen order.
func Compact(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))

	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}

func Chunk(tokens []string, size int) [][]string {
	if size <= 0 {
		size = MaxChunkSize
	}

	chunks := make([][]string, 0, (len(tokens)+size-1)/size)
	for start := 0; start < len(tokens); start += size {
		end := min(start+size, len(tokens))
		chunks = append(chunks, tokens[start:end])
	}

	return chunks
}
