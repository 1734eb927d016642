package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"savingz.backend/internal/config"
	"savingz.backend/internal/domain/entities"
	"savingz.backend/pkg/logger"
)

// maxBatch is the number of messages Expo accepts per request
const maxBatch = 100

type expoMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

// ExpoClient sends notifications through the Expo push service.
type ExpoClient struct {
	url         string
	accessToken string
	httpClient  *http.Client
}

// NewExpoClient creates an Expo push client
func NewExpoClient(cfg config.PushConfig, httpClient *http.Client) *ExpoClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &ExpoClient{
		url:         cfg.ExpoURL,
		accessToken: cfg.AccessToken,
		httpClient:  httpClient,
	}
}

// Send delivers messages in batches. Tickets with status "error" and
// messages of failed batches are counted as failed. The returned error is the
// last batch failure, if any.
func (c *ExpoClient) Send(ctx context.Context, messages []entities.PushMessage) (entities.PushReport, error) {
	var report entities.PushReport
	var lastErr error

	for start := 0; start < len(messages); start += maxBatch {
		end := min(start+maxBatch, len(messages))
		batch := messages[start:end]

		sent, err := c.sendBatch(ctx, batch)
		if err != nil {
			logger.Warn(ctx, "Expo push batch failed", zap.Int("size", len(batch)), zap.Error(err))
			report.Failed += len(batch)
			lastErr = err
			continue
		}
		report.Sent += sent
		report.Failed += len(batch) - sent
	}
	return report, lastErr
}

func (c *ExpoClient) sendBatch(ctx context.Context, batch []entities.PushMessage) (int, error) {
	payload := make([]expoMessage, 0, len(batch))
	for _, m := range batch {
		payload = append(payload, expoMessage{To: m.To, Title: m.Title, Body: m.Body, Sound: "default"})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("expo push request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read expo push response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("expo push returned status %d: %s", resp.StatusCode, gjson.GetBytes(respBody, "errors.0.message").String())
	}

	sent := 0
	gjson.GetBytes(respBody, "data").ForEach(func(_, ticket gjson.Result) bool {
		if ticket.Get("status").String() == "ok" {
			sent++
			return true
		}
		logger.Debug(ctx, "Expo push ticket rejected",
			zap.String("message", ticket.Get("message").String()),
			zap.String("error", ticket.Get("details.error").String()),
		)
		return true
	})
	return sent, nil
}
