package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to the platform's ledger service, which owns balances.
// Credit requests carry an idempotency key, so a retried call after a
// timeout cannot double-credit.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL, apiToken string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type creditRequest struct {
	SubjectID string `json:"subject_id"`
}

// CreditRelease releases the held funds for an approved transaction
// report back to the subject's balance.
func (c *Client) CreditRelease(ctx context.Context, idempotencyKey, subjectID string) error {
	if c.baseURL == "" {
		return fmt.Errorf("ledger base url is empty")
	}

	body, err := json.Marshal(creditRequest{SubjectID: subjectID})
	if err != nil {
		return fmt.Errorf("marshal credit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/credits/release", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build credit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call ledger service: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	// 409 means the key was already applied, which is exactly the
	// idempotent success a retry wants.
	if resp.StatusCode == http.StatusConflict {
		c.log.Info("ledger credit already applied",
			zap.String("idempotency_key", idempotencyKey),
		)
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ledger service returned status %d", resp.StatusCode)
	}

	return nil
}
