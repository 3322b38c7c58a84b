package stepfunctions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/manthysbr/scribe/internal/core/domain"
	"github.com/manthysbr/scribe/internal/core/ports"
)

// Client starts state machine executions through an HTTP front door
// (API Gateway proxying StartExecution).
type Client struct {
	logger   *slog.Logger
	client   *http.Client
	endpoint string
}

var _ ports.WorkflowEngine = (*Client)(nil)

func NewClient(logger *slog.Logger, endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		logger: logger,
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
	}
}

// StartExecution posts the request and treats any 2xx as accepted.
func (c *Client) StartExecution(ctx context.Context, req domain.ExecutionRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal execution request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call workflow endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("workflow endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var accepted struct {
		ExecutionArn string `json:"executionArn"`
	}
	// The body is informational only; API Gateway mappings vary.
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err == nil && accepted.ExecutionArn != "" {
		c.logger.Debug("execution accepted", "execution", req.Name, "execution_arn", accepted.ExecutionArn)
	}
	return nil
}
