package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPClient talks to the records API exposed by a fieldsync backend
// (feature/backend) or any REST service with the same shape.
type HTTPClient struct {
	baseURL string
	token   string
	timeout time.Duration
}

// NewHTTPClient creates a client rooted at baseURL.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: timeout,
	}
}

// Get implements Backend.
func (c *HTTPClient) Get(ctx context.Context, collection, id string) (*Record, error) {
	return c.do(ctx, fiber.Get(c.recordURL(collection, id)))
}

// Patch implements Backend.
func (c *HTTPClient) Patch(ctx context.Context, collection, id string, fields map[string]any) (*Record, error) {
	return c.do(ctx, fiber.Patch(c.recordURL(collection, id)).JSON(fields))
}

// Insert implements Backend.
func (c *HTTPClient) Insert(ctx context.Context, collection string, fields map[string]any) (*Record, error) {
	return c.do(ctx, fiber.Post(c.baseURL+"/records/"+url.PathEscape(collection)).JSON(fields))
}

func (c *HTTPClient) recordURL(collection, id string) string {
	return c.baseURL + "/records/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
}

func (c *HTTPClient) do(ctx context.Context, a *fiber.Agent) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	a.Timeout(timeout)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrTransport, errors.Join(errs...))
	}
	if err := statusError(code, body); err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	return &rec, nil
}

// statusError maps a response status onto the package sentinels.
func statusError(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}

	msg := strings.TrimSpace(string(body))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}

	switch {
	case code == fiber.StatusUnauthorized || code == fiber.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", ErrUnauthenticated, code, msg)
	case code == fiber.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case code == fiber.StatusBadRequest || code == fiber.StatusConflict || code == fiber.StatusUnprocessableEntity:
		return fmt.Errorf("%w: status %d: %s", ErrValidation, code, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrTransport, code, msg)
	}
}
