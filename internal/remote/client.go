// Package remote talks to the planning API over HTTP. It implements the
// editor's snapshot source and submitter.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/planner/internal/contract"
	"github.com/alexanderramin/planner/internal/domain"
)

// Config holds the connection settings for the planning API.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is an HTTP-backed editor.Backend.
type Client struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a client for the API at cfg.BaseURL.
func NewClient(cfg Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

func (c *Client) PlanSnapshot(ctx context.Context, planID int64) (*contract.PlanPayload, error) {
	var out contract.PlanPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/plans/%d", planID), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EventSnapshot(ctx context.Context, eventID int64) (*contract.EventPayload, error) {
	var out contract.EventPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/events/%d", eventID), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPlans returns the plans visible to the token holder.
func (c *Client) ListPlans(ctx context.Context) ([]contract.PlanSummary, error) {
	var out []contract.PlanSummary
	if err := c.do(ctx, http.MethodGet, "/plans", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitPlan creates the plan when it has no identifier, otherwise
// replaces it.
func (c *Client) SubmitPlan(ctx context.Context, p contract.PlanPayload) (*contract.SaveResult, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling plan: %w", err)
	}
	method, path := http.MethodPost, "/plans"
	if p.PlanID != 0 {
		method, path = http.MethodPut, fmt.Sprintf("/plans/%d", p.PlanID)
	}
	var out contract.SaveResult
	if err := c.do(ctx, method, path, data, "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitEvent sends the event as JSON, or as a multipart form with a
// "payload" field and one "attachments" part per file when attachments
// are present.
func (c *Client) SubmitEvent(ctx context.Context, p contract.EventPayload, attachments []domain.Attachment) (*contract.SaveResult, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling event: %w", err)
	}
	contentType := "application/json"
	if len(attachments) > 0 {
		data, contentType, err = multipartBody(data, attachments)
		if err != nil {
			return nil, err
		}
	}
	method, path := http.MethodPost, "/events"
	if p.ID != nil {
		method, path = http.MethodPut, fmt.Sprintf("/events/%d", *p.ID)
	}
	var out contract.SaveResult
	if err := c.do(ctx, method, path, data, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func multipartBody(payload []byte, attachments []domain.Attachment) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("payload", string(payload)); err != nil {
		return nil, "", fmt.Errorf("writing payload field: %w", err)
	}
	for _, a := range attachments {
		if err := writeAttachment(mw, a); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func writeAttachment(mw *multipart.Writer, a domain.Attachment) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("opening attachment %s: %w", a.Name, err)
	}
	defer f.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachments"; filename=%q`, a.Name))
	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating attachment part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copying attachment %s: %w", a.Name, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	if c.cfg.BaseURL == "" {
		return ErrNotConfigured
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	status, err := c.roundTrip(ctx, method, path, body, contentType, out)
	switch {
	case err == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		err = ErrTimeout
	case ctx.Err() != nil:
		err = fmt.Errorf("%s %s: %w", method, path, ctx.Err())
	case isConnectionError(err):
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.observer.OnCallComplete(CallEvent{
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte, contentType string, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("%w: %s %s: %d %s",
			ErrUnexpectedStatus, method, path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrUnexpectedStatus):
		return "STATUS"
	default:
		return "UNKNOWN"
	}
}
