package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
	"github.com/manvi18ux/assistive-har-system/internal/errors"
)

const defaultPushTimeout = 1 * time.Second

// Pusher forwards alerts and activity updates to a remote telemetry
// endpoint. The endpoint is optional infrastructure; callers treat every
// error as best-effort.
type Pusher struct {
	baseURL string
	client  *http.Client
}

// PusherOption configures the pusher.
type PusherOption func(*Pusher)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) PusherOption {
	return func(p *Pusher) {
		if client != nil {
			p.client = client
		}
	}
}

func NewPusher(baseURL string, opts ...PusherOption) (*Pusher, error) {
	if baseURL == "" {
		return nil, errors.New().New(ErrEmptyEndpoint)
	}

	p := &Pusher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultPushTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// PushAlert posts an accepted alert to /api/alert.
func (p *Pusher) PushAlert(ctx context.Context, event alert.Event) error {
	return p.post(ctx, "/api/alert", event)
}

// PushActivity posts the current activity label to /api/activity.
func (p *Pusher) PushActivity(ctx context.Context, activity string) error {
	return p.post(ctx, "/api/activity", map[string]string{"activity": activity})
}

// PushActivitySummary posts the duration summary to /api/activity_duration.
func (p *Pusher) PushActivitySummary(ctx context.Context, summary any) error {
	return p.post(ctx, "/api/activity_duration", summary)
}

func (p *Pusher) post(ctx context.Context, path string, payload any) error {
	errFactory := errors.New()

	body, err := json.Marshal(payload)
	if err != nil {
		return errFactory.Wrap(ErrEncodePayload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errFactory.Wrap(ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return errFactory.Wrap(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errFactory.WithData(ErrBadStatus, resp.StatusCode)
	}

	return nil
}
