package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
	"github.com/manvi18ux/assistive-har-system/internal/errors"
	"github.com/manvi18ux/assistive-har-system/internal/logger"
)

const (
	// Minimum spacing between messages to the same recipient. This is a
	// third suppression layer, local to the gateway, on top of dispatch
	// cooldowns and warning timers.
	recipientCooldown = 60 * time.Second

	smsBodyLimit   = 160
	gatewayTimeout = 5 * time.Second
)

// Gateway sends critical alerts to emergency contacts through an
// HTTP short-message gateway.
type Gateway struct {
	url        string
	recipients []string
	client     *http.Client
	mu         sync.Mutex
	lastSent   map[string]time.Time
	now        func() time.Time
}

// GatewayOption configures the gateway.
type GatewayOption func(*Gateway)

// WithGatewayClient overrides the HTTP client.
func WithGatewayClient(client *http.Client) GatewayOption {
	return func(g *Gateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithGatewayClock overrides the time source used for per-recipient
// cooldowns.
func WithGatewayClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

func NewGateway(url string, recipients []string, opts ...GatewayOption) (*Gateway, error) {
	errFactory := errors.New()

	if url == "" {
		return nil, errFactory.New(ErrEmptyEndpoint)
	}
	if len(recipients) == 0 {
		return nil, errFactory.New(ErrNoRecipients)
	}

	g := &Gateway{
		url:        url,
		recipients: recipients,
		client:     &http.Client{Timeout: gatewayTimeout},
		lastSent:   make(map[string]time.Time),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Send delivers the alert to every recipient whose cooldown has elapsed.
// It returns an error only when no recipient could be reached.
func (g *Gateway) Send(ctx context.Context, event alert.Event) error {
	errFactory := errors.New()

	body := formatBody(event)
	sent := 0
	attempted := 0

	for _, recipient := range g.recipients {
		if !g.allow(recipient) {
			continue
		}
		attempted++

		if err := g.post(ctx, recipient, event, body); err != nil {
			logger.Warn().
				Err(err).
				Str("recipient", recipient).
				Msg("Short message delivery failed")
			continue
		}

		g.stamp(recipient)
		sent++
	}

	if attempted == 0 {
		return errFactory.New(ErrAllSuppressed)
	}
	if sent == 0 {
		return errFactory.WithData(ErrRequestFailed, attempted)
	}

	return nil
}

func (g *Gateway) allow(recipient string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	lastAt, ok := g.lastSent[recipient]

	return !ok || g.now().Sub(lastAt) > recipientCooldown
}

func (g *Gateway) stamp(recipient string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastSent[recipient] = g.now()
}

func (g *Gateway) post(ctx context.Context, recipient string, event alert.Event, body string) error {
	errFactory := errors.New()

	payload, err := json.Marshal(map[string]string{
		"to":      recipient,
		"subject": fmt.Sprintf("HAR Alert: %s", strings.ToUpper(event.Kind)),
		"body":    body,
	})
	if err != nil {
		return errFactory.Wrap(ErrEncodePayload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return errFactory.Wrap(ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return errFactory.Wrap(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errFactory.WithData(ErrBadStatus, resp.StatusCode)
	}

	return nil
}

func formatBody(event alert.Event) string {
	body := fmt.Sprintf("HAR ALERT [%s]: %s", strings.ToUpper(event.Kind), event.Message)
	if len(body) > smsBodyLimit {
		body = body[:smsBodyLimit]
	}
	return body
}
