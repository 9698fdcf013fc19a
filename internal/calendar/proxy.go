package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/smilecare-ai/reservation-assistant/internal/localtime"
	"github.com/smilecare-ai/reservation-assistant/internal/model"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
	"github.com/smilecare-ai/reservation-assistant/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

const maxResponseBytes = 1 << 20

// ProxyGateway talks to a web-app proxy in front of the clinic calendar:
// GET returns a JSON array of {title,start,end}; POST creates an event.
type ProxyGateway struct {
	baseURL    string
	httpClient *http.Client
	lookahead  time.Duration
	loc        *time.Location
	logger     *logger.Logger
}

// ProxyOption configures a ProxyGateway.
type ProxyOption func(*ProxyGateway)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) ProxyOption {
	return func(g *ProxyGateway) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ProxyOption {
	return func(g *ProxyGateway) {
		if d > 0 {
			g.httpClient.Timeout = d
		}
	}
}

// WithLookahead sets the listing window.
func WithLookahead(d time.Duration) ProxyOption {
	return func(g *ProxyGateway) {
		if d > 0 {
			g.lookahead = d
		}
	}
}

// WithLocation sets the clinic zone used to normalize timestamps.
func WithLocation(loc *time.Location) ProxyOption {
	return func(g *ProxyGateway) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) ProxyOption {
	return func(g *ProxyGateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewProxyGateway creates a proxy gateway. An empty baseURL yields a gateway
// whose calls fail with ReasonNotConfigured.
func NewProxyGateway(baseURL string, opts ...ProxyOption) *ProxyGateway {
	g := &ProxyGateway{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		lookahead:  DefaultLookahead,
		loc:        time.Local,
		logger:     logger.Global(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type proxyEvent struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ListUpcoming fetches events and converts their timestamps to clinic-local
// wall-clock time.
func (g *ProxyGateway) ListUpcoming(ctx context.Context) ([]model.AppointmentEvent, error) {
	ctx, span := tracer.Start(ctx, "calendar.proxy.list")
	defer span.End()

	if g.baseURL == "" {
		span.SetStatus(codes.Error, ReasonNotConfigured)
		return nil, &GatewayError{Reason: ReasonNotConfigured}
	}

	start := time.Now()
	events, status, err := g.list(ctx)
	metrics.RecordGateway("proxy", "list", status, time.Since(start).Seconds())
	span.SetAttributes(attribute.String("calendar.status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		g.logger.Warn("Calendar fetch failed", zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("calendar.events", len(events)))
	return events, nil
}

func (g *ProxyGateway) list(ctx context.Context) ([]model.AppointmentEvent, string, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		return nil, "error", &GatewayError{Reason: ReasonNotConfigured, Err: err}
	}
	q := u.Query()
	q.Set("days", strconv.Itoa(lookaheadDays(g.lookahead)))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "error", &GatewayError{Reason: ReasonFetchFailed, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, "error", &GatewayError{Reason: ReasonFetchFailed, Err: err}
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, status, &GatewayError{Reason: ReasonFetchFailed, StatusCode: resp.StatusCode}
	}

	var raw []proxyEvent
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&raw); err != nil {
		return nil, status, &GatewayError{Reason: ReasonFetchFailed, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode events: %w", err)}
	}

	events := make([]model.AppointmentEvent, 0, len(raw))
	for _, ev := range raw {
		events = append(events, model.AppointmentEvent{
			Title: ev.Title,
			Start: g.normalize(ev.Start),
			End:   g.normalize(ev.End),
		})
	}
	return events, status, nil
}

// normalize keeps unreadable timestamps as-is so the model still sees them;
// the conflict check skips such events.
func (g *ProxyGateway) normalize(raw string) string {
	s, err := localtime.Normalize(raw, g.loc)
	if err != nil {
		g.logger.Debug("Unreadable event timestamp", zap.String("value", raw))
		return raw
	}
	return s
}

// CreateEvent posts the reservation and returns the proxy's envelope.
func (g *ProxyGateway) CreateEvent(ctx context.Context, args model.ReservationArgs) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "calendar.proxy.create")
	defer span.End()

	if g.baseURL == "" {
		span.SetStatus(codes.Error, ReasonNotConfigured)
		return nil, &GatewayError{Reason: ReasonNotConfigured}
	}

	start := time.Now()
	body, status, err := g.create(ctx, args)
	metrics.RecordGateway("proxy", "create", status, time.Since(start).Seconds())
	span.SetAttributes(attribute.String("calendar.status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		g.logger.Warn("Calendar create failed", zap.Error(err))
		return nil, err
	}
	return body, nil
}

func (g *ProxyGateway) create(ctx context.Context, args model.ReservationArgs) (json.RawMessage, string, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, "error", &GatewayError{Reason: ReasonCreateFailed, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, "error", &GatewayError{Reason: ReasonCreateFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, "error", &GatewayError{Reason: ReasonCreateFailed, Err: err}
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, status, &GatewayError{Reason: ReasonCreateFailed, StatusCode: resp.StatusCode, Err: err}
	}
	// A JSON reply is the backend's own envelope and is returned as is,
	// whatever the status.
	if !json.Valid(data) {
		return nil, status, &GatewayError{Reason: ReasonCreateFailed, StatusCode: resp.StatusCode, Err: fmt.Errorf("response is not JSON")}
	}
	return json.RawMessage(bytes.TrimSpace(data)), status, nil
}
