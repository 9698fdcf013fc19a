package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/smilecare-ai/reservation-assistant/internal/localtime"
	"github.com/smilecare-ai/reservation-assistant/internal/model"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
	"github.com/smilecare-ai/reservation-assistant/pkg/metrics"
)

// GoogleGateway reads and writes a Google Calendar directly through the
// Calendar API v3.
type GoogleGateway struct {
	svc        *gcal.Service
	calendarID string
	lookahead  time.Duration
	loc        *time.Location
	logger     *logger.Logger
	now        func() time.Time

	clientOpts []option.ClientOption
}

// GoogleOption configures a GoogleGateway.
type GoogleOption func(*GoogleGateway)

// WithCredentialsFile authenticates with a service-account key file.
func WithCredentialsFile(path string) GoogleOption {
	return func(g *GoogleGateway) {
		if path != "" {
			g.clientOpts = append(g.clientOpts, option.WithCredentialsFile(path))
		}
	}
}

// WithGoogleClientOptions passes raw client options (endpoint, HTTP client).
func WithGoogleClientOptions(opts ...option.ClientOption) GoogleOption {
	return func(g *GoogleGateway) {
		g.clientOpts = append(g.clientOpts, opts...)
	}
}

// WithGoogleLookahead sets the listing window.
func WithGoogleLookahead(d time.Duration) GoogleOption {
	return func(g *GoogleGateway) {
		if d > 0 {
			g.lookahead = d
		}
	}
}

// WithGoogleLocation sets the clinic zone.
func WithGoogleLocation(loc *time.Location) GoogleOption {
	return func(g *GoogleGateway) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// WithGoogleLogger sets the logger.
func WithGoogleLogger(l *logger.Logger) GoogleOption {
	return func(g *GoogleGateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGoogleGateway creates the Calendar API service for calendarID.
func NewGoogleGateway(ctx context.Context, calendarID string, opts ...GoogleOption) (*GoogleGateway, error) {
	g := &GoogleGateway{
		calendarID: calendarID,
		lookahead:  DefaultLookahead,
		loc:        time.Local,
		logger:     logger.Global(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.calendarID == "" {
		g.calendarID = "primary"
	}

	svc, err := gcal.NewService(ctx, g.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	g.svc = svc
	return g, nil
}

// ListUpcoming lists single events from now until the look-ahead bound.
func (g *GoogleGateway) ListUpcoming(ctx context.Context) ([]model.AppointmentEvent, error) {
	ctx, span := tracer.Start(ctx, "calendar.google.list")
	defer span.End()

	now := g.now()
	start := time.Now()
	resp, err := g.svc.Events.List(g.calendarID).
		Context(ctx).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.Add(g.lookahead).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	metrics.RecordGateway("google", "list", googleStatus(err), time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		g.logger.Warn("Google Calendar list failed", zap.Error(err))
		return nil, &GatewayError{Reason: ReasonFetchFailed, StatusCode: googleCode(err), Err: err}
	}

	events := make([]model.AppointmentEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, model.AppointmentEvent{
			Title: item.Summary,
			Start: g.eventTime(item.Start),
			End:   g.eventTime(item.End),
		})
	}
	span.SetAttributes(attribute.Int("calendar.events", len(events)))
	return events, nil
}

func (g *GoogleGateway) eventTime(t *gcal.EventDateTime) string {
	if t == nil {
		return ""
	}
	raw := t.DateTime
	if raw == "" {
		// All-day events start at local midnight.
		raw = t.Date
	}
	s, err := localtime.Normalize(raw, g.loc)
	if err != nil {
		return raw
	}
	return s
}

type createEnvelope struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// CreateEvent inserts the reservation. Its result mirrors the proxy
// envelope: {"status":"success","id"} or {"status":"error","message"}.
func (g *GoogleGateway) CreateEvent(ctx context.Context, args model.ReservationArgs) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "calendar.google.create")
	defer span.End()

	startAt, err := localtime.Parse(args.StartTime, g.loc)
	if err != nil {
		return envelope(createEnvelope{Status: "error", Message: "invalid startTime"})
	}
	endAt, err := localtime.Parse(args.EndTime, g.loc)
	if err != nil {
		return envelope(createEnvelope{Status: "error", Message: "invalid endTime"})
	}

	event := &gcal.Event{
		Summary:     args.Title,
		Description: args.Description,
		Start:       g.dateTime(startAt),
		End:         g.dateTime(endAt),
	}

	start := time.Now()
	created, err := g.svc.Events.Insert(g.calendarID, event).Context(ctx).Do()
	metrics.RecordGateway("google", "create", googleStatus(err), time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		g.logger.Warn("Google Calendar insert failed", zap.Error(err))
		if googleCode(err) != 0 {
			return envelope(createEnvelope{Status: "error", Message: err.Error()})
		}
		return nil, &GatewayError{Reason: ReasonCreateFailed, Err: err}
	}
	return envelope(createEnvelope{Status: "success", ID: created.Id})
}

func (g *GoogleGateway) dateTime(t time.Time) *gcal.EventDateTime {
	dt := &gcal.EventDateTime{DateTime: t.Format(time.RFC3339)}
	if name := g.loc.String(); name != "Local" && name != "" {
		dt.TimeZone = name
	}
	return dt
}

func envelope(v createEnvelope) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode create result: %w", err)
	}
	return data, nil
}

func googleCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func googleStatus(err error) string {
	if err == nil {
		return strconv.Itoa(http.StatusOK)
	}
	if code := googleCode(err); code != 0 {
		return strconv.Itoa(code)
	}
	return "error"
}
