// Package calendar reads and writes clinic appointments on the remote
// calendar backend. All timestamps leaving this package are clinic-local
// wall-clock strings without a zone designator.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/smilecare-ai/reservation-assistant/internal/config"
	"github.com/smilecare-ai/reservation-assistant/internal/model"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
)

var tracer = otel.Tracer("reservation.internal.calendar")

// Gateway failure reasons. They are handed to the model as {"error": reason}.
const (
	ReasonNotConfigured = "Calendar not configured"
	ReasonFetchFailed   = "Failed to fetch calendar"
	ReasonCreateFailed  = "Failed to create reservation"
)

// DefaultLookahead is the listing window.
const DefaultLookahead = 7 * 24 * time.Hour

// Gateway is the calendar backend.
type Gateway interface {
	// ListUpcoming returns events in the look-ahead window.
	ListUpcoming(ctx context.Context) ([]model.AppointmentEvent, error)
	// CreateEvent books a reservation and returns the backend's result
	// envelope unchanged, e.g. {"status":"success","id":"..."}.
	CreateEvent(ctx context.Context, args model.ReservationArgs) (json.RawMessage, error)
}

// GatewayError is a recoverable backend failure.
type GatewayError struct {
	Reason     string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d", e.Reason, e.StatusCode)
	}
	return e.Reason
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// New builds the gateway selected by CALENDAR_BACKEND.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Gateway, error) {
	switch cfg.CalendarBackend {
	case "google":
		return NewGoogleGateway(ctx, cfg.GoogleCalendarID,
			WithCredentialsFile(cfg.GoogleCredentialsFile),
			WithGoogleLookahead(cfg.CalendarLookahead),
			WithGoogleLocation(cfg.Location()),
			WithGoogleLogger(log),
		)
	case "proxy", "":
		return NewProxyGateway(cfg.CalendarProxyURL,
			WithTimeout(cfg.CalendarTimeout),
			WithLookahead(cfg.CalendarLookahead),
			WithLocation(cfg.Location()),
			WithLogger(log),
		), nil
	default:
		return nil, fmt.Errorf("unknown calendar backend %q", cfg.CalendarBackend)
	}
}

func lookaheadDays(d time.Duration) int {
	days := int(d / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}
