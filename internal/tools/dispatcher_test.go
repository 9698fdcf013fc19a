package tools

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare-ai/reservation-assistant/internal/booking"
	"github.com/smilecare-ai/reservation-assistant/internal/calendar"
	"github.com/smilecare-ai/reservation-assistant/internal/model"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
)

type stubGateway struct {
	mu        sync.Mutex
	events    []model.AppointmentEvent
	listErr   error
	createErr error
	createRes json.RawMessage

	listCalls   int
	createCalls int
	created     []model.ReservationArgs
}

func (g *stubGateway) ListUpcoming(context.Context) ([]model.AppointmentEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listCalls++
	if g.listErr != nil {
		return nil, g.listErr
	}
	return append([]model.AppointmentEvent(nil), g.events...), nil
}

func (g *stubGateway) CreateEvent(_ context.Context, args model.ReservationArgs) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	g.created = append(g.created, args)
	if g.createErr != nil {
		return nil, g.createErr
	}
	if g.createRes != nil {
		return g.createRes, nil
	}
	return json.RawMessage(`{"status":"success","id":"evt-1"}`), nil
}

var smithBooked = []model.AppointmentEvent{{
	Title: "Appointment with Dr. Smith for J. Doe - 555-1234",
	Start: "2026-02-13T10:00:00",
	End:   "2026-02-13T11:00:00",
}}

func newTestDispatcher(gw calendar.Gateway, policy booking.TitlePolicy) *Dispatcher {
	eval := booking.NewEvaluator(policy, booking.WithLocation(time.UTC))
	return NewDispatcher(gw, eval, WithLogger(logger.NewNop()))
}

func call(name, args string) model.ToolCallRequest {
	return model.ToolCallRequest{ID: "call_1", FunctionName: name, ArgumentsJSON: args}
}

func decode(t *testing.T, content string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(content), &out))
	return out
}

func TestDispatchUnknownTool(t *testing.T) {
	gw := &stubGateway{}
	res := newTestDispatcher(gw, booking.PermissivePolicy{}).Dispatch(context.Background(), call("delete_everything", "{}"))

	assert.Equal(t, OutcomeUnknownTool, res.Outcome)
	assert.True(t, res.Failed())
	assert.Equal(t, "Unknown tool: delete_everything", decode(t, res.Content)["error"])
	assert.Zero(t, gw.listCalls)
	assert.Zero(t, gw.createCalls)
}

func TestDispatchGetCalendarEvents(t *testing.T) {
	gw := &stubGateway{events: smithBooked}
	res := newTestDispatcher(gw, booking.PermissivePolicy{}).Dispatch(context.Background(), call(GetCalendarEvents, ""))

	assert.Equal(t, OutcomeOK, res.Outcome)
	var events []model.AppointmentEvent
	require.NoError(t, json.Unmarshal([]byte(res.Content), &events))
	assert.Equal(t, smithBooked, events)
}

func TestDispatchGetCalendarEventsEmpty(t *testing.T) {
	res := newTestDispatcher(&stubGateway{}, booking.PermissivePolicy{}).Dispatch(context.Background(), call(GetCalendarEvents, "{}"))
	assert.Equal(t, "[]", res.Content)
}

func TestDispatchGatewayErrorBecomesResult(t *testing.T) {
	gw := &stubGateway{listErr: &calendar.GatewayError{Reason: calendar.ReasonNotConfigured}}
	d := newTestDispatcher(gw, booking.PermissivePolicy{})

	res := d.Dispatch(context.Background(), call(GetCalendarEvents, "{}"))
	assert.Equal(t, OutcomeGatewayError, res.Outcome)
	assert.JSONEq(t, `{"error":"Calendar not configured"}`, res.Content)

	res = d.Dispatch(context.Background(), call(CreateReservation,
		`{"title":"Appointment with Dr. Jones for A. Lee - 555-9999","startTime":"2026-02-13T10:00:00","endTime":"2026-02-13T11:00:00"}`))
	assert.JSONEq(t, `{"error":"Calendar not configured"}`, res.Content)
	assert.Zero(t, gw.createCalls)
}

func TestDispatchCreateMalformedArguments(t *testing.T) {
	gw := &stubGateway{}
	res := newTestDispatcher(gw, booking.PermissivePolicy{}).Dispatch(context.Background(), call(CreateReservation, `{"title": "Dr. Smith"`))

	assert.Equal(t, OutcomeInvalidArguments, res.Outcome)
	assert.Equal(t, CodeInvalidArguments, decode(t, res.Content)["error"])
	assert.Zero(t, gw.listCalls)
	assert.Zero(t, gw.createCalls)
}

func TestDispatchCreateInvalidTitleNeverReachesGateway(t *testing.T) {
	for _, policy := range []booking.TitlePolicy{booking.PermissivePolicy{}, booking.StrictPolicy{}} {
		t.Run(policy.Name(), func(t *testing.T) {
			gw := &stubGateway{}
			res := newTestDispatcher(gw, policy).Dispatch(context.Background(), call(CreateReservation,
				`{"title":"Cleaning for A. Lee","startTime":"2026-02-13T10:00:00","endTime":"2026-02-13T11:00:00"}`))

			assert.Equal(t, OutcomeInvalidTitle, res.Outcome)
			body := decode(t, res.Content)
			assert.Equal(t, booking.CodeInvalidTitle, body["error"])
			assert.Contains(t, body["message"], "create_reservation again")
			assert.Zero(t, gw.createCalls)
			assert.Zero(t, gw.listCalls)
		})
	}
}

func TestDispatchCreateConflict(t *testing.T) {
	gw := &stubGateway{events: smithBooked}
	res := newTestDispatcher(gw, booking.PermissivePolicy{}).Dispatch(context.Background(), call(CreateReservation,
		`{"title":"Appointment with Dr. Smith for A. Lee - 555-9999","startTime":"2026-02-13T10:00:00","endTime":"2026-02-13T11:00:00"}`))

	assert.Equal(t, OutcomeConflict, res.Outcome)
	body := decode(t, res.Content)
	assert.Equal(t, "CONFLICT", body["error"])
	assert.Contains(t, body["message"], "Dr. Smith")
	assert.NotContains(t, res.Content, "J. Doe")
	assert.NotContains(t, res.Content, "Dr. Dr.")
	assert.Equal(t, 1, gw.listCalls)
	assert.Zero(t, gw.createCalls)
}

func TestDispatchCreateConflictDoctorSpelling(t *testing.T) {
	tests := []struct {
		name   string
		doctor string
	}{
		{"lowercase", "dr. smith"},
		{"uppercase", "DR. Smith"},
		{"double space", "Dr.  Smith"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{events: []model.AppointmentEvent{{
				Title: "Appointment with " + tt.doctor + " for J. Doe - 555-1234",
				Start: "2026-02-13T10:00:00",
				End:   "2026-02-13T11:00:00",
			}}}
			args, err := json.Marshal(model.ReservationArgs{
				Title:     "Appointment with " + tt.doctor + " for A. Lee - 555-9999",
				StartTime: "2026-02-13T10:00:00",
				EndTime:   "2026-02-13T11:00:00",
			})
			require.NoError(t, err)

			res := newTestDispatcher(gw, booking.PermissivePolicy{}).Dispatch(context.Background(), call(CreateReservation, string(args)))
			assert.Equal(t, OutcomeConflict, res.Outcome)
			assert.NotContains(t, res.Content, "J. Doe")
			assert.Zero(t, gw.createCalls)
		})
	}
}

func TestDispatchCreateOtherDoctorBooks(t *testing.T) {
	gw := &stubGateway{events: smithBooked}
	args := `{"title":"Appointment with Dr. Jones for A. Lee - 555-9999","startTime":"2026-02-13T10:00:00","endTime":"2026-02-13T11:00:00"}`
	res := newTestDispatcher(gw, booking.PermissivePolicy{}).Dispatch(context.Background(), call(CreateReservation, args))

	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.JSONEq(t, `{"status":"success","id":"evt-1"}`, res.Content)
	require.Equal(t, 1, gw.createCalls)
	assert.Equal(t, model.ReservationArgs{
		Title:     "Appointment with Dr. Jones for A. Lee - 555-9999",
		StartTime: "2026-02-13T10:00:00",
		EndTime:   "2026-02-13T11:00:00",
	}, gw.created[0])
}

func TestDispatchCreateBackendEnvelopePassesThrough(t *testing.T) {
	gw := &stubGateway{createRes: json.RawMessage(`{"status":"error","message":"Exception: calendar full"}`)}
	res := newTestDispatcher(gw, booking.PermissivePolicy{}).Dispatch(context.Background(), call(CreateReservation,
		`{"title":"Dr. Jones for A. Lee","startTime":"2026-02-13T10:00:00","endTime":"2026-02-13T11:00:00"}`))

	assert.Equal(t, OutcomeBackendRejected, res.Outcome)
	assert.JSONEq(t, `{"status":"error","message":"Exception: calendar full"}`, res.Content)
}

func TestDispatchCreateDuration(t *testing.T) {
	gw := &stubGateway{}
	d := newTestDispatcher(gw, booking.PermissivePolicy{})

	res := d.Dispatch(context.Background(), call(CreateReservation,
		`{"title":"Dr. Jones for A. Lee","startTime":"2026-02-13T10:00:00","endTime":"2026-02-13T10:30:00"}`))
	assert.Equal(t, OutcomeInvalidDuration, res.Outcome)
	assert.Contains(t, decode(t, res.Content)["message"], "2026-02-13T11:00:00")

	res = d.Dispatch(context.Background(), call(CreateReservation,
		`{"title":"Dr. Jones for A. Lee","startTime":"next tuesday","endTime":"2026-02-13T11:00:00"}`))
	assert.Equal(t, OutcomeInvalidTime, res.Outcome)
	assert.Zero(t, gw.createCalls)

	relaxed := NewDispatcher(gw, booking.NewEvaluator(booking.PermissivePolicy{}, booking.WithLocation(time.UTC)),
		WithExactHour(false), WithLogger(logger.NewNop()))
	res = relaxed.Dispatch(context.Background(), call(CreateReservation,
		`{"title":"Dr. Jones for A. Lee","startTime":"2026-02-13T10:00:00","endTime":"2026-02-13T10:30:00"}`))
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, 1, gw.createCalls)
}

func TestDispatchCreateStrictTitle(t *testing.T) {
	gw := &stubGateway{events: smithBooked}
	title := booking.FormatTitle(booking.TitleParts{Doctor: "Dr. Smith", Patient: "A. Lee", Reason: "Cleaning", Phone: "555-9999"})
	args, err := json.Marshal(model.ReservationArgs{Title: title, StartTime: "2026-02-13T11:00:00", EndTime: "2026-02-13T12:00:00"})
	require.NoError(t, err)

	res := newTestDispatcher(gw, booking.StrictPolicy{}).Dispatch(context.Background(), call(CreateReservation, string(args)))
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, 1, gw.createCalls)
}

func TestDefinitions(t *testing.T) {
	defs := Definitions(booking.StrictPolicy{})
	require.Len(t, defs, 2)

	assert.Equal(t, GetCalendarEvents, defs[0].Name)
	assert.Empty(t, defs[0].RequiredParams())

	assert.Equal(t, CreateReservation, defs[1].Name)
	assert.ElementsMatch(t, []string{"title", "startTime", "endTime"}, defs[1].RequiredParams())
	props := defs[1].Parameters["properties"].(map[string]any)
	assert.Contains(t, props, "description")
	title := props["title"].(map[string]any)
	assert.Contains(t, title["description"], "(Reason: <Procedure>)")
}
