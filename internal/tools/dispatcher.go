package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smilecare-ai/reservation-assistant/internal/booking"
	"github.com/smilecare-ai/reservation-assistant/internal/calendar"
	"github.com/smilecare-ai/reservation-assistant/internal/model"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
	"github.com/smilecare-ai/reservation-assistant/pkg/metrics"
)

var tracer = otel.Tracer("reservation.internal.tools")

// Outcome codes reported for each dispatched call. They never carry
// calendar contents.
const (
	OutcomeOK               = "ok"
	OutcomeCreated          = "created"
	OutcomeBackendRejected  = "backend_rejected"
	OutcomeGatewayError     = "gateway_error"
	OutcomeInvalidArguments = "invalid_arguments"
	OutcomeInvalidTitle     = "invalid_title"
	OutcomeInvalidTime      = "invalid_time"
	OutcomeInvalidDuration  = "invalid_duration"
	OutcomeConflict         = "conflict"
	OutcomeUnknownTool      = "unknown_tool"
)

// CodeInvalidArguments marks tool arguments that are not a JSON object.
const CodeInvalidArguments = "INVALID_ARGUMENTS"

// Result is the tool-role content for one call plus its outcome code.
type Result struct {
	Content string
	Outcome string
}

// Failed reports whether the call did not complete its operation.
func (r Result) Failed() bool {
	return r.Outcome != OutcomeOK && r.Outcome != OutcomeCreated
}

type handlerFunc func(ctx context.Context, call model.ToolCallRequest) Result

// Dispatcher routes model tool calls to the calendar gateway and enforces
// the booking rules before any write.
type Dispatcher struct {
	gateway   calendar.Gateway
	evaluator *booking.Evaluator
	exactHour bool
	logger    *logger.Logger
	handlers  map[string]handlerFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithExactHour enforces one-hour reservations in code.
func WithExactHour(v bool) Option {
	return func(d *Dispatcher) { d.exactHour = v }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher over gateway.
func NewDispatcher(gateway calendar.Gateway, evaluator *booking.Evaluator, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		gateway:   gateway,
		evaluator: evaluator,
		exactHour: true,
		logger:    logger.Global(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.handlers = map[string]handlerFunc{
		GetCalendarEvents: d.getCalendarEvents,
		CreateReservation: d.createReservation,
	}
	return d
}

// Definitions returns the schemas for the tools this dispatcher serves.
func (d *Dispatcher) Definitions() []model.ToolDefinition {
	return Definitions(d.evaluator.Policy())
}

// Dispatch executes one tool call. It always returns a JSON result so the
// transcript keeps one tool entry per request.
func (d *Dispatcher) Dispatch(ctx context.Context, call model.ToolCallRequest) Result {
	ctx, span := tracer.Start(ctx, "tools.dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("tool.name", call.FunctionName),
		attribute.String("tool.call_id", call.ID),
	)

	handler, ok := d.handlers[call.FunctionName]
	var res Result
	if !ok {
		res = Result{
			Content: errorJSON(fmt.Sprintf("Unknown tool: %s", call.FunctionName), ""),
			Outcome: OutcomeUnknownTool,
		}
	} else {
		res = handler(ctx, call)
	}

	span.SetAttributes(attribute.String("tool.outcome", res.Outcome))
	metrics.RecordToolCall(toolLabel(call.FunctionName, ok), res.Outcome)
	d.logger.Info("Tool call dispatched",
		zap.String("tool", call.FunctionName),
		zap.String("tool_call_id", call.ID),
		zap.String("outcome", res.Outcome),
	)
	return res
}

func (d *Dispatcher) getCalendarEvents(ctx context.Context, _ model.ToolCallRequest) Result {
	events, err := d.gateway.ListUpcoming(ctx)
	if err != nil {
		return gatewayFailure(err)
	}
	if events == nil {
		events = []model.AppointmentEvent{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return Result{Content: errorJSON(calendar.ReasonFetchFailed, ""), Outcome: OutcomeGatewayError}
	}
	return Result{Content: string(data), Outcome: OutcomeOK}
}

func (d *Dispatcher) createReservation(ctx context.Context, call model.ToolCallRequest) Result {
	var args model.ReservationArgs
	if err := json.Unmarshal([]byte(call.ArgumentsJSON), &args); err != nil {
		return Result{
			Content: errorJSON(CodeInvalidArguments, "Arguments must be a JSON object with title, startTime and endTime."),
			Outcome: OutcomeInvalidArguments,
		}
	}
	d.logger.Debug("create_reservation arguments",
		zap.String("tool_call_id", call.ID),
		zap.String("title", args.Title),
		zap.String("start", args.StartTime),
		zap.String("end", args.EndTime),
	)

	candidate := args.Candidate()
	if _, err := d.evaluator.Policy().Parse(candidate.Title); err != nil {
		return ruleFailure(err)
	}
	start, end, err := d.evaluator.Interval(candidate)
	if err != nil {
		return ruleFailure(err)
	}
	if err := booking.CheckDuration(start, end, d.exactHour); err != nil {
		return ruleFailure(err)
	}

	existing, err := d.gateway.ListUpcoming(ctx)
	if err != nil {
		return gatewayFailure(err)
	}
	res, err := d.evaluator.HasConflict(candidate, existing)
	if err != nil {
		return ruleFailure(err)
	}
	if res.Conflict {
		return ruleFailure(&booking.ConflictError{Doctor: res.Doctor})
	}

	body, err := d.gateway.CreateEvent(ctx, args)
	if err != nil {
		return gatewayFailure(err)
	}
	outcome := OutcomeCreated
	var env struct {
		Status string `json:"status"`
	}
	if json.Unmarshal(body, &env) == nil && strings.EqualFold(env.Status, "error") {
		outcome = OutcomeBackendRejected
	}
	return Result{Content: string(body), Outcome: outcome}
}

type codedError interface {
	error
	Code() string
}

func ruleFailure(err error) Result {
	var coded codedError
	if !errors.As(err, &coded) {
		return Result{Content: errorJSON("Oops! Something went wrong.", ""), Outcome: OutcomeInvalidArguments}
	}
	return Result{
		Content: errorJSON(coded.Code(), coded.Error()),
		Outcome: outcomeFor(coded.Code()),
	}
}

func outcomeFor(code string) string {
	switch code {
	case booking.CodeInvalidTitle:
		return OutcomeInvalidTitle
	case booking.CodeConflict:
		return OutcomeConflict
	case booking.CodeInvalidDuration:
		return OutcomeInvalidDuration
	default:
		return OutcomeInvalidTime
	}
}

func gatewayFailure(err error) Result {
	reason := calendar.ReasonFetchFailed
	var gwErr *calendar.GatewayError
	if errors.As(err, &gwErr) {
		reason = gwErr.Reason
	}
	return Result{Content: errorJSON(reason, ""), Outcome: OutcomeGatewayError}
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func errorJSON(code, message string) string {
	data, _ := json.Marshal(errorPayload{Error: code, Message: message})
	return string(data)
}

// toolLabel bounds metric cardinality for names the model made up.
func toolLabel(name string, known bool) string {
	if known {
		return name
	}
	return "unknown"
}
