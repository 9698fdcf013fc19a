package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/smilecare-ai/reservation-assistant/internal/llm"
	"github.com/smilecare-ai/reservation-assistant/internal/model"
	"github.com/smilecare-ai/reservation-assistant/internal/tools"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
	"github.com/smilecare-ai/reservation-assistant/pkg/metrics"
)

var tracer = otel.Tracer("reservation.internal.service")

// Defaults for AssistantConfig zero values.
const (
	DefaultMaxToolRounds = 6
	DefaultModelTimeout  = 30 * time.Second
	DefaultTemperature   = 0.7
)

// ToolDispatcher executes model tool calls.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, call model.ToolCallRequest) tools.Result
	Definitions() []model.ToolDefinition
}

// PromptBuilder renders the system prompt for an instant.
type PromptBuilder interface {
	Build(now time.Time) string
}

// AssistantConfig holds the orchestrator settings.
type AssistantConfig struct {
	Model         string
	Temperature   float64
	MaxToolRounds int
	ModelTimeout  time.Duration
}

// Assistant runs user turns against the model, executing tool calls until
// the model produces a plain reply.
type Assistant struct {
	llm        llm.Client
	dispatcher ToolDispatcher
	prompts    PromptBuilder
	cfg        AssistantConfig
	logger     *logger.Logger
	now        func() time.Time
}

// NewAssistant creates an assistant.
func NewAssistant(client llm.Client, dispatcher ToolDispatcher, prompts PromptBuilder, cfg AssistantConfig, log *logger.Logger) *Assistant {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = DefaultMaxToolRounds
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = DefaultModelTimeout
	}
	if log == nil {
		log = logger.Global()
	}
	return &Assistant{
		llm:        client,
		dispatcher: dispatcher,
		prompts:    prompts,
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
	}
}

// TurnObserver receives progress events for one turn.
type TurnObserver func(model.TurnEvent)

// TurnOption configures one HandleUserTurn call.
type TurnOption func(*turnOptions)

type turnOptions struct {
	observers []TurnObserver
}

// WithObserver registers a progress observer.
func WithObserver(o TurnObserver) TurnOption {
	return func(t *turnOptions) {
		if o != nil {
			t.observers = append(t.observers, o)
		}
	}
}

type turn struct {
	sessionID string
	round     int
	opts      turnOptions
	log       *logger.Logger
}

func (t *turn) emit(ev model.TurnEvent) {
	if len(t.opts.observers) == 0 {
		return
	}
	ev.ID = uuid.NewString()
	ev.SessionID = t.sessionID
	ev.Round = t.round
	ev.CreatedAt = time.Now()
	for _, o := range t.opts.observers {
		o(ev)
	}
}

// HandleUserTurn runs one user turn to completion on transcript and returns
// the assistant reply. The transcript only grows: the system prompt at index
// 0 is refreshed, then the user entry, each tool round and the reply are
// appended. On error nothing already appended is removed; FallbackReply
// gives the text to show instead.
func (a *Assistant) HandleUserTurn(ctx context.Context, userText string, transcript *model.Transcript, opts ...TurnOption) (string, error) {
	t := &turn{sessionID: transcript.SessionID()}
	for _, opt := range opts {
		opt(&t.opts)
	}
	t.log = a.logger.WithSession(t.sessionID, "")

	ctx, span := tracer.Start(ctx, "assistant.turn")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", t.sessionID))

	transcript.SetSystemPrompt(a.prompts.Build(a.now()))
	transcript.Append(model.UserMessage(userText))

	reply, err := a.run(ctx, t, transcript)
	span.SetAttributes(attribute.Int("assistant.tool_rounds", t.round))
	if err != nil {
		code := ErrorCode(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		metrics.RecordTurn(code, t.round)
		t.log.Error("Turn failed", zap.Error(err), zap.String("code", code), zap.Int("round", t.round))
		t.emit(model.TurnEvent{Type: model.TurnEventError, Outcome: code, Content: FallbackReply(err)})
		return "", err
	}

	metrics.RecordTurn("ok", t.round)
	t.emit(model.TurnEvent{Type: model.TurnEventReply, Content: reply})
	return reply, nil
}

func (a *Assistant) run(ctx context.Context, t *turn, transcript *model.Transcript) (string, error) {
	defs := a.dispatcher.Definitions()

	for {
		resp, err := a.complete(ctx, transcript.Messages(), defs)
		if err != nil {
			return "", err
		}

		if len(resp.ToolCalls) == 0 {
			reply := strings.TrimSpace(resp.Content)
			if reply == "" {
				t.log.Warn("Model returned neither content nor tool calls", zap.String("stop_reason", resp.StopReason))
				reply = RetryReply
			}
			transcript.Append(model.AssistantMessage(reply))
			return reply, nil
		}

		if t.round >= a.cfg.MaxToolRounds {
			return "", &MaxRoundsExceededError{Rounds: t.round}
		}
		t.round++

		transcript.Append(model.AssistantToolCallMessage(resp.Content, resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			t.emit(model.TurnEvent{Type: model.TurnEventToolCall, ToolCallID: call.ID, ToolName: call.FunctionName})

			res := a.dispatcher.Dispatch(ctx, call)
			transcript.Append(model.ToolResultMessage(call.ID, call.FunctionName, res.Content))

			t.emit(model.TurnEvent{Type: model.TurnEventToolResult, ToolCallID: call.ID, ToolName: call.FunctionName, Outcome: res.Outcome})
		}
	}
}

// complete performs one model call under the model timeout and classifies
// its failure.
func (a *Assistant) complete(ctx context.Context, msgs []model.Message, defs []model.ToolDefinition) (*llm.CompletionResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.ModelTimeout)
	defer cancel()

	callCtx, span := tracer.Start(callCtx, "assistant.model_call")
	defer span.End()

	provider := a.llm.Name()
	start := time.Now()
	resp, err := a.llm.Complete(callCtx, &llm.CompletionRequest{
		Model:       a.cfg.Model,
		Messages:    msgs,
		Tools:       defs,
		ToolChoice:  llm.ToolChoiceAuto,
		Temperature: a.cfg.Temperature,
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		switch {
		case ctx.Err() != nil:
			metrics.RecordLLMRequest(provider, "cancelled", elapsed, 0, 0)
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil:
			metrics.RecordLLMRequest(provider, "timeout", elapsed, 0, 0)
			return nil, &ModelTimeoutError{Provider: provider, Timeout: a.cfg.ModelTimeout}
		default:
			metrics.RecordLLMRequest(provider, "error", elapsed, 0, 0)
			return nil, &ModelEndpointError{Provider: provider, Err: err}
		}
	}
	if resp == nil {
		metrics.RecordLLMRequest(provider, "error", elapsed, 0, 0)
		return nil, &ModelEndpointError{Provider: provider, Err: llm.ErrEmptyResponse}
	}

	metrics.RecordLLMRequest(provider, "success", elapsed, resp.TokensIn, resp.TokensOut)
	span.SetAttributes(
		attribute.Int("llm.tokens_in", resp.TokensIn),
		attribute.Int("llm.tokens_out", resp.TokensOut),
		attribute.Int("llm.tool_calls", len(resp.ToolCalls)),
	)
	return resp, nil
}
