package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare-ai/reservation-assistant/internal/model"
)

type stubChatClient struct {
	lastReq openai.ChatCompletionRequest
	resp    openai.ChatCompletionResponse
	err     error
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	return s.resp, s.err
}

func testTools() []model.ToolDefinition {
	return []model.ToolDefinition{{
		Name:        "create_reservation",
		Description: "Create an appointment",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
			},
			"required": []string{"title"},
		},
	}}
}

func TestOpenAICompleteMapsToolCalls(t *testing.T) {
	stub := &stubChatClient{resp: openai.ChatCompletionResponse{
		Model: "gpt-4o",
		Choices: []openai.ChatCompletionChoice{{
			FinishReason: openai.FinishReasonToolCalls,
			Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					ID:   "call_1",
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      "get_calendar_events",
						Arguments: "{}",
					},
				}},
			},
		}},
		Usage: openai.Usage{PromptTokens: 120, CompletionTokens: 8},
	}}
	client := &OpenAIClient{client: stub}

	resp, err := client.Complete(context.Background(), &CompletionRequest{
		Messages:    []model.Message{model.SystemMessage("rules"), model.UserMessage("hi")},
		Tools:       testTools(),
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Empty(t, resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, model.ToolCallRequest{ID: "call_1", FunctionName: "get_calendar_events", ArgumentsJSON: "{}"}, resp.ToolCalls[0])
	assert.Equal(t, 120, resp.TokensIn)
	assert.Equal(t, "tool_calls", resp.StopReason)

	req := stub.lastReq
	assert.Equal(t, defaultOpenAIModel, req.Model)
	assert.Equal(t, ToolChoiceAuto, req.ToolChoice)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, openai.ToolTypeFunction, req.Tools[0].Type)
	assert.Equal(t, "create_reservation", req.Tools[0].Function.Name)
}

func TestOpenAIMessagesCarryToolCorrelation(t *testing.T) {
	calls := []model.ToolCallRequest{
		{ID: "call_1", FunctionName: "get_calendar_events", ArgumentsJSON: "{}"},
		{ID: "call_2", FunctionName: "create_reservation", ArgumentsJSON: `{"title":"Dr. Jones"}`},
	}
	msgs := toOpenAIMessages([]model.Message{
		model.SystemMessage("rules"),
		model.UserMessage("book me"),
		model.AssistantToolCallMessage("", calls),
		model.ToolResultMessage("call_1", "get_calendar_events", "[]"),
		model.ToolResultMessage("call_2", "create_reservation", `{"status":"success","id":"x"}`),
	})

	require.Len(t, msgs, 5)
	assert.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	require.Len(t, msgs[2].ToolCalls, 2)
	assert.Equal(t, "call_2", msgs[2].ToolCalls[1].ID)
	assert.Equal(t, `{"title":"Dr. Jones"}`, msgs[2].ToolCalls[1].Function.Arguments)
	assert.Equal(t, openai.ChatMessageRoleTool, msgs[3].Role)
	assert.Equal(t, "call_1", msgs[3].ToolCallID)
	assert.Equal(t, "create_reservation", msgs[4].Name)
}

func TestOpenAICompleteErrors(t *testing.T) {
	client := &OpenAIClient{client: &stubChatClient{err: errors.New("status 502")}}
	_, err := client.Complete(context.Background(), &CompletionRequest{Messages: []model.Message{model.UserMessage("hi")}})
	assert.EqualError(t, err, "status 502")

	client = &OpenAIClient{client: &stubChatClient{}}
	_, err = client.Complete(context.Background(), &CompletionRequest{Messages: []model.Message{model.UserMessage("hi")}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIOmitsToolChoiceWithoutTools(t *testing.T) {
	stub := &stubChatClient{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "Hello!"}}},
	}}
	resp, err := (&OpenAIClient{client: stub}).Complete(context.Background(), &CompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []model.Message{model.UserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", resp.Content)
	assert.Nil(t, stub.lastReq.ToolChoice)
	assert.Equal(t, "gpt-4o-mini", stub.lastReq.Model)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(context.Background(), ProviderOpenAI, Options{APIKey: "sk-test", BaseURL: "http://relay.local/v1"})
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())

	_, err = NewClient(context.Background(), ProviderOpenAI, Options{})
	assert.Error(t, err)

	_, err = NewClient(context.Background(), ProviderAnthropic, Options{})
	assert.Error(t, err)

	_, err = NewClient(context.Background(), "mistral", Options{APIKey: "x"})
	assert.Error(t, err)
}
