// Package app wires the reservation assistant from configuration.
package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/smilecare-ai/reservation-assistant/internal/booking"
	"github.com/smilecare-ai/reservation-assistant/internal/calendar"
	"github.com/smilecare-ai/reservation-assistant/internal/clinic"
	"github.com/smilecare-ai/reservation-assistant/internal/config"
	"github.com/smilecare-ai/reservation-assistant/internal/llm"
	"github.com/smilecare-ai/reservation-assistant/internal/prompt"
	"github.com/smilecare-ai/reservation-assistant/internal/service"
	"github.com/smilecare-ai/reservation-assistant/internal/tools"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
)

// Components are the pieces shared by the API server and the chat CLI.
type Components struct {
	Assistant *service.Assistant
	Roster    *clinic.Roster
	LLM       llm.Client
}

// Close releases provider resources.
func (c *Components) Close() error {
	if closer, ok := c.LLM.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Build assembles the assistant: roster, title policy, conflict evaluator,
// calendar gateway, tool dispatcher, prompt builder and model client.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Components, error) {
	roster, err := clinic.Load(cfg.DentistsFile)
	if err != nil {
		return nil, err
	}

	policy, err := booking.NewTitlePolicy(cfg.TitlePolicy)
	if err != nil {
		return nil, err
	}

	loc := cfg.Location()
	evaluator := booking.NewEvaluator(policy,
		booking.WithMatchMode(booking.ParseMatchMode(cfg.DoctorMatch)),
		booking.WithCaseSensitive(cfg.DoctorCaseSensitive),
		booking.WithLocation(loc),
	)

	gateway, err := calendar.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar gateway: %w", err)
	}
	if cfg.CalendarBackend != "google" && cfg.CalendarProxyURL == "" {
		log.Warn("CALENDAR_PROXY_URL is empty; calendar tools will report that the calendar is not configured")
	}

	dispatcher := tools.NewDispatcher(gateway, evaluator,
		tools.WithExactHour(cfg.EnforceOneHour),
		tools.WithLogger(log),
	)

	clinicName := cfg.ClinicName
	if roster.Clinic != "" {
		clinicName = roster.Clinic
	}
	builder := prompt.NewBuilder(clinicName, roster, policy, loc)

	client, err := llm.NewClient(ctx, llm.Provider(cfg.LLMProvider), llm.Options{
		APIKey:  apiKey(cfg),
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	modelName := cfg.LLMModel
	if modelName == "" {
		if models := client.Models(); len(models) > 0 {
			modelName = models[0]
		}
	}

	assistant := service.NewAssistant(client, dispatcher, builder, service.AssistantConfig{
		Model:         modelName,
		Temperature:   cfg.LLMTemperature,
		MaxToolRounds: cfg.MaxToolRounds,
		ModelTimeout:  cfg.ModelTimeout,
	}, log)

	log.Info("assistant configured",
		zap.String("provider", client.Name()),
		zap.String("model", modelName),
		zap.String("calendar_backend", cfg.CalendarBackend),
		zap.String("title_policy", policy.Name()),
		zap.String("doctor_match", cfg.DoctorMatch),
		zap.Int("dentists", len(roster.Dentists)),
	)

	return &Components{Assistant: assistant, Roster: roster, LLM: client}, nil
}

func apiKey(cfg *config.Config) string {
	switch llm.Provider(cfg.LLMProvider) {
	case llm.ProviderAnthropic:
		return cfg.AnthropicKey
	case llm.ProviderGemini:
		return cfg.GeminiAPIKey
	default:
		return cfg.OpenAIAPIKey
	}
}
