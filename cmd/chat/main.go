// Package main is a terminal chat client for the reservation assistant.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/smilecare-ai/reservation-assistant/internal/app"
	"github.com/smilecare-ai/reservation-assistant/internal/config"
	"github.com/smilecare-ai/reservation-assistant/internal/model"
	"github.com/smilecare-ai/reservation-assistant/internal/service"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
)

type chatOptions struct {
	dentists string
	policy   string
	provider string
	model    string
	verbose  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "reservation-chat",
		Short: "Talk to the dental reservation assistant from a terminal",
		Long: `reservation-chat runs the reservation assistant in a local session.

Configuration is read from the environment (and .env) exactly like the API
server. Type "exit" or press Ctrl-D to leave.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runChat(ctx, opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.dentists, "dentists", "", "Dentist roster file (JSON or YAML), overrides DENTISTS_FILE")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "Title policy: strict or permissive, overrides TITLE_POLICY")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider: openai, anthropic or gemini")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name, overrides LLM_MODEL")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show tool activity and debug logs")

	return cmd
}

func runChat(ctx context.Context, opts *chatOptions, in io.Reader, out, errOut io.Writer) error {
	cfg := config.Load()
	if opts.dentists != "" {
		cfg.DentistsFile = opts.dentists
	}
	if opts.policy != "" {
		cfg.TitlePolicy = strings.ToLower(opts.policy)
	}
	if opts.provider != "" {
		cfg.LLMProvider = strings.ToLower(opts.provider)
	}
	if opts.model != "" {
		cfg.LLMModel = opts.model
	}

	log := logger.NewNop()
	if opts.verbose {
		dev, err := logger.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		log = dev
	}
	defer log.Sync()

	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer components.Close()

	transcript := model.NewTranscript(uuid.NewString())
	turnOpts := []service.TurnOption{}
	if opts.verbose {
		turnOpts = append(turnOpts, service.WithObserver(func(ev model.TurnEvent) {
			switch ev.Type {
			case model.TurnEventToolCall:
				fmt.Fprintf(errOut, "  [round %d] calling %s\n", ev.Round, ev.ToolName)
			case model.TurnEventToolResult:
				fmt.Fprintf(errOut, "  [round %d] %s -> %s\n", ev.Round, ev.ToolName, ev.Outcome)
			}
		}))
	}

	fmt.Fprintf(out, "Connected to %s. How can I help you today?\n", cfg.ClinicName)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		reply, err := components.Assistant.HandleUserTurn(ctx, text, transcript, turnOpts...)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			reply = service.FallbackReply(err)
			if opts.verbose {
				fmt.Fprintf(errOut, "  turn failed: %v\n", err)
			}
		}
		fmt.Fprintf(out, "%s\n", reply)
	}
}
