package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"smart-lights/config"
	"smart-lights/internal/application"
	"smart-lights/internal/infra/anthropic"
	"smart-lights/internal/infra/input"
	"smart-lights/internal/infra/metrics"
	"smart-lights/internal/infra/openai"
	"smart-lights/internal/infra/pushover"
	"smart-lights/internal/infra/smartthings"
	"smart-lights/internal/infra/topology"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	command := flag.String("command", "", "run a single command and exit")
	once := flag.Bool("once", false, "read one command from stdin and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if *once {
		cfg.Input.Once = true
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	assistant, err := buildAssistant(cfg, logger)
	if err != nil {
		logger.Error("building assistant", "error", err)
		os.Exit(1)
	}

	if *command != "" {
		answer, err := assistant.Handle(ctx, *command)
		if err != nil {
			logger.Error("command failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(answer)
		return
	}

	if err := assistant.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("assistant error", "error", err)
		os.Exit(1)
	}
}

// buildAssistant wires the topology, device client, tool registry, planner,
// notifier and command source described by cfg.
func buildAssistant(cfg *config.Config, logger *slog.Logger) (*application.Assistant, error) {
	topo, err := topology.Load(cfg.Topology.Path)
	if err != nil {
		return nil, fmt.Errorf("loading topology: %w", err)
	}

	prom := metrics.NewPrometheus()

	var devices application.DeviceService
	if cfg.SmartThings.BaseURL != "" {
		devices = smartthings.NewClientWithURL(cfg.SmartThings.Token, cfg.SmartThings.BaseURL)
	} else {
		devices = smartthings.NewClient(cfg.SmartThings.Token)
	}

	dispatcher := application.NewDispatcher(topo, devices, prom, logger)

	tools, err := application.NewToolRegistry(dispatcher, cfg.Topology.Layout, prom, logger)
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	planner := application.NewPlanner(
		createModelClient(cfg.Model),
		tools,
		application.PlannerConfig{
			SystemPrompt: cfg.Planner.SystemPrompt,
			MaxTurns:     cfg.Planner.MaxTurns,
		},
		prom,
		logger,
	)

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey, cfg.Pushover.Title)
	} else {
		notifier = &application.NoopNotifier{}
	}

	source := createCommandSource(cfg.Input, prom.Handler(), logger)

	logger.Info("starting smart lights assistant",
		"provider", cfg.Model.Provider,
		"lights", topo.Len(),
		"input_source", source.Name(),
	)

	return application.NewAssistant(source, planner, notifier, logger), nil
}

func createModelClient(cfg config.ModelConfig) application.ModelClient {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		if cfg.BaseURL != "" {
			return anthropic.NewClaudeClientWithURL(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxAttempts)
		}
		return anthropic.NewClaudeClient(cfg.APIKey, cfg.Model, cfg.MaxAttempts)
	default:
		if cfg.BaseURL != "" {
			return openai.NewResponsesClientWithURL(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxAttempts)
		}
		return openai.NewResponsesClient(cfg.APIKey, cfg.Model, cfg.MaxAttempts)
	}
}

func createCommandSource(cfg config.InputConfig, metricsHandler http.Handler, logger *slog.Logger) application.CommandSource {
	switch cfg.Source {
	case config.SourceHTTP:
		return input.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, metricsHandler, logger)
	default:
		return input.NewStdinSource(cfg.Once)
	}
}

// setupLogger writes to stderr so stdout carries only prompts and answers.
func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		})
	}

	return slog.New(handler)
}
