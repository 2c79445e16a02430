package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aikata-dev/aikata/pkg/agent"
	"github.com/aikata-dev/aikata/pkg/chains"
	"github.com/aikata-dev/aikata/pkg/config"
	"github.com/aikata-dev/aikata/pkg/gateway"
	"github.com/aikata-dev/aikata/pkg/health"
	"github.com/aikata-dev/aikata/pkg/logger"
	"github.com/aikata-dev/aikata/pkg/providers"
	"github.com/aikata-dev/aikata/pkg/room"
	"github.com/aikata-dev/aikata/pkg/tools"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.InfoCF("main", "config loaded", map[string]interface{}{"path": *configPath})

	registry := room.NewRegistry(time.Duration(cfg.Rooms.TimeoutMinutes) * time.Minute)

	janitor, err := room.NewJanitor(registry, cfg.Rooms.CleanupCron)
	if err != nil {
		log.Fatalf("Invalid janitor schedule: %v", err)
	}

	chatProvider := providers.CreateProvider(cfg.Agent.Provider, cfg)
	chainProvider := providers.CreateProvider(cfg.Chains.Provider, cfg)
	generator := chains.NewGenerator(chainProvider, cfg.Chains.PlanModel, cfg.Chains.SummaryModel, cfg.Chains.MaxTokens)

	factory := func(rm *room.Room, send tools.SendFunc) *agent.Loop {
		registry := tools.NewRegistry()
		wait := tools.NewWaitTool(rm, cfg.Tools.WaitMaxMinutes)
		registry.Register(tools.NewReplyMessageTool(rm, send))
		registry.Register(tools.NewReplyMessageWithStampTool(rm, send))
		registry.Register(wait)
		registry.Register(tools.NewPlanActionTool(rm, generator, send))
		registry.Register(tools.NewSaveResultTool(rm, generator, send))
		registry.Register(tools.NewFinishTool())
		registry.Register(tools.NewGoNextTool())

		flags := agent.NewFlags(cfg.Flags.Names)
		builder := agent.NewPromptBuilderForRoom(rm, wait.WaitingInfo)

		return agent.NewLoop(rm, registry, wait, flags, builder, agent.Options{
			Provider:    chatProvider,
			Model:       cfg.Agent.Model,
			MaxTokens:   cfg.Agent.MaxTokens,
			Temperature: cfg.Agent.Temperature,
		})
	}

	server := gateway.NewServer(registry, factory, cfg.Goals.Goals, cfg.Goals.CommonRule)

	checker := health.NewChecker()
	checker.Register("llm", health.LLMEndpointCheck(cfg.Provider(cfg.Agent.Provider).APIBase, 3*time.Second))

	mux := http.NewServeMux()
	server.Routes(mux)
	mux.HandleFunc("/health", checker.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go janitor.Start(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.InfoCF("main", "starting aikata server", map[string]interface{}{"addr": addr})
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("AIKATA_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return home + "/.aikata/config.json"
}
