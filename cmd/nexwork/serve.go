package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nexwork/nexwork/internal/config"
	"github.com/nexwork/nexwork/internal/db"
	"github.com/nexwork/nexwork/internal/db/memory"
	"github.com/nexwork/nexwork/internal/evaluator"
	"github.com/nexwork/nexwork/internal/events"
	"github.com/nexwork/nexwork/internal/llm"
	"github.com/nexwork/nexwork/internal/screening"
	"github.com/nexwork/nexwork/internal/server"
	"github.com/nexwork/nexwork/internal/server/ratelimit"
	"github.com/nexwork/nexwork/internal/status"
)

var (
	serveConfigPath string
	servePort       int
	serveMemory     bool
	serveMigrate    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start the HTTP API together with the idle screening session sweeper.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to JSON config file (optional)")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "Keep all records in memory instead of PostgreSQL")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

// store is a record store the server can run on.
type store interface {
	server.Store
	Close()
}

// app holds the wired service and what must be released on exit.
type app struct {
	server  *server.Server
	sweeper *screening.Sweeper
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfigPath, func(c *config.Config) {
		if cmd.Flags().Changed("port") {
			c.Port = servePort
		}
		if serveMemory {
			c.UseMemoryStore = true
		}
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.server.Run(gctx) })
	g.Go(func() error { return a.sweeper.Run(gctx) })
	return g.Wait()
}

// buildApp wires the store, event bus, evaluators and orchestrator into a
// server. On error everything opened so far is closed.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, st.Close)

	bus, err := openBus(ctx, cfg, a)
	if err != nil {
		return nil, err
	}

	voice, coding, err := openEvaluators(ctx, cfg, a)
	if err != nil {
		return nil, err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}

	sessions := screening.NewSessionRegistry()
	orch := screening.New(screening.Options{
		Applications: st,
		Jobs:         st,
		Engine:       status.NewEngine(st, bus),
		Voice:        voice,
		Coding:       coding,
		Sessions:     sessions,
	})

	a.server = server.New(server.Config{Port: cfg.Port, CORSOrigins: cfg.CORSOrigins}, server.Deps{
		Store:     st,
		Screening: orch,
		Bus:       bus,
		JWT:       jwtConfig,
		Passwords: passwordConfig,
		RateLimit: ratelimit.LoadConfig(),
	})
	a.closers = append(a.closers, a.server.Close)
	a.sweeper = screening.NewSweeper(sessions, cfg.SessionSweepInterval.Std(), cfg.SessionIdleTimeout.Std())
	ok = true
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	if cfg.UseMemoryStore {
		log.Println("[store] Using in-memory store; records are lost on exit")
		return memory.New(), nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if serveMigrate {
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Println("[store] Schema applied")
	}
	return database, nil
}

func openBus(ctx context.Context, cfg *config.Config, a *app) (events.Bus, error) {
	if cfg.RedisURL == "" {
		return events.NewLocalBus(), nil
	}
	rdb, err := events.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	log.Printf("[events] Publishing status changes to Redis channel %q", events.Channel)
	return events.NewRedisBus(rdb), nil
}

func openEvaluators(ctx context.Context, cfg *config.Config, a *app) (screening.VoiceQuestionSource, screening.CodingTestSource, error) {
	bank, err := loadQuestionBank(cfg.QuestionBankPath)
	if err != nil {
		return nil, nil, err
	}

	if cfg.GeminiAPIKey == "" {
		log.Println("[evaluator] GEMINI_API_KEY not set; using static questions and graders")
		return evaluator.StaticVoiceQuestions{}, evaluator.CodingTest{QuestionBank: bank, CodeJudge: evaluator.StaticCodeJudge{}}, nil
	}

	client, err := llm.NewGeminiClient(ctx, llm.ConfigFromEnv(), cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	return evaluator.NewLLMVoiceSource(client),
		evaluator.CodingTest{QuestionBank: bank, CodeJudge: evaluator.NewLLMCodeJudge(client)},
		nil
}

func loadQuestionBank(path string) (*evaluator.QuestionBank, error) {
	if path == "" {
		return evaluator.DefaultQuestionBank()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	return evaluator.NewQuestionBank(data, nil)
}
