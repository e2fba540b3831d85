package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizmaster/internal/app"
	"quizmaster/internal/config"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/memory"
	pgstore "quizmaster/internal/infra/postgres"
	redisstore "quizmaster/internal/infra/redis"
	transport "quizmaster/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	// The demo bank doubles as the question loader when Postgres is absent.
	memBank := memory.NewQuestionBank(sampleQuestions()...)

	var loader memory.QuestionLoader = memBank
	if pool != nil {
		loader = pgstore.NewQuestionLoader(pool)
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = redisstore.NewQuestionRepository(redisClient, loader, quizTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, quizTTL)
	}

	var history interface {
		app.HistorySink
		transport.HistoryReader
	}
	if redisClient != nil {
		history = redisstore.NewHistoryStore(redisClient)
	} else {
		history = memory.NewHistoryStore()
	}

	var bank app.QuestionBank = memBank
	if pool != nil {
		bunDB, err := openBunDB(cfg)
		if err != nil {
			return err
		}
		defer bunDB.Close()
		bank = pgstore.NewQuestionBank(bunDB)
	}

	engine := app.NewEngine(questionRepo, history)
	tick := config.Duration(cfg.Quiz.TickInterval, app.DefaultTickInterval)
	timer := app.NewTimerDriver(tick)
	accounts := app.NewAccountService(memory.NewUserStore(), cfg.Admin.Key)
	bankService := app.NewBankService(bank)

	wsHandler := transport.NewWSHandler(engine, timer, cfg.Quiz.DefaultLimit)
	apiHandler := transport.NewAPIHandler(accounts, bankService, history)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizmaster on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions seeds the in-memory bank when no Postgres URL is
// configured; swap in the Postgres bank for real deployments.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID: "sci-1", Category: "Science", Title: "General Science", Type: domain.MultipleChoice,
			Prompt:  "What is the chemical symbol for water?",
			Options: []string{"H2O", "O2", "CO2", "H2"}, Answer: "A",
			Explanation: "Water is H2O.",
		},
		{
			ID: "sci-2", Category: "Science", Title: "General Science", Type: domain.MultipleChoice,
			Prompt:  "What planet is known as the Red Planet?",
			Options: []string{"Earth", "Mars", "Jupiter", "Venus"}, Answer: "B",
			Explanation: "Mars appears red due to iron oxide.",
		},
		{
			ID: "sci-3", Category: "Science", Title: "General Science", Type: domain.TrueFalse,
			Prompt: "The sun is a star.", Answer: "True",
			Explanation: "Yes, the Sun is a G-type main-sequence star.",
		},
		{
			ID: "geo-1", Category: "Geography", Title: "World Geography", Type: domain.MultipleChoice,
			Prompt:  "What is the capital of France?",
			Options: []string{"Berlin", "Madrid", "Paris", "Rome"}, Answer: "C",
		},
		{
			ID: "geo-2", Category: "Geography", Title: "World Geography", Type: domain.FillInBlank,
			Prompt: "Mount ____ is the highest mountain above sea level.", Answer: "Everest",
		},
		{
			ID: "hist-1", Category: "History", Title: "World History", Type: domain.MultipleChoice,
			Prompt:  "Who was the first President of the United States?",
			Options: []string{"Abraham Lincoln", "George Washington", "Thomas Jefferson", "John Adams"}, Answer: "B",
		},
	}
}
