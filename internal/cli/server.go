package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quizzone/internal/app"
	"quizzone/internal/config"
	"quizzone/internal/domain"
	"quizzone/internal/i18n"
	"quizzone/internal/infra/filebank"
	"quizzone/internal/infra/memory"
	"quizzone/internal/infra/postgres"
	redisinfra "quizzone/internal/infra/redis"
	"quizzone/internal/quiz"
	transport "quizzone/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, newLogger(cfg, os.Stderr))
		},
	}
}

func runServer(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	locale := i18n.NormalizeLocale(cfg.Quiz.Locale)
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	var loader quiz.BankLoader
	if cfg.Quiz.DataDir != "" {
		loader = filebank.Dir(cfg.Quiz.DataDir, locale, log)
	} else {
		loader = filebank.Embedded(locale, log)
	}

	var history app.HistoryStore
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = postgres.NewBankLoader(pool, locale)

		db := postgres.OpenDB(cfg.Postgres.URL)
		defer db.Close()
		history = postgres.NewHistoryStore(db, cfg.Quiz.HistoryLimit)
		log.Info("using postgres for question banks and history")
	}

	var bankCache quiz.BankLoader
	var games app.GameRepository
	var snapshots app.SnapshotStore
	if redisClient != nil {
		bankCache = redisinfra.NewBankCache(redisClient, loader, locale, quizTTL)
		games = redisinfra.NewGameStore(redisClient, redisTTL)
		snapshots = redisinfra.NewSnapshotStore(redisClient, redisTTL)
		if history == nil {
			history = redisinfra.NewHistoryStore(redisClient, cfg.Quiz.HistoryLimit)
		}
		log.Info("using redis for caching and game state", "addr", cfg.Redis.Addr)
	} else {
		bankCache = memory.NewBankCache(loader, quizTTL)
		games = memory.NewGameStore()
		snapshots = memory.NewSnapshotStore()
		if history == nil {
			history = memory.NewHistoryStore(cfg.Quiz.HistoryLimit)
		}
	}

	difficulty := domain.Difficulty(cfg.Quiz.DefaultDifficulty)
	if !difficulty.Valid() {
		log.Warn("unknown default difficulty, using mixed", "difficulty", cfg.Quiz.DefaultDifficulty)
		difficulty = domain.DifficultyMixed
	}

	generator := quiz.NewGenerator(bankCache, cfg.Quiz.Themes, quiz.WithLogger(log))
	service := app.NewQuizService(games, generator,
		app.WithHistory(history),
		app.WithSnapshots(snapshots),
		app.WithPresenter(app.LogPresenter{Log: log}),
		app.WithLogger(log),
		app.WithHistoryLimit(cfg.Quiz.HistoryLimit),
		app.WithDefaults(domain.Settings{
			Theme:         domain.ThemeMixed,
			Difficulty:    difficulty,
			QuestionCount: cfg.Quiz.DefaultQuestionCount,
		}),
	)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      transport.NewRouter(service, generator.Themes(), cfg.Server.PublicURL, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting quiz server", "port", port, "locale", locale, "themes", len(cfg.Quiz.Themes))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	case err := <-serveErr:
		log.Error("server failed", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
