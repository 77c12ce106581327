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

	"nusantara-quiz-service/internal/app"
	"nusantara-quiz-service/internal/config"
	"nusantara-quiz-service/internal/domain"
	"nusantara-quiz-service/internal/infra/memory"
	pgstore "nusantara-quiz-service/internal/infra/postgres"
	redisstore "nusantara-quiz-service/internal/infra/redis"
	transport "nusantara-quiz-service/internal/transport/http"
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

	loc := config.Location(cfg.Quiz.Timezone)
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	var catalog app.QuizCatalog
	var source memory.QuestionSource
	var attemptStore app.AttemptStore
	if pool != nil {
		catalog = pgstore.NewCatalog(pool)
		source = pgstore.NewQuestionBank(pool)
		attemptStore = pgstore.NewAttemptStore(pool)
	} else {
		// Database-less demo mode with static fixtures.
		catalog = memory.NewCatalog(sampleQuizzes(loc))
		source = memory.NewStaticQuestionSource(sampleQuestions())
		attemptStore = memory.NewAttemptStore()
	}

	var bank app.QuestionBank
	if redisClient != nil {
		bank = redisstore.NewQuestionBank(redisClient, source, quizTTL)
	} else {
		bank = memory.NewQuestionBank(source, quizTTL)
	}

	tracker := app.NewAttemptTracker(attemptStore, loc)
	queryService := app.NewQueryService(catalog, bank, tracker)
	quizService := app.NewQuizService(catalog, bank, tracker)

	handler := transport.NewHandler(queryService, quizService)
	wsHandler := transport.NewWSHandler(queryService, quizService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/quiz/daily", handler.DailyQuiz)
	mux.HandleFunc("/api/quiz/province/", handler.ProvinceQuiz)
	mux.HandleFunc("/api/quiz/submit", handler.Submit)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
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

// sampleQuizzes provides a minimal catalog for running without Postgres: one
// daily quiz scheduled for today and one province quiz.
func sampleQuizzes(loc *time.Location) []domain.Quiz {
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return []domain.Quiz{
		{
			ID:          "quiz-daily-1",
			Title:       "Kuis Budaya Harian",
			Category:    domain.CategoryDaily,
			ScheduledOn: &today,
			CreatedAt:   today,
		},
		{
			ID:         "quiz-jabar-1",
			Title:      "Kuis Budaya Jawa Barat",
			Category:   domain.CategoryProvince,
			ProvinceID: "jawa-barat",
			CreatedAt:  today,
		},
	}
}

func sampleQuestions() map[string][]domain.Question {
	return map[string][]domain.Question{
		"quiz-daily-1": {
			domain.MultipleChoiceQuestion{
				QuestionBase: domain.QuestionBase{ID: "q1", QuizID: "quiz-daily-1", Text: "Pakaian adat dari Jawa Barat adalah?", Points: 1},
				Options: []domain.Option{
					{ID: "o1", Text: "Kebaya Sunda", Correct: true},
					{ID: "o2", Text: "Ulos", Correct: false},
					{ID: "o3", Text: "Baju Bodo", Correct: false},
				},
			},
			domain.ShortAnswerQuestion{
				QuestionBase: domain.QuestionBase{ID: "q2", QuizID: "quiz-daily-1", Text: "Ibu kota provinsi Jawa Timur?", Points: 1},
				AnswerKeys:   []string{"Surabaya"},
			},
			domain.MatchingQuestion{
				QuestionBase: domain.QuestionBase{ID: "q3", QuizID: "quiz-daily-1", Text: "Jodohkan tarian dengan provinsinya", Points: 2},
				Pairs: []domain.MatchingPair{
					{ID: "p1", Left: "Tari Saman", Right: "Aceh"},
					{ID: "p2", Left: "Tari Kecak", Right: "Bali"},
				},
			},
		},
		"quiz-jabar-1": {
			domain.MultipleChoiceQuestion{
				QuestionBase: domain.QuestionBase{ID: "q4", QuizID: "quiz-jabar-1", Text: "Alat musik khas Jawa Barat?", Points: 1},
				Options: []domain.Option{
					{ID: "o1", Text: "Angklung", Correct: true},
					{ID: "o2", Text: "Sasando", Correct: false},
				},
			},
		},
	}
}
