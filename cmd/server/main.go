package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/prepgrid/prepgrid/internal/api/http"
	auth "github.com/prepgrid/prepgrid/internal/auth/middleware"
	"github.com/prepgrid/prepgrid/internal/config"
	"github.com/prepgrid/prepgrid/internal/db"
	"github.com/prepgrid/prepgrid/internal/question"
	"github.com/prepgrid/prepgrid/internal/quote"
	"github.com/prepgrid/prepgrid/internal/rbac"
	"github.com/prepgrid/prepgrid/internal/result"
	"github.com/prepgrid/prepgrid/internal/snapshot"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prepgrid/prepgrid/internal/quiz"
)

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// --- Relational DB (users, results, quotes, sql question bank) ---
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Question bank ---
	var questions question.Store
	switch cfg.QuestionBackend {
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("mongo connect failed: %v", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			log.Fatalf("mongo ping failed: %v", err)
		}
		questions = question.NewMongoStore(client, cfg.MongoDatabase)
	default:
		questions = question.NewSQLStore(dbh)
	}

	// --- Session snapshots ---
	var snaps quiz.SnapshotStore
	switch cfg.SnapshotBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis ping failed: %v", err)
		}
		snaps = snapshot.NewRedis(rdb, cfg.SnapshotTTL)
	default:
		snaps = snapshot.NewMemory()
	}

	results := result.NewSQLStore(dbh)
	quotes := quote.NewSQLStore(dbh)
	authSvc := auth.NewAuthService(cfg.AuthSecret)
	hub := api.NewSessionHub(question.NewSource(questions), results, snaps)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", api.RegisterHandler(dbh))
	r.Post("/auth/login", api.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh))

		pr.Get("/auth/me", api.MeHandler(dbh))

		pr.With(rbac.Require("question:view")).
			Get("/questions", api.ListQuestionsHandler(questions))
		pr.With(rbac.Require("question:view")).
			Get("/questions/{questionID}", api.GetQuestionHandler(questions))
		pr.With(rbac.Require("question:create")).
			Post("/questions", api.CreateQuestionsHandler(questions))
		pr.With(rbac.Require("question:update")).
			Put("/questions/{questionID}", api.UpdateQuestionHandler(questions))
		pr.With(rbac.Require("question:delete")).
			Delete("/questions", api.DeleteQuestionsHandler(questions))
		pr.With(rbac.Require("topics:view")).
			Get("/topics", api.TopicsHandler(questions))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes", api.QuizzesHandler(questions))

		// Quiz session flow
		pr.Route("/quiz", func(qr chi.Router) {
			qr.Use(rbac.Require("quiz:session"))
			qr.Post("/load", hub.LoadHandler())
			qr.Get("/", hub.StateHandler())
			qr.Post("/answer", hub.AnswerHandler())
			qr.Post("/bookmark", hub.BookmarkHandler())
			qr.Post("/review", hub.ReviewHandler())
			qr.Post("/start-test", hub.StartTestHandler())
			qr.Post("/submit", hub.SubmitHandler())
			qr.Post("/solution", hub.DetailedSolutionHandler())
			qr.Get("/report", hub.ReportHandler())
			qr.Post("/save", hub.SaveResultHandler())
			qr.Post("/reset", hub.ResetHandler())
			qr.Get("/notifications", hub.NotificationsHandler())
		})

		pr.With(rbac.Require("result:create")).
			Post("/test-results", api.SaveResultHandler(results))
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/test-results", api.ListMyResultsHandler(results))

		pr.With(rbac.Require("quote:view")).
			Get("/quotes/random", api.RandomQuoteHandler(quotes))
		pr.With(rbac.Require("quote:create")).
			Post("/quotes", api.CreateQuoteHandler(quotes))
		pr.With(rbac.Require("quote:delete")).
			Delete("/quotes/{quoteID}", api.DeleteQuoteHandler(quotes))

		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, questions=%s, snapshots=%s)",
		cfg.HTTPAddr, cfg.DBDriver, cfg.QuestionBackend, cfg.SnapshotBackend)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
