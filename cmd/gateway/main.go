package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	api "github.com/mind-engage/mindengage-organizer/internal/api/http"
	auth "github.com/mind-engage/mindengage-organizer/internal/auth/middleware"
	"github.com/mind-engage/mindengage-organizer/internal/config"
	"github.com/mind-engage/mindengage-organizer/internal/db"
	"github.com/mind-engage/mindengage-organizer/internal/organizer"
	"github.com/mind-engage/mindengage-organizer/internal/question"
	rbac "github.com/mind-engage/mindengage-organizer/internal/rbac"
	syncx "github.com/mind-engage/mindengage-organizer/internal/sync"
)

func main() {
	cfg := config.FromEnv()
	logger := newLogger(cfg)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.WithError(err).Fatal("db open failed")
	}
	defer dbh.Close()
	store := question.NewSQLStore(dbh, cfg.DBDriver)
	events := syncx.NewEventRepo(dbh, cfg.SiteID)

	if cfg.SeedFile != "" {
		items, err := question.LoadSeed(cfg.SeedFile)
		if err != nil {
			logger.WithError(err).Fatal("load seed file")
		}
		if err := question.Seed(ctx, store, items); err != nil {
			logger.WithError(err).Fatal("seed questions")
		}
		logger.WithFields(logrus.Fields{"file": cfg.SeedFile, "questions": len(items)}).Info("seeded questions")
	}

	registry := organizer.NewRegistry(func() *organizer.Organizer {
		return organizer.New(organizer.Options{
			Store:           store,
			SaveConcurrency: cfg.SaveConcurrency,
			Events:          events,
			Log:             logrus.NewEntry(logger),
		})
	})

	// --- Auth (local JWT for offline/dev) ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.SaveTimeout + 10*time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, auth.LoginOptions{
			AdminUser:     cfg.AdminUser,
			AdminPassHash: cfg.AdminPassHash,
			AllowDevUsers: cfg.Mode == config.ModeOffline,
		}))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.RequireAny(rbac.PermQuestionsView, rbac.PermQuestionsOrganize)).
			Get("/containers/{containerID}/questions", api.ListQuestionsHandler(store))
		pr.With(rbac.Require(rbac.PermQuestionsOrganize)).
			Put("/questions/{questionID}", api.UpdateQuestionHandler(store))

		pr.With(rbac.Require(rbac.PermQuestionsOrganize)).Route("/organizer", func(or chi.Router) {
			api.MountOrganizer(or, registry, api.OrganizerOptions{
				SaveTimeout: cfg.SaveTimeout,
				Log:         logrus.NewEntry(logger).WithField("component", "organizer-api"),
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "mode": cfg.Mode, "db": cfg.DBDriver}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("http server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
	}
	logger.SetLevel(level)
	return logger
}
