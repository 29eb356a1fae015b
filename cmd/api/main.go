package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/crucial707/blog-platform/internal/auth"
	"github.com/crucial707/blog-platform/internal/config"
	"github.com/crucial707/blog-platform/internal/db"
	"github.com/crucial707/blog-platform/internal/handlers"
	mw "github.com/crucial707/blog-platform/internal/middleware"
	"github.com/crucial707/blog-platform/internal/repo"
	"github.com/crucial707/blog-platform/internal/stats"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {

	// Load configuration
	cfg := config.Load()

	setupLogging(cfg.LogFormat)

	if cfg.Env == "prod" && cfg.JWTSecret == "supersecretkey" {
		log.Fatal("JWT_SECRET must be set to a non-default value in prod")
	}

	// Connect to database FIRST
	database, err := db.Connect(
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
		cfg.DBMaxOpenConns,
		cfg.DBMaxIdleConns,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	// Apply pending migrations
	if err := db.Run(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if cfg.SeedDemo {
		if err := db.Seed(database); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	// Background refresh of the posts gauge
	statsJob := stats.Run(repo.NewPostRepo(database))
	defer statsJob.Stop()

	r := newRouter(database, cfg)

	// Start server LAST
	addr := ":" + cfg.Port
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		slog.Info("starting server with TLS", "addr", addr)
		err = http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		slog.Info("starting server", "addr", addr)
		err = http.ListenAndServe(addr, r)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// setupLogging installs the default slog handler per LOG_FORMAT.
func setupLogging(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

// newRouter wires repositories, handlers, and the middleware chain.
// Split out from main so the integration tests can build the full router
// against a sqlmock-backed DB.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	userRepo := repo.NewUserRepo(database)
	postRepo := repo.NewPostRepo(database)
	auditRepo := repo.NewAuditRepo(database)

	expire := time.Duration(cfg.JWTExpireHours) * time.Hour
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	gateway := auth.NewGateway(cfg.JWTSecret, expire)

	authH := &handlers.AuthHandler{UserRepo: userRepo, Gateway: gateway}
	postH := &handlers.PostHandler{Repo: postRepo, Audit: auditRepo, OwnerOnly: cfg.OwnerOnlyMutations}
	auditH := &handlers.AuditHandler{Repo: auditRepo}

	useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.Recoverer)
	r.Use(mw.RequestLog)
	r.Use(mw.Prometheus)
	r.Use(mw.SecurityHeaders(useTLS))
	r.Use(mw.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.Ping(); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	loginLimiter := mw.LoginRateLimiter()
	r.Group(func(r chi.Router) {
		r.Use(loginLimiter.Middleware)
		r.Use(mw.MaxBytes(mw.DefaultMaxBodyBytes))
		r.Post("/api/login", authH.Login)
	})

	// Every listing and mutating post operation sits behind the token check.
	r.Group(func(r chi.Router) {
		r.Use(mw.Auth(gateway))
		r.Use(mw.MaxBytes(mw.DefaultMaxBodyBytes))
		r.Get("/api/posts", postH.ListPosts)
		r.Get("/api/posts/{id}", postH.GetPost)
		r.Post("/api/posts", postH.CreatePost)
		r.Put("/api/posts/{id}", postH.UpdatePost)
		r.Delete("/api/posts/{id}", postH.DeletePost)
		r.Get("/api/audit", auditH.ListAudit)
	})

	return r
}
