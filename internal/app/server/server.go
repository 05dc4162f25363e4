package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/attendance"
	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/core"
	"workforce/internal/domain/leave"
	"workforce/internal/domain/salary"
	"workforce/internal/domain/shift"
	"workforce/internal/platform/config"
	cryptoutil "workforce/internal/platform/crypto"
	"workforce/internal/platform/db"
	"workforce/internal/platform/email"
	"workforce/internal/platform/jobs"
	"workforce/internal/platform/metrics"
	"workforce/internal/transport/http/api"
	attendancehandler "workforce/internal/transport/http/handlers/attendance"
	audithandler "workforce/internal/transport/http/handlers/audit"
	authhandler "workforce/internal/transport/http/handlers/auth"
	corehandler "workforce/internal/transport/http/handlers/core"
	leavehandler "workforce/internal/transport/http/handlers/leave"
	salaryhandler "workforce/internal/transport/http/handlers/salary"
	shifthandler "workforce/internal/transport/http/handlers/shift"
	"workforce/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("timezone load failed: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("encryption key invalid: %v", err)
	}

	collector := metrics.New()
	mailer := email.New(cfg)
	auditor := audit.New(pool)

	coreStore := core.NewStore(pool)
	shiftStore := shift.NewStore(pool)
	authStore := auth.NewStore(pool)

	attendanceSvc := attendance.NewService(attendance.NewStore(pool), loc)
	salarySvc := salary.NewService(salary.NewStore(pool), coreStore, cryptoSvc, cfg.PayslipDir, loc)
	leaveSvc := leave.NewService(pool, attendanceSvc)

	jobRunner := jobs.New(pool, cfg, salarySvc, mailer, loc)
	jobRunner.Start(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(1 << 20))
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))
	router.Use(middleware.SensitiveMutationRateLimit(40, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireRole(auth.RoleAdmin)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(pool, cfg.JWTSecret, cfg.SessionTTL, mailer, cfg.EmailFrom, cfg.ResetBaseURL)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/auth/request-reset", authHandler.HandleRequestReset)
		r.Post("/auth/reset", authHandler.HandleResetPassword)

		corehandler.NewHandler(coreStore, auditor).RegisterRoutes(r)
		shifthandler.NewHandler(shiftStore, coreStore, auditor).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceSvc, collector).RegisterRoutes(r)
		salaryhandler.NewHandler(salarySvc, pool, auditor, collector).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc, auditor).RegisterRoutes(r)
		audithandler.NewHandler(auditor).RegisterRoutes(r)
	})

	log.Printf("workforce server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
