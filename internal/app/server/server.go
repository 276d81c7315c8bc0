package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"stempel/internal/domain/audit"
	"stempel/internal/domain/auth"
	"stempel/internal/domain/notifications"
	"stempel/internal/domain/staff"
	"stempel/internal/domain/timeclock"
	"stempel/internal/platform/config"
	"stempel/internal/platform/db"
	"stempel/internal/platform/email"
	"stempel/internal/platform/jobs"
	"stempel/internal/platform/metrics"
	"stempel/internal/transport/http/api"
	attendancehandler "stempel/internal/transport/http/handlers/attendance"
	audithandler "stempel/internal/transport/http/handlers/audit"
	authhandler "stempel/internal/transport/http/handlers/auth"
	notificationshandler "stempel/internal/transport/http/handlers/notifications"
	staffhandler "stempel/internal/transport/http/handlers/staff"
	terminalhandler "stempel/internal/transport/http/handlers/terminal"
	"stempel/internal/transport/http/middleware"
)

func Run() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			logger.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			logger.Error("seed failed", "error", err)
			os.Exit(1)
		}
	}

	authStore := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	collector := metrics.New()
	if !cfg.MetricsEnabled {
		collector = nil
	}

	timeclockSvc := timeclock.NewService(timeclock.NewStore(pool), logger)
	staffSvc := staff.NewService(staff.NewStore(pool))
	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom, logger)
	timeclockSvc.WithAlerts(auditSvc, notifySvc, authStore)

	jobSvc := jobs.New(pool, cfg, timeclockSvc, collector)
	jobSvc.Start(ctx)

	router := buildRouter(cfg, pool, logger, routerDeps{
		AuthStore: authStore,
		Audit:     auditSvc,
		Timeclock: timeclockSvc,
		Staff:     staffSvc,
		Notify:    notifySvc,
		Jobs:      jobSvc,
		Metrics:   collector,
	})

	logger.Info("attendance server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

type routerDeps struct {
	AuthStore *auth.Store
	Audit     *audit.Service
	Timeclock *timeclock.Service
	Staff     *staff.Service
	Notify    *notifications.Service
	Jobs      *jobs.Service
	Metrics   *metrics.Collector
}

type pinger interface {
	Ping(ctx context.Context) error
}

func buildRouter(cfg config.Config, pool pinger, logger *slog.Logger, deps routerDeps) http.Handler {
	perm := func(key string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(key, deps.AuthStore)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

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

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(deps.AuthStore, deps.Audit, cfg.JWTSecret)
		r.With(middleware.TerminalRateLimit(cfg.PinAttemptsPerMinute, time.Minute)).
			Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		terminalHandler := terminalhandler.NewHandler(deps.Timeclock, deps.Audit, deps.Metrics)
		r.Route("/terminal", func(r chi.Router) {
			r.Use(middleware.TerminalRateLimit(cfg.PinAttemptsPerMinute, time.Minute))
			r.With(perm(auth.PermTerminalUse)).Post("/clock-in", terminalHandler.HandleClockIn)
			r.With(perm(auth.PermTerminalUse)).Post("/clock-out", terminalHandler.HandleClockOut)
			r.With(perm(auth.PermAttendanceRead)).Get("/active", terminalHandler.HandleActive)
		})

		attendanceHandler := attendancehandler.NewHandler(deps.Timeclock, deps.Audit, deps.Notify, deps.AuthStore)
		r.Route("/attendance", func(r chi.Router) {
			r.With(perm(auth.PermAttendanceRead)).Get("/timesheets", attendanceHandler.HandleList)
			r.With(perm(auth.PermAttendanceRead)).Get("/timesheets/{timesheetID}", attendanceHandler.HandleGet)
			r.With(perm(auth.PermAttendanceEdit)).Put("/timesheets/{timesheetID}", attendanceHandler.HandleUpdate)
			r.With(perm(auth.PermAttendanceDelete)).Delete("/timesheets/{timesheetID}", attendanceHandler.HandleDelete)
			r.With(perm(auth.PermAttendanceRead)).Get("/summary", attendanceHandler.HandleSummary)
			r.With(perm(auth.PermAttendanceExport)).Get("/export", attendanceHandler.HandleExport)
			r.With(perm(auth.PermSettingsRead)).Get("/settings", attendanceHandler.HandleGetSettings)
			r.With(perm(auth.PermSettingsWrite)).Put("/settings", attendanceHandler.HandleUpdateSettings)
		})

		staffHandler := staffhandler.NewHandler(deps.Staff, deps.Audit)
		r.Route("/staff", func(r chi.Router) {
			r.With(perm(auth.PermStaffRead)).Get("/employees", staffHandler.HandleList)
			r.With(perm(auth.PermStaffWrite)).Post("/employees", staffHandler.HandleCreate)
			r.With(perm(auth.PermStaffWrite)).Put("/employees/{employeeID}", staffHandler.HandleUpdate)
			r.With(perm(auth.PermStaffWrite)).Post("/employees/{employeeID}/deactivate", staffHandler.HandleDeactivate)
		})

		auditHandler := audithandler.NewHandler(deps.Audit)
		r.With(perm(auth.PermAuditRead)).Get("/audit/events", auditHandler.HandleList)

		notificationsHandler := notificationshandler.NewHandler(deps.Notify)
		r.Route("/notifications", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", notificationsHandler.HandleList)
			r.Post("/{notificationID}/read", notificationsHandler.HandleMarkRead)
		})

		r.With(perm(auth.PermMetricsRead)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			requestID := middleware.GetRequestID(r.Context())
			if deps.Metrics == nil {
				api.Fail(w, http.StatusNotFound, "not_found", "metrics collection is disabled", requestID)
				return
			}
			api.Success(w, deps.Metrics.Snapshot(), requestID)
		})

		r.With(perm(auth.PermSettingsWrite)).Post("/jobs/auto-clock-out/run", func(w http.ResponseWriter, r *http.Request) {
			requestID := middleware.GetRequestID(r.Context())
			details, err := deps.Jobs.AutoClockOutNow(r.Context())
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "internal_error", "auto clock-out run failed", requestID)
				return
			}
			api.Success(w, details, requestID)
		})
	})

	return router
}
