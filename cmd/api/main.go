package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonbook/internal/auth"
	"salonbook/internal/cache"
	"salonbook/internal/clock"
	"salonbook/internal/config"
	"salonbook/internal/db"
	"salonbook/internal/directory"
	"salonbook/internal/flow"
	"salonbook/internal/handlers"
	"salonbook/internal/middleware"
	"salonbook/internal/notifications"
	"salonbook/internal/persist"
	"salonbook/internal/store"
	"salonbook/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected")
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if cfg.RedisURL != "" {
			logger.Info("redis connected (url)")
		} else {
			logger.Info("redis connected", slog.String("addr", cfg.RedisAddr))
		}
		cacheStore = redisCache
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
			Issuer:     "salonbook",
		}
	}

	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	}

	appClock := clock.New(cfg.Timezone)
	dir := directory.NewRepository(cols.Staff, cols.Services)

	snapshots := persist.NewMongo(cols.Snapshots)
	bookingStore := store.New(snapshots, logger, cfg.Timezone)
	bookingStore.Load(ctx)
	logger.Info("booking store loaded",
		slog.Int("appointments", len(bookingStore.Appointments())),
	)

	flowManager := flow.NewManager(time.Duration(cfg.SessionIdleMinutes) * time.Minute)
	committer := &flow.Committer{
		Store: bookingStore,
		Dir:   dir,
		Clock: appClock,
		Log:   logger,
	}

	server := &handlers.Server{
		Cfg:       cfg,
		Dir:       dir,
		Store:     bookingStore,
		Flow:      flowManager,
		Committer: committer,
		Clock:     appClock,
		Val:       validation.New(),
		Log:       logger,
		Cache:     cacheStore,
		Mailer:    brevoOrNil(mailer),
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	bookingLimiter := middleware.NewRateLimiter(cfg.RateLimitBooking, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	sessionLimiter := middleware.NewRateLimiter(cfg.RateLimitSessions, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	r.Route("/api", func(api chi.Router) {
		api.Get("/staff", server.GetStaff)
		api.Get("/services", server.GetServices)
		api.Get("/availability", server.GetAvailability)
		api.Get("/calendar/day", server.GetDaySchedule)
		api.Get("/calendar/month", server.GetMonthOverview)

		api.With(sessionLimiter.Middleware).Post("/flow", server.CreateFlow)
		api.Route("/flow/{id}", func(fr chi.Router) {
			fr.Get("/", server.GetFlow)
			fr.Post("/select", server.ApplySelection)
			fr.Post("/back", server.FlowBack)
			fr.Post("/goto", server.GoToStep)
			fr.Post("/reset", server.ResetFlow)
			fr.With(bookingLimiter.Middleware).Post("/commit", server.CommitFlow)
			fr.Delete("/", server.CancelFlow)
		})

		api.Get("/appointments/{id}", server.GetAppointment)
		api.Patch("/appointments/{id}/move", server.MoveAppointment)

		api.Route("/admin", func(admin chi.Router) {
			admin.Post("/login", server.AdminLogin)
			admin.Post("/refresh", server.AdminRefresh)
			admin.Post("/logout", server.AdminLogout)

			// Important (chi): middlewares must be attached before defining routes.
			// Login/refresh/logout stay public; the rest goes through a sub-router.
			admin.Group(func(protected chi.Router) {
				protected.Use(middleware.AdminAuth(cfg.AdminAPIKey, jwtManager))
				protected.Get("/appointments", server.AdminListAppointments)
				protected.Patch("/appointments/{id}/status", server.AdminUpdateAppointmentStatus)
				protected.Delete("/appointments/{id}", server.AdminDeleteAppointment)
				protected.Get("/waitlist", server.AdminListWaitlist)
				protected.Patch("/waitlist/{id}", server.AdminUpdateWaitlist)
				protected.Post("/staff", server.AdminUpsertStaff)
				protected.Post("/services", server.AdminUpsertService)
			})
		})
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}

// brevoOrNil keeps the Server's mailer a true nil interface when the client
// is disabled; a typed nil would dodge the handlers' nil checks.
func brevoOrNil(c *notifications.BrevoClient) handlers.BookingMailer {
	if c == nil {
		return nil
	}
	return c
}
