package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go/v7"

	"service-center/config"
	"service-center/handlers"
	_ "service-center/migrations"
	"service-center/models"
	"service-center/monitoring"
	"service-center/proxy"
	"service-center/security"
	"service-center/services"
	"service-center/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub for the cross-client sync channel. Nil when keys are
	// not configured; the sync bus then only dispatches locally.
	var pn *pubnub.PubNub
	if cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PubNubUserID))
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	monitor := monitoring.NewMonitor()
	connState := utils.NewConnState()
	settingsService := services.NewSettingsService(redisClient, cfg)
	notifier := services.NewNotifier(settingsService.WebhookURL, connState, monitor)
	syncService := services.NewSyncService(redisClient, pn, cfg, monitor)
	store := services.NewStore(redisClient, notifier, syncService, monitor)
	authService := services.NewAuthService(store, monitor)

	var extractor services.DraftExtractor
	if url := os.Getenv("EXTRACTOR_URL"); url != "" {
		extractor = services.NewWebhookDraftExtractor(url)
	}

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(app, store, extractor)
	technicianHandler := handlers.NewTechnicianHandler(app, store)
	sessionHandler := handlers.NewSessionHandler(app, authService, store)
	feedbackHandler := handlers.NewFeedbackHandler(app, store)
	settingsHandler := handlers.NewSettingsHandler(app, settingsService, syncService)
	sheetHandler := handlers.NewSheetHandler(app, settingsService, notifier)

	// Local proxy surface on its own listener
	limiter := security.NewRateLimiter(redisClient, cfg.ProxyRateLimit, cfg.ProxyRateInterval)
	proxyServer := proxy.NewServer(cfg, settingsService, limiter, monitor)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Start background tasks
	go syncService.Run(ctx)
	go notifier.RunHeartbeat(ctx, cfg)
	go func() {
		if err := proxyServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("proxy server stopped: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := proxyServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("proxy shutdown: %v", err)
		}
	}()

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		bootstrapTechnicians(app, store)

		if err := store.RestoreSession(context.Background()); err != nil {
			slog.Error("session restore failed", "error", err)
		}

		// Ticket endpoints
		e.Router.POST("/api/v1/tickets", ticketHandler.Create)
		e.Router.GET("/api/v1/tickets", ticketHandler.List)
		e.Router.GET("/api/v1/tickets/{id}", ticketHandler.Get)
		e.Router.PUT("/api/v1/tickets/{id}", ticketHandler.Update)
		e.Router.POST("/api/v1/tickets/{id}/reopen", ticketHandler.Reopen)
		e.Router.POST("/api/v1/tickets/{id}/escalate", ticketHandler.Escalate)
		e.Router.POST("/api/v1/tickets/extract", ticketHandler.Extract)

		// Technician endpoints
		e.Router.POST("/api/v1/technicians", technicianHandler.Create)
		e.Router.GET("/api/v1/technicians", technicianHandler.List)
		e.Router.PUT("/api/v1/technicians/{id}", technicianHandler.Update)
		e.Router.DELETE("/api/v1/technicians/{id}", technicianHandler.Delete)
		e.Router.POST("/api/v1/technicians/{id}/reset-points", technicianHandler.ResetPoints)
		e.Router.POST("/api/v1/attendance", technicianHandler.Attendance)

		// Feedback endpoints
		e.Router.POST("/api/v1/feedback", feedbackHandler.Create)
		e.Router.GET("/api/v1/feedback", feedbackHandler.List)

		// Session endpoints
		e.Router.POST("/api/v1/session/login", sessionHandler.Login)
		e.Router.POST("/api/v1/session/logout", sessionHandler.Logout)
		e.Router.GET("/api/v1/session", sessionHandler.Current)

		// Settings endpoints
		e.Router.GET("/api/v1/settings", settingsHandler.Get)
		e.Router.PUT("/api/v1/settings", settingsHandler.Update)

		// Sheet read-back
		e.Router.GET("/api/v1/sheets/{action}", sheetHandler.Rows)

		// Health check: redis plus the tri-state webhook connectivity
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}

			_ = notifier.HealthCheck(e.Request.Context(), cfg.HeartbeatClient)

			return e.JSON(200, map[string]any{
				"status":       "healthy",
				"webhook":      connState.State().String(),
				"last_checked": connState.LastChecked(),
			})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// bootstrapTechnicians loads the persisted roster into the in-memory store
// at serve time.
func bootstrapTechnicians(app *pocketbase.PocketBase, store *services.Store) {
	var records []dbx.NullStringMap
	if err := app.DB().NewQuery(
		"SELECT tech_id, name, phone, pin_hash, points FROM technicians",
	).All(&records); err != nil {
		log.Printf("Error loading technicians: %v", err)
		return
	}

	for _, record := range records {
		id := record["tech_id"].String
		if id == "" {
			continue
		}

		points, _ := strconv.Atoi(record["points"].String)
		store.LoadTechnician(&models.Technician{
			ID:      id,
			Name:    record["name"].String,
			Phone:   record["phone"].String,
			PINHash: record["pin_hash"].String,
			Points:  points,
		})
	}

	if len(records) > 0 {
		log.Printf("Loaded %d technicians from database", len(records))
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
