package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/smartvoting/backend/docs"
	"github.com/smartvoting/backend/internal/audit"
	"github.com/smartvoting/backend/internal/config"
	"github.com/smartvoting/backend/internal/database"
	"github.com/smartvoting/backend/internal/face/dlib"
	"github.com/smartvoting/backend/internal/handlers"
	mW "github.com/smartvoting/backend/internal/middleware"
	"github.com/smartvoting/backend/internal/services"
	"github.com/smartvoting/backend/internal/session"
	"github.com/smartvoting/backend/internal/sms"
	"github.com/smartvoting/backend/internal/storage"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Smart Voting API
// @version 1.0
// @description Voter registration, face verification and ballot casting
// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	cfg := config.Load()

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "Smart Voting API"
	docs.SwaggerInfo.Description = "Voter registration, face verification and ballot casting"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Initialize storage
	db := database.InitDatabase()
	defer db.Close()

	redisClient, err := database.InitRedis(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisClient.Close()

	docStore, err := storage.NewDocumentStore(cfg.Uploads.IDDir, cfg.Uploads.AadhaarDir, cfg.Uploads.PhotoDir, cfg.Uploads.SymbolDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload directories: %v", err)
	}

	recognizer, err := dlib.New(cfg.Face.ModelsDir)
	if err != nil {
		log.Fatalf("Failed to initialize face recognizer: %v", err)
	}
	defer recognizer.Close()

	sessions, err := session.NewManager(session.NewRedisStore(redisClient), session.Config{
		SecretKey:    cfg.Session.SecretKey,
		TTL:          cfg.Session.TTL,
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
	})
	if err != nil {
		log.Fatalf("Failed to initialize sessions: %v", err)
	}

	if cfg.Admin.PasswordHash == "" {
		log.Println("Warning: ADMIN_PASSWORD_HASH is not set, admin login is disabled")
	}

	smsClient := sms.NewTwoFactorClient(sms.Config{
		APIKey:      cfg.SMS.APIKey,
		BaseURL:     cfg.SMS.BaseURL,
		Template:    cfg.SMS.Template,
		CountryCode: cfg.SMS.CountryCode,
		Timeout:     cfg.SMS.Timeout,
	})
	auditLogger := audit.NewAuditLogger()

	// Initialize services
	voterService := services.NewVoterService(db, docStore, auditLogger)
	captchaService, err := services.NewCaptchaService(sessions.Store(), cfg.Captcha.TTL)
	if err != nil {
		log.Fatalf("Failed to initialize captcha: %v", err)
	}
	registrationService := services.NewRegistrationService(voterService, docStore, captchaService, smsClient, auditLogger)
	faceService := services.NewFaceService(db, voterService, docStore, recognizer, cfg.Face.Tolerance, auditLogger)
	ballotService := services.NewBallotService(db, auditLogger)
	adminService := services.NewAdminService(cfg.Admin, cfg.Argon2, voterService, ballotService)
	qrService := services.NewQRService()

	routes := handlers.Routes{
		Voters:   handlers.NewVoterHandler(registrationService, voterService, faceService, captchaService, qrService, sessions, cfg.Uploads.MaxBytes),
		Ballots:  handlers.NewBallotHandler(faceService, ballotService, sessions),
		Admin:    handlers.NewAdminHandler(adminService, voterService, ballotService, sessions),
		Sessions: sessions,
		Docs:     docStore,
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(mW.MaxBody(cfg.Uploads.MaxBytes))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	routes.Mount(r)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Sweep.AbandonAfter > 0 {
		go sweepAbandoned(sweepCtx, voterService, cfg.Sweep)
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}

// sweepAbandoned periodically removes registrations that never enrolled a face.
func sweepAbandoned(ctx context.Context, voters *services.VoterService, cfg config.SweepConfig) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := voters.PurgeAbandoned(ctx, time.Now().Add(-cfg.AbandonAfter)); err != nil {
				log.Printf("[SWEEP] Failed to purge abandoned registrations: %v", err)
			}
		}
	}
}
