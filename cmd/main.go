package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/mediarelay/internal/delivery"
	ws "github.com/Vovarama1992/mediarelay/internal/delivery/ws"
	"github.com/Vovarama1992/mediarelay/internal/domain"
	"github.com/Vovarama1992/mediarelay/internal/infra"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {

	// LOGGER
	zcore, _ := zap.NewProduction()
	zl := logger.NewZapLogger(zcore.Sugar())

	// ENV
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	publicDir := os.Getenv("PUBLIC_DIR")
	if publicDir == "" {
		publicDir = "./data/public"
	}

	archiveDir := os.Getenv("ARCHIVE_DIR")
	if archiveDir == "" {
		archiveDir = "./data/archive"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		panic("DATABASE_URL is not set")
	}

	sweepInterval := durationEnv("SWEEP_INTERVAL", 5*time.Minute)
	fileMaxAge := durationEnv("FILE_MAX_AGE", 10*time.Minute)
	pendingTTL := durationEnv("PENDING_TTL", 15*time.Minute)

	// POSTGRES
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		panic("cannot connect pgxpool: " + err.Error())
	}
	defer pool.Close()

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctxPing); err != nil {
		panic("postgres ping failed: " + err.Error())
	}

	// BLOB STORE
	blobs, err := infra.NewLocalBlobStore(publicDir, archiveDir, baseURL)
	if err != nil {
		panic("cannot init blob store: " + err.Error())
	}

	// SERVICES
	uploads := infra.NewPostgresUploadRepo(pool)
	notifier := infra.NewWebhookNotifier(os.Getenv("NOTIFY_URL"))

	relay := domain.NewRelayService()

	lifecycle := domain.NewLifecycleManager(blobs, relay, uploads, notifier, domain.LifecycleConfig{
		SweepInterval: sweepInterval,
		FileMaxAge:    fileMaxAge,
		PendingTTL:    pendingTTL,
	})
	if err := lifecycle.Start(); err != nil {
		panic("cannot start lifecycle manager: " + err.Error())
	}
	defer lifecycle.Stop()

	// WS HUB
	hub := ws.NewHub()

	// BROADCAST LISTENER
	go func() {
		for msg := range relay.Broadcasts() {
			payload, err := ws.EncodeNewMessage(msg)
			if err != nil {
				log.Printf("[SEND][ERR] json marshal failed: %v", err)
				continue
			}
			hub.Broadcast(payload)
		}
	}()

	// UPLOAD REQUEST LISTENER
	go func() {
		for req := range relay.UploadRequests() {
			hub.SendTo(req.ClientID, ws.EncodeUploadRequest(req.Key))
		}
	}()

	// HANDLERS
	hUpload := delivery.NewUploadHandler(blobs, uploads, relay, zl)
	hAdmin := delivery.NewAdminHandler(blobs, uploads, notifier, zl)

	// ROUTER
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))

	delivery.RegisterRoutes(r, hUpload, hAdmin)

	r.Get("/ws", ws.WSHandler(hub, relay, notifier))

	// public area only; the archive dir is never routed
	r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(publicDir))))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "server started",
		Fields:  map[string]any{"port": port},
	})

	if err := http.ListenAndServe(":"+port, r); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "server crashed",
			Error:   err,
		})
	}
}

func durationEnv(name string, def time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("WARN: invalid %s=%q, using %s", name, raw, def)
		return def
	}
	return d
}
