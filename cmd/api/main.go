//	@title			Fileshelf API
//	@version		1.0
//	@description	Upload, list, download and delete files, plus a QR code for the last upload.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/fileshelf/service/internal/config"
	"github.com/fileshelf/service/internal/files"
	appMiddleware "github.com/fileshelf/service/internal/middleware"
	"github.com/fileshelf/service/internal/qrcode"
	"github.com/fileshelf/service/internal/storage"

	_ "github.com/fileshelf/service/docs/swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}
	setupLogging(cfg)

	store, err := storage.NewLocal(cfg.StorageRoot)
	if err != nil {
		logrus.Fatalf("storage init failed: %v", err)
	}
	if cfg.ClearOnStart {
		if err := store.DeleteAll(context.Background()); err != nil {
			logrus.Fatalf("clear storage failed: %v", err)
		}
		if err := store.Init(); err != nil {
			logrus.Fatalf("storage init failed: %v", err)
		}
	}

	// Wire dependencies: storage → service → handler
	fileSvc := files.NewService(store, qrcode.PNGEncoder{}, cfg.QRSize)
	fileHandler := files.NewHandler(fileSvc, cfg.PublicBaseURL, cfg.MaxUploadBytes)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	fileHandler.Routes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
		// Uploads and downloads stream whole files inside one request.
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logrus.WithFields(logrus.Fields{
			"port": cfg.Port,
			"env":  cfg.AppEnv,
			"root": store.Root(),
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	if cfg.QRTerminal {
		printBanner(cfg)
	}

	<-quit
	logrus.Info("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("forced shutdown: %v", err)
	}

	logrus.Info("server stopped")
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// printBanner shows a scannable link to the file listing on stdout.
func printBanner(cfg *config.Config) {
	base := cfg.PublicBaseURL
	if base == "" {
		base = "http://localhost:" + cfg.Port
	}
	link := base + "/files"
	logrus.WithField("url", link).Info("scan to open the file list")
	qrcode.PrintTerminal(os.Stdout, link)
}
