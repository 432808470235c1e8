package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"gopkg.in/natefinch/lumberjack.v2"
	_ "modernc.org/sqlite"

	"wellatlas/internal/auth"
	"wellatlas/internal/config"
	"wellatlas/internal/handler"
	"wellatlas/internal/preview"
	"wellatlas/internal/repository"
	"wellatlas/internal/service"
	"wellatlas/internal/service/s3"
	"wellatlas/internal/storage"
)

func runMigrations(dbPath string) error {
	m, err := migrate.New("file://migrations", "sqlite://"+dbPath)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		log.Printf("Found dirty database state at version %d, attempting to force version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func main() {
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if appConfig.Server.LogFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   appConfig.Server.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	if err := os.MkdirAll(appConfig.Storage.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}

	dbPath := appConfig.Storage.DatabasePath()
	db, err := sqlx.Connect("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// SQLite serializes writers; a single connection avoids lock errors
	// under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := runMigrations(dbPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	fileStore, err := storage.NewFileStore(appConfig.Storage.UploadDir())
	if err != nil {
		log.Fatalf("Failed to create file store: %v", err)
	}

	authConfig, err := auth.NewConfig(".auth.env")
	if err != nil {
		log.Fatalf("Failed to load auth config: %v", err)
	}
	auth.Init(authConfig)

	// The remote backup target is optional. Without S3 credentials the
	// app still runs and serves local backup downloads.
	var remote service.RemoteStorage
	if s3Config, err := s3.NewConfig(".s3.env"); err != nil {
		log.Printf("Remote backup disabled: %v", err)
	} else if s3Client, err := s3.NewClient(s3Config); err != nil {
		log.Printf("Remote backup disabled: %v", err)
	} else {
		remote = s3Client
	}

	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	shareRepo := repository.NewShareLinkRepository(db)

	userService := service.NewUserService(userRepo, authConfig)
	customerService := service.NewCustomerService(customerRepo, siteRepo)
	siteService := service.NewSiteService(siteRepo, customerRepo, entryRepo)
	entryService := service.NewEntryService(entryRepo, siteRepo, fileStore)
	shareService := service.NewShareService(shareRepo, siteRepo, entryRepo)
	backupService := service.NewBackupService(appConfig.Storage.DataDir, dbPath, fileStore, remote)
	videoService, err := service.NewVideoService(fileStore, appConfig.Storage.VideoDir)
	if err != nil {
		log.Fatalf("Failed to create video service: %v", err)
	}
	previewService, err := preview.NewService(fileStore, filepath.Join(appConfig.Storage.VideoDir, "previews"))
	if err != nil {
		log.Fatalf("Failed to create preview service: %v", err)
	}

	authHandler := handler.NewAuthHandler(userService)
	customerHandler := handler.NewCustomerHandler(customerService)
	siteHandler := handler.NewSiteHandler(siteService)
	entryHandler := handler.NewEntryHandler(entryService, videoService)
	shareHandler := handler.NewShareHandler(shareService, entryService)
	backupHandler := handler.NewBackupHandler(backupService)
	previewHandler := preview.NewHandler(previewService, entryService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Ping(); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Anonymous share surface. Every failure is a plain 404.
	r.Route("/share", func(r chi.Router) {
		r.Get("/site/{id}", shareHandler.SharedSite)
		r.Get("/site/{id}/day/{date}", shareHandler.SharedDay)
		r.Get("/file/{token}/{fileID}", shareHandler.SharedFile)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Post("/customers", customerHandler.Create)
			r.Get("/customers", customerHandler.List)
			r.Get("/customers/{id}", customerHandler.Get)
			r.Get("/customers/{id}/sites", customerHandler.Sites)

			r.Get("/sites/search", siteHandler.Search)
			r.Get("/sites/pins", siteHandler.Pins)
			r.Get("/sites/deleted", siteHandler.ListDeleted)
			r.Post("/sites", siteHandler.Create)

			r.Route("/sites/{id}", func(r chi.Router) {
				r.Get("/", siteHandler.Get)
				r.Delete("/", siteHandler.Delete)
				r.Post("/restore", siteHandler.Restore)
				r.Post("/entries", entryHandler.Create)
				r.Post("/shares", shareHandler.Create)
				r.Get("/shares", shareHandler.ListForSite)
			})

			r.Post("/shares/{id}/revoke", shareHandler.Revoke)

			r.Route("/files/{id}", func(r chi.Router) {
				r.Get("/", entryHandler.DownloadFile)
				r.Put("/comment", entryHandler.UpdateFileComment)
				r.Get("/preview", previewHandler.GetPreview)
			})

			r.Route("/videos/{id}", func(r chi.Router) {
				r.Get("/playlist.m3u8", entryHandler.StreamVideo)
				r.Get("/{segment}", entryHandler.VideoSegment)
			})

			r.Get("/backup", backupHandler.Download)
			r.Post("/backup/push", backupHandler.Push)
		})
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server forced to shutdown: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	}

	log.Println("Server exited properly")
}
