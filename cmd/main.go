// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"go_5_replay_keep/internal/blobstore"
	"go_5_replay_keep/internal/config"
	"go_5_replay_keep/internal/handlers"
	"go_5_replay_keep/internal/middleware"
	"go_5_replay_keep/internal/repository"
	"go_5_replay_keep/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	//　設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	// Configを読み込み
	if err := config.LoadConfig("../configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}
	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	log.Println("Log Config Loaded...")

	slog.SetDefault(logger)

	slog.Info("Application starting...")

	// 2. Initialize Database Connection (GORM)
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// メディアのブロブストア初期化
	store, err := blobstore.NewFileStore(config.Cfg.Media.Dir)
	if err != nil {
		slog.Error("Error initializing media store", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Dependency Injection
	collRepo := repository.NewGormCollectionRepository()
	vidRepo := repository.NewGormVideoRepository()
	plRepo := repository.NewGormPlaylistRepository()
	cpRepo := repository.NewGormCheckpointRepository()
	statsRepo := repository.NewGormPlayStatsRepository()
	licRepo := repository.NewGormLicenseRepository()

	schedulerService := service.NewSchedulerService(db, collRepo, vidRepo, plRepo, &config.Cfg)
	playlistService := service.NewPlaylistService(db, plRepo, schedulerService)
	trackerService := service.NewTrackerService(db, cpRepo, vidRepo, statsRepo)
	collectionService := service.NewCollectionService(db, collRepo, vidRepo, store)
	videoService := service.NewVideoService(db, vidRepo, collRepo, cpRepo, store)
	statsService := service.NewStatsService(db, collRepo, vidRepo, plRepo, statsRepo, schedulerService)
	licenseService := service.NewLicenseService(db, licRepo, &config.Cfg)

	collectionHandler := handlers.NewCollectionHandler(collectionService, logger)
	videoHandler := handlers.NewVideoHandler(videoService, logger)
	playlistHandler := handlers.NewPlaylistHandler(schedulerService, playlistService, logger)
	playbackHandler := handlers.NewPlaybackHandler(trackerService, logger)
	statsHandler := handlers.NewStatsHandler(statsService, logger)
	licenseHandler := handlers.NewLicenseHandler(licenseService, logger)

	// 4. Setup Router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewStructuredLogger(logger)) // slogを使うカスタムロガーミドルウェア

	// CORS 設定と適用 (設定ファイルから読み込んだ値を使用)
	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	corsHandler := cors.New(corsOptions)
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// --- Public routes (ライセンス状態の確認と有効化はゲートの外) ---
		r.Route("/license", func(r chi.Router) {
			r.Get("/", licenseHandler.GetStatus)
			r.Post("/activate", licenseHandler.PostActivate)
			r.Delete("/", licenseHandler.Deactivate)
		})

		// --- Protected routes (試用期間内または有効なライセンスが必要) ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.LicenseGateMiddleware(licenseService))

			// Collection routes
			r.Route("/collections", func(r chi.Router) {
				r.Post("/", collectionHandler.PostCollection)
				r.Get("/", collectionHandler.GetCollections)
				r.Get("/{collection_id}", collectionHandler.GetCollection)
				r.Put("/{collection_id}", collectionHandler.PutCollection)
				r.Post("/{collection_id}/toggle", collectionHandler.PostToggle)
				r.Delete("/{collection_id}", collectionHandler.DeleteCollection)
			})

			// Video routes
			r.Route("/videos", func(r chi.Router) {
				r.Post("/", videoHandler.PostVideo)
				r.Get("/", videoHandler.GetVideos)
				r.Get("/{video_id}", videoHandler.GetVideo)
				r.Patch("/{video_id}", videoHandler.PatchVideo)
				r.Delete("/{video_id}", videoHandler.DeleteVideo)
				r.Get("/{video_id}/media", videoHandler.GetMedia)
			})

			// Playlist routes
			r.Route("/playlists", func(r chi.Router) {
				r.Get("/preview", playlistHandler.GetPreview)
				r.Post("/", playlistHandler.PostMaterialize)
				r.Get("/today", playlistHandler.GetTodayUnfinished)
				r.Get("/history", playlistHandler.GetHistory)
				r.Get("/{playlist_id}", playlistHandler.GetPlaylist)
				r.Put("/{playlist_id}/cursor", playlistHandler.PutCursor)
				r.Post("/{playlist_id}/complete", playlistHandler.PostComplete)
			})

			// Playback routes
			r.Route("/playback", func(r chi.Router) {
				r.Get("/checkpoints", playbackHandler.GetCheckpoints)
				r.Get("/{video_id}/resume", playbackHandler.GetResume)
				r.Put("/{video_id}/checkpoint", playbackHandler.PutCheckpoint)
				r.Delete("/{video_id}/checkpoint", playbackHandler.DeleteCheckpoint)
				r.Post("/{video_id}/events", playbackHandler.PostEvent)
			})

			// Stats
			r.Get("/stats", statsHandler.GetStats)
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		// DB接続チェック
		ctx := r.Context()
		sqlDB, err := db.DB()
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not get DB object", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 5. Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
