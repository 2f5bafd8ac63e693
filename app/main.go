package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/pressbox/internal/common"
	"github.com/sushihentaime/pressbox/internal/imageservice"
	"github.com/sushihentaime/pressbox/internal/postservice"
	"github.com/sushihentaime/pressbox/internal/userservice"
)

type application struct {
	config       *Config
	logger       *slog.Logger
	userService  *userservice.UserService
	postService  *postservice.PostService
	imageService *imageservice.ImageService
}

func main() {
	// Initialize the logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load the configuration
	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the database. The pool is the only shared resource; callers
	// queue for a connection once all 10 are busy.
	db, err := common.NewDB(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	// Initialize the services
	app := &application{
		config:       cfg,
		logger:       logger,
		userService:  userservice.NewUserService(db, cache),
		postService:  postservice.NewPostService(db),
		imageService: imageservice.NewImageService(cfg.ImageWorkers, logger),
	}

	// Bootstrap the default admin account
	if cfg.Admin.Email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = app.userService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		cancel()
		if err != nil {
			logger.Error("failed to create the admin account", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Reap expired sessions lazily in the background
	go app.reapSessions(15 * time.Minute)

	// Start the HTTP server
	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func (app *application) reapSessions(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		n, err := app.userService.DeleteExpiredSessions(context.Background())
		if err != nil {
			app.logger.Error("failed to reap expired sessions", slog.String("error", err.Error()))
			continue
		}
		if n > 0 {
			app.logger.Info("removed expired sessions", slog.Int64("count", n))
		}
	}
}
