// Package server initializes and runs the VoiceTasker backend: it opens the
// database, runs migrations, provisions the admin credential record when
// bootstrap values are configured, and starts the HTTP server.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/voicetasker/voicetasker/internal/logging"
	"github.com/voicetasker/voicetasker/internal/server/config"
	"github.com/voicetasker/voicetasker/internal/server/httpapi"
	"github.com/voicetasker/voicetasker/internal/server/hub"
	"github.com/voicetasker/voicetasker/internal/server/repositories/repomanager"
	"github.com/voicetasker/voicetasker/internal/server/services"
	"github.com/voicetasker/voicetasker/internal/server/transcribe"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	h := hub.New()

	logService := services.NewLogService(db, rm, h, logger)
	adminService := services.NewAdminService(db, rm, cfg)
	archiveService := services.NewArchiveService(cfg)
	visitService := services.NewVisitService(db, rm)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := adminService.Provision(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return nil, fmt.Errorf("admin provisioning error: %w", err)
		}
	}

	transcriber, err := transcribe.NewHTTPTranscriber(cfg.TranscriberURL, nil)
	if err != nil {
		return nil, fmt.Errorf("transcriber init error: %w", err)
	}

	srv := httpapi.NewServer(cfg.EndpointAddr, logger,
		logService, adminService, archiveService, visitService, transcriber, h)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
