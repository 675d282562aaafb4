// Package server initializes and runs the profilekeeper server.
// It wires storage, the blob store and the workflows, handles graceful
// shutdown, and starts the HTTP API.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/profilekeeper/internal/filex"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/blobstore"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	syncLogger  func() error
	repomanager repomanager.RepositoryManager
	httpServer  *httpapi.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, syncLogger, err := logging.New(c.LogBackend, c.IsDevelopment())
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	rm, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	s3, err := blobstore.NewS3Client(ctx, c)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("s3 client init error: %w", err)
	}
	blobs := blobstore.NewS3Store(s3, c.S3Bucket, c.S3KeyPrefix, c.PublicBaseURL(), logger)

	uploadDir, err := filex.EnsureDir(c.UploadTempDir)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("upload dir error: %w", err)
	}

	hasher := auth.NewPasswordHasher(c.BcryptCost)
	tokens := services.NewTokenService(rm, c)

	hs := httpapi.NewHTTPServer(c, uploadDir, logger, httpapi.Services{
		Accounts: services.NewAccountService(rm, hasher, blobs, logger),
		Sessions: services.NewSessionService(rm, tokens, hasher, logger),
		Media:    services.NewMediaService(rm, blobs, logger),
		Tokens:   tokens,
	})

	return &App{config: c, logger: logger, syncLogger: syncLogger, repomanager: rm, httpServer: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageDriver, "address", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repomanager.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "closing storage", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	_ = app.syncLogger()
}
