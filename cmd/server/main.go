package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2sn/starfit-server/internal/api"
	"github.com/2sn/starfit-server/internal/app/jobconfig"
	"github.com/2sn/starfit-server/internal/app/render"
	"github.com/2sn/starfit-server/internal/app/service"
	"github.com/2sn/starfit-server/internal/app/worker"
	"github.com/2sn/starfit-server/internal/common/security"
	"github.com/2sn/starfit-server/internal/domain/catalog"
	"github.com/2sn/starfit-server/internal/domain/repository"
	"github.com/2sn/starfit-server/internal/platform/config"
	"github.com/2sn/starfit-server/internal/platform/database"
	"github.com/2sn/starfit-server/internal/platform/fitclient"
	"github.com/2sn/starfit-server/internal/platform/logging"
	"github.com/2sn/starfit-server/internal/platform/mailer"
	"github.com/2sn/starfit-server/internal/platform/queue"
	"github.com/2sn/starfit-server/internal/platform/scratch"

	log "github.com/sirupsen/logrus"
)

func main() {
	// 1. Configuration and logging
	config.Load()
	cfg := config.AppConfig
	logging.Configure(cfg.LogLevel, cfg.LogFormat)
	log.Info("Configuration loaded.")

	// 2. JWT for operator tokens and unsubscribe links
	security.InitJWT(cfg.JWTKey)

	// 3. Database
	database.Connect()
	defer database.Close()
	if err := database.Migrate(context.Background(), database.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// 4. Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()

	// 5. Data directory, scratch space and collaborators
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		log.Fatalf("Could not load database catalog: %v", err)
	}
	if cat == nil {
		log.WithField("path", cfg.CatalogFile).Warn("No database catalog, database names are not checked")
	}
	scratchDir, err := scratch.New(cfg.ScratchDir)
	if err != nil {
		log.Fatalf("Could not prepare scratch directory: %v", err)
	}
	fitter := fitclient.New(cfg.FitServiceURL, time.Duration(cfg.FitServiceTimeoutSeconds)*time.Second)
	renderer, err := render.New()
	if err != nil {
		log.Fatalf("Could not parse page templates: %v", err)
	}
	sender := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailHostname)

	// 6. Repositories
	jobRepo := repository.NewPgJobRepository(database.DB)
	suppressionRepo := repository.NewPgSuppressionRepository(database.DB)

	// 7. Services
	emails := jobconfig.NewEmailVerifier(net.DefaultResolver, cfg.EmailCheckDeliverability)
	builder := jobconfig.NewBuilder(jobconfig.NewValidator(fitter, emails, cat), scratchDir, cfg.DataDir)
	runnerService := service.NewRunnerService(fitter, fitter, scratchDir, renderer, cfg.MailHostname, cfg.StarfitVersion)
	notifyService := service.NewNotifyService(sender, runnerService, renderer, cfg.MailHostname, cfg.MailBcc)
	queueService := service.NewQueueService(jobRepo, queue.RDB, cfg.JobQueueName)
	jobService := service.NewJobService(builder, queueService, runnerService, renderer, suppressionRepo)
	authService := service.NewAuthService(cfg.OperatorUsername, cfg.OperatorPasswordHash, cfg.JWTExp)
	unsubscribeService := service.NewUnsubscribeService(suppressionRepo)

	// 8. Job worker (as a goroutine)
	jobWorker := worker.NewJobWorker(queue.RDB, jobRepo, runnerService, notifyService, scratchDir, worker.Options{
		QueueName: cfg.JobQueueName,
		LockKey:   cfg.JobLockKey,
		LockTTL:   time.Duration(cfg.JobLockTTLSeconds) * time.Second,
	})
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go jobWorker.Start(workerCtx)

	// 9. Router & HTTP server
	router := api.NewRouter(api.Services{
		Jobs:        jobService,
		Queue:       queueService,
		Auth:        authService,
		Unsubscribe: unsubscribeService,
		Catalog:     cat,
	}, cfg.RequestTimeout)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second, // interactive runs answer inside the request
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", cfg.APIPort, err)
		}
	}()

	<-stop

	log.Info("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Info("Server and worker stopped gracefully.")
}
