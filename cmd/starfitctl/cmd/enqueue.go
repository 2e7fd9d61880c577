package cmd

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/2sn/starfit-server/internal/app/jobconfig"
	"github.com/2sn/starfit-server/internal/app/service"
	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/catalog"
	"github.com/2sn/starfit-server/internal/domain/repository"
	"github.com/2sn/starfit-server/internal/platform/config"
	"github.com/2sn/starfit-server/internal/platform/database"
	"github.com/2sn/starfit-server/internal/platform/fitclient"
	"github.com/2sn/starfit-server/internal/platform/queue"
	"github.com/2sn/starfit-server/internal/platform/scratch"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func enqueueCmd() *cobra.Command {
	var uploadPath string
	cmd := &cobra.Command{
		Use:   "enqueue ./path/to/form.yaml",
		Short: "Validate a submission and queue it for the worker",
		Long: `Validate a submission exactly as the web form does and queue it. The form must
name an email address; results are mailed there. Uses the server's environment
configuration (DB_*, REDIS_*, FIT_SERVICE_URL, ...).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := readForm(args[0], uploadPath)
			if err != nil {
				return err
			}
			raw, err := jobconfig.DecodeForm(form)
			if err != nil {
				return err
			}
			if raw.Email == "" {
				return errors.New("queued jobs need an email address")
			}

			config.Load()
			cfg := config.AppConfig
			cat, err := catalog.Load(cfg.CatalogFile)
			if err != nil {
				return err
			}
			scratchDir, err := scratch.New(cfg.ScratchDir)
			if err != nil {
				return err
			}
			fitter := fitclient.New(cfg.FitServiceURL, time.Duration(cfg.FitServiceTimeoutSeconds)*time.Second)
			emails := jobconfig.NewEmailVerifier(net.DefaultResolver, cfg.EmailCheckDeliverability)
			builder := jobconfig.NewBuilder(jobconfig.NewValidator(fitter, emails, cat), scratchDir, cfg.DataDir)

			jobCfg, err := builder.Build(cmd.Context(), raw)
			if errors.Is(err, common.ErrConfiguration) {
				for _, msg := range jobconfig.Messages(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), msg)
				}
				return err
			}
			if err != nil {
				return err
			}

			database.Connect()
			defer database.Close()
			queue.ConnectRedis()
			defer queue.CloseRedis()

			queueService := service.NewQueueService(repository.NewPgJobRepository(database.DB), queue.RDB, cfg.JobQueueName)
			job, err := queueService.Enqueue(cmd.Context(), jobCfg)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{"job_id": job.ID, "email": job.Email}).Info("Job queued")
			fmt.Fprintln(cmd.OutOrStdout(), job.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&uploadPath, "upload", "", "star data file to submit instead of the default star")
	return cmd
}
