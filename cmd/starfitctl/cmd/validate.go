package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/2sn/starfit-server/internal/app/jobconfig"
	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"

	"github.com/spf13/cobra"
)

type validateOutput struct {
	Config      *model.JobConfig  `json:"config"`
	Description model.Description `json:"description"`
}

func validateCmd() *cobra.Command {
	var dataDir, uploadPath string
	cmd := &cobra.Command{
		Use:   "validate ./path/to/form.yaml",
		Short: "Decode and derive a job submission without running it",
		Long: `Decode and derive a job submission from a file of form values and print the
resulting job configuration. No collaborator is contacted: star files, email
addresses and database names are not checked.

	Example form.yaml:

	algorithm: multi
	database: [znuc2012.S4.star.el.y.stardb.gz, rproc.just15.0.star.el.y.stardb.xz]
	sol_sizes: "2; 1"
	...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := readForm(args[0], uploadPath)
			if err != nil {
				return err
			}
			cfg, err := derive(form, dataDir)
			if errors.Is(err, common.ErrConfiguration) {
				for _, msg := range jobconfig.Messages(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), msg)
				}
				return err
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(validateOutput{Config: cfg, Description: jobconfig.Describe(cfg)})
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", envOr("STARFIT_DATA", "/usr/share/starfit"), "StarFit data directory")
	cmd.Flags().StringVar(&uploadPath, "upload", "", "star data file to submit instead of the default star")
	return cmd
}

func derive(form jobconfig.Form, dataDir string) (*model.JobConfig, error) {
	raw, err := jobconfig.DecodeForm(form)
	if err != nil {
		return nil, err
	}
	return jobconfig.Derive(raw, jobconfig.Env{
		StartTime:  jobconfig.StartTime(time.Now()),
		DataDir:    dataDir,
		ScratchDir: os.TempDir(),
	})
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
