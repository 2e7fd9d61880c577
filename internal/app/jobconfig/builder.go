package jobconfig

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"
	"github.com/2sn/starfit-server/internal/platform/scratch"
)

// Builder turns decoded submissions into validated job configurations.
type Builder struct {
	validator *Validator
	scratch   *scratch.Dir
	dataDir   string
	now       func() time.Time
}

func NewBuilder(validator *Validator, scratchDir *scratch.Dir, dataDir string) *Builder {
	return &Builder{validator: validator, scratch: scratchDir, dataDir: dataDir, now: time.Now}
}

// Build derives the configuration, stores any uploaded star file in scratch,
// then validates. Callers never see a partially built configuration.
func (b *Builder) Build(ctx context.Context, raw *RawFields) (*model.JobConfig, error) {
	env := Env{StartTime: StartTime(b.now()), DataDir: b.dataDir, ScratchDir: b.scratch.Root()}
	cfg, err := Derive(raw, env)
	if err != nil {
		return nil, err
	}

	if cfg.StellarData.Uploaded {
		if _, err := b.scratch.WriteFile(filepath.Base(cfg.StellarData.Path), raw.Upload.Content); err != nil {
			return nil, common.Errorf("failed to store uploaded star file: %w", err)
		}
	}

	if err := b.validator.Validate(ctx, cfg); err != nil {
		if cfg.StellarData.Uploaded {
			os.Remove(cfg.StellarData.Path)
		}
		return nil, err
	}
	return cfg, nil
}
