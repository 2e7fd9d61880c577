package service

import (
	"context"
	"html/template"
	"time"

	"github.com/2sn/starfit-server/internal/app/jobconfig"
	"github.com/2sn/starfit-server/internal/app/render"
	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"
	"github.com/2sn/starfit-server/internal/platform/metrics"
	"github.com/2sn/starfit-server/internal/platform/scratch"

	log "github.com/sirupsen/logrus"
)

const multiTopSolutions = 1000

type Fitter interface {
	Fit(ctx context.Context, req model.FitRequest) (*model.FitResult, error)
}

type Plotter interface {
	Plot(ctx context.Context, resultID string, req model.PlotRequest) (*model.Plot, error)
}

// Artifact is a named file produced by a run.
type Artifact struct {
	Name string
	Data []byte
}

// Outcome is everything a finished run produced.
type Outcome struct {
	Result      *model.FitResult
	Summary     *model.ResultSummary
	Plots       []Artifact // abundance first
	ImgTags     []template.HTML
	PlotData    []byte
	FullResults []byte // multi only
}

// RunnerService executes fitting jobs and renders their pages.
type RunnerService struct {
	fitter   Fitter
	plotter  Plotter
	scratch  *scratch.Dir
	renderer *render.Renderer
	hostname string
	version  string
}

func NewRunnerService(fitter Fitter, plotter Plotter, scratchDir *scratch.Dir, renderer *render.Renderer, hostname, version string) *RunnerService {
	return &RunnerService{
		fitter:   fitter,
		plotter:  plotter,
		scratch:  scratchDir,
		renderer: renderer,
		hostname: hostname,
		version:  version,
	}
}

// NewFitRequest maps a job configuration to the fitting service parameters.
func NewFitRequest(cfg *model.JobConfig) model.FitRequest {
	req := model.FitRequest{
		Algorithm:     cfg.Algorithm,
		Filename:      cfg.StellarData.Path,
		DB:            cfg.DatabasePaths,
		Silent:        true,
		Combine:       cfg.Combine,
		ZMin:          cfg.ZMin,
		ZMax:          cfg.ZMax,
		ZExclude:      cfg.ZExclude,
		ZLolim:        cfg.ZLolim,
		UpperLim:      cfg.UpperLim,
		CDF:           cfg.CDF,
		Det:           cfg.Det,
		Cov:           cfg.Cov,
		LimitSolution: cfg.LimitSolution,
		LimitSolver:   cfg.LimitSolver,
		ShowIndex:     cfg.ShowIndex,
	}
	switch cfg.Algorithm {
	case model.AlgorithmGA:
		req.FixedOffsets = ptr(cfg.Fixed)
		req.Group = cfg.Groups
		req.TimeLimit = ptr(cfg.TimeLimit)
		req.SolSize = ptr(cfg.SolSize)
		req.Pin = cfg.Pin
		req.Gen = ptr(cfg.Gen)
		req.PopSize = ptr(cfg.PopSize)
		req.Spread = ptr(cfg.Spread)
		req.TourSize = ptr(cfg.TourSize)
		req.FracMatingPool = ptr(cfg.FracMatingPool)
		req.FracElite = ptr(cfg.FracElite)
		req.MutRateIndex = ptr(cfg.MutRateIndex)
		req.MutRateOffset = ptr(cfg.MutRateOffset)
		req.MutOffsetMagnitude = ptr(cfg.MutOffsetMagnitude)
		req.LocalSearch = ptr(cfg.LocalSearch)
	case model.AlgorithmMulti:
		req.FixedOffsets = ptr(cfg.Fixed)
		req.Group = cfg.Groups
		req.SolSizes = cfg.SolSizes
		req.NTop = multiTopSolutions
		req.Save = true
		req.WebFile = cfg.StartTime
	}
	return req
}

func ptr[T any](v T) *T { return &v }

// Execute fits the job, renders its plots and writes the plot data (and, for
// multi-star searches, the full result table) to scratch.
func (s *RunnerService) Execute(ctx context.Context, cfg *model.JobConfig) (*Outcome, error) {
	logger := log.WithFields(log.Fields{"start_time": cfg.StartTime, "algorithm": cfg.Algorithm})

	start := time.Now()
	res, err := s.fitter.Fit(ctx, NewFitRequest(cfg))
	metrics.FitDuration.WithLabelValues(string(cfg.Algorithm)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, common.Errorf("fit failed: %w", err)
	}
	logger.WithField("elapsed", time.Since(start)).Info("Fit finished")

	out := &Outcome{Result: res, Summary: Summarize(cfg, res)}

	abundance, err := s.plotter.Plot(ctx, res.ID, model.PlotRequest{
		Kind:           model.PlotAbundance,
		Format:         cfg.PlotFormat,
		YScale:         cfg.YScale,
		YNorm:          "Fe",
		Multi:          cfg.Multi,
		ReturnPlotData: true,
	})
	if err != nil {
		return nil, common.Errorf("abundance plot failed: %w", err)
	}
	out.addPlot("abundance_plot."+cfg.PlotFormat, abundance.Image, cfg.PlotFormat)

	if cfg.Algorithm == model.AlgorithmGA {
		fitness, err := s.plotter.Plot(ctx, res.ID, model.PlotRequest{Kind: model.PlotFitness, Format: cfg.PlotFormat})
		if err != nil {
			return nil, common.Errorf("fitness plot failed: %w", err)
		}
		out.addPlot("ga_fitness_plot."+cfg.PlotFormat, fitness.Image, cfg.PlotFormat)
	}

	if cfg.PlotCov {
		matrix, err := s.plotter.Plot(ctx, res.ID, model.PlotRequest{Kind: model.PlotErrorMatrix, Format: cfg.PlotFormat})
		if err != nil {
			return nil, common.Errorf("error matrix plot failed: %w", err)
		}
		out.addPlot("error_matrix_plot."+cfg.PlotFormat, matrix.Image, cfg.PlotFormat)
	}

	out.PlotData = scratch.FormatPlotData(abundance)
	if _, err := s.scratch.WriteFile(scratch.PlotDataName(cfg.StartTime), out.PlotData); err != nil {
		return nil, err
	}

	if cfg.Algorithm == model.AlgorithmMulti {
		out.FullResults = []byte(res.FullResults)
		if _, err := s.scratch.WriteFile(scratch.FullResultsName(cfg.StartTime), out.FullResults); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (o *Outcome) addPlot(name string, image []byte, format string) {
	o.Plots = append(o.Plots, Artifact{Name: name, Data: image})
	o.ImgTags = append(o.ImgTags, render.ImgTag(image, format))
}

// JobInfo describes a job for result and failure pages.
func (s *RunnerService) JobInfo(status string, err error) *model.JobInfo {
	info := &model.JobInfo{Status: status, StarfitVersion: s.version}
	if err != nil {
		info.Error = err.Error()
	}
	return info
}

// PageData assembles the template data of a job page. outcome may be nil.
func (s *RunnerService) PageData(cfg *model.JobConfig, outcome *Outcome, info *model.JobInfo) render.Data {
	data := render.Data{
		Config:   cfg,
		JobInfo:  info,
		Hostname: s.hostname,
	}
	if cfg != nil {
		data.Description = jobconfig.Describe(cfg)
	}
	if outcome != nil {
		data.Summary = outcome.Summary
		data.ImgTags = outcome.ImgTags
	}
	return data
}

// RunInteractive executes a job within the request and renders either the
// result page or the failure page.
func (s *RunnerService) RunInteractive(ctx context.Context, cfg *model.JobConfig) (string, error) {
	defer s.cleanup(cfg)

	outcome, err := s.Execute(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("start_time", cfg.StartTime).Error("Interactive job failed")
		metrics.Submissions.WithLabelValues(string(cfg.Algorithm), "failed").Inc()
		page, rerr := s.renderer.Render(render.PageJobFail, s.PageData(cfg, nil, s.JobInfo(model.JobStatusFailed, err)))
		if rerr != nil {
			return "", rerr
		}
		return page, err
	}
	metrics.Submissions.WithLabelValues(string(cfg.Algorithm), "completed").Inc()
	return s.renderer.Render(render.PageResult, s.PageData(cfg, outcome, s.JobInfo(model.JobStatusCompleted, nil)))
}

func (s *RunnerService) cleanup(cfg *model.JobConfig) {
	if err := s.scratch.Cleanup(cfg.StartTime); err != nil {
		log.WithError(err).WithField("start_time", cfg.StartTime).Warn("Failed to remove scratch files")
	}
}
