package jobconfig

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/2sn/starfit-server/internal/domain/element"
	"github.com/2sn/starfit-server/internal/domain/model"
	"github.com/2sn/starfit-server/internal/platform/scratch"
)

const (
	minGenerations = 100
	maxGenerations = 10000
	minTimeLimit   = 1
	maxTimeLimit   = 60

	// MultiTimeLimit is the fixed run time ceiling of complete multi-star searches.
	MultiTimeLimit = 900
)

// StartTimeLayout names scratch files of a job.
const StartTimeLayout = "2006-01-02-15-04-05"

// StartTime formats t as a job start time.
func StartTime(t time.Time) string {
	return t.Format(StartTimeLayout)
}

// Env holds the deployment facts derivation depends on.
type Env struct {
	StartTime  string
	DataDir    string
	ScratchDir string
}

// Derive expands decoded fields into a JobConfig. Grouping, sizes and pin parse
// failures short-circuit with a *ConfigurationError; nothing is validated here.
func Derive(raw *RawFields, env Env) (*model.JobConfig, error) {
	if len(raw.Databases) == 0 {
		return nil, configurationError(msgNoDatabase)
	}

	cfg := &model.JobConfig{
		StartTime:     env.StartTime,
		Algorithm:     model.Algorithm(raw.Algorithm),
		Email:         raw.Email,
		MailRequested: raw.Email != "",
		Databases:     append([]string(nil), raw.Databases...),

		ZMin:        element.ParseOr(raw.ZMin, element.MinZ),
		ZMax:        element.ParseOr(raw.ZMax, element.MaxZ),
		ZExclude:    element.ParseSet(raw.ZExclude),
		ZLolim:      element.ParseSet(raw.ZLolim),
		CombineMode: raw.CombineMode,
		Combine:     CombineElements(raw.CombineMode),

		PopSize:   raw.PopSize,
		Gen:       clamp(raw.Gen, minGenerations, maxGenerations),
		TourSize:  raw.TourSize,
		TimeLimit: clamp(raw.TimeLimit, minTimeLimit, maxTimeLimit),

		Fixed:         raw.Fixed,
		UpperLim:      raw.UpperLim,
		CDF:           raw.CDF,
		Det:           raw.Det,
		Cov:           raw.Cov,
		LimitSolution: raw.LimitSolution,
		LimitSolver:   raw.LimitSolver,
		Spread:        raw.Spread,
		LocalSearch:   raw.LocalSearch,
		ShowIndex:     raw.ShowIndex,
		PlotCov:       raw.PlotCov,

		PlotFormat: raw.PlotFormat,
		YScale:     raw.YScale,
		Multi:      raw.Multi,
	}
	cfg.StellarData = stellarData(raw, env)
	for _, db := range cfg.Databases {
		cfg.DatabasePaths = append(cfg.DatabasePaths, filepath.Join(env.DataDir, "db", filepath.Base(db)))
	}

	if !cfg.Algorithm.Valid() {
		return nil, configurationError(msgBadAlgorithm, raw.Algorithm)
	}

	ndb := len(cfg.Databases)
	switch cfg.Algorithm {
	case model.AlgorithmGA:
		cfg.FracMatingPool = percent(raw.FracMatingPool)
		cfg.FracElite = percent(raw.FracElite)
		cfg.MutRateIndex = percent(raw.MutRateIndex)
		cfg.MutRateOffset = percent(raw.MutRateOffset)
		cfg.MutOffsetMagnitude = percent(raw.MutOffsetMagnitude)

		groups, err := parseGroups(raw.GroupGA, ndb)
		if err != nil {
			return nil, err
		}
		pins, ok := parseIntList(raw.Pin)
		if !ok {
			return nil, configurationError(msgPinParse, strings.TrimSpace(raw.Pin))
		}
		cfg.Groups = completeGAGroups(ndb, groups)
		cfg.SolSize = raw.SolSize
		cfg.Pin = derivePins(pins, cfg.GroupCount(), cfg.SolSize)

	case model.AlgorithmMulti:
		groups, err := parseGroups(raw.GroupMulti, ndb)
		if err != nil {
			return nil, err
		}
		sizes, ok := parseIntList(raw.SolSizes)
		if !ok {
			return nil, configurationError(msgSizesParse, strings.TrimSpace(raw.SolSizes))
		}
		for _, s := range sizes {
			if s < 1 {
				return nil, configurationError(msgSizesPositive)
			}
		}
		cfg.Groups, cfg.SolSizes = ReconcileGroups(ndb, groups, sizes)
		cfg.SolSize = sum(cfg.SolSizes)
		cfg.TimeLimit = MultiTimeLimit

	case model.AlgorithmSingle:
		cfg.SolSize = 1
		cfg.TimeLimit = 0
	}

	return cfg, nil
}

// stellarData locates the star file: the upload in scratch, or a bundled star.
func stellarData(raw *RawFields, env Env) model.StellarData {
	if raw.Upload != nil && raw.Upload.Filename != "" {
		filename := filepath.Base(raw.Upload.Filename)
		return model.StellarData{
			Path:     filepath.Join(env.ScratchDir, scratch.UploadName(filename, env.StartTime)),
			Filename: filename,
			Uploaded: true,
		}
	}
	filename := filepath.Base(strings.TrimSpace(raw.StarDefault))
	return model.StellarData{
		Path:     filepath.Join(env.DataDir, "stars", filename),
		Filename: filename,
	}
}

// CombineElements maps a combination mode to the element groups summed before fitting.
func CombineElements(mode int) [][]int {
	switch mode {
	case model.CombineCN:
		return [][]int{{6, 7}}
	case model.CombineCNO:
		return [][]int{{6, 7, 8}}
	}
	return [][]int{}
}

func percent(v int) float64 {
	return float64(v) / 100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
