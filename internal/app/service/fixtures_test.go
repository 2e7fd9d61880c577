package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/2sn/starfit-server/internal/app/render"
	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/common/security"
	"github.com/2sn/starfit-server/internal/domain/model"
	"github.com/2sn/starfit-server/internal/platform/scratch"

	"github.com/alicebob/miniredis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gopkg.in/mail.v2"
)

const testStart = "2024-03-01-12-00-00"

func init() {
	security.InitJWT([]byte("service-test-key"))
}

func gaConfig() *model.JobConfig {
	return &model.JobConfig{
		StartTime:     testStart,
		Algorithm:     model.AlgorithmGA,
		StellarData:   model.StellarData{Path: "/data/stars/HE1327-2326.dat", Filename: "HE1327-2326.dat"},
		Databases:     []string{"znuc2012.S4.star.el.y.stardb.gz"},
		DatabasePaths: []string{"/data/db/znuc2012.S4.star.el.y.stardb.gz"},
		ZMin:          1,
		ZMax:          30,
		ZExclude:      []int{3, 21},
		Combine:       [][]int{{6, 7}},
		CombineMode:   model.CombineCN,
		SolSize:       2,
		PopSize:       200,
		Gen:           1000,
		TourSize:      2,
		TimeLimit:     20,

		FracMatingPool:     1,
		FracElite:          0.5,
		MutRateIndex:       0.2,
		MutRateOffset:      0.1,
		MutOffsetMagnitude: 0.01,

		PlotFormat: "png",
		YScale:     2,
	}
}

func multiConfig() *model.JobConfig {
	cfg := gaConfig()
	cfg.Algorithm = model.AlgorithmMulti
	cfg.Databases = []string{"a.stardb.gz", "b.stardb.gz"}
	cfg.DatabasePaths = []string{"/data/db/a.stardb.gz", "/data/db/b.stardb.gz"}
	cfg.Groups = [][]int{{0}, {1}}
	cfg.SolSizes = []int{1, 1}
	cfg.SolSize = 2
	cfg.TimeLimit = 900
	return cfg
}

func fitResult() *model.FitResult {
	return &model.FitResult{
		ID: "res-1",
		Star: model.Star{
			Name:        "HE1327-2326",
			Version:     10002,
			Elements:    []string{"C", "N", "O", "Na", "Mg", "Li", "Sc", "Zn"},
			UpperLimits: []string{"Zn"},
			Source:      "Frebel et al. 2008",
		},
		TextResult:  "<table><tr><td>best</td></tr></table>",
		TextDB:      [][]string{{"0", "znuc2012"}},
		EvalData:    []model.EvalElement{{Element: "C", Detection: -99}, {Element: "O", Detection: -1, Covariance: []float64{0.1}}, {Element: "Zn", Detection: -99}},
		Generations: 1000,
		Elapsed:     19.5,
	}
}

type fakeFitter struct {
	res  *model.FitResult
	err  error
	reqs []model.FitRequest
}

func (f *fakeFitter) Fit(ctx context.Context, req model.FitRequest) (*model.FitResult, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type fakePlotter struct {
	err  error
	reqs []model.PlotRequest
}

func (f *fakePlotter) Plot(ctx context.Context, resultID string, req model.PlotRequest) (*model.Plot, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	plot := &model.Plot{Image: []byte("image-" + string(req.Kind))}
	if req.ReturnPlotData {
		plot.Labels = []string{"HE1327-2326"}
		plot.Z = []int{6, 8}
		plot.Abundance = []float64{-1.5, -2.25}
	}
	return plot, nil
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []*mail.Message
}

func (f *fakeSender) Send(m *mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

// rawMessage serializes a sent message.
func rawMessage(t *testing.T, m *mail.Message) string {
	t.Helper()
	var b strings.Builder
	_, err := m.WriteTo(&b)
	require.NoError(t, err)
	return b.String()
}

type memJobRepo struct {
	mu       sync.Mutex
	jobs     map[string]*model.Job
	statuses []string
	err      error
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*model.Job)}
}

func (r *memJobRepo) CreateJob(ctx context.Context, tx *sql.Tx, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.jobs[job.ID]; ok {
		return common.ErrConflict
	}
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *memJobRepo) GetJobByID(ctx context.Context, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (r *memJobRepo) UpdateJobStatus(ctx context.Context, tx *sql.Tx, jobID string, status string, lastError *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return common.ErrNotFound
	}
	job.Status = status
	job.LastError = lastError
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *memJobRepo) IncrementJobAttempts(ctx context.Context, tx *sql.Tx, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return common.ErrNotFound
	}
	job.Attempts++
	return nil
}

func (r *memJobRepo) ListRecentJobs(ctx context.Context, limit int) ([]*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		copied := *j
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memSuppressions struct {
	emails map[string]bool
	err    error
}

func newMemSuppressions(emails ...string) *memSuppressions {
	m := &memSuppressions{emails: make(map[string]bool)}
	for _, e := range emails {
		m.emails[strings.ToLower(e)] = true
	}
	return m
}

func (m *memSuppressions) Add(ctx context.Context, email string) error {
	if m.err != nil {
		return m.err
	}
	m.emails[strings.ToLower(strings.TrimSpace(email))] = true
	return nil
}

func (m *memSuppressions) IsSuppressed(ctx context.Context, email string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.emails[strings.ToLower(strings.TrimSpace(email))], nil
}

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New()
	require.NoError(t, err)
	return r
}

func newScratch(t *testing.T) *scratch.Dir {
	t.Helper()
	d, err := scratch.New(t.TempDir())
	require.NoError(t, err)
	return d
}

func newRunner(t *testing.T, fitter Fitter, plotter Plotter) (*RunnerService, *scratch.Dir) {
	t.Helper()
	dir := newScratch(t)
	return NewRunnerService(fitter, plotter, dir, newRenderer(t), "starfit.example.org", "0.9.1"), dir
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}
