package jobconfig

import (
	"testing"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineElements(t *testing.T) {
	assert.Equal(t, [][]int{}, CombineElements(0))
	assert.Equal(t, [][]int{{6, 7}}, CombineElements(1))
	assert.Equal(t, [][]int{{6, 7, 8}}, CombineElements(2))
	assert.Equal(t, [][]int{}, CombineElements(7))
}

func TestDeriveGA(t *testing.T) {
	raw := rawFields("ga", "a.db", "b.db", "c.db")
	raw.FracMatingPool = 100
	raw.FracElite = 50
	raw.MutRateIndex = 20
	raw.ZMin = "nonsense"
	raw.ZMax = ""
	raw.ZExclude = "Li-B, Sc"
	raw.Gen = 5
	raw.TimeLimit = 500
	raw.Pin = "0; 2; 7; -1; 1"
	raw.SolSize = 2

	cfg, err := Derive(raw, testEnv)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.ZMin)
	assert.Equal(t, 92, cfg.ZMax)
	assert.Equal(t, []int{3, 4, 5, 21}, cfg.ZExclude)
	assert.Equal(t, 100, cfg.Gen)
	assert.Equal(t, 60, cfg.TimeLimit)
	assert.InDelta(t, 1.0, cfg.FracMatingPool, 1e-12)
	assert.InDelta(t, 0.5, cfg.FracElite, 1e-12)
	assert.InDelta(t, 0.2, cfg.MutRateIndex, 1e-12)
	assert.Nil(t, cfg.Groups)
	assert.Equal(t, 3, cfg.GroupCount())
	assert.Equal(t, []int{0, 2}, cfg.Pin)
	assert.Equal(t, 2, cfg.SolSize)
	assert.False(t, cfg.MailRequested)
	assert.Equal(t, []string{"/data/db/a.db", "/data/db/b.db", "/data/db/c.db"}, cfg.DatabasePaths)
	assert.Equal(t, model.StellarData{Path: "/data/stars/HE1327-2326.dat", Filename: "HE1327-2326.dat"}, cfg.StellarData)
}

func TestDeriveGAGroupsCompleted(t *testing.T) {
	raw := rawFields("ga", "a", "b", "c", "d")
	raw.GroupGA = "0, 2"

	cfg, err := Derive(raw, testEnv)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 2}, {1}, {3}}, cfg.Groups)
	assert.Equal(t, 3, cfg.GroupCount())
}

func TestDeriveTimeLimitOverrides(t *testing.T) {
	single, err := Derive(rawFields("single", "a"), testEnv)
	require.NoError(t, err)
	assert.Equal(t, 0, single.TimeLimit)
	assert.Equal(t, 1, single.SolSize)

	multi, err := Derive(rawFields("multi", "a"), testEnv)
	require.NoError(t, err)
	assert.Equal(t, MultiTimeLimit, multi.TimeLimit)

	raw := rawFields("ga", "a")
	raw.TimeLimit = 0
	ga, err := Derive(raw, testEnv)
	require.NoError(t, err)
	assert.Equal(t, 1, ga.TimeLimit)
}

func TestDeriveUpload(t *testing.T) {
	raw := rawFields("single", "a")
	raw.Upload = &Upload{Filename: "../../My Star.dat", Content: []byte("data")}
	raw.Email = "me@example.org"

	cfg, err := Derive(raw, testEnv)
	require.NoError(t, err)
	assert.True(t, cfg.StellarData.Uploaded)
	assert.Equal(t, "My Star.dat", cfg.StellarData.Filename)
	assert.Equal(t, "/scratch/my-star.dat2024-05-06-07-08-09", cfg.StellarData.Path)
	assert.True(t, cfg.MailRequested)
}

func TestDeriveShortCircuits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawFields)
		want   string
	}{
		{"no database", func(r *RawFields) { r.Databases = nil }, "Require at least one database selection."},
		{"bad algorithm", func(r *RawFields) { r.Algorithm = "anneal" }, "Bad choice of algorithm='anneal'"},
		{"group parse", func(r *RawFields) { r.GroupMulti = "0,x;1" }, "Group: Error translating string to nested list of integers: 0,x;1."},
		{"group size", func(r *RawFields) { r.GroupMulti = "0,1,2,3,4,5,6,7,8,9" }, "Group sizes must be less than 10."},
		{"group unique", func(r *RawFields) { r.GroupMulti = "0,1;1" }, "Require unique group entries."},
		{"group positive", func(r *RawFields) { r.GroupMulti = "-1" }, "Require positive group entries."},
		{"group range", func(r *RawFields) { r.GroupMulti = "0;12" }, "Require group entries in range."},
		{"sizes parse", func(r *RawFields) { r.SolSizes = "1;two" }, "Sizes: Error translating string to list of integers: 1;two"},
		{"sizes positive", func(r *RawFields) { r.SolSizes = "1;0" }, "Require positive solution sizes."},
		{"pin parse", func(r *RawFields) { r.Algorithm = "ga"; r.Pin = "a" }, "Pin: Error translating string to list of integers: a"},
		{"ga group", func(r *RawFields) { r.Algorithm = "ga"; r.GroupGA = "0;0" }, "Require unique group entries."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawFields("multi", "a", "b", "c")
			tt.mutate(raw)
			cfg, err := Derive(raw, testEnv)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, common.ErrConfiguration)
			assert.Equal(t, []string{tt.want}, Messages(err))
		})
	}
}

func TestDeriveMultiSolSize(t *testing.T) {
	raw := rawFields("multi", "a", "b", "c")
	raw.SolSize = 9
	raw.GroupMulti = "0, 1"
	raw.SolSizes = "2; 1"

	cfg, err := Derive(raw, testEnv)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {2}}, cfg.Groups)
	assert.Equal(t, []int{2, 1}, cfg.SolSizes)
	assert.Equal(t, 3, cfg.SolSize)
}
