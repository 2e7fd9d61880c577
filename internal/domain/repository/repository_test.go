package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"
	"github.com/2sn/starfit-server/internal/platform/database"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to STARFIT_TEST_DATABASE_URL, skipping when it is unset.
func openTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("STARFIT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("STARFIT_TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func TestPgJobRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewPgJobRepository(db)
	ctx := context.Background()

	payload, err := json.Marshal(model.JobConfig{Algorithm: model.AlgorithmMulti, StartTime: "2024-01-01-00-00-00"})
	require.NoError(t, err)
	job := &model.Job{
		ID:        uuid.NewString(),
		StartTime: "2024-01-01-00-00-00",
		Algorithm: model.AlgorithmMulti,
		Email:     "me@example.org",
		Status:    model.JobStatusQueued,
		Payload:   payload,
	}
	require.NoError(t, repo.CreateJob(ctx, nil, job))
	assert.ErrorIs(t, repo.CreateJob(ctx, nil, job), common.ErrConflict)

	msg := "fit service returned 500"
	require.NoError(t, repo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusFailed, &msg))
	require.NoError(t, repo.IncrementJobAttempts(ctx, nil, job.ID))

	got, err := repo.GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	assert.Equal(t, 1, got.Attempts)
	require.NotNil(t, got.LastError)
	assert.Equal(t, msg, *got.LastError)

	cfg, err := got.Config()
	require.NoError(t, err)
	assert.Equal(t, model.AlgorithmMulti, cfg.Algorithm)

	jobs, err := repo.ListRecentJobs(ctx, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, jobs)

	_, err = repo.GetJobByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateJobStatus(ctx, nil, uuid.NewString(), model.JobStatusRunning, nil), common.ErrNotFound)
}

func TestPgSuppressionRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewPgSuppressionRepository(db)
	ctx := context.Background()
	addr := uuid.NewString() + "@Example.org"

	ok, err := repo.IsSuppressed(ctx, addr)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Add(ctx, addr))
	require.NoError(t, repo.Add(ctx, addr))

	ok, err = repo.IsSuppressed(ctx, " "+addr)
	require.NoError(t, err)
	assert.True(t, ok)
}
