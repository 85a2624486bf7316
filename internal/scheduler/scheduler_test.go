package scheduler

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type countingJob struct {
	runs int
	err  error
}

func (j *countingJob) Name() string { return "counting" }
func (j *countingJob) Run() error {
	j.runs++
	return j.err
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}

	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, job.runs)

	job.err = fmt.Errorf("boom")
	assert.Error(t, s.RunNow(job))
	assert.Equal(t, 2, job.runs)
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	assert.Error(t, s.AddJob("not a schedule", &countingJob{}))
	assert.NoError(t, s.AddJob("0 0 6 * * MON-FRI", &countingJob{}))
}

func TestHealthCheckJob(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	job := NewHealthCheckJob(db, zerolog.Nop())
	assert.Equal(t, "health_check", job.Name())
	assert.NoError(t, job.Run())
}
