package job

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/database"
)

func TestRotate(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "bookadmin.log")
	prevFile := logFile + ".prev"

	require.NoError(t, os.WriteFile(prevFile, []byte("older\n"), 0o644))
	require.NoError(t, os.WriteFile(logFile, []byte("line 1\nline 2\n"), 0o644))

	require.NoError(t, rotate(logFile, prevFile))

	prev, err := os.ReadFile(prevFile)
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2\n", string(prev))

	cur, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Empty(t, cur)

	assert.NoError(t, rotate(filepath.Join(dir, "missing.log"), prevFile))
}

func TestCheckpointJobRuns(t *testing.T) {
	require.NoError(t, database.InitDB(config.NewSQLiteConfig(filepath.Join(t.TempDir(), "job.db"))))
	t.Cleanup(func() { _ = database.CloseDB() })

	j := NewCheckpointJob()
	j.Run()
	assert.False(t, j.running.Load())
}

func TestClearLogsJobSkipsWhileRunning(t *testing.T) {
	j := NewClearLogsJob(time.Hour)
	j.running.Store(true)
	j.Run()
	assert.True(t, j.running.Load(), "a concurrent run leaves the guard alone")
}
