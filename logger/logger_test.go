package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testwork/bookadmin/config"
)

func resetBuffer() {
	bufferMu.Lock()
	logBuffer = nil
	bufferMu.Unlock()
}

func TestGetLogsFiltersByLevel(t *testing.T) {
	var out bytes.Buffer
	InitWriterLogger(&out, logging.DEBUG)
	resetBuffer()

	Debug("debug line")
	Infof("info %d", 1)
	Warning("warn line")
	Errorf("error %s", "line")

	logs := GetLogs(10, "WARNING")
	require.Len(t, logs, 2)
	assert.Contains(t, logs[0], "error line")
	assert.Contains(t, logs[1], "warn line")

	all := GetLogs(10, "DEBUG")
	assert.Len(t, all, 4)

	assert.Len(t, GetLogs(1, "DEBUG"), 1)
	assert.True(t, strings.Contains(out.String(), "info 1"))
}

func TestTrimBuffer(t *testing.T) {
	InitWriterLogger(&bytes.Buffer{}, logging.DEBUG)
	resetBuffer()

	bufferMu.Lock()
	logBuffer = append(logBuffer, entry{
		time:  time.Now().Add(-48 * time.Hour).Format(timeFormat),
		level: logging.INFO,
		log:   "old",
	})
	bufferMu.Unlock()
	Info("fresh")

	assert.Equal(t, 1, TrimBuffer(24*time.Hour))
	logs := GetLogs(10, "DEBUG")
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0], "fresh")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(config.Warn)
	require.NoError(t, err)
	assert.Equal(t, logging.WARNING, level)

	_, err = ParseLevel(config.LogLevel("verbose"))
	assert.Error(t, err)
}
