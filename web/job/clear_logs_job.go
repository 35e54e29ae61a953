package job

import (
	"os"
	"time"

	"go.uber.org/atomic"

	"github.com/testwork/bookadmin/logger"
	"github.com/testwork/bookadmin/util/common"
)

// ClearLogsJob moves the log file into its .prev copy and drops buffered log
// entries older than maxAge.
type ClearLogsJob struct {
	maxAge  time.Duration
	running atomic.Bool
}

func NewClearLogsJob(maxAge time.Duration) *ClearLogsJob {
	return &ClearLogsJob{maxAge: maxAge}
}

func (j *ClearLogsJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		return
	}
	defer j.running.Store(false)
	defer common.Recover("clear logs job")

	if n := logger.TrimBuffer(j.maxAge); n > 0 {
		logger.Debugf("clear logs job dropped %d buffered entries", n)
	}

	logFile := logger.GetLogFilePath()
	if logFile == "" {
		return
	}
	if err := rotate(logFile, logFile+".prev"); err != nil {
		logger.Warning("clear logs job err:", err)
	}
}

func rotate(logFile, prevFile string) error {
	data, err := os.ReadFile(logFile)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	if err := os.WriteFile(prevFile, data, 0o644); err != nil {
		return err
	}
	return os.Truncate(logFile, 0)
}
