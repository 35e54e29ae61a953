package job

import (
	"go.uber.org/atomic"

	"github.com/testwork/bookadmin/database"
	"github.com/testwork/bookadmin/logger"
	"github.com/testwork/bookadmin/util/common"
)

// CheckpointJob flushes the sqlite write-ahead log into the database file.
type CheckpointJob struct {
	running atomic.Bool
}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

func (j *CheckpointJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		logger.Debug("checkpoint job still running, skipped")
		return
	}
	defer j.running.Store(false)
	defer common.Recover("checkpoint job")

	if err := database.Checkpoint(); err != nil {
		logger.Warning("checkpoint job err:", err)
	}
}
