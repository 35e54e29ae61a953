package service

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/database"
	"github.com/testwork/bookadmin/database/model"
	"github.com/testwork/bookadmin/logger"
)

var startTime = time.Now()

// Status summarizes the running panel for the admin index.
type Status struct {
	Version  string `json:"version"`
	Database string `json:"database"`
	Uptime   uint64 `json:"uptime"`
	AppStats struct {
		Threads int    `json:"threads"`
		Mem     uint64 `json:"mem"`
		Uptime  uint64 `json:"uptime"`
	} `json:"appStats"`
	Mem struct {
		Current uint64 `json:"current"`
		Total   uint64 `json:"total"`
	} `json:"mem"`
	Counts struct {
		Authors int64 `json:"authors"`
		Books   int64 `json:"books"`
		Users   int64 `json:"users"`
	} `json:"counts"`
}

type ServerService struct{}

func (s *ServerService) GetStatus() *Status {
	status := &Status{Version: config.GetVersion(), Database: "postgres"}
	if database.IsSQLite() {
		status.Database = "sqlite"
	}

	if upTime, err := host.Uptime(); err != nil {
		logger.Warning("get uptime failed:", err)
	} else {
		status.Uptime = upTime
	}
	if memInfo, err := mem.VirtualMemory(); err != nil {
		logger.Warning("get virtual memory failed:", err)
	} else {
		status.Mem.Current = memInfo.Used
		status.Mem.Total = memInfo.Total
	}

	var rtm runtime.MemStats
	runtime.ReadMemStats(&rtm)
	status.AppStats.Mem = rtm.Sys
	status.AppStats.Threads = runtime.NumGoroutine()
	status.AppStats.Uptime = uint64(time.Since(startTime).Seconds())

	db := database.GetDB()
	for value, count := range map[any]*int64{
		&model.Author{}: &status.Counts.Authors,
		&model.Book{}:   &status.Counts.Books,
		&model.User{}:   &status.Counts.Users,
	} {
		if err := db.Model(value).Count(count).Error; err != nil {
			logger.Warning("count records failed:", err)
		}
	}
	return status
}

// GetLogs returns buffered log lines, or the tail of the log file when the
// buffer has been trimmed.
func (s *ServerService) GetLogs(count int, level string) []string {
	if count <= 0 || count > 10000 {
		count = 100
	}
	lines := logger.GetLogs(count, level)
	if len(lines) > 0 {
		return lines
	}
	data, err := os.ReadFile(logger.GetLogFilePath())
	if err != nil {
		return nil
	}
	fileLines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(fileLines) > count {
		fileLines = fileLines[len(fileLines)-count:]
	}
	return fileLines
}
