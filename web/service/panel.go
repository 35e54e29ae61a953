package service

import (
	"os"
	"syscall"
	"time"

	"github.com/testwork/bookadmin/logger"
)

// PanelService restarts the panel in place by signalling the own process.
type PanelService struct{}

func (s *PanelService) RestartPanel(delay time.Duration) error {
	p, err := os.FindProcess(syscall.Getpid())
	if err != nil {
		return err
	}
	go func() {
		time.Sleep(delay)
		if err := p.Signal(syscall.SIGHUP); err != nil {
			logger.Error("failed to send SIGHUP signal:", err)
		}
	}()
	return nil
}
