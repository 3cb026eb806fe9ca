package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/flowuphq/flowup/internal/config"
)

type Scheduler struct {
	config       *config.SchedulerConfig
	logger       *zap.Logger
	orchestrator *Orchestrator
	ticker       *time.Ticker
	stopCh       chan struct{}
}

func NewScheduler(cfg *config.SchedulerConfig, logger *zap.Logger, orchestrator *Orchestrator) *Scheduler {
	return &Scheduler{
		config:       cfg,
		logger:       logger,
		orchestrator: orchestrator,
		stopCh:       make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}

	interval, err := time.ParseDuration(s.config.ScanInterval)
	if err != nil {
		s.logger.Error("Invalid scan interval", zap.String("interval", s.config.ScanInterval), zap.Error(err))
		return err
	}

	s.logger.Info("Starting scheduler", zap.String("scan_interval", s.config.ScanInterval))

	s.ticker = time.NewTicker(interval)

	// Run first scan immediately
	go func() {
		s.logger.Info("Running initial scan")
		if err := s.runScan(ctx); err != nil {
			s.logger.Error("Initial scan failed", zap.Error(err))
		}
	}()

	// Start periodic scan
	go func() {
		for {
			select {
			case <-s.ticker.C:
				if err := s.runScan(ctx); err != nil {
					s.logger.Error("Scheduled scan failed", zap.Error(err))
				}
			case <-s.stopCh:
				s.logger.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
	s.logger.Info("Scheduler shutdown completed")
}

func (s *Scheduler) runScan(ctx context.Context) error {
	start := time.Now()
	err := s.orchestrator.ProcessDuePosts(ctx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("Scan failed",
			zap.Error(err),
			zap.Duration("duration", duration))
		return err
	}

	s.logger.Debug("Scan completed",
		zap.Duration("duration", duration))
	return nil
}
