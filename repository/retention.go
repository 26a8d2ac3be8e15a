package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultRetainedExchanges is how many exchanges a retention pass keeps.
	DefaultRetainedExchanges = 1000

	retentionInterval = 30 * time.Minute
	retentionWarmup   = 1 * time.Minute
)

// RetentionService trims the history file in the background so it does
// not grow without bound.
type RetentionService struct {
	history  *FileHistory
	keep     int
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewRetentionService creates a retention service. keep <= 0 uses the
// default.
func NewRetentionService(history *FileHistory, keep int, logger *zap.Logger) *RetentionService {
	if keep <= 0 {
		keep = DefaultRetainedExchanges
	}
	return &RetentionService{
		history:  history,
		keep:     keep,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background retention process
func (s *RetentionService) Start() {
	go s.retentionLoop()
	s.logger.Info("history retention service started", zap.Int("keep", s.keep))
}

// Stop gracefully stops the retention service
func (s *RetentionService) Stop() {
	close(s.stopChan)
	s.logger.Info("history retention service stopped")
}

func (s *RetentionService) retentionLoop() {
	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()

	// First pass runs shortly after startup.
	warmup := time.NewTimer(retentionWarmup)
	defer warmup.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-warmup.C:
			s.runRetention()
		case <-ticker.C:
			s.runRetention()
		}
	}
}

func (s *RetentionService) runRetention() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.history.Prune(ctx, s.keep)
	if err != nil {
		s.logger.Error("history retention pass failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("history retention pass completed", zap.Int("removed", removed))
	}
}
