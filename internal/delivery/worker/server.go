// Package worker runs the scheduled jobs: the board reconciliation pass and
// the expired-session sweep.
package worker

import (
	"context"
	"log/slog"

	"jobtrack/config"
	"jobtrack/internal/delivery"
	"jobtrack/internal/usecase"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

type workerServer struct {
	cfg      *config.SyncConfig
	logger   *slog.Logger
	cron     *cron.Cron
	syncUC   usecase.SyncUsecase
	userUC   usecase.UserUsecase
	stopped  chan struct{}
	baseCtx  context.Context
	cancelFn context.CancelFunc
}

// ServerParams holds dependencies for the worker server
type ServerParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Logger *slog.Logger
	SyncUC usecase.SyncUsecase
	UserUC usecase.UserUsecase
}

// NewServer creates the cron-backed worker.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	baseCtx, cancel := context.WithCancel(context.Background())

	srv := &workerServer{
		cfg:      params.Cfg.Sync,
		logger:   params.Logger,
		cron:     cron.New(),
		syncUC:   params.SyncUC,
		userUC:   params.UserUC,
		stopped:  make(chan struct{}),
		baseCtx:  baseCtx,
		cancelFn: cancel,
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// Serve registers the schedules and runs the cron loop until stopped.
func (s *workerServer) Serve(_ context.Context) error {
	if s.cfg == nil || !s.cfg.Enabled {
		s.logger.Info("Scheduled sync disabled, worker idle")
		<-s.stopped

		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.runReconciliation); err != nil {
		return errors.Wrap(err, "failed to register sync schedule")
	}
	if _, err := s.cron.AddFunc(s.cfg.CleanupSchedule, s.runSessionCleanup); err != nil {
		return errors.Wrap(err, "failed to register cleanup schedule")
	}

	s.logger.Info("Starting scheduled worker",
		slog.String("syncSchedule", s.cfg.Schedule),
		slog.String("cleanupSchedule", s.cfg.CleanupSchedule),
	)
	s.cron.Start()
	<-s.stopped

	return nil
}

func (s *workerServer) runReconciliation() {
	s.logger.Info("Scheduled reconciliation starting")
	if err := s.syncUC.ReconcileAll(s.baseCtx); err != nil {
		s.logger.Error("Scheduled reconciliation failed", slog.Any("error", err))
	}
}

func (s *workerServer) runSessionCleanup() {
	if _, err := s.userUC.CleanupExpiredSessions(s.baseCtx); err != nil {
		s.logger.Error("Session cleanup failed", slog.Any("error", err))
	}
}

// stop halts the cron loop and waits for a running job to finish.
func (s *workerServer) stop(ctx context.Context) error {
	s.logger.Info("Shutting down scheduled worker")

	s.cancelFn()
	close(s.stopped)

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "timed out waiting for running jobs")
	}
}
