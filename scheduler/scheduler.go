package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"cars_etl/config"
)

// Runner is the pipeline surface the scheduler drives.
type Runner interface {
	Run(ctx context.Context) (int, error)
}

type Scheduler struct {
	cfg    config.ScheduleConfig
	runner Runner
	log    zerolog.Logger
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}
}

func New(cfg config.ScheduleConfig, runner Runner, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		log:    log,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron != "" {
		s.log.Info().Str("cron", s.cfg.Cron).Msg("scheduler: starting with cron")
		_, err := s.cron.AddFunc(s.cfg.Cron, func() {
			if _, err := s.runner.Run(ctx); err != nil {
				s.log.Error().Err(err).Msg("scheduler: scheduled run failed")
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
		return nil
	}

	if s.cfg.Interval > 0 {
		s.log.Info().Dur("interval", s.cfg.Interval).Msg("scheduler: starting with interval")
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					if _, err := s.runner.Run(ctx); err != nil {
						s.log.Error().Err(err).Msg("scheduler: scheduled run failed")
					}
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
		return nil
	}

	return fmt.Errorf("no schedule configured")
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}
