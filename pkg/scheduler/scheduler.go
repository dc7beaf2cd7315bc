package scheduler

import (
	"civilprep_backend/pkg/logger"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Scheduler 后台定时任务。同一任务不会并发执行
type Scheduler struct {
	cron *gocron.Scheduler
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	cron := gocron.NewScheduler(loc)
	cron.SingletonModeAll()
	return &Scheduler{cron: cron}
}

// Daily 每天 at（HH:MM）执行一次
func (s *Scheduler) Daily(name, at string, job func()) error {
	if _, err := s.cron.Every(1).Day().At(at).Tag(name).Do(wrap(name, job)); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

// Every 按固定间隔执行，启动后不立即执行
func (s *Scheduler) Every(name string, interval time.Duration, job func()) error {
	if _, err := s.cron.Every(interval).WaitForSchedule().Tag(name).Do(wrap(name, job)); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Len() int {
	return s.cron.Len()
}

func (s *Scheduler) Start() {
	s.cron.StartAsync()
	logger.Component("scheduler").Info("Scheduler started", zap.Int("jobs", s.cron.Len()))
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func wrap(name string, job func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Component("scheduler").Error("Scheduled job panicked", zap.String("job", name), zap.Any("panic", r))
			}
		}()

		start := time.Now()
		job()
		logger.Component("scheduler").Debug("Scheduled job finished",
			zap.String("job", name),
			zap.Duration("elapsed", time.Since(start)))
	}
}
