package scheduler

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

var (
	ErrNotInitialized = errors.New("scheduler: not initialized")
	ErrEmptyJobName   = errors.New("scheduler: job name is required")
	ErrEmptyCronExpr  = errors.New("scheduler: cron expression is required")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Service обёртка над gocron для фоновых задач сервиса
type Service struct {
	scheduler gocron.Scheduler
	logger    Logger
	stopOnce  sync.Once
	stopErr   error
}

// New создает планировщик; паника задачи логируется и не роняет процесс
func New(logger Logger) (*Service, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error("Scheduler: job %s (%s) panicked: %v", jobName, jobID, recoverData)
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("Scheduler: initialized")
	return &Service{scheduler: sched, logger: logger}, nil
}

// Start запускает зарегистрированные задачи
func (s *Service) Start() {
	if s == nil {
		return
	}
	s.logger.Info("Scheduler: starting")
	s.scheduler.Start()
}

// Stop останавливает планировщик и ждёт текущие задачи
func (s *Service) Stop() error {
	if s == nil {
		return ErrNotInitialized
	}
	s.stopOnce.Do(func() {
		s.logger.Info("Scheduler: stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob регистрирует задачу по cron-выражению
// Запуски одной задачи не пересекаются: пока идёт предыдущий, следующий переносится
func (s *Service) AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}

	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.logger.Error("Scheduler: failed to register job %s (%s): %v", name, cronExpr, err)
		return nil, err
	}

	s.logger.Info("Scheduler: registered job %s (%s)", name, cronExpr)
	return job, nil
}
