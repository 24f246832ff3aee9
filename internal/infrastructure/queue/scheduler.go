package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"bloghub-backend/internal/config"
	"bloghub-backend/internal/domains/post/job"
)

// RedisOpt adapts the Redis config for asynq clients. The worker and the
// scheduler must dial the same instance, credentials included, as the API.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// Scheduler registers the periodic background jobs.
type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobsConfig
}

func NewScheduler(redisCfg config.RedisConfig, jobConfig config.JobsConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		RedisOpt(redisCfg),
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterJobs wires all cron entries.
func (s *Scheduler) RegisterJobs() error {
	if err := s.registerAssetReconcileJob(); err != nil {
		return err
	}
	return nil
}

func (s *Scheduler) registerAssetReconcileJob() error {
	task, err := job.NewReconcileAssetsTask()
	if err != nil {
		return fmt.Errorf("failed to build reconcile task: %w", err)
	}

	_, err = s.scheduler.Register(
		s.jobConfig.AssetReconcileCron,
		task,
		asynq.Queue("low"),
	)
	if err != nil {
		return fmt.Errorf("failed to register reconcile job: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
