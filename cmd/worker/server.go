package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"bloghub-backend/internal/domains/post/job"
	"bloghub-backend/internal/infrastructure/queue"
	"bloghub-backend/pkg/container"
)

// asynqServer wraps asynq.Server with additional functionality
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer creates the Asynq server and registers the job handlers.
func setupAsynqServer(c *container.Container) *asynqServer {
	mux := asynq.NewServeMux()

	reconcileHandler := job.NewReconcileAssetsHandler(c.PostRepo, c.Storage)
	mux.Handle(job.TaskTypeReconcileAssets, reconcileHandler)

	srv := asynq.NewServer(
		queue.RedisOpt(c.Config.Redis),
		asynq.Config{
			Queues: map[string]int{
				"default": 10,
				"low":     5,
			},
			Concurrency: 10,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq] ❌ Task failed - Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	// Start server in goroutine
	go func() {
		log.Println("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] Failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown gracefully shuts down the server.
func (s *asynqServer) Shutdown() {
	log.Println("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Println("[Worker] ✓ Stopped")
}
