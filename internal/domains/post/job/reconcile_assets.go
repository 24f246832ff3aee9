package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"bloghub-backend/internal/domains/post/repository"
	"bloghub-backend/internal/infrastructure/storage"
)

// TaskTypeReconcileAssets is the asynq task type for the orphaned-asset sweep.
const TaskTypeReconcileAssets = "post:reconcile_assets"

// CoverPrefix is where post cover objects live inside the bucket.
const CoverPrefix = "covers/"

type ReconcileAssetsPayload struct {
	RequestedAt time.Time `json:"requested_at,omitempty"`
}

// NewReconcileAssetsTask builds the task enqueued by the scheduler.
func NewReconcileAssetsTask() (*asynq.Task, error) {
	payload, err := json.Marshal(ReconcileAssetsPayload{RequestedAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TaskTypeReconcileAssets, payload), nil
}

// ReconcileAssetsHandler garbage-collects cover objects no post references.
// Orphans come from replaced covers whose delete failed, deleted posts, and
// uploads whose document write never completed.
type ReconcileAssetsHandler struct {
	postRepo repository.PostRepository
	storage  storage.ObjectStorage
}

func NewReconcileAssetsHandler(postRepo repository.PostRepository, objects storage.ObjectStorage) *ReconcileAssetsHandler {
	return &ReconcileAssetsHandler{
		postRepo: postRepo,
		storage:  objects,
	}
}

func (h *ReconcileAssetsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload ReconcileAssetsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.Info().Time("requested_at", payload.RequestedAt).Msg("Starting orphaned asset reconciliation")

	// Everything currently in the bucket under the covers prefix
	stored, err := h.storage.ListKeys(ctx, CoverPrefix)
	if err != nil {
		return fmt.Errorf("failed to list stored objects: %w", err)
	}

	// Everything a post still references
	referenced, err := h.postRepo.ListCoverImageKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list referenced keys: %w", err)
	}

	refSet := make(map[string]struct{}, len(referenced))
	for _, key := range referenced {
		refSet[key] = struct{}{}
	}

	deleted := 0
	for _, key := range stored {
		if _, ok := refSet[key]; ok {
			continue
		}
		if err := h.storage.Delete(ctx, key); err != nil {
			// Keep sweeping; the next run picks up what this one missed.
			log.Warn().Err(err).Str("key", key).Msg("Failed to delete orphaned object")
			continue
		}
		deleted++
	}

	log.Info().
		Int("stored", len(stored)).
		Int("referenced", len(referenced)).
		Int("deleted", deleted).
		Msg("Orphaned asset reconciliation finished")

	return nil
}
