package scheduler

import (
	"context"

	"pipeline_crm_backend/internal/activities/repository"
	"pipeline_crm_backend/platform/config"
	"pipeline_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker processes scheduled tasks: currently activity reminders.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) *Worker {
	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	queue := queueName(cfg)
	server := asynq.NewServer(redisClientOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		log:    log,
	}

	mux.HandleFunc(TaskActivityReminder, w.handleActivityReminder)

	return w
}

// handleActivityReminder fires a due reminder. Completed activities and
// already-sent reminders are skipped, so redelivery is harmless.
func (w *Worker) handleActivityReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseActivityReminderPayload(task)
	if err != nil {
		return err
	}

	activityID, err := uuid.Parse(payload.ActivityID)
	if err != nil {
		return err
	}

	sent, err := w.repo.MarkReminderSent(ctx, activityID)
	if err != nil {
		return err
	}
	if !sent {
		return nil
	}

	activity, err := w.repo.Get(ctx, activityID)
	if err != nil {
		return err
	}

	w.log.Info("activity reminder due",
		"activity_id", activity.ID,
		"type", activity.Type,
		"subject", activity.Subject,
		"owner_id", activity.OwnerID,
	)
	return nil
}

// Run starts the worker and blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
