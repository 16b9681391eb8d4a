package scheduler

import (
	"context"
	"time"

	"pipeline_crm_backend/platform/config"

	"github.com/hibiken/asynq"
)

// ReminderScheduler schedules activity reminders for a future time. A nil
// *Client satisfies it as a no-op, so callers never branch on availability.
type ReminderScheduler interface {
	ScheduleActivityReminder(ctx context.Context, payload ActivityReminderPayload, runAt time.Time) error
}

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) *Client {
	return &Client{
		client: asynq.NewClient(redisClientOpt(cfg)),
		queue:  queueName(cfg),
	}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) ScheduleActivityReminder(ctx context.Context, payload ActivityReminderPayload, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewActivityReminderTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}

func redisClientOpt(cfg config.SchedulerConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
		DB:       cfg.GetRedisDB(),
	}
}

func queueName(cfg config.SchedulerConfig) string {
	if q := cfg.GetAsynqQueueName(); q != "" {
		return q
	}
	return "default"
}
