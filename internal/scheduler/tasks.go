package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskActivityReminder = "activities.reminder"

type ActivityReminderPayload struct {
	ActivityID string `json:"activityId"`
	OwnerID    string `json:"ownerId"`
}

func NewActivityReminderTask(payload ActivityReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskActivityReminder, data), nil
}

func ParseActivityReminderPayload(task *asynq.Task) (ActivityReminderPayload, error) {
	var payload ActivityReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ActivityReminderPayload{}, err
	}
	return payload, nil
}
