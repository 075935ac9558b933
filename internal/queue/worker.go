package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
	"github.com/thegymcollege/reelflow/internal/models"
)

func (j *Queue) HandlePublishScheduleTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishSchedulePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.PublishSchedule(ctx, payload.ScheduleID)
}

// PublishSchedule re-reads the record before attempting delivery. The
// ticker already moved it to publishing when it claimed it; any other
// status means the task is stale (redelivered, retried by hand, or
// swept) and must not cause a second attempt.
func (j *Queue) PublishSchedule(ctx context.Context, scheduleID string) error {
	post, err := j.sr.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if post == nil {
		log.Printf("Schedule %s no longer exists, dropping task", scheduleID)
		return nil
	}
	if post.Status != models.StatusPublishing {
		log.Printf("Schedule %s is %s, not publishing, dropping task", scheduleID, post.Status)
		return nil
	}

	return j.pb.PublishSchedule(ctx, post)
}
