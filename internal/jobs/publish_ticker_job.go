package job

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/thegymcollege/reelflow/internal/queue"
	"github.com/thegymcollege/reelflow/internal/repository"
)

// stuckAge is how long a record may sit in publishing, judged against
// its scheduled_time, before the sweep treats it as crash-abandoned.
const stuckAge = 10 * time.Minute

// PublishTickerJob drives the delivery loop: each tick claims every
// due record and hands it to the task queue; the slower sweep returns
// orphaned publishing records to the calendar.
type PublishTickerJob struct {
	sr      repository.ScheduleRepository
	enqueue func(queue.PublishSchedulePayload) error
}

func NewPublishTickerJob(sr repository.ScheduleRepository, client *asynq.Client) *PublishTickerJob {
	return &PublishTickerJob{
		sr: sr,
		enqueue: func(payload queue.PublishSchedulePayload) error {
			return queue.EnqueueSchedule(client, payload)
		},
	}
}

func (c *PublishTickerJob) Tick() {
	ctx := context.Background()

	claimed, err := c.sr.ClaimDue(ctx, time.Now().UTC())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, post := range claimed {
		payload := queue.PublishSchedulePayload{ScheduleID: post.ScheduleID}
		if err := c.enqueue(payload); err != nil {
			// The record stays in publishing; the sweep returns it
			// to scheduled once it crosses the staleness cutoff.
			log.Printf("Error enqueueing schedule %s: %v", post.ScheduleID, err)
		}
	}
}

func (c *PublishTickerJob) Sweep() {
	ctx := context.Background()

	n, err := c.sr.SweepStuck(ctx, time.Now().UTC().Add(-stuckAge))
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if n > 0 {
		log.Printf("Reset %d stuck publishing record(s)", n)
	}
}
