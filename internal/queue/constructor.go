package queue

import (
	"github.com/thegymcollege/reelflow/internal/repository"
	"github.com/thegymcollege/reelflow/internal/service"
)

type Queue struct {
	sr repository.ScheduleRepository
	pb service.PublisherService
}

func NewQueue(sr repository.ScheduleRepository, pb service.PublisherService) *Queue {
	return &Queue{
		sr: sr,
		pb: pb,
	}
}

const TaskTypePublishSchedule = "publish:schedule"

type PublishSchedulePayload struct {
	ScheduleID string `json:"schedule_id"`
}
