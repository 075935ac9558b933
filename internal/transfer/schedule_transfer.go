package transfer

import "github.com/thegymcollege/reelflow/internal/models"

// ScheduleCreation is the create-schedule request body. ScheduledTime
// is optional RFC3339; when empty the next open slot is allocated.
type ScheduleCreation struct {
	Brand         string            `json:"brand"`
	Mode          string            `json:"mode"`
	Platforms     []string          `json:"platforms"`
	ContentRef    models.ContentRef `json:"content_ref"`
	ScheduledTime string            `json:"scheduled_time,omitempty"`
}

type ScheduleID struct {
	ScheduleID string `json:"schedule_id"`
}
