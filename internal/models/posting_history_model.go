package models

import "time"

// PostingHistory is one row per platform attempt, kept for auditing.
type PostingHistory struct {
	ID           int64     `db:"id"`
	OwnerID      string    `db:"owner_id"`
	ScheduleID   string    `db:"schedule_id"`
	Platform     Platform  `db:"platform"`
	RemoteID     string    `db:"remote_id"`
	ErrorMessage string    `db:"error_message"`
	CreatedAt    time.Time `db:"created_at"`
}
