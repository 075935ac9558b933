package models

import "time"

// ScheduleStatus is the lifecycle state of a scheduled post.
// Publishing is transient and crash-recoverable; published, partial
// and failed are terminal.
type ScheduleStatus string

const (
	StatusScheduled  ScheduleStatus = "scheduled"
	StatusPublishing ScheduleStatus = "publishing"
	StatusPublished  ScheduleStatus = "published"
	StatusPartial    ScheduleStatus = "partial"
	StatusFailed     ScheduleStatus = "failed"
)

func (s ScheduleStatus) Terminal() bool {
	return s == StatusPublished || s == StatusPartial || s == StatusFailed
}

// Platform identifies a publishing destination.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTiktok    Platform = "tiktok"
	PlatformYoutube   Platform = "youtube"
)

// ContentRef points at a pre-rendered artifact. The scheduler never
// interprets the locators beyond handing them to an upload client.
type ContentRef struct {
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Caption      string `json:"caption"`
	Title        string `json:"title,omitempty"`
}

// SlotTag is the {brand, mode} pair used for slot occupancy lookups.
type SlotTag struct {
	Brand string `json:"brand"`
	Mode  string `json:"mode"`
}

// PlatformResult is one platform's outcome for a single attempt.
type PlatformResult struct {
	Success  bool   `json:"success"`
	RemoteID string `json:"remote_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ResultDetail map[Platform]PlatformResult

type ScheduledPost struct {
	ScheduleID    string         `db:"schedule_id" json:"schedule_id"`
	OwnerID       string         `db:"owner_id" json:"owner_id"`
	ContentRef    ContentRef     `db:"content_ref" json:"content_ref"`
	ScheduledTime time.Time      `db:"scheduled_time" json:"scheduled_time"`
	Status        ScheduleStatus `db:"status" json:"status"`
	Platforms     []Platform     `db:"platforms" json:"platforms"`
	SlotTag       SlotTag        `db:"slot_tag" json:"slot_tag"`
	ResultDetail  ResultDetail   `db:"result_detail" json:"result_detail,omitempty"`
	Error         string         `db:"publish_error" json:"error,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	PublishedAt   *time.Time     `db:"published_at" json:"published_at,omitempty"`
}
