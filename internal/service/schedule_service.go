package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/thegymcollege/reelflow/internal/models"
	"github.com/thegymcollege/reelflow/internal/repository"
	"github.com/thegymcollege/reelflow/internal/transfer"
)

var (
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrAlreadyPublished  = errors.New("schedule already published")
	ErrAttemptInProgress = errors.New("schedule attempt is pending or in progress")
)

type ScheduleService interface {
	Create(ctx context.Context, ownerID string, r *transfer.ScheduleCreation) (*models.ScheduledPost, error)
	List(ctx context.Context, ownerID string) ([]*models.ScheduledPost, error)
	Remove(ctx context.Context, ownerID, scheduleID string) error
	Retry(ctx context.Context, ownerID, scheduleID string) (*models.ScheduledPost, error)
	History(ctx context.Context, ownerID, scheduleID string) ([]*models.PostingHistory, error)
}

type scheduleService struct {
	s     repository.ScheduleRepository
	ph    repository.PostingHistoryRepository
	slots SlotService

	// Serializes allocate+insert so two concurrent creates cannot
	// both see the same slot as free.
	allocMu sync.Mutex
}

func NewScheduleService(s repository.ScheduleRepository, ph repository.PostingHistoryRepository, slots SlotService) ScheduleService {
	return &scheduleService{s: s, ph: ph, slots: slots}
}

func (s *scheduleService) Create(ctx context.Context, ownerID string, r *transfer.ScheduleCreation) (*models.ScheduledPost, error) {
	if ownerID == "" {
		return nil, errors.New("owner is not valid")
	}
	if _, ok := models.BrandByName(r.Brand); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBrand, r.Brand)
	}
	if !models.ValidMode(r.Mode) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, r.Mode)
	}
	if len(r.Platforms) == 0 {
		return nil, errors.New("at least one platform is required")
	}
	if r.ContentRef.VideoURL == "" {
		return nil, errors.New("content ref requires a video url")
	}

	platforms := make([]models.Platform, 0, len(r.Platforms))
	for _, p := range r.Platforms {
		switch platform := models.Platform(p); platform {
		case models.PlatformInstagram, models.PlatformFacebook, models.PlatformTiktok, models.PlatformYoutube:
			platforms = append(platforms, platform)
		default:
			return nil, fmt.Errorf("unsupported platform: %s", p)
		}
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	post := &models.ScheduledPost{
		ScheduleID: id,
		OwnerID:    ownerID,
		ContentRef: r.ContentRef,
		Status:     models.StatusScheduled,
		Platforms:  platforms,
		SlotTag:    models.SlotTag{Brand: r.Brand, Mode: r.Mode},
	}

	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	if r.ScheduledTime != "" {
		scheduledTime, err := time.Parse(time.RFC3339, r.ScheduledTime)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled_time: %w", err)
		}
		post.ScheduledTime = scheduledTime.UTC()
	} else {
		slot, err := s.slots.NextAvailableSlot(ctx, r.Brand, r.Mode, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		post.ScheduledTime = slot
	}

	if err := s.s.Create(ctx, nil, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *scheduleService) List(ctx context.Context, ownerID string) ([]*models.ScheduledPost, error) {
	return s.s.List(ctx, ownerID)
}

func (s *scheduleService) Remove(ctx context.Context, ownerID, scheduleID string) error {
	post, err := s.getOwned(ctx, ownerID, scheduleID)
	if err != nil {
		return err
	}
	if post.Status == models.StatusPublishing {
		return ErrAttemptInProgress
	}
	return s.s.Remove(ctx, scheduleID)
}

// Retry moves a failed or partial record back onto the calendar with
// its scheduled time fast-forwarded to now, so the next tick claims
// it. Published records are immutable; pending ones have nothing to
// retry.
func (s *scheduleService) Retry(ctx context.Context, ownerID, scheduleID string) (*models.ScheduledPost, error) {
	post, err := s.getOwned(ctx, ownerID, scheduleID)
	if err != nil {
		return nil, err
	}

	switch post.Status {
	case models.StatusFailed, models.StatusPartial:
		now := time.Now().UTC()
		if err := s.s.ResetForRetry(ctx, scheduleID, now); err != nil {
			return nil, err
		}
		post.Status = models.StatusScheduled
		post.ScheduledTime = now
		post.Error = ""
		return post, nil
	case models.StatusPublished:
		return nil, ErrAlreadyPublished
	default:
		return nil, ErrAttemptInProgress
	}
}

// History returns the per-platform attempt log for an owned record,
// newest first, across every attempt including retries.
func (s *scheduleService) History(ctx context.Context, ownerID, scheduleID string) ([]*models.PostingHistory, error) {
	if _, err := s.getOwned(ctx, ownerID, scheduleID); err != nil {
		return nil, err
	}
	return s.ph.ListByScheduleID(ctx, scheduleID)
}

func (s *scheduleService) getOwned(ctx context.Context, ownerID, scheduleID string) (*models.ScheduledPost, error) {
	post, err := s.s.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if post == nil || (ownerID != "" && post.OwnerID != ownerID) {
		return nil, ErrScheduleNotFound
	}
	return post, nil
}
