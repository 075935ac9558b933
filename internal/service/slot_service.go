package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thegymcollege/reelflow/internal/models"
	"github.com/thegymcollege/reelflow/internal/repository"
)

// slotEpoch is the floor of the posting calendar. No slot is ever
// allocated before it, regardless of the reference instant.
var slotEpoch = time.Date(2026, time.January, 16, 0, 0, 0, 0, time.UTC)

// slotSearchDays bounds the forward scan before falling back.
const slotSearchDays = 365

var ErrUnknownBrand = errors.New("unknown brand")
var ErrUnknownMode = errors.New("unknown mode")

// BrandSlot pairs one brand+mode with its next open posting time.
type BrandSlot struct {
	Brand string    `json:"brand"`
	Mode  string    `json:"mode"`
	Next  time.Time `json:"next"`
}

// SlotService allocates posting times on the shared brand calendar:
// six slots per day per brand four hours apart, alternating light and
// dark, with each brand staggered by its registry index in hours.
type SlotService interface {
	NextAvailableSlot(ctx context.Context, brand, mode string, after time.Time) (time.Time, error)
	SlotMatrix(ctx context.Context, after time.Time) ([]BrandSlot, error)
}

type slotService struct {
	s repository.ScheduleRepository
}

func NewSlotService(s repository.ScheduleRepository) SlotService {
	return &slotService{s: s}
}

// modeHours returns the UTC hours a brand posts in the given mode.
// Light sits on the brand's offset, dark four hours later, both
// repeating every eight hours.
func modeHours(brand models.Brand, mode string) []int {
	base := brand.Index
	if mode == models.ModeDark {
		base += 4
	}
	return []int{base, base + 8, base + 16}
}

func (s *slotService) NextAvailableSlot(ctx context.Context, brand, mode string, after time.Time) (time.Time, error) {
	b, ok := models.BrandByName(brand)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownBrand, brand)
	}
	if !models.ValidMode(mode) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	reference := after.UTC()
	floor := reference
	if floor.Before(slotEpoch) {
		floor = slotEpoch
	}

	taken, err := s.s.OccupiedSlots(ctx, brand, mode, floor)
	if err != nil {
		slog.Info(err.Error())
		return time.Time{}, err
	}

	occupied := make(map[time.Time]struct{}, len(taken))
	for _, t := range taken {
		occupied[t.UTC()] = struct{}{}
	}

	hours := modeHours(b, mode)
	day := time.Date(floor.Year(), floor.Month(), floor.Day(), 0, 0, 0, 0, time.UTC)

	for d := 0; d <= slotSearchDays; d++ {
		for _, h := range hours {
			candidate := day.AddDate(0, 0, d).Add(time.Duration(h) * time.Hour)
			if !candidate.After(reference) {
				continue
			}
			if _, ok := occupied[candidate]; ok {
				continue
			}
			return candidate, nil
		}
	}

	// Saturated calendar. Tomorrow's first matching hour keeps the
	// grid alignment even though the slot is already taken. Derived
	// from floor so a pre-epoch reference still lands after the epoch.
	fallback := time.Date(floor.Year(), floor.Month(), floor.Day(), 0, 0, 0, 0, time.UTC)
	return fallback.AddDate(0, 0, 1).Add(time.Duration(hours[0]) * time.Hour), nil
}

// SlotMatrix reports the next open slot for every brand and mode pair.
func (s *slotService) SlotMatrix(ctx context.Context, after time.Time) ([]BrandSlot, error) {
	matrix := make([]BrandSlot, 0, len(models.Brands)*2)
	for _, b := range models.Brands {
		for _, mode := range []string{models.ModeLight, models.ModeDark} {
			next, err := s.NextAvailableSlot(ctx, b.Name, mode, after)
			if err != nil {
				return nil, err
			}
			matrix = append(matrix, BrandSlot{Brand: b.Name, Mode: mode, Next: next})
		}
	}
	return matrix, nil
}
