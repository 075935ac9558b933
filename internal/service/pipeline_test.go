package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thegymcollege/reelflow/internal/models"
	"github.com/thegymcollege/reelflow/internal/transfer"
	"github.com/thegymcollege/reelflow/pkg/utils"
)

// Walks a record through the whole delivery path: slot allocation on
// create, the due-claim transition, and a mixed-outcome publish
// attempt settling as partial.
func TestDeliveryPipeline_MixedOutcomeSettlesPartial(t *testing.T) {
	ctx := context.Background()
	repo := newFakeScheduleRepo()
	history := &fakeHistoryRepo{}
	cfg := testConfig()

	encryptedToken, err := utils.Encrypt([]byte("tiktok-token"), []byte(cfg.SecretKey))
	require.NoError(t, err)
	accounts := &fakeAccountRepo{accounts: map[string]*models.SocialAccount{
		accountKey("owner-1", "gymcollege", models.PlatformTiktok): {
			ID:          7,
			OwnerID:     "owner-1",
			Brand:       "gymcollege",
			Platform:    models.PlatformTiktok,
			AccountID:   "tt-acc",
			AccessToken: encryptedToken,
		},
	}}

	scheduler := NewScheduleService(repo, history, NewSlotService(repo))
	created, err := scheduler.Create(ctx, "owner-1", &transfer.ScheduleCreation{
		Brand:     "gymcollege",
		Mode:      models.ModeLight,
		Platforms: []string{"instagram", "tiktok"},
		ContentRef: models.ContentRef{
			VideoURL: "https://cdn.example.com/v.mp4",
			Caption:  "leg day",
		},
	})
	require.NoError(t, err)

	// The allocated slot sits on the brand's light grid.
	assert.Contains(t, []int{0, 8, 16}, created.ScheduledTime.Hour())
	assert.Zero(t, created.ScheduledTime.Minute())
	assert.Equal(t, models.StatusScheduled, created.Status)

	claimed, err := repo.ClaimDue(ctx, created.ScheduledTime)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, models.StatusPublishing, claimed[0].Status)

	ig := &fakeClient{platform: models.PlatformInstagram, remoteID: "ig-media-1"}
	tiktok := &fakeClient{platform: models.PlatformTiktok, err: errors.New("video fetch rejected")}
	publisher := NewPublisherService(cfg, repo, accounts, history, ig, tiktok)

	require.NoError(t, publisher.PublishSchedule(ctx, claimed[0]))

	post, err := repo.GetByID(ctx, created.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartial, post.Status)

	igResult := post.ResultDetail[models.PlatformInstagram]
	assert.True(t, igResult.Success)
	assert.Equal(t, "ig-media-1", igResult.RemoteID)

	ttResult := post.ResultDetail[models.PlatformTiktok]
	assert.False(t, ttResult.Success)
	assert.Contains(t, ttResult.Error, "video fetch rejected")

	attempts, err := history.ListByScheduleID(ctx, created.ScheduleID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

// A second claim at the same instant must come back empty once the
// record has moved to publishing.
func TestDeliveryPipeline_ClaimIsSingleShot(t *testing.T) {
	ctx := context.Background()
	repo := newFakeScheduleRepo()
	at := time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC)
	repo.posts["sched-once"] = &models.ScheduledPost{
		ScheduleID:    "sched-once",
		OwnerID:       "owner-1",
		Status:        models.StatusScheduled,
		ScheduledTime: at,
	}

	first, err := repo.ClaimDue(ctx, at)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := repo.ClaimDue(ctx, at)
	require.NoError(t, err)
	assert.Empty(t, second)
}
