package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/thegymcollege/reelflow/internal/models"
	"github.com/thegymcollege/reelflow/internal/repository"
	"github.com/thegymcollege/reelflow/internal/service"
)

// TokenRefreshJob keeps stored platform tokens ahead of expiry so
// publish attempts never start with a dead credential. The static
// brand credentials from config are long-lived and not refreshed here.
type TokenRefreshJob struct {
	sr repository.SocialAccountRepository
	yt *service.YoutubeService
	tt *service.TiktokService
}

func NewTokenRefreshJob(
	sr repository.SocialAccountRepository,
	yt *service.YoutubeService,
	tt *service.TiktokService) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr: sr,
		yt: yt,
		tt: tt,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := c.sr.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			switch acc.Platform {
			case models.PlatformYoutube:
				if err := c.yt.RefreshToken(ctx, acc); err != nil {
					slog.Info("Unable to refresh tokens for YouTube")
				}

			case models.PlatformTiktok:
				if err := c.tt.RefreshToken(ctx, acc); err != nil {
					slog.Info("Unable to refresh tokens for TikTok")
				}
			}
		}(acc)
	}

	wg.Wait()
}
