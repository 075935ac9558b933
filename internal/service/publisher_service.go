package service

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sort"
	"strings"
	"sync"

	config "github.com/thegymcollege/reelflow/configs"
	"github.com/thegymcollege/reelflow/internal/models"
	"github.com/thegymcollege/reelflow/internal/repository"
	"github.com/thegymcollege/reelflow/pkg/utils"
)

// PublisherService runs one delivery attempt for a claimed record:
// resolve credentials, fan the artifact out to every requested
// platform, and settle the record into a terminal status.
type PublisherService interface {
	PublishSchedule(ctx context.Context, post *models.ScheduledPost) error
}

type publisherService struct {
	cfg     config.Config
	s       repository.ScheduleRepository
	sa      repository.SocialAccountRepository
	ph      repository.PostingHistoryRepository
	clients map[models.Platform]PlatformClient
}

func NewPublisherService(
	cfg config.Config,
	s repository.ScheduleRepository,
	sa repository.SocialAccountRepository,
	ph repository.PostingHistoryRepository,
	clients ...PlatformClient) PublisherService {

	byPlatform := make(map[models.Platform]PlatformClient, len(clients))
	for _, c := range clients {
		byPlatform[c.Platform()] = c
	}

	return &publisherService{
		cfg:     cfg,
		s:       s,
		sa:      sa,
		ph:      ph,
		clients: byPlatform,
	}
}

func (p *publisherService) PublishSchedule(ctx context.Context, post *models.ScheduledPost) error {
	// Resolve every platform's credentials before touching the
	// network. Platforms without a resolvable account fail here and
	// never open an upload session.
	accounts := make(map[models.Platform]*models.SocialAccount, len(post.Platforms))
	results := make(models.ResultDetail, len(post.Platforms))

	for _, platform := range post.Platforms {
		acc, err := p.resolveAccount(ctx, post, platform)
		if err != nil {
			results[platform] = models.PlatformResult{Success: false, Error: err.Error()}
			continue
		}
		accounts[platform] = acc
	}

	if len(accounts) > 0 {
		var wg sync.WaitGroup
		var mu sync.Mutex
		semaphore := make(chan struct{}, 4)

		for platform, acc := range accounts {
			wg.Add(1)
			semaphore <- struct{}{}
			go func(platform models.Platform, acc *models.SocialAccount) {
				defer wg.Done()
				defer func() { <-semaphore }()

				result := models.PlatformResult{Success: true}
				remoteID, err := p.clients[platform].Publish(ctx, acc, post.ContentRef)
				if err != nil {
					result = models.PlatformResult{Success: false, Error: err.Error()}
					log.Printf("Error posting to %s for schedule %s: %v", platform, post.ScheduleID, err)
				} else {
					result.RemoteID = remoteID
				}

				mu.Lock()
				results[platform] = result
				mu.Unlock()
			}(platform, acc)
		}

		wg.Wait()
	}

	p.recordHistory(ctx, post, results)

	return p.settle(ctx, post, results)
}

// resolveAccount finds the credentials for one destination: a stored
// social account row when the owner connected one, else the static
// brand credentials for the Meta platforms. The returned account
// always carries a plaintext access token.
func (p *publisherService) resolveAccount(ctx context.Context, post *models.ScheduledPost, platform models.Platform) (*models.SocialAccount, error) {
	if _, ok := p.clients[platform]; !ok {
		return nil, fmt.Errorf("no upload client for platform %s", platform)
	}

	acc, err := p.sa.GetByOwnerBrand(ctx, post.OwnerID, post.SlotTag.Brand, platform)
	if err != nil {
		return nil, err
	}
	if acc != nil {
		token, err := utils.Decrypt(acc.AccessToken, []byte(p.cfg.SecretKey))
		if err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("%w: stored token for %s is unreadable", ErrCredentialsNotConfigured, platform)
		}
		resolved := *acc
		resolved.AccessToken = token
		return &resolved, nil
	}

	creds, ok := p.cfg.Brands[post.SlotTag.Brand]
	if !ok || creds.MetaAccessToken == "" {
		return nil, fmt.Errorf("%w: %s/%s on %s", ErrCredentialsNotConfigured, post.OwnerID, post.SlotTag.Brand, platform)
	}

	switch platform {
	case models.PlatformInstagram:
		if creds.InstagramAccountID == "" {
			return nil, fmt.Errorf("%w: %s has no instagram account id", ErrCredentialsNotConfigured, post.SlotTag.Brand)
		}
		return &models.SocialAccount{
			OwnerID:     post.OwnerID,
			Brand:       post.SlotTag.Brand,
			Platform:    platform,
			AccountID:   creds.InstagramAccountID,
			AccessToken: creds.MetaAccessToken,
		}, nil
	case models.PlatformFacebook:
		if creds.FacebookPageID == "" {
			return nil, fmt.Errorf("%w: %s has no facebook page id", ErrCredentialsNotConfigured, post.SlotTag.Brand)
		}
		return &models.SocialAccount{
			OwnerID:     post.OwnerID,
			Brand:       post.SlotTag.Brand,
			Platform:    platform,
			AccountID:   creds.FacebookPageID,
			AccessToken: creds.MetaAccessToken,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s/%s on %s", ErrCredentialsNotConfigured, post.OwnerID, post.SlotTag.Brand, platform)
}

func (p *publisherService) recordHistory(ctx context.Context, post *models.ScheduledPost, results models.ResultDetail) {
	for platform, result := range results {
		history := models.PostingHistory{
			OwnerID:      post.OwnerID,
			ScheduleID:   post.ScheduleID,
			Platform:     platform,
			RemoteID:     result.RemoteID,
			ErrorMessage: result.Error,
		}
		if _, err := p.ph.Create(ctx, &history); err != nil {
			log.Printf("Error saving posting history for schedule %s: %v", post.ScheduleID, err)
		}
	}
}

// settle aggregates per-platform outcomes into the record's terminal
// status: every platform ok means published, a mix means partial, and
// no success at all means failed.
func (p *publisherService) settle(ctx context.Context, post *models.ScheduledPost, results models.ResultDetail) error {
	var failed []string
	succeeded := 0
	for platform, result := range results {
		if result.Success {
			succeeded++
		} else {
			failed = append(failed, fmt.Sprintf("%s: %s", platform, result.Error))
		}
	}
	sort.Strings(failed)

	switch {
	case len(results) == 0:
		return p.s.MarkFailed(ctx, post.ScheduleID, "no platforms requested")
	case succeeded == len(results):
		return p.s.MarkPublished(ctx, post.ScheduleID, results)
	case succeeded > 0:
		return p.s.MarkPartial(ctx, post.ScheduleID, results, strings.Join(failed, "; "))
	default:
		return p.s.MarkFailed(ctx, post.ScheduleID, strings.Join(failed, "; "))
	}
}
