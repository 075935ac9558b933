package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	config "github.com/thegymcollege/reelflow/configs"
	"github.com/thegymcollege/reelflow/internal/models"
	"github.com/thegymcollege/reelflow/internal/repository"
	"github.com/thegymcollege/reelflow/internal/transfer"
	"github.com/thegymcollege/reelflow/pkg/utils"
)

var ErrAccountNotFound = errors.New("social account not found")

// AccountService provisions per-owner platform credentials. Connected
// accounts take precedence over the brand-level meta credentials when
// the publisher resolves a platform.
type AccountService interface {
	Connect(ctx context.Context, ownerID string, r *transfer.AccountConnection) (int64, error)
	Disconnect(ctx context.Context, ownerID, brand string, platform models.Platform) error
}

type accountService struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
}

func NewAccountService(cfg config.Config, sa repository.SocialAccountRepository) AccountService {
	return &accountService{cfg: cfg, sa: sa}
}

func (s *accountService) Connect(ctx context.Context, ownerID string, r *transfer.AccountConnection) (int64, error) {
	if ownerID == "" {
		return 0, errors.New("owner is not valid")
	}
	if _, ok := models.BrandByName(r.Brand); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownBrand, r.Brand)
	}

	platform := models.Platform(r.Platform)
	switch platform {
	case models.PlatformInstagram, models.PlatformFacebook, models.PlatformTiktok, models.PlatformYoutube:
	default:
		return 0, fmt.Errorf("unsupported platform: %s", r.Platform)
	}

	if r.AccountID == "" {
		return 0, errors.New("account id is required")
	}
	if r.AccessToken == "" {
		return 0, errors.New("access token is required")
	}

	accessToken, err := utils.Encrypt([]byte(r.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}

	var refreshToken string
	if r.RefreshToken != "" {
		refreshToken, err = utils.Encrypt([]byte(r.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return 0, err
		}
	}

	var expiresAt time.Time
	if r.TokenExpiresAt != "" {
		expiresAt, err = time.Parse(time.RFC3339, r.TokenExpiresAt)
		if err != nil {
			return 0, fmt.Errorf("invalid token_expires_at: %w", err)
		}
		expiresAt = expiresAt.UTC()
	}

	return s.sa.Create(ctx, nil, &models.SocialAccount{
		OwnerID:        ownerID,
		Brand:          r.Brand,
		Platform:       platform,
		AccountID:      r.AccountID,
		AccountName:    r.AccountName,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: expiresAt,
	})
}

func (s *accountService) Disconnect(ctx context.Context, ownerID, brand string, platform models.Platform) error {
	if ownerID == "" {
		return errors.New("owner is not valid")
	}

	acc, err := s.sa.GetByOwnerBrand(ctx, ownerID, brand, platform)
	if err != nil {
		return err
	}
	if acc == nil {
		return ErrAccountNotFound
	}

	return s.sa.Remove(ctx, acc.ID)
}
