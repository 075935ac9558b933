package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/thegymcollege/reelflow/configs"
	"github.com/thegymcollege/reelflow/internal/models"
	"github.com/thegymcollege/reelflow/internal/repository"
	"github.com/thegymcollege/reelflow/internal/transfer"
	"github.com/thegymcollege/reelflow/pkg/utils"
)

const (
	tiktokAPIURL   = "https://open.tiktokapis.com/v2"
	tiktokTokenURL = "https://open.tiktokapis.com/v2/oauth/token/"
)

// TiktokService publishes a video through TikTok's direct-post flow:
// init a PULL_FROM_URL session, then poll the publish status endpoint
// until TikTok finishes fetching and processing the video.
type TiktokService struct {
	cfg    config.Config
	sa     repository.SocialAccountRepository
	client *http.Client
	poll   *poller
}

func NewTiktokService(cfg config.Config, sa repository.SocialAccountRepository) *TiktokService {
	return &TiktokService{
		cfg:    cfg,
		sa:     sa,
		client: &http.Client{Timeout: 30 * time.Second},
		poll:   newPoller(models.PlatformTiktok),
	}
}

func (s *TiktokService) Platform() models.Platform {
	return models.PlatformTiktok
}

func (s *TiktokService) Publish(ctx context.Context, acc *models.SocialAccount, ref models.ContentRef) (string, error) {
	publishID, err := s.initUpload(ctx, acc, ref)
	if err != nil {
		return "", err
	}

	remoteID, err := s.waitForPublish(ctx, acc, publishID)
	if err != nil {
		return "", err
	}
	if remoteID == "" {
		remoteID = publishID
	}

	return remoteID, nil
}

func (s *TiktokService) initUpload(ctx context.Context, acc *models.SocialAccount, ref models.ContentRef) (string, error) {
	request := transfer.VideoUploadRequest{
		PostInfo: transfer.VideoPostInfo{
			Title:                 ref.Caption,
			PrivacyLevel:          "PUBLIC_TO_EVERYONE",
			VideoCoverTimestampMs: 1000,
		},
		SourceInfo: transfer.VideoSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: ref.VideoURL,
		},
	}

	headers := map[string]string{"Authorization": "Bearer " + acc.AccessToken}

	var result transfer.TikTokUploadResponse
	status, err := postJSON(ctx, s.client, tiktokAPIURL+"/post/publish/video/init/", headers, request, &result)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || result.Data.PublishID == "" {
		return "", &ProtocolError{Platform: s.Platform(), Step: "init", Message: result.Error.Message}
	}

	return result.Data.PublishID, nil
}

func (s *TiktokService) waitForPublish(ctx context.Context, acc *models.SocialAccount, publishID string) (string, error) {
	headers := map[string]string{"Authorization": "Bearer " + acc.AccessToken}
	payload := map[string]string{"publish_id": publishID}

	var remoteID string
	err := s.poll.wait(ctx, func(ctx context.Context) (pollState, string, error) {
		var result transfer.TikTokStatusResponse
		status, err := postJSON(ctx, s.client, tiktokAPIURL+"/post/publish/status/fetch/", headers, payload, &result)
		if err != nil {
			return pollPending, "", err
		}
		if status != http.StatusOK {
			return pollPending, "", &ProtocolError{Platform: s.Platform(), Step: "status_fetch", Message: result.Error.Message}
		}

		switch result.Data.Status {
		case "PUBLISH_COMPLETE":
			if len(result.Data.PubliclyAvailablePostID) > 0 {
				remoteID = result.Data.PubliclyAvailablePostID[0]
			}
			return pollReady, "", nil
		case "FAILED":
			return pollFailed, result.Data.FailReason, nil
		default:
			return pollPending, "", nil
		}
	})

	return remoteID, err
}

// RefreshToken exchanges the stored refresh token for a new access
// token and writes the re-encrypted pair back to the account row.
func (s *TiktokService) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	decryptedRefreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	data := url.Values{}
	data.Set("client_key", s.cfg.TiktokClientKey)
	data.Set("client_secret", s.cfg.TiktokClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", decryptedRefreshToken)

	req, err := http.NewRequestWithContext(ctx, "POST", tiktokTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("TikTok token refresh failed: %s", body)
		return fmt.Errorf("tiktok token endpoint returned status %d", resp.StatusCode)
	}

	var tokenResponse transfer.TiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	encryptedRefreshToken, err := utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	return s.sa.SetToken(ctx, acc.ID, &models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		TokenExpiresAt: time.Now().Add(time.Duration(tokenResponse.ExpiresIn) * time.Second),
	})
}
