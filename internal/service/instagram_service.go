package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/thegymcollege/reelflow/internal/models"
	"github.com/thegymcollege/reelflow/internal/transfer"
)

const metaGraphURL = "https://graph.facebook.com/v21.0"

// InstagramService publishes a reel through the Meta content publishing
// protocol: create a media container for the remote-fetchable video URL,
// poll the container until Meta finishes processing, then publish it.
type InstagramService struct {
	client *http.Client
	poll   *poller
}

func NewInstagramService() *InstagramService {
	return &InstagramService{
		client: &http.Client{Timeout: 30 * time.Second},
		poll:   newPoller(models.PlatformInstagram),
	}
}

func (s *InstagramService) Platform() models.Platform {
	return models.PlatformInstagram
}

func (s *InstagramService) Publish(ctx context.Context, acc *models.SocialAccount, ref models.ContentRef) (string, error) {
	containerID, err := s.createContainer(ctx, acc, ref)
	if err != nil {
		return "", err
	}

	if err := s.waitForContainer(ctx, acc, containerID); err != nil {
		return "", err
	}

	return s.publishContainer(ctx, acc, containerID)
}

func (s *InstagramService) createContainer(ctx context.Context, acc *models.SocialAccount, ref models.ContentRef) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media", metaGraphURL, acc.AccountID)

	payload := map[string]interface{}{
		"media_type":    "REELS",
		"video_url":     ref.VideoURL,
		"caption":       ref.Caption,
		"share_to_feed": true,
		"access_token":  acc.AccessToken,
	}
	if ref.ThumbnailURL != "" {
		payload["thumb_offset"] = 0
	}

	var result transfer.MetaIDResponse
	status, err := postJSON(ctx, s.client, endpoint, nil, payload, &result)
	if err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", &ProtocolError{Platform: s.Platform(), Step: "create_container", Message: result.Error.Message}
	}
	if status != http.StatusOK || result.ID == "" {
		return "", &ProtocolError{Platform: s.Platform(), Step: "create_container",
			Message: fmt.Sprintf("no container id returned (status %d)", status)}
	}

	return result.ID, nil
}

func (s *InstagramService) waitForContainer(ctx context.Context, acc *models.SocialAccount, containerID string) error {
	endpoint := fmt.Sprintf("%s/%s?fields=id,status,status_code&access_token=%s",
		metaGraphURL, containerID, url.QueryEscape(acc.AccessToken))

	return s.poll.wait(ctx, func(ctx context.Context) (pollState, string, error) {
		var result transfer.MetaContainerStatus
		if _, err := getJSON(ctx, s.client, endpoint, nil, &result); err != nil {
			return pollPending, "", err
		}
		if result.Error != nil {
			return pollPending, "", &ProtocolError{Platform: s.Platform(), Step: "container_status", Message: result.Error.Message}
		}

		switch result.StatusCode {
		case "FINISHED":
			return pollReady, "", nil
		case "ERROR", "EXPIRED":
			return pollFailed, fmt.Sprintf("container %s: %s", result.StatusCode, result.Status), nil
		default:
			return pollPending, "", nil
		}
	})
}

func (s *InstagramService) publishContainer(ctx context.Context, acc *models.SocialAccount, containerID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media_publish", metaGraphURL, acc.AccountID)

	payload := map[string]string{
		"creation_id":  containerID,
		"access_token": acc.AccessToken,
	}

	var result transfer.MetaIDResponse
	status, err := postJSON(ctx, s.client, endpoint, nil, payload, &result)
	if err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", &ProtocolError{Platform: s.Platform(), Step: "publish", Message: result.Error.Message}
	}
	if status != http.StatusOK || result.ID == "" {
		return "", &ProtocolError{Platform: s.Platform(), Step: "publish",
			Message: fmt.Sprintf("no media id returned (status %d)", status)}
	}

	return result.ID, nil
}
