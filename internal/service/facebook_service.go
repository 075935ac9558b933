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

const metaUploadURL = "https://rupload.facebook.com/video-upload/v21.0"

// FacebookService publishes a page reel through the phased upload
// protocol: start an upload session, hand Facebook the video URL to
// fetch, poll processing, then finish with the caption.
type FacebookService struct {
	client    *http.Client
	finalize  *http.Client
	poll      *poller
	graphURL  string
	uploadURL string
}

func NewFacebookService() *FacebookService {
	return &FacebookService{
		client:    &http.Client{Timeout: 30 * time.Second},
		finalize:  &http.Client{Timeout: 60 * time.Second},
		poll:      newPoller(models.PlatformFacebook),
		graphURL:  metaGraphURL,
		uploadURL: metaUploadURL,
	}
}

func (s *FacebookService) Platform() models.Platform {
	return models.PlatformFacebook
}

func (s *FacebookService) Publish(ctx context.Context, acc *models.SocialAccount, ref models.ContentRef) (string, error) {
	videoID, err := s.startUpload(ctx, acc)
	if err != nil {
		return "", err
	}

	if err := s.transferFromURL(ctx, acc, videoID, ref.VideoURL); err != nil {
		return "", err
	}

	if err := s.waitForProcessing(ctx, acc, videoID); err != nil {
		return "", err
	}

	if err := s.finishUpload(ctx, acc, videoID, ref); err != nil {
		return "", err
	}

	return videoID, nil
}

func (s *FacebookService) startUpload(ctx context.Context, acc *models.SocialAccount) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/video_reels", s.graphURL, acc.AccountID)

	payload := map[string]string{
		"upload_phase": "start",
		"access_token": acc.AccessToken,
	}

	var result transfer.ReelUploadStart
	status, err := postJSON(ctx, s.client, endpoint, nil, payload, &result)
	if err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", &ProtocolError{Platform: s.Platform(), Step: "start", Message: result.Error.Message}
	}
	if status != http.StatusOK || result.VideoID == "" {
		return "", &ProtocolError{Platform: s.Platform(), Step: "start",
			Message: fmt.Sprintf("no video id returned (status %d)", status)}
	}

	return result.VideoID, nil
}

// transferFromURL asks Facebook to pull the video itself; the locator is
// passed in the file_url header, no bytes are streamed from here.
func (s *FacebookService) transferFromURL(ctx context.Context, acc *models.SocialAccount, videoID, videoURL string) error {
	endpoint := fmt.Sprintf("%s/%s", s.uploadURL, videoID)

	headers := map[string]string{
		"Authorization": "OAuth " + acc.AccessToken,
		"file_url":      videoURL,
	}

	var result struct {
		Success bool                `json:"success"`
		Error   *transfer.MetaError `json:"error"`
	}
	status, err := postJSON(ctx, s.client, endpoint, headers, nil, &result)
	if err != nil {
		return err
	}
	if result.Error != nil {
		return &ProtocolError{Platform: s.Platform(), Step: "upload", Message: result.Error.Message}
	}
	if status != http.StatusOK || !result.Success {
		return &ProtocolError{Platform: s.Platform(), Step: "upload",
			Message: fmt.Sprintf("upload handoff rejected (status %d)", status)}
	}

	return nil
}

func (s *FacebookService) waitForProcessing(ctx context.Context, acc *models.SocialAccount, videoID string) error {
	endpoint := fmt.Sprintf("%s/%s?fields=status&access_token=%s",
		s.graphURL, videoID, url.QueryEscape(acc.AccessToken))

	return s.poll.wait(ctx, func(ctx context.Context) (pollState, string, error) {
		var result transfer.ReelVideoStatus
		if _, err := getJSON(ctx, s.client, endpoint, nil, &result); err != nil {
			return pollPending, "", err
		}
		if result.Error != nil {
			return pollPending, "", &ProtocolError{Platform: s.Platform(), Step: "video_status", Message: result.Error.Message}
		}

		switch result.Status.VideoStatus {
		case "ready", "upload_complete":
			return pollReady, "", nil
		case "error":
			return pollFailed, "video processing reported error", nil
		default:
			if result.Status.ProcessingPhase.Status == "complete" {
				return pollReady, "", nil
			}
			return pollPending, "", nil
		}
	})
}

func (s *FacebookService) finishUpload(ctx context.Context, acc *models.SocialAccount, videoID string, ref models.ContentRef) error {
	endpoint := fmt.Sprintf("%s/%s/video_reels", s.graphURL, acc.AccountID)

	payload := map[string]string{
		"upload_phase": "finish",
		"video_id":     videoID,
		"video_state":  "PUBLISHED",
		"description":  ref.Caption,
		"access_token": acc.AccessToken,
	}
	if ref.ThumbnailURL != "" {
		payload["thumb"] = ref.ThumbnailURL
	}

	var result struct {
		Success bool                `json:"success"`
		Error   *transfer.MetaError `json:"error"`
	}
	status, err := postJSON(ctx, s.finalize, endpoint, nil, payload, &result)
	if err != nil {
		return err
	}
	if result.Error != nil {
		return &ProtocolError{Platform: s.Platform(), Step: "finish", Message: result.Error.Message}
	}
	if status != http.StatusOK {
		return &ProtocolError{Platform: s.Platform(), Step: "finish",
			Message: fmt.Sprintf("publish rejected (status %d)", status)}
	}

	return nil
}
