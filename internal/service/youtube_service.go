package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	config "github.com/thegymcollege/reelflow/configs"
	"github.com/thegymcollege/reelflow/internal/models"
	"github.com/thegymcollege/reelflow/internal/repository"
	"github.com/thegymcollege/reelflow/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YoutubeService publishes a video through the YouTube Data API. Unlike
// the pull-based platforms, YouTube wants the bytes streamed in the
// insert call, so the artifact is fetched to a temp file first.
type YoutubeService struct {
	cfg      config.Config
	sa       repository.SocialAccountRepository
	client   *http.Client
	download *http.Client
}

func NewYoutubeService(cfg config.Config, sa repository.SocialAccountRepository) *YoutubeService {
	return &YoutubeService{
		cfg:    cfg,
		sa:     sa,
		client: &http.Client{Timeout: 30 * time.Second},
		// Video artifacts run to hundreds of megabytes; the fetch gets
		// its own client so the API timeout does not cut it short.
		download: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (s *YoutubeService) Platform() models.Platform {
	return models.PlatformYoutube
}

func (s *YoutubeService) Publish(ctx context.Context, acc *models.SocialAccount, ref models.ContentRef) (string, error) {
	token := &oauth2.Token{AccessToken: acc.AccessToken}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	service, err := youtube.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return "", fmt.Errorf("error creating youtube client: %w", err)
	}

	tempFile, err := s.downloadVideo(ctx, ref.VideoURL)
	if err != nil {
		return "", err
	}
	defer os.Remove(tempFile)

	file, err := os.Open(tempFile)
	if err != nil {
		return "", fmt.Errorf("error opening video file: %w", err)
	}
	defer file.Close()

	title := ref.Title
	if title == "" {
		title = ref.Caption
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: ref.Caption,
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: "public",
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	response, err := call.Media(file).Context(ctx).Do()
	if err != nil {
		return "", &ProtocolError{Platform: s.Platform(), Step: "insert", Message: err.Error()}
	}

	return response.Id, nil
}

// downloadVideo fetches the artifact into a temp file and returns its
// path. The file is cleaned up here on any failure; on success the
// caller owns the removal.
func (s *YoutubeService) downloadVideo(ctx context.Context, videoURL string) (path string, err error) {
	tempFile, err := os.CreateTemp("", "video-*.mp4")
	if err != nil {
		return "", fmt.Errorf("error creating temporary file: %w", err)
	}
	defer func() {
		tempFile.Close()
		if err != nil {
			os.Remove(tempFile.Name())
		}
	}()

	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.download.Do(req)
	if err != nil {
		return "", fmt.Errorf("error downloading video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ProtocolError{
			Platform: s.Platform(),
			Step:     "download",
			Message:  fmt.Sprintf("unexpected response status %d for video url", resp.StatusCode),
		}
	}

	if _, err := io.Copy(tempFile, resp.Body); err != nil {
		return "", fmt.Errorf("error saving video: %w", err)
	}

	return tempFile.Name(), nil
}

// RefreshToken trades the stored refresh token through Google's token
// source and writes the re-encrypted access token back to the row.
func (s *YoutubeService) RefreshToken(ctx context.Context, acc *models.SocialAccount) error {
	conf := &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.upload"},
		Endpoint:     google.Endpoint,
	}

	decryptedRefreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: decryptedRefreshToken})

	token, err := tokenSource.Token()
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	return s.sa.SetToken(ctx, acc.ID, &models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   acc.RefreshToken,
		TokenExpiresAt: token.Expiry,
	})
}
