package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thegymcollege/reelflow/internal/models"
)

func testFacebookService(graphURL, uploadURL string) *FacebookService {
	s := &FacebookService{
		client:    &http.Client{Timeout: 5 * time.Second},
		finalize:  &http.Client{Timeout: 5 * time.Second},
		poll:      newPoller(models.PlatformFacebook),
		graphURL:  graphURL,
		uploadURL: uploadURL,
	}
	s.poll.sleep = func(time.Duration) {}
	return s
}

func facebookAccount() *models.SocialAccount {
	return &models.SocialAccount{
		OwnerID:     "owner-1",
		Brand:       "gymcollege",
		Platform:    models.PlatformFacebook,
		AccountID:   "page-77",
		AccessToken: "fb-token",
	}
}

func TestFacebookPublish_FinishCarriesThumbnailAndCaption(t *testing.T) {
	var finishPayload map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("/page-77/video_reels", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		switch payload["upload_phase"] {
		case "start":
			fmt.Fprint(w, `{"video_id":"vid-42","upload_url":"ignored"}`)
		case "finish":
			finishPayload = payload
			fmt.Fprint(w, `{"success":true}`)
		default:
			t.Errorf("unexpected upload_phase %q", payload["upload_phase"])
		}
	})
	mux.HandleFunc("/vid-42", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assert.Equal(t, "https://cdn.example/reel.mp4", r.Header.Get("file_url"))
			assert.Equal(t, "OAuth fb-token", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"success":true}`)
			return
		}
		assert.Equal(t, "fb-token", r.URL.Query().Get("access_token"))
		fmt.Fprint(w, `{"status":{"video_status":"ready"}}`)
	})

	graph := httptest.NewServer(mux)
	defer graph.Close()
	upload := httptest.NewServer(mux)
	defer upload.Close()

	svc := testFacebookService(graph.URL, upload.URL)
	remoteID, err := svc.Publish(context.Background(), facebookAccount(), models.ContentRef{
		VideoURL:     "https://cdn.example/reel.mp4",
		ThumbnailURL: "https://cdn.example/reel.jpg",
		Caption:      "morning mobility",
	})

	require.NoError(t, err)
	assert.Equal(t, "vid-42", remoteID)
	require.NotNil(t, finishPayload)
	assert.Equal(t, "vid-42", finishPayload["video_id"])
	assert.Equal(t, "PUBLISHED", finishPayload["video_state"])
	assert.Equal(t, "morning mobility", finishPayload["description"])
	assert.Equal(t, "https://cdn.example/reel.jpg", finishPayload["thumb"])
	assert.Equal(t, "fb-token", finishPayload["access_token"])
}

func TestFacebookPublish_FinishOmitsThumbWhenUnset(t *testing.T) {
	var finishPayload map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("/page-77/video_reels", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		if payload["upload_phase"] == "finish" {
			finishPayload = payload
			fmt.Fprint(w, `{"success":true}`)
			return
		}
		fmt.Fprint(w, `{"video_id":"vid-42"}`)
	})
	mux.HandleFunc("/vid-42", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"success":true}`)
			return
		}
		fmt.Fprint(w, `{"status":{"video_status":"ready"}}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := testFacebookService(srv.URL, srv.URL)
	_, err := svc.Publish(context.Background(), facebookAccount(), models.ContentRef{
		VideoURL: "https://cdn.example/reel.mp4",
		Caption:  "no cover",
	})

	require.NoError(t, err)
	require.NotNil(t, finishPayload)
	_, hasThumb := finishPayload["thumb"]
	assert.False(t, hasThumb)
}

func TestFacebookPublish_StartErrorSurfacesProtocolError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page-77/video_reels", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"token expired","code":190}}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := testFacebookService(srv.URL, srv.URL)
	_, err := svc.Publish(context.Background(), facebookAccount(), models.ContentRef{
		VideoURL: "https://cdn.example/reel.mp4",
	})

	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "start", perr.Step)
	assert.Equal(t, "token expired", perr.Message)
}
