package job

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thegymcollege/reelflow/internal/models"
	"github.com/thegymcollege/reelflow/internal/queue"
)

type tickerRepo struct {
	mu    sync.Mutex
	posts map[string]*models.ScheduledPost
}

func newTickerRepo(posts ...*models.ScheduledPost) *tickerRepo {
	r := &tickerRepo{posts: make(map[string]*models.ScheduledPost)}
	for _, p := range posts {
		r.posts[p.ScheduleID] = p
	}
	return r
}

func (r *tickerRepo) Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ScheduleID] = post
	return nil
}

func (r *tickerRepo) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts[id], nil
}

func (r *tickerRepo) List(ctx context.Context, ownerID string) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (r *tickerRepo) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

func (r *tickerRepo) ClaimDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []*models.ScheduledPost
	for _, p := range r.posts {
		if p.Status == models.StatusScheduled && !p.ScheduledTime.After(now) {
			p.Status = models.StatusPublishing
			claimed = append(claimed, p)
		}
	}
	return claimed, nil
}

func (r *tickerRepo) MarkPublished(ctx context.Context, id string, detail models.ResultDetail) error {
	return nil
}

func (r *tickerRepo) MarkPartial(ctx context.Context, id string, detail models.ResultDetail, errMsg string) error {
	return nil
}

func (r *tickerRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	return nil
}

func (r *tickerRepo) ResetForRetry(ctx context.Context, id string, now time.Time) error {
	return nil
}

func (r *tickerRepo) SweepStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.posts {
		if p.Status == models.StatusPublishing && p.ScheduledTime.Before(olderThan) {
			p.Status = models.StatusScheduled
			p.Error = "reset: stuck in publishing (possible crash)"
			n++
		}
	}
	return n, nil
}

func (r *tickerRepo) OccupiedSlots(ctx context.Context, brand, mode string, floor time.Time) ([]time.Time, error) {
	return nil, nil
}

func (r *tickerRepo) status(t *testing.T, id string) models.ScheduleStatus {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	require.True(t, ok, "record %s missing", id)
	return p.Status
}

func tickerPost(id string, status models.ScheduleStatus, at time.Time) *models.ScheduledPost {
	return &models.ScheduledPost{
		ScheduleID:    id,
		OwnerID:       "owner-1",
		Status:        status,
		ScheduledTime: at,
	}
}

func TestTick_ClaimsAndEnqueuesDueRecords(t *testing.T) {
	now := time.Now().UTC()
	repo := newTickerRepo(
		tickerPost("due-1", models.StatusScheduled, now.Add(-time.Minute)),
		tickerPost("due-2", models.StatusScheduled, now.Add(-time.Hour)),
		tickerPost("future", models.StatusScheduled, now.Add(time.Hour)),
	)

	var enqueued []string
	j := &PublishTickerJob{sr: repo, enqueue: func(p queue.PublishSchedulePayload) error {
		enqueued = append(enqueued, p.ScheduleID)
		return nil
	}}

	j.Tick()

	assert.ElementsMatch(t, []string{"due-1", "due-2"}, enqueued)
	assert.Equal(t, models.StatusPublishing, repo.status(t, "due-1"))
	assert.Equal(t, models.StatusPublishing, repo.status(t, "due-2"))
	assert.Equal(t, models.StatusScheduled, repo.status(t, "future"))
}

func TestTick_EnqueueFailureIsRecoveredBySweep(t *testing.T) {
	// Stale enough that the sweep cutoff has already passed.
	repo := newTickerRepo(
		tickerPost("orphan", models.StatusScheduled, time.Now().UTC().Add(-stuckAge-time.Minute)),
	)

	j := &PublishTickerJob{sr: repo, enqueue: func(queue.PublishSchedulePayload) error {
		return errors.New("redis unavailable")
	}}

	j.Tick()
	assert.Equal(t, models.StatusPublishing, repo.status(t, "orphan"))

	j.Sweep()
	assert.Equal(t, models.StatusScheduled, repo.status(t, "orphan"))
}

func TestSweep_ResetsOnlyRecordsPastTheCutoff(t *testing.T) {
	now := time.Now().UTC()
	repo := newTickerRepo(
		tickerPost("stale", models.StatusPublishing, now.Add(-stuckAge-time.Minute)),
		tickerPost("fresh", models.StatusPublishing, now.Add(-stuckAge+time.Minute)),
	)

	j := &PublishTickerJob{sr: repo, enqueue: func(queue.PublishSchedulePayload) error {
		return nil
	}}

	j.Sweep()

	assert.Equal(t, models.StatusScheduled, repo.status(t, "stale"))
	assert.Equal(t, models.StatusPublishing, repo.status(t, "fresh"))
}
