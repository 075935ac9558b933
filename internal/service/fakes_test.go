package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/thegymcollege/reelflow/internal/models"
)

type fakeScheduleRepo struct {
	mu       sync.Mutex
	posts    map[string]*models.ScheduledPost
	occupied []time.Time

	published map[string]models.ResultDetail
	partial   map[string]string
	failed    map[string]string
	retried   map[string]time.Time
	removed   []string
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		posts:     make(map[string]*models.ScheduledPost),
		published: make(map[string]models.ResultDetail),
		partial:   make(map[string]string),
		failed:    make(map[string]string),
		retried:   make(map[string]time.Time),
	}
}

func (f *fakeScheduleRepo) Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[post.ScheduleID] = post
	return nil
}

func (f *fakeScheduleRepo) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts[id], nil
}

func (f *fakeScheduleRepo) List(ctx context.Context, ownerID string) ([]*models.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ScheduledPost
	for _, p := range f.posts {
		if ownerID == "" || p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	delete(f.posts, id)
	return nil
}

func (f *fakeScheduleRepo) ClaimDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var claimed []*models.ScheduledPost
	for _, p := range f.posts {
		if p.Status == models.StatusScheduled && !p.ScheduledTime.After(now) {
			p.Status = models.StatusPublishing
			claimed = append(claimed, p)
		}
	}
	return claimed, nil
}

func (f *fakeScheduleRepo) MarkPublished(ctx context.Context, id string, detail models.ResultDetail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[id] = detail
	if p, ok := f.posts[id]; ok {
		p.Status = models.StatusPublished
		p.ResultDetail = detail
	}
	return nil
}

func (f *fakeScheduleRepo) MarkPartial(ctx context.Context, id string, detail models.ResultDetail, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partial[id] = errMsg
	if p, ok := f.posts[id]; ok {
		p.Status = models.StatusPartial
		p.ResultDetail = detail
		p.Error = errMsg
	}
	return nil
}

func (f *fakeScheduleRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[id] = errMsg
	if p, ok := f.posts[id]; ok {
		p.Status = models.StatusFailed
		p.Error = errMsg
	}
	return nil
}

func (f *fakeScheduleRepo) ResetForRetry(ctx context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retried[id] = now
	if p, ok := f.posts[id]; ok {
		p.Status = models.StatusScheduled
		p.ScheduledTime = now
		p.Error = ""
	}
	return nil
}

func (f *fakeScheduleRepo) SweepStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.posts {
		if p.Status == models.StatusPublishing && p.ScheduledTime.Before(olderThan) {
			p.Status = models.StatusScheduled
			n++
		}
	}
	return n, nil
}

func (f *fakeScheduleRepo) OccupiedSlots(ctx context.Context, brand, mode string, floor time.Time) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []time.Time
	for _, t := range f.occupied {
		if !t.Before(floor) {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeAccountRepo struct {
	accounts map[string]*models.SocialAccount
	created  []*models.SocialAccount
	removed  []int64
}

func accountKey(ownerID, brand string, platform models.Platform) string {
	return ownerID + "/" + brand + "/" + string(platform)
}

func (f *fakeAccountRepo) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	f.created = append(f.created, sa)
	if f.accounts == nil {
		f.accounts = make(map[string]*models.SocialAccount)
	}
	sa.ID = int64(len(f.created))
	f.accounts[accountKey(sa.OwnerID, sa.Brand, sa.Platform)] = sa
	return sa.ID, nil
}

func (f *fakeAccountRepo) GetByOwnerBrand(ctx context.Context, ownerID, brand string, platform models.Platform) (*models.SocialAccount, error) {
	return f.accounts[accountKey(ownerID, brand, platform)], nil
}

func (f *fakeAccountRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (f *fakeAccountRepo) SetToken(ctx context.Context, id int64, sa *models.SocialAccount) error {
	return nil
}

func (f *fakeAccountRepo) Remove(ctx context.Context, id int64) error {
	f.removed = append(f.removed, id)
	for k, a := range f.accounts {
		if a.ID == id {
			delete(f.accounts, k)
		}
	}
	return nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	records []*models.PostingHistory
}

func (f *fakeHistoryRepo) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, ph)
	return int64(len(f.records)), nil
}

func (f *fakeHistoryRepo) ListByScheduleID(ctx context.Context, scheduleID string) ([]*models.PostingHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PostingHistory
	for _, r := range f.records {
		if r.ScheduleID == scheduleID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeClient struct {
	platform models.Platform
	remoteID string
	err      error

	mu    sync.Mutex
	calls int
}

func (f *fakeClient) Platform() models.Platform {
	return f.platform
}

func (f *fakeClient) Publish(ctx context.Context, acc *models.SocialAccount, ref models.ContentRef) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.remoteID, f.err
}
