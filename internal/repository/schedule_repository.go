package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/thegymcollege/reelflow/internal/models"
)

type ScheduleRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) error
	GetByID(ctx context.Context, id string) (*models.ScheduledPost, error)
	List(ctx context.Context, ownerID string) ([]*models.ScheduledPost, error)
	Remove(ctx context.Context, id string) error
	ClaimDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error)
	MarkPublished(ctx context.Context, id string, detail models.ResultDetail) error
	MarkPartial(ctx context.Context, id string, detail models.ResultDetail, errMsg string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	ResetForRetry(ctx context.Context, id string, now time.Time) error
	SweepStuck(ctx context.Context, olderThan time.Time) (int64, error)
	OccupiedSlots(ctx context.Context, brand, mode string, floor time.Time) ([]time.Time, error)
}

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `schedule_id, owner_id, content_ref, scheduled_time, status,
	platforms, brand, mode, result_detail, publish_error, created_at, published_at`

func (r *scheduleRepository) Create(ctx context.Context, tx *sql.Tx, post *models.ScheduledPost) error {
	query := `
		INSERT INTO scheduled_posts (schedule_id, owner_id, content_ref, scheduled_time, status, platforms, brand, mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	contentRef, err := json.Marshal(post.ContentRef)
	if err != nil {
		return err
	}

	platforms := make([]string, len(post.Platforms))
	for i, p := range post.Platforms {
		platforms[i] = string(p)
	}

	args := []interface{}{
		post.ScheduleID, post.OwnerID, contentRef, post.ScheduledTime,
		post.Status, pq.Array(platforms), post.SlotTag.Brand, post.SlotTag.Mode,
	}

	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func scanSchedule(row interface{ Scan(...interface{}) error }) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	var contentRef, resultDetail []byte
	var platforms pq.StringArray
	var publishError sql.NullString
	var publishedAt sql.NullTime

	err := row.Scan(&post.ScheduleID, &post.OwnerID, &contentRef, &post.ScheduledTime,
		&post.Status, &platforms, &post.SlotTag.Brand, &post.SlotTag.Mode,
		&resultDetail, &publishError, &post.CreatedAt, &publishedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(contentRef, &post.ContentRef); err != nil {
		return nil, err
	}
	if len(resultDetail) > 0 {
		if err := json.Unmarshal(resultDetail, &post.ResultDetail); err != nil {
			return nil, err
		}
	}
	for _, p := range platforms {
		post.Platforms = append(post.Platforms, models.Platform(p))
	}
	post.Error = publishError.String
	if publishedAt.Valid {
		t := publishedAt.Time
		post.PublishedAt = &t
	}

	return &post, nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (*models.ScheduledPost, error) {
	query := `SELECT ` + scheduleColumns + ` FROM scheduled_posts WHERE schedule_id = $1`

	post, err := scanSchedule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *scheduleRepository) List(ctx context.Context, ownerID string) ([]*models.ScheduledPost, error) {
	query := `SELECT ` + scheduleColumns + ` FROM scheduled_posts`
	args := []interface{}{}

	if ownerID != "" {
		query += ` WHERE owner_id = $1`
		args = append(args, ownerID)
	}
	query += ` ORDER BY scheduled_time DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		post, err := scanSchedule(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *scheduleRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_posts WHERE schedule_id = $1`, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// ClaimDue selects every due scheduled record and moves it to publishing
// inside one transaction. FOR UPDATE SKIP LOCKED makes concurrent claimers
// partition the due set instead of blocking or double-claiming; a record
// is returned to exactly one caller.
func (r *scheduleRepository) ClaimDue(ctx context.Context, now time.Time) ([]*models.ScheduledPost, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer tx.Rollback()

	query := `
		UPDATE scheduled_posts
		SET status = $1
		WHERE schedule_id IN (
			SELECT schedule_id FROM scheduled_posts
			WHERE status = $2 AND scheduled_time <= $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + scheduleColumns

	rows, err := tx.QueryContext(ctx, query, models.StatusPublishing, models.StatusScheduled, now)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	var claimed []*models.ScheduledPost
	for rows.Next() {
		post, err := scanSchedule(rows)
		if err != nil {
			rows.Close()
			slog.Info(err.Error())
			return nil, err
		}
		claimed = append(claimed, post)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		slog.Info(err.Error())
		return nil, err
	}
	rows.Close()

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return claimed, nil
}

func (r *scheduleRepository) MarkPublished(ctx context.Context, id string, detail models.ResultDetail) error {
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return err
	}

	query := `
		UPDATE scheduled_posts
		SET status = $1, result_detail = $2, publish_error = NULL, published_at = $3
		WHERE schedule_id = $4
	`
	_, err = r.db.ExecContext(ctx, query, models.StatusPublished, detailJSON, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) MarkPartial(ctx context.Context, id string, detail models.ResultDetail, errMsg string) error {
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return err
	}

	query := `
		UPDATE scheduled_posts
		SET status = $1, result_detail = $2, publish_error = $3, published_at = $4
		WHERE schedule_id = $5
	`
	_, err = r.db.ExecContext(ctx, query, models.StatusPartial, detailJSON, errMsg, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) MarkFailed(ctx context.Context, id string, errMsg string) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1, publish_error = $2
		WHERE schedule_id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.StatusFailed, errMsg, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// ResetForRetry forces a terminal record back to scheduled and
// fast-forwards its scheduled_time so the next tick picks it up.
func (r *scheduleRepository) ResetForRetry(ctx context.Context, id string, now time.Time) error {
	query := `
		UPDATE scheduled_posts
		SET status = $1, publish_error = NULL, scheduled_time = $2
		WHERE schedule_id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.StatusScheduled, now, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// SweepStuck returns crash-abandoned publishing records to scheduled.
// Staleness is judged on scheduled_time: a healthy attempt finishes in
// well under a minute, so anything still publishing past the cutoff was
// orphaned by a dead process.
func (r *scheduleRepository) SweepStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		UPDATE scheduled_posts
		SET status = $1, publish_error = 'reset: stuck in publishing (possible crash)'
		WHERE status = $2 AND scheduled_time < $3
	`
	res, err := r.db.ExecContext(ctx, query, models.StatusScheduled, models.StatusPublishing, olderThan)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

// OccupiedSlots lists the scheduled_time of every active record for one
// {brand, mode} pair at or after the floor. Other brands and modes are
// excluded even when they share a timestamp.
func (r *scheduleRepository) OccupiedSlots(ctx context.Context, brand, mode string, floor time.Time) ([]time.Time, error) {
	query := `
		SELECT scheduled_time FROM scheduled_posts
		WHERE brand = $1 AND mode = $2
		  AND status IN ($3, $4)
		  AND scheduled_time >= $5
	`
	rows, err := r.db.QueryContext(ctx, query, brand, mode,
		models.StatusScheduled, models.StatusPublishing, floor)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var occupied []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		occupied = append(occupied, t)
	}
	return occupied, rows.Err()
}
