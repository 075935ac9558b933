package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/thegymcollege/reelflow/internal/models"
)

type SocialAccountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error)
	GetByOwnerBrand(ctx context.Context, ownerID, brand string, platform models.Platform) (*models.SocialAccount, error)
	ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error)
	SetToken(ctx context.Context, id int64, sa *models.SocialAccount) error
	Remove(ctx context.Context, id int64) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

func (r *socialAccountRepository) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	insertQuery := `
		INSERT INTO social_accounts(owner_id, brand, platform, account_id, account_name, access_token, refresh_token, token_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, insertQuery, sa.OwnerID, sa.Brand, sa.Platform,
			sa.AccountID, sa.AccountName, sa.AccessToken, sa.RefreshToken, sa.TokenExpiresAt).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, insertQuery, sa.OwnerID, sa.Brand, sa.Platform,
			sa.AccountID, sa.AccountName, sa.AccessToken, sa.RefreshToken, sa.TokenExpiresAt).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *socialAccountRepository) GetByOwnerBrand(ctx context.Context, ownerID, brand string, platform models.Platform) (*models.SocialAccount, error) {
	query := `
		SELECT id, owner_id, brand, platform, account_id, account_name, access_token, refresh_token, token_expires_at, created_at, updated_at
		FROM social_accounts
		WHERE owner_id = $1 AND brand = $2 AND platform = $3
	`
	row := r.db.QueryRowContext(ctx, query, ownerID, brand, platform)

	var sa models.SocialAccount
	err := row.Scan(&sa.ID, &sa.OwnerID, &sa.Brand, &sa.Platform, &sa.AccountID,
		&sa.AccountName, &sa.AccessToken, &sa.RefreshToken, &sa.TokenExpiresAt,
		&sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &sa, nil
}

func (r *socialAccountRepository) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	query := `
		SELECT id, owner_id, brand, platform, access_token, refresh_token, token_expires_at
		FROM social_accounts
		WHERE (token_expires_at BETWEEN $1 AND $2) OR (token_expires_at < $1)
	`
	rows, err := r.db.QueryContext(ctx, query, initialTime, finalTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		var sa models.SocialAccount
		err := rows.Scan(&sa.ID, &sa.OwnerID, &sa.Brand, &sa.Platform,
			&sa.AccessToken, &sa.RefreshToken, &sa.TokenExpiresAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &sa)
	}
	return accounts, rows.Err()
}

func (r *socialAccountRepository) SetToken(ctx context.Context, id int64, sa *models.SocialAccount) error {
	query := `
		UPDATE social_accounts
		SET
			access_token = COALESCE(NULLIF($2, ''), access_token),
			refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
			token_expires_at = COALESCE($4, token_expires_at),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, sa.AccessToken, sa.RefreshToken, sa.TokenExpiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) Remove(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM social_accounts WHERE id = $1`, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
