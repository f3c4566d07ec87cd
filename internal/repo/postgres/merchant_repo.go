package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/morlov/merchant-admin/internal/domain/enums"
	"github.com/morlov/merchant-admin/internal/domain/model"
)

type MerchantRepo struct {
	pool *pgxpool.Pool
}

func NewMerchantRepo(pool *pgxpool.Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

const merchantColumns = `
id, public_id, name, contact_email, COALESCE(phone, ''), status, owner_user_id,
COALESCE(logo_key, ''), created_at, updated_at`

func (r *MerchantRepo) Create(ctx context.Context, merchant model.Merchant) (model.Merchant, error) {
	const query = `
INSERT INTO merchants (public_id, name, contact_email, phone, status, owner_user_id, logo_key)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''))
RETURNING ` + merchantColumns
	row := r.pool.QueryRow(ctx, query,
		merchant.PublicID, merchant.Name, merchant.ContactEmail, merchant.Phone,
		string(merchant.Status), merchant.OwnerUserID, merchant.LogoKey,
	)
	created, err := scanMerchant(row)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Merchant{}, ErrDuplicate
		}
		return model.Merchant{}, fmt.Errorf("insert merchant: %w", err)
	}
	return created, nil
}

func (r *MerchantRepo) GetByID(ctx context.Context, id int64) (model.Merchant, error) {
	const query = `SELECT ` + merchantColumns + ` FROM merchants WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *MerchantRepo) GetByOwner(ctx context.Context, ownerUserID int64) (model.Merchant, error) {
	const query = `SELECT ` + merchantColumns + ` FROM merchants WHERE owner_user_id = $1`
	return r.getOne(ctx, query, ownerUserID)
}

func (r *MerchantRepo) List(ctx context.Context, limit, offset int) ([]model.Merchant, error) {
	const query = `SELECT ` + merchantColumns + ` FROM merchants ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	var merchants []model.Merchant
	for rows.Next() {
		merchant, err := scanMerchant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan merchant row: %w", err)
		}
		merchants = append(merchants, merchant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merchant rows: %w", err)
	}
	return merchants, nil
}

func (r *MerchantRepo) Update(ctx context.Context, merchant model.Merchant) (model.Merchant, error) {
	const query = `
UPDATE merchants
SET name = $2, contact_email = $3, phone = NULLIF($4, ''), status = $5, updated_at = NOW()
WHERE id = $1
RETURNING ` + merchantColumns
	row := r.pool.QueryRow(ctx, query,
		merchant.ID, merchant.Name, merchant.ContactEmail, merchant.Phone, string(merchant.Status),
	)
	updated, err := scanMerchant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Merchant{}, ErrNotFound
		}
		return model.Merchant{}, fmt.Errorf("update merchant: %w", err)
	}
	return updated, nil
}

func (r *MerchantRepo) UpdateLogo(ctx context.Context, id int64, logoKey string) error {
	const query = `UPDATE merchants SET logo_key = NULLIF($2, ''), updated_at = NOW() WHERE id = $1`
	res, err := r.pool.Exec(ctx, query, id, logoKey)
	if err != nil {
		return fmt.Errorf("update merchant logo: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MerchantRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM merchants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete merchant: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MerchantRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM merchants`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count merchants: %w", err)
	}
	return count, nil
}

func (r *MerchantRepo) CountByStatus(ctx context.Context, status enums.MerchantStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM merchants WHERE status = $1`, string(status),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count merchants by status: %w", err)
	}
	return count, nil
}

func (r *MerchantRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM merchants WHERE created_at >= $1`, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recent merchants: %w", err)
	}
	return count, nil
}

func (r *MerchantRepo) getOne(ctx context.Context, query string, arg any) (model.Merchant, error) {
	merchant, err := scanMerchant(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Merchant{}, ErrNotFound
		}
		return model.Merchant{}, fmt.Errorf("query merchant: %w", err)
	}
	return merchant, nil
}

func scanMerchant(row rowScanner) (model.Merchant, error) {
	var merchant model.Merchant
	var status string
	var createdAt, updatedAt time.Time
	err := row.Scan(
		&merchant.ID,
		&merchant.PublicID,
		&merchant.Name,
		&merchant.ContactEmail,
		&merchant.Phone,
		&status,
		&merchant.OwnerUserID,
		&merchant.LogoKey,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Merchant{}, err
	}
	merchant.Status = enums.MerchantStatus(status)
	merchant.CreatedAt = createdAt.UTC()
	merchant.UpdatedAt = updatedAt.UTC()
	return merchant, nil
}
