package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
)

// ShopFilter narrows shop listings.
type ShopFilter struct {
	ApprovalStatus *domain.ShopApprovalStatus
	Banned         *bool
	Limit          int
	Offset         int
}

// ShopRepository defines persistence access for vendor shops.
type ShopRepository interface {
	Create(ctx context.Context, shop *domain.Shop) error
	Update(ctx context.Context, shop *domain.Shop) error
	GetByID(ctx context.Context, id string) (*domain.Shop, error)
	GetByEmail(ctx context.Context, email string) (*domain.Shop, error)
	List(ctx context.Context, filter ShopFilter) ([]*domain.Shop, error)
	SetApproval(ctx context.Context, id string, status domain.ShopApprovalStatus, reason *string) error
	SetBan(ctx context.Context, id string, banned bool, reason *string) error
}

type shopRepository struct {
	pool *pgxpool.Pool
}

// NewShopRepository returns a Postgres-backed implementation.
func NewShopRepository(pool *pgxpool.Pool) ShopRepository {
	return &shopRepository{pool: pool}
}

const shopColumns = `id, name, email, password_hash, approval_status, rejection_reason, banned, ban_reason, created_at, updated_at`

func scanShop(row pgx.Row) (*domain.Shop, error) {
	var shop domain.Shop
	if err := row.Scan(
		&shop.ID,
		&shop.Name,
		&shop.Email,
		&shop.PasswordHash,
		&shop.ApprovalStatus,
		&shop.RejectionReason,
		&shop.Banned,
		&shop.BanReason,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	const query = `
        INSERT INTO shops (name, email, password_hash, approval_status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		shop.Name,
		shop.Email,
		shop.PasswordHash,
		shop.ApprovalStatus,
	).Scan(&shop.ID, &shop.CreatedAt, &shop.UpdatedAt)
}

func (r *shopRepository) Update(ctx context.Context, shop *domain.Shop) error {
	const query = `
        UPDATE shops SET name=$1, email=$2, password_hash=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query,
		shop.Name,
		shop.Email,
		shop.PasswordHash,
		shop.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shopRepository) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	const query = `SELECT ` + shopColumns + ` FROM shops WHERE id=$1`
	return scanShop(r.pool.QueryRow(ctx, query, id))
}

func (r *shopRepository) GetByEmail(ctx context.Context, email string) (*domain.Shop, error) {
	const query = `SELECT ` + shopColumns + ` FROM shops WHERE email=$1`
	return scanShop(r.pool.QueryRow(ctx, query, email))
}

func (r *shopRepository) List(ctx context.Context, filter ShopFilter) ([]*domain.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops`
	args := []any{}
	clauses := []string{}

	if filter.ApprovalStatus != nil {
		args = append(args, *filter.ApprovalStatus)
		clauses = append(clauses, fmt.Sprintf("approval_status=$%d", len(args)))
	}
	if filter.Banned != nil {
		args = append(args, *filter.Banned)
		clauses = append(clauses, fmt.Sprintf("banned=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shops := []*domain.Shop{}
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, shop)
	}
	return shops, rows.Err()
}

func (r *shopRepository) SetApproval(ctx context.Context, id string, status domain.ShopApprovalStatus, reason *string) error {
	const query = `
        UPDATE shops SET approval_status=$1, rejection_reason=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, status, reason, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shopRepository) SetBan(ctx context.Context, id string, banned bool, reason *string) error {
	const query = `
        UPDATE shops SET banned=$1, ban_reason=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, banned, reason, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
