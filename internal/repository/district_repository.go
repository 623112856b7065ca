package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
)

// DistrictRepository manages platform delivery districts.
type DistrictRepository interface {
	Create(ctx context.Context, district *domain.District) error
	Update(ctx context.Context, district *domain.District) error
	GetByID(ctx context.Context, id string) (*domain.District, error)
	GetByCode(ctx context.Context, code string) (*domain.District, error)
	GetByName(ctx context.Context, name string) (*domain.District, error)
	List(ctx context.Context, activeOnly bool) ([]domain.District, error)
	// Deactivate soft-deletes: historical orders keep their references.
	Deactivate(ctx context.Context, id string) error
}

type districtRepository struct {
	pool *pgxpool.Pool
}

// NewDistrictRepository returns a Postgres-backed implementation.
func NewDistrictRepository(pool *pgxpool.Pool) DistrictRepository {
	return &districtRepository{pool: pool}
}

const districtColumns = `id, code, name, is_active, default_fee, default_estimated_days, created_at, updated_at`

func scanDistrict(row pgx.Row) (*domain.District, error) {
	var d domain.District
	if err := row.Scan(
		&d.ID,
		&d.Code,
		&d.Name,
		&d.IsActive,
		&d.DefaultFee,
		&d.DefaultEstimatedDays,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *districtRepository) Create(ctx context.Context, district *domain.District) error {
	const query = `
        INSERT INTO districts (code, name, is_active, default_fee, default_estimated_days)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		district.Code,
		district.Name,
		district.IsActive,
		district.DefaultFee,
		district.DefaultEstimatedDays,
	).Scan(&district.ID, &district.CreatedAt, &district.UpdatedAt)
}

func (r *districtRepository) Update(ctx context.Context, district *domain.District) error {
	const query = `
        UPDATE districts SET code=$1, name=$2, default_fee=$3, default_estimated_days=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		district.Code,
		district.Name,
		district.DefaultFee,
		district.DefaultEstimatedDays,
		district.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *districtRepository) GetByID(ctx context.Context, id string) (*domain.District, error) {
	const query = `SELECT ` + districtColumns + ` FROM districts WHERE id=$1`
	return scanDistrict(r.pool.QueryRow(ctx, query, id))
}

func (r *districtRepository) GetByCode(ctx context.Context, code string) (*domain.District, error) {
	const query = `SELECT ` + districtColumns + ` FROM districts WHERE code=$1`
	return scanDistrict(r.pool.QueryRow(ctx, query, code))
}

func (r *districtRepository) GetByName(ctx context.Context, name string) (*domain.District, error) {
	const query = `SELECT ` + districtColumns + ` FROM districts WHERE name=$1`
	return scanDistrict(r.pool.QueryRow(ctx, query, name))
}

func (r *districtRepository) List(ctx context.Context, activeOnly bool) ([]domain.District, error) {
	query := `SELECT ` + districtColumns + ` FROM districts`
	if activeOnly {
		query += ` WHERE is_active=TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.District
	for rows.Next() {
		d, err := scanDistrict(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

func (r *districtRepository) Deactivate(ctx context.Context, id string) error {
	const query = `
        UPDATE districts SET is_active=FALSE, updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
