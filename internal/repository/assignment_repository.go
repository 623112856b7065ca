package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
)

// AssignmentRepository manages store-manager service assignments.
type AssignmentRepository interface {
	// ReplaceOpen atomically closes the currently open assignment of the
	// shop (if any) and inserts the new one, so two concurrent assign
	// calls can never leave two open assignments behind.
	ReplaceOpen(ctx context.Context, assignment *domain.ServiceAssignment) error
	GetOpenByShop(ctx context.Context, shopID string) (*domain.ServiceAssignment, error)
	GetOpenByUser(ctx context.Context, userID string) (*domain.ServiceAssignment, error)
	SetStatus(ctx context.Context, id string, status domain.AssignmentStatus) error
	// Activate records payment confirmation: status flips to ACTIVE and the
	// confirmation time is kept so a later unsuspend knows payment happened.
	Activate(ctx context.Context, id string, activatedAt time.Time) error
	SetSuspended(ctx context.Context, id string, suspended bool, status domain.AssignmentStatus) error
	ListByShop(ctx context.Context, shopID string, limit int) ([]domain.ServiceAssignment, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository returns a Postgres-backed implementation.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

const assignmentColumns = `id, shop_id, user_id, service_id, status, period_start, period_end, activated_at, suspended_by_admin, closed_at, created_at, updated_at`

func scanAssignment(row pgx.Row) (*domain.ServiceAssignment, error) {
	var a domain.ServiceAssignment
	if err := row.Scan(
		&a.ID,
		&a.ShopID,
		&a.UserID,
		&a.ServiceID,
		&a.Status,
		&a.PeriodStart,
		&a.PeriodEnd,
		&a.ActivatedAt,
		&a.SuspendedByAdmin,
		&a.ClosedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepository) ReplaceOpen(ctx context.Context, assignment *domain.ServiceAssignment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Close the current open assignment. Suspended rows keep their status
	// in the history; everything else is marked expired.
	const closeQuery = `
        UPDATE service_assignments
        SET closed_at=NOW(),
            status=CASE WHEN status='SUSPENDED' THEN status ELSE 'EXPIRED' END,
            updated_at=NOW()
        WHERE shop_id=$1 AND closed_at IS NULL`
	if _, err := tx.Exec(ctx, closeQuery, assignment.ShopID); err != nil {
		return err
	}

	const insertQuery = `
        INSERT INTO service_assignments (shop_id, user_id, service_id, status, period_start, period_end)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertQuery,
		assignment.ShopID,
		assignment.UserID,
		assignment.ServiceID,
		assignment.Status,
		assignment.PeriodStart,
		assignment.PeriodEnd,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *assignmentRepository) GetOpenByShop(ctx context.Context, shopID string) (*domain.ServiceAssignment, error) {
	const query = `
        SELECT ` + assignmentColumns + `
        FROM service_assignments WHERE shop_id=$1 AND closed_at IS NULL`
	return scanAssignment(r.pool.QueryRow(ctx, query, shopID))
}

func (r *assignmentRepository) GetOpenByUser(ctx context.Context, userID string) (*domain.ServiceAssignment, error) {
	const query = `
        SELECT ` + assignmentColumns + `
        FROM service_assignments WHERE user_id=$1 AND closed_at IS NULL`
	return scanAssignment(r.pool.QueryRow(ctx, query, userID))
}

func (r *assignmentRepository) SetStatus(ctx context.Context, id string, status domain.AssignmentStatus) error {
	const query = `
        UPDATE service_assignments SET status=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) Activate(ctx context.Context, id string, activatedAt time.Time) error {
	const query = `
        UPDATE service_assignments
        SET status='ACTIVE', activated_at=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, activatedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) SetSuspended(ctx context.Context, id string, suspended bool, status domain.AssignmentStatus) error {
	const query = `
        UPDATE service_assignments
        SET suspended_by_admin=$1, status=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, suspended, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) ListByShop(ctx context.Context, shopID string, limit int) ([]domain.ServiceAssignment, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT ` + assignmentColumns + `
        FROM service_assignments WHERE shop_id=$1
        ORDER BY created_at DESC
        LIMIT $2`

	rows, err := r.pool.Query(ctx, query, shopID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}
