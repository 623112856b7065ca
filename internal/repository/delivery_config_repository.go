package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
)

// DeliveryConfigRepository manages vendor delivery configurations and their
// per-district fee entries.
type DeliveryConfigRepository interface {
	GetByShop(ctx context.Context, shopID string) (*domain.VendorDeliveryConfig, error)
	// EnsureForShop returns the shop's config, creating a disabled one on
	// first access.
	EnsureForShop(ctx context.Context, shopID string) (*domain.VendorDeliveryConfig, error)
	UpdateSettings(ctx context.Context, shopID string, enabled bool, threshold *float64) error
	// UpsertEntry replaces the (config, district) entry if present; one row
	// per district per shop, enforced by a unique index.
	UpsertEntry(ctx context.Context, configID string, entry *domain.DistrictFeeEntry) error
	// RemoveEntry is idempotent: removing an absent entry is a no-op.
	RemoveEntry(ctx context.Context, configID, districtID string) error
}

type deliveryConfigRepository struct {
	pool *pgxpool.Pool
}

// NewDeliveryConfigRepository returns a Postgres-backed implementation.
func NewDeliveryConfigRepository(pool *pgxpool.Pool) DeliveryConfigRepository {
	return &deliveryConfigRepository{pool: pool}
}

func (r *deliveryConfigRepository) GetByShop(ctx context.Context, shopID string) (*domain.VendorDeliveryConfig, error) {
	const query = `
        SELECT id, shop_id, delivery_enabled, free_delivery_threshold, created_at, updated_at
        FROM vendor_delivery_configs WHERE shop_id=$1`

	var cfg domain.VendorDeliveryConfig
	if err := r.pool.QueryRow(ctx, query, shopID).Scan(
		&cfg.ID,
		&cfg.ShopID,
		&cfg.DeliveryEnabled,
		&cfg.FreeDeliveryThreshold,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}

	entries, err := r.listEntries(ctx, cfg.ID)
	if err != nil {
		return nil, err
	}
	cfg.Entries = entries
	return &cfg, nil
}

func (r *deliveryConfigRepository) EnsureForShop(ctx context.Context, shopID string) (*domain.VendorDeliveryConfig, error) {
	cfg, err := r.GetByShop(ctx, shopID)
	if err == nil {
		return cfg, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	const query = `
        INSERT INTO vendor_delivery_configs (shop_id, delivery_enabled)
        VALUES ($1, FALSE)
        ON CONFLICT (shop_id) DO UPDATE SET updated_at=NOW()
        RETURNING id, shop_id, delivery_enabled, free_delivery_threshold, created_at, updated_at`

	var created domain.VendorDeliveryConfig
	if err := r.pool.QueryRow(ctx, query, shopID).Scan(
		&created.ID,
		&created.ShopID,
		&created.DeliveryEnabled,
		&created.FreeDeliveryThreshold,
		&created.CreatedAt,
		&created.UpdatedAt,
	); err != nil {
		return nil, err
	}
	created.Entries = []domain.DistrictFeeEntry{}
	return &created, nil
}

func (r *deliveryConfigRepository) UpdateSettings(ctx context.Context, shopID string, enabled bool, threshold *float64) error {
	const query = `
        UPDATE vendor_delivery_configs
        SET delivery_enabled=$1, free_delivery_threshold=$2, updated_at=NOW()
        WHERE shop_id=$3`

	cmd, err := r.pool.Exec(ctx, query, enabled, threshold, shopID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *deliveryConfigRepository) UpsertEntry(ctx context.Context, configID string, entry *domain.DistrictFeeEntry) error {
	const query = `
        INSERT INTO district_fee_entries (config_id, district_id, district_code, district_name, fee, is_available, estimated_days)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (config_id, district_id) DO UPDATE
        SET district_code=EXCLUDED.district_code,
            district_name=EXCLUDED.district_name,
            fee=EXCLUDED.fee,
            is_available=EXCLUDED.is_available,
            estimated_days=EXCLUDED.estimated_days,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`

	entry.ConfigID = configID
	return r.pool.QueryRow(ctx, query,
		configID,
		entry.DistrictID,
		entry.DistrictCode,
		entry.DistrictName,
		entry.Fee,
		entry.IsAvailable,
		entry.EstimatedDays,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *deliveryConfigRepository) RemoveEntry(ctx context.Context, configID, districtID string) error {
	const query = `
        DELETE FROM district_fee_entries WHERE config_id=$1 AND district_id=$2`

	_, err := r.pool.Exec(ctx, query, configID, districtID)
	return err
}

func (r *deliveryConfigRepository) listEntries(ctx context.Context, configID string) ([]domain.DistrictFeeEntry, error) {
	const query = `
        SELECT id, config_id, district_id, district_code, district_name, fee, is_available, estimated_days, created_at, updated_at
        FROM district_fee_entries WHERE config_id=$1
        ORDER BY district_name ASC`

	rows, err := r.pool.Query(ctx, query, configID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.DistrictFeeEntry{}
	for rows.Next() {
		var e domain.DistrictFeeEntry
		if err := rows.Scan(
			&e.ID,
			&e.ConfigID,
			&e.DistrictID,
			&e.DistrictCode,
			&e.DistrictName,
			&e.Fee,
			&e.IsAvailable,
			&e.EstimatedDays,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
