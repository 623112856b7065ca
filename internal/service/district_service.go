package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	"github.com/mall-of-cayman/marketplace-service/internal/repository"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// DistrictService manages platform delivery districts.
type DistrictService struct {
	districts repository.DistrictRepository
}

// NewDistrictService creates the service.
func NewDistrictService(districts repository.DistrictRepository) *DistrictService {
	return &DistrictService{districts: districts}
}

// Create adds a district. Codes are stored uppercase; codes and names must
// both be unique.
func (s *DistrictService) Create(ctx context.Context, code, name string, defaultFee float64, defaultEstimatedDays int) (*domain.District, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, apperrors.NewValidationError("code and name required", nil)
	}
	if defaultFee < 0 {
		return nil, apperrors.NewInvalidFee("default fee must not be negative", nil)
	}
	if defaultEstimatedDays <= 0 {
		defaultEstimatedDays = 1
	}

	if _, err := s.districts.GetByCode(ctx, code); err == nil {
		return nil, apperrors.NewConflict("district code already exists", map[string]any{"code": code})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if _, err := s.districts.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("district name already exists", map[string]any{"name": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	district := &domain.District{
		Code:                 code,
		Name:                 name,
		IsActive:             true,
		DefaultFee:           defaultFee,
		DefaultEstimatedDays: defaultEstimatedDays,
	}
	if err := s.districts.Create(ctx, district); err != nil {
		return nil, apperrors.MapError(err)
	}
	return district, nil
}

// Update renames a district or adjusts its defaults. Vendor fee entries keep
// the name and code snapshotted at their write time.
func (s *DistrictService) Update(ctx context.Context, id, code, name string, defaultFee float64, defaultEstimatedDays int) (*domain.District, error) {
	district, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if code = strings.ToUpper(strings.TrimSpace(code)); code != "" && code != district.Code {
		if other, err := s.districts.GetByCode(ctx, code); err == nil && other.ID != district.ID {
			return nil, apperrors.NewConflict("district code already exists", map[string]any{"code": code})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		district.Code = code
	}
	if name = strings.TrimSpace(name); name != "" && name != district.Name {
		if other, err := s.districts.GetByName(ctx, name); err == nil && other.ID != district.ID {
			return nil, apperrors.NewConflict("district name already exists", map[string]any{"name": name})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		district.Name = name
	}
	if defaultFee >= 0 {
		district.DefaultFee = defaultFee
	}
	if defaultEstimatedDays > 0 {
		district.DefaultEstimatedDays = defaultEstimatedDays
	}

	if err := s.districts.Update(ctx, district); err != nil {
		return nil, apperrors.MapError(err)
	}
	return district, nil
}

// Get returns one district.
func (s *DistrictService) Get(ctx context.Context, id string) (*domain.District, error) {
	return s.get(ctx, id)
}

// List returns districts, optionally only active ones.
func (s *DistrictService) List(ctx context.Context, activeOnly bool) ([]domain.District, error) {
	return s.districts.List(ctx, activeOnly)
}

// Deactivate retires a district. Deletion is always soft so historical
// orders keep a valid reference; quotes exclude inactive districts.
func (s *DistrictService) Deactivate(ctx context.Context, id string) error {
	if err := s.districts.Deactivate(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("district", map[string]any{"district_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *DistrictService) get(ctx context.Context, id string) (*domain.District, error) {
	district, err := s.districts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("district", map[string]any{"district_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return district, nil
}
