package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mall-of-cayman/marketplace-service/internal/config"
	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	"github.com/mall-of-cayman/marketplace-service/internal/repository"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

type stubAssignmentRepo struct {
	rows map[string]*domain.ServiceAssignment
	seq  int
}

func newStubAssignmentRepo() *stubAssignmentRepo {
	return &stubAssignmentRepo{rows: map[string]*domain.ServiceAssignment{}}
}

func (r *stubAssignmentRepo) ReplaceOpen(_ context.Context, assignment *domain.ServiceAssignment) error {
	now := time.Now()
	for _, existing := range r.rows {
		if existing.ShopID == assignment.ShopID && existing.ClosedAt == nil {
			closed := now
			existing.ClosedAt = &closed
			if existing.Status != domain.AssignmentSuspended {
				existing.Status = domain.AssignmentExpired
			}
		}
	}
	r.seq++
	assignment.ID = "assignment-" + string(rune('0'+r.seq))
	copied := *assignment
	r.rows[assignment.ID] = &copied
	return nil
}

func (r *stubAssignmentRepo) GetOpenByShop(_ context.Context, shopID string) (*domain.ServiceAssignment, error) {
	for _, a := range r.rows {
		if a.ShopID == shopID && a.ClosedAt == nil {
			copied := *a
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubAssignmentRepo) GetOpenByUser(_ context.Context, userID string) (*domain.ServiceAssignment, error) {
	for _, a := range r.rows {
		if a.UserID == userID && a.ClosedAt == nil {
			copied := *a
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubAssignmentRepo) SetStatus(_ context.Context, id string, status domain.AssignmentStatus) error {
	a, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Status = status
	return nil
}

func (r *stubAssignmentRepo) Activate(_ context.Context, id string, activatedAt time.Time) error {
	a, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Status = domain.AssignmentActive
	a.ActivatedAt = &activatedAt
	return nil
}

func (r *stubAssignmentRepo) SetSuspended(_ context.Context, id string, suspended bool, status domain.AssignmentStatus) error {
	a, ok := r.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.SuspendedByAdmin = suspended
	a.Status = status
	return nil
}

func (r *stubAssignmentRepo) ListByShop(_ context.Context, shopID string, _ int) ([]domain.ServiceAssignment, error) {
	out := []domain.ServiceAssignment{}
	for _, a := range r.rows {
		if a.ShopID == shopID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type stubUserRepo struct {
	users map[string]*domain.User
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = "user-" + string(rune('0'+len(r.users)+1))
	}
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) SetRole(_ context.Context, id string, role domain.UserRole) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Role = role
	user.RoleChangedAt = time.Now()
	return nil
}

func (r *stubUserRepo) SetBan(_ context.Context, id string, banned bool, reason *string) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Banned = banned
	user.BanReason = reason
	return nil
}

type stubShopRepo struct {
	shops map[string]*domain.Shop
}

func (r *stubShopRepo) Create(_ context.Context, shop *domain.Shop) error {
	if shop.ID == "" {
		shop.ID = "shop-" + string(rune('0'+len(r.shops)+1))
	}
	r.shops[shop.ID] = shop
	return nil
}

func (r *stubShopRepo) Update(_ context.Context, shop *domain.Shop) error {
	r.shops[shop.ID] = shop
	return nil
}

func (r *stubShopRepo) GetByID(_ context.Context, id string) (*domain.Shop, error) {
	if shop, ok := r.shops[id]; ok {
		copied := *shop
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubShopRepo) GetByEmail(_ context.Context, email string) (*domain.Shop, error) {
	for _, shop := range r.shops {
		if shop.Email == email {
			copied := *shop
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubShopRepo) List(_ context.Context, _ repository.ShopFilter) ([]*domain.Shop, error) {
	out := make([]*domain.Shop, 0, len(r.shops))
	for _, shop := range r.shops {
		out = append(out, shop)
	}
	return out, nil
}

func (r *stubShopRepo) SetApproval(_ context.Context, id string, status domain.ShopApprovalStatus, reason *string) error {
	shop, ok := r.shops[id]
	if !ok {
		return pgx.ErrNoRows
	}
	shop.ApprovalStatus = status
	shop.RejectionReason = reason
	return nil
}

func (r *stubShopRepo) SetBan(_ context.Context, id string, banned bool, reason *string) error {
	shop, ok := r.shops[id]
	if !ok {
		return pgx.ErrNoRows
	}
	shop.Banned = banned
	shop.BanReason = reason
	return nil
}

type assignmentFixture struct {
	svc         *AssignmentService
	assignments *stubAssignmentRepo
	users       *stubUserRepo
	shops       *stubShopRepo
}

func newAssignmentFixture() *assignmentFixture {
	f := &assignmentFixture{
		assignments: newStubAssignmentRepo(),
		users:       &stubUserRepo{users: map[string]*domain.User{}},
		shops:       &stubShopRepo{shops: map[string]*domain.Shop{}},
	}
	cfg := config.Config{}
	cfg.Auth.ManagerServiceDays = 30
	cfg.Auth.ManagerServiceID = "store-manager-standard"
	f.svc = NewAssignmentService(cfg, AssignmentDependencies{
		AssignmentRepo: f.assignments,
		UserRepo:       f.users,
		ShopRepo:       f.shops,
	})
	return f
}

func (f *assignmentFixture) addShop(id string) {
	f.shops.shops[id] = &domain.Shop{ID: id, Email: id + "@example.test", ApprovalStatus: domain.ShopApprovalApproved}
}

func (f *assignmentFixture) addManager(id string) {
	f.users.users[id] = &domain.User{ID: id, Email: id + "@example.test", Role: domain.RoleStoreManager}
}

func TestAssignManager_CreatesInactiveAssignment(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addManager("manager-1")

	assignment, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentInactive, assignment.Status)
	assert.Equal(t, "store-manager-standard", assignment.ServiceID)
	assert.WithinDuration(t, assignment.PeriodStart.AddDate(0, 0, 30), assignment.PeriodEnd, time.Second)
	assert.False(t, assignment.SuspendedByAdmin)
}

func TestAssignManager_RejectsWrongRole(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.users.users["user-1"] = &domain.User{ID: "user-1", Role: domain.RoleCustomer}

	_, err := f.svc.AssignManager(context.Background(), "shop-1", "user-1")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestAssignManager_RejectsBannedUser(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addManager("manager-1")
	f.users.users["manager-1"].Banned = true

	_, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestAssignManager_RejectsManagerOfAnotherShop(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addShop("shop-2")
	f.addManager("manager-1")

	_, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	require.NoError(t, err)

	_, err = f.svc.AssignManager(context.Background(), "shop-2", "manager-1")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestAssignManager_ClosesPreviousAssignment(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addManager("manager-1")
	f.addManager("manager-2")

	first, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	require.NoError(t, err)

	second, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// The prior open row is closed, never deleted.
	closed := f.assignments.rows[first.ID]
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, domain.AssignmentExpired, closed.Status)

	history, err := f.svc.History(context.Background(), "shop-1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAssignManager_SuspendedStatusSurvivesClosure(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addManager("manager-1")
	f.addManager("manager-2")

	first, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	require.NoError(t, err)
	_, err = f.svc.Suspend(context.Background(), "shop-1")
	require.NoError(t, err)

	_, err = f.svc.AssignManager(context.Background(), "shop-1", "manager-2")
	require.NoError(t, err)

	closed := f.assignments.rows[first.ID]
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, domain.AssignmentSuspended, closed.Status)
}

func TestConfirmPayment_ActivatesInactive(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addManager("manager-1")
	_, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	require.NoError(t, err)

	assignment, err := f.svc.ConfirmPayment(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentActive, assignment.Status)

	// Confirming twice is a conflict, not a silent success.
	_, err = f.svc.ConfirmPayment(context.Background(), "shop-1")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestConfirmPayment_RejectedWhileSuspended(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addManager("manager-1")
	_, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	require.NoError(t, err)
	_, err = f.svc.Suspend(context.Background(), "shop-1")
	require.NoError(t, err)

	_, err = f.svc.ConfirmPayment(context.Background(), "shop-1")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestSuspend_StickyAndIdempotent(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addManager("manager-1")
	_, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), "shop-1")
	require.NoError(t, err)

	suspended, err := f.svc.Suspend(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.True(t, suspended.SuspendedByAdmin)
	assert.Equal(t, domain.AssignmentSuspended, suspended.Status)

	again, err := f.svc.Suspend(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.True(t, again.SuspendedByAdmin)

	lifted, err := f.svc.Unsuspend(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.False(t, lifted.SuspendedByAdmin)
	assert.Equal(t, domain.AssignmentActive, lifted.Status)
}

func TestUnsuspend_UnpaidAssignmentStaysInactive(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addManager("manager-1")
	_, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	require.NoError(t, err)

	_, err = f.svc.Suspend(context.Background(), "shop-1")
	require.NoError(t, err)

	// Lifting the suspension must not grant access payment never bought.
	lifted, err := f.svc.Unsuspend(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.False(t, lifted.SuspendedByAdmin)
	assert.Equal(t, domain.AssignmentInactive, lifted.Status)

	// Payment confirmation still completes the normal lifecycle.
	activated, err := f.svc.ConfirmPayment(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentActive, activated.Status)
}

func TestSuspend_RejectsLapsedWindow(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addManager("manager-1")
	_, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), "shop-1")
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Now().AddDate(0, 0, 31) }

	_, err = f.svc.Suspend(context.Background(), "shop-1")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	// The record now reads EXPIRED, not SUSPENDED.
	stored, err := f.assignments.GetOpenByShop(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentExpired, stored.Status)
	assert.False(t, stored.SuspendedByAdmin)
}

func TestUnsuspend_LapsedWindowResumesExpired(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addManager("manager-1")
	_, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), "shop-1")
	require.NoError(t, err)
	_, err = f.svc.Suspend(context.Background(), "shop-1")
	require.NoError(t, err)

	// The window lapses while the suspension is in force.
	f.svc.now = func() time.Time { return time.Now().AddDate(0, 0, 31) }

	lifted, err := f.svc.Unsuspend(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.False(t, lifted.SuspendedByAdmin)
	assert.Equal(t, domain.AssignmentExpired, lifted.Status)
}

func TestCurrent_LazilyExpiresLapsedWindow(t *testing.T) {
	f := newAssignmentFixture()
	f.addShop("shop-1")
	f.addManager("manager-1")
	_, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), "shop-1")
	require.NoError(t, err)

	// Jump past the subscription window.
	f.svc.now = func() time.Time { return time.Now().AddDate(0, 0, 31) }

	assignment, err := f.svc.Current(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentExpired, assignment.Status)

	// The stored row was flipped too.
	stored, err := f.assignments.GetOpenByShop(context.Background(), "shop-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentExpired, stored.Status)
}

func TestAssignManager_UnknownShop(t *testing.T) {
	f := newAssignmentFixture()
	f.addManager("manager-1")

	_, err := f.svc.AssignManager(context.Background(), "shop-1", "manager-1")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
