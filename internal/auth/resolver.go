package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	"github.com/mall-of-cayman/marketplace-service/internal/repository"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// Credentials carries the raw tokens extracted from a request. Either or
// both may be empty.
type Credentials struct {
	ShopToken    string // shop-scoped, from the X-Shop-Token header
	SessionToken string // user-scoped, from the Authorization header
}

// PrincipalKind tags the resolved actor.
type PrincipalKind string

const (
	PrincipalShopOwner     PrincipalKind = "SHOP_OWNER"
	PrincipalStoreManager  PrincipalKind = "STORE_MANAGER"
	PrincipalAdministrator PrincipalKind = "ADMINISTRATOR"
)

// Principal is the resolved identity acting in a request. A ShopOwner and a
// StoreManager may point at the same shop but are never the same principal.
type Principal struct {
	Kind       PrincipalKind
	Shop       *domain.Shop
	User       *domain.User
	Assignment *domain.ServiceAssignment

	permissions CapabilitySet
}

// ShopID returns the shop the principal acts for, empty for administrators.
func (p *Principal) ShopID() string {
	if p == nil || p.Shop == nil {
		return ""
	}
	return p.Shop.ID
}

// Mode selects which resolution strategies apply and in what order.
type Mode int

const (
	// ModeShopOwner accepts only a shop-scoped credential.
	ModeShopOwner Mode = iota
	// ModeAdministrator accepts only a user-scoped admin credential.
	ModeAdministrator
	// ModeSellerOrManager tries the shop credential first, then a
	// store-manager session. The first strategy that validates wins; a
	// present-but-invalid credential is reported, never skipped.
	ModeSellerOrManager
	// ModeOptionalSeller is ModeSellerOrManager that never rejects: on any
	// failure the principal is simply absent.
	ModeOptionalSeller
)

// Resolver turns request credentials into principals.
type Resolver struct {
	tokens      *TokenManager
	shops       repository.ShopRepository
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	revocations repository.TokenRevocationRepository
	table       *PermissionTable
	now         func() time.Time
}

// ResolverDependencies bundles resolver collaborators.
type ResolverDependencies struct {
	Tokens      *TokenManager
	ShopRepo    repository.ShopRepository
	UserRepo    repository.UserRepository
	Assignments repository.AssignmentRepository
	Revocations repository.TokenRevocationRepository
	Table       *PermissionTable
}

// NewResolver builds the resolver.
func NewResolver(deps ResolverDependencies) *Resolver {
	table := deps.Table
	if table == nil {
		table = NewPermissionTable()
	}
	return &Resolver{
		tokens:      deps.Tokens,
		shops:       deps.ShopRepo,
		users:       deps.UserRepo,
		assignments: deps.Assignments,
		revocations: deps.Revocations,
		table:       table,
		now:         time.Now,
	}
}

// Resolve applies the strategies for the mode. Every rejection carries a
// distinct error code; there is no silent fallback to a lower privilege.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials, mode Mode) (*Principal, error) {
	switch mode {
	case ModeShopOwner:
		if creds.ShopToken == "" {
			return nil, apperrors.NewMissingCredential("shop credential required")
		}
		return r.resolveShopOwner(ctx, creds.ShopToken)

	case ModeAdministrator:
		if creds.SessionToken == "" {
			return nil, apperrors.NewMissingCredential("session credential required")
		}
		principal, err := r.resolveUser(ctx, creds.SessionToken)
		if err != nil {
			return nil, err
		}
		if principal.Kind != PrincipalAdministrator {
			return nil, apperrors.NewForbidden("administrator required")
		}
		return principal, nil

	case ModeSellerOrManager:
		if creds.ShopToken != "" {
			return r.resolveShopOwner(ctx, creds.ShopToken)
		}
		if creds.SessionToken != "" {
			principal, err := r.resolveUser(ctx, creds.SessionToken)
			if err != nil {
				return nil, err
			}
			if principal.Kind != PrincipalStoreManager {
				return nil, apperrors.NewForbidden("seller or store manager required")
			}
			return principal, nil
		}
		return nil, apperrors.NewMissingCredential("shop or session credential required")

	case ModeOptionalSeller:
		if creds.ShopToken == "" && creds.SessionToken == "" {
			return nil, nil
		}
		principal, err := r.Resolve(ctx, creds, ModeSellerOrManager)
		if err != nil {
			return nil, nil
		}
		return principal, nil
	}

	return nil, apperrors.NewInternalError(errors.New("unknown resolution mode"))
}

func (r *Resolver) resolveShopOwner(ctx context.Context, token string) (*Principal, error) {
	claims, err := r.parseLiveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if claims.Subject != domain.SubjectTypeShop {
		return nil, apperrors.NewInvalidCredential("not a shop credential")
	}

	shop, err := r.shops.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredential("shop not found")
		}
		return nil, apperrors.MapError(err)
	}
	if shop.Banned {
		return nil, apperrors.NewAccountBanned(deref(shop.BanReason))
	}

	return &Principal{Kind: PrincipalShopOwner, Shop: shop}, nil
}

func (r *Resolver) resolveUser(ctx context.Context, token string) (*Principal, error) {
	claims, err := r.parseLiveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if claims.Subject != domain.SubjectTypeUser {
		return nil, apperrors.NewInvalidCredential("not a session credential")
	}

	user, err := r.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredential("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	if user.Banned {
		return nil, apperrors.NewAccountBanned(deref(user.BanReason))
	}
	// Tokens minted before the account's last role change are dead, however
	// much validity window they have left.
	if claims.IssuedAt != nil && claims.IssuedAt.Time.Before(user.RoleChangedAt) {
		return nil, apperrors.NewStaleCredential()
	}

	if user.Role.IsAdmin() {
		return &Principal{
			Kind:        PrincipalAdministrator,
			User:        user,
			permissions: r.table.PermissionsFor(user.Role),
		}, nil
	}

	if user.Role == domain.RoleStoreManager {
		return r.resolveStoreManager(ctx, user)
	}

	return nil, apperrors.NewPrincipalNotAssignable("account holds no marketplace role")
}

func (r *Resolver) resolveStoreManager(ctx context.Context, user *domain.User) (*Principal, error) {
	assignment, err := r.assignments.GetOpenByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewPrincipalNotAssignable("no active service assignment")
		}
		return nil, apperrors.MapError(err)
	}

	if assignment.SuspendedByAdmin || assignment.Status == domain.AssignmentSuspended {
		return nil, apperrors.NewPrincipalNotAssignable("service assignment suspended")
	}

	now := r.now()
	if assignment.Status == domain.AssignmentActive && assignment.WindowExpiredAt(now) {
		// Lazy expiry: flip the record so later reads agree with us.
		if err := r.assignments.SetStatus(ctx, assignment.ID, domain.AssignmentExpired); err != nil {
			return nil, apperrors.MapError(err)
		}
		assignment.Status = domain.AssignmentExpired
	}
	if !assignment.ActiveAt(now) {
		return nil, apperrors.NewPrincipalNotAssignable("service assignment not active")
	}

	shop, err := r.shops.GetByID(ctx, assignment.ShopID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewPrincipalNotAssignable("assigned shop no longer exists")
		}
		return nil, apperrors.MapError(err)
	}
	if shop.Banned {
		return nil, apperrors.NewAccountBanned(deref(shop.BanReason))
	}

	return &Principal{
		Kind:       PrincipalStoreManager,
		Shop:       shop,
		User:       user,
		Assignment: assignment,
	}, nil
}

func (r *Resolver) parseLiveToken(ctx context.Context, token string) (*Claims, error) {
	claims, err := r.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewInvalidCredential("invalid or expired credential")
	}
	if r.revocations != nil && claims.ID != "" {
		revoked, err := r.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if revoked {
			return nil, apperrors.NewInvalidCredential("credential revoked")
		}
	}
	return claims, nil
}

// CheckApproval gates mutating operations for seller principals. Pending and
// rejected shops may still read their own data; administrators are exempt.
func CheckApproval(p *Principal, mutating bool) error {
	if p == nil || p.Shop == nil || !mutating {
		return nil
	}
	switch p.Shop.ApprovalStatus {
	case domain.ShopApprovalApproved:
		return nil
	case domain.ShopApprovalRejected:
		return apperrors.NewAccountNotApproved("rejected", deref(p.Shop.RejectionReason))
	default:
		return apperrors.NewAccountNotApproved("pending", "")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
