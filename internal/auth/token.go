package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
)

// TokenManager handles issuing and validating JWT tokens. Shop-scoped and
// user-scoped tokens share a signing key but carry different subjects and
// lifetimes.
type TokenManager struct {
	secret  []byte
	shopTTL time.Duration
	userTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, shopTTLMinutes, userTTLMinutes int) *TokenManager {
	if shopTTLMinutes <= 0 {
		shopTTLMinutes = 720
	}
	if userTTLMinutes <= 0 {
		userTTLMinutes = 60
	}
	return &TokenManager{
		secret:  []byte(secret),
		shopTTL: time.Duration(shopTTLMinutes) * time.Minute,
		userTTL: time.Duration(userTTLMinutes) * time.Minute,
	}
}

// Claims describes the JWT payload. The registered ID (jti) keys the
// revocation denylist; IssuedAt is compared against role_changed_at.
type Claims struct {
	SubjectID string             `json:"sub_id"`
	Subject   domain.SubjectType `json:"subject"`
	Role      *domain.UserRole   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateShopToken signs a shop-scoped credential.
func (tm *TokenManager) GenerateShopToken(shopID string) (string, time.Time, error) {
	return tm.generate(shopID, domain.SubjectTypeShop, nil, tm.shopTTL)
}

// GenerateUserToken signs a user-scoped credential carrying the role held at
// issue time.
func (tm *TokenManager) GenerateUserToken(userID string, role domain.UserRole) (string, time.Time, error) {
	return tm.generate(userID, domain.SubjectTypeUser, &role, tm.userTTL)
}

func (tm *TokenManager) generate(subjectID string, subject domain.SubjectType, role *domain.UserRole, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		SubjectID: subjectID,
		Subject:   subject,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
