// Package auth verifies the admin panel's bearer tokens and guards gin routes
// by role. Tokens are HS256 JWTs issued by the login service.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Roles carried in the role claim.
const (
	RoleShopOwner  = "SHOP_OWNER"
	RoleSuperAdmin = "SUPER_ADMIN"
)

const claimsKey = "auth.claims"

var (
	// ErrMissingToken is returned when the Authorization header has no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned for bad signatures, expired tokens and malformed claims.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the admin session claims.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	ShopID string `json:"shopId,omitempty"`
	jwtlib.RegisteredClaims
}

// Sign issues an HS256 token for claims. A zero ttl means no expiry.
func Sign(secret []byte, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwtlib.NewNumericDate(now)
	if ttl != 0 {
		claims.ExpiresAt = jwtlib.NewNumericDate(now.Add(ttl))
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
}

// Parse verifies raw and returns its claims. Only HMAC algorithms are accepted.
func Parse(secret []byte, raw string) (*Claims, error) {
	var claims Claims
	parsed, err := jwtlib.ParseWithClaims(raw, &claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// RequireRole aborts with 401 unless the request carries a valid token whose
// role is one of roles.
func RequireRole(secret []byte, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		claims, err := Parse(secret, raw)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
			abortUnauthorized(c, fmt.Errorf("role %s not allowed", claims.Role))
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by RequireRole.
func ClaimsFromContext(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

func abortUnauthorized(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "UNAUTHORIZED"})
}
