package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("jwt-test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSignAndParse(t *testing.T) {
	t.Parallel()
	raw, err := Sign(testSecret, Claims{UserID: "u1", Role: RoleShopOwner, ShopID: "shop-1"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	claims, err := Parse(testSecret, raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != RoleShopOwner || claims.ShopID != "shop-1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	expired, _ := Sign(testSecret, Claims{UserID: "u1", Role: RoleShopOwner}, -time.Minute)
	wrongKey, _ := Sign([]byte("other"), Claims{UserID: "u1", Role: RoleShopOwner}, time.Hour)
	noRole, _ := Sign(testSecret, Claims{UserID: "u1"}, time.Hour)
	none, _ := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{UserID: "u1", Role: RoleSuperAdmin}).
		SignedString(jwtlib.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"garbage":   "not-a-jwt",
		"expired":   expired,
		"wrong key": wrongKey,
		"no role":   noRole,
		"alg none":  none,
	}
	for name, raw := range tests {
		if _, err := Parse(testSecret, raw); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: Parse error = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer  abc ", want: "abc"},
		{header: "", wantErr: true},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer", wantErr: true},
	}
	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("BearerToken(%q) = %q, %v", tt.header, got, err)
		}
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	owner, _ := Sign(testSecret, Claims{UserID: "u1", Role: RoleShopOwner, ShopID: "shop-1"}, time.Hour)
	admin, _ := Sign(testSecret, Claims{UserID: "u2", Role: RoleSuperAdmin}, time.Hour)

	r := gin.New()
	r.GET("/owner", RequireRole(testSecret, RoleShopOwner), func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.ShopID)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "owner", header: "Bearer " + owner, want: http.StatusOK},
		{name: "wrong role", header: "Bearer " + admin, want: http.StatusUnauthorized},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer nope", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/owner", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, w.Code, tt.want)
		}
		if tt.want == http.StatusOK && w.Body.String() != "shop-1" {
			t.Errorf("%s: body = %q, want shop-1", tt.name, w.Body.String())
		}
	}
}
