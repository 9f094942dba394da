package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret"

func TestSignAndParse(t *testing.T) {
	tok, err := SignJWT(testSecret, "u-1", "Admin", RoleAdmin, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseAndValidate(testSecret, tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u-1" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := ParseAndValidate("other", tok); err == nil {
		t.Fatal("expected signature failure")
	}

	exp, err := ExpiresAt(tok)
	if err != nil || time.Until(exp) <= 0 {
		t.Fatalf("unexpected expiry %v (%v)", exp, err)
	}
}

func TestParse_Expired(t *testing.T) {
	tok, _ := SignJWT(testSecret, "u-1", "", RoleAdmin, -time.Minute)
	if _, err := ParseAndValidate(testSecret, tok); err == nil {
		t.Fatal("expected expiry failure")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("changeme123")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "changeme123" {
		t.Fatal("password stored in clear")
	}
	if err := CheckPassword(hash, "changeme123"); err != nil {
		t.Fatal(err)
	}
	if err := CheckPassword(hash, "nope"); err != ErrPasswordMismatch {
		t.Fatalf("expected mismatch, got %v", err)
	}
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireAuth(testSecret), RequireRoles(RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserID))
	})

	admin, _ := SignJWT(testSecret, "u-1", "", RoleAdmin, time.Hour)
	customer, _ := SignJWT(testSecret, "u-2", "", RoleCustomer, time.Hour)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"wrong role", "Bearer " + customer, http.StatusForbidden},
		{"ok", "Bearer " + admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
