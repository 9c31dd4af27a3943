package api

import (
	"fitcoach/platform/internal/domain"
	"fitcoach/platform/internal/service"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, uid string, role domain.Role, secret string, expiresIn time.Duration) string {
	t.Helper()
	claims := &service.Claims{
		UserID: uid,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		uid, _ := getUserIDFromContext(c)
		role, _ := getUserRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"uid": uid, "role": role})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	router := protectedRouter()
	token := signToken(t, "m1", domain.RoleMember, testSecret, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
}

func TestAuthMiddlewareRejections(t *testing.T) {
	router := protectedRouter()
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"wrong secret", "Bearer " + signToken(t, "m1", domain.RoleMember, "other-secret", time.Hour)},
		{"expired token", "Bearer " + signToken(t, "m1", domain.RoleMember, testSecret, -time.Minute)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRoleMiddlewareEnforcesRole(t *testing.T) {
	router := protectedRouter(RoleMiddleware(domain.RoleTrainer))

	memberToken := signToken(t, "m1", domain.RoleMember, testSecret, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("member against trainer route: status = %d, want 403", rec.Code)
	}

	trainerToken := signToken(t, "t1", domain.RoleTrainer, testSecret, time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+trainerToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("trainer against trainer route: status = %d, want 200", rec.Code)
	}
}

func TestTraceIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(TraceIDMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Generated when absent.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(TraceIDHeader) == "" {
		t.Error("expected a generated trace id")
	}

	// Preserved when supplied.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "trace-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get(TraceIDHeader); got != "trace-123" {
		t.Errorf("trace id = %q, want trace-123", got)
	}
}
