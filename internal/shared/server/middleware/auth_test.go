package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"housy-backend/internal/shared/auth"
)

func newAuthRouter(t *testing.T, tm *auth.TokenManager, reached *bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1", Auth(tm))
	api.POST("/photos/:propertyId/upload", RequireRoles(auth.RoleAdmin, auth.RoleAgent), func(c *gin.Context) {
		*reached = true
		claims, ok := auth.ClaimsFromContext(c.Request.Context())
		if !ok || claims.UserID() != UserIDFromContext(c) {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(auth.NewTokenManager("s3cret", time.Hour)))
	router.OPTIONS("/api/v1/photos", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/api/v1/photos", nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	var reached bool
	router := newAuthRouter(t, auth.NewTokenManager("s3cret", time.Hour), &reached)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/p1/upload", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, resp.Code)
		}
	}
	if reached {
		t.Fatalf("handler should not run without a valid token")
	}
}

func TestExpiredTokenIsRejectedBeforeRoleCheck(t *testing.T) {
	issued := time.Now().Add(-2 * time.Minute)
	signer := auth.NewTokenManager("s3cret", time.Minute).WithClock(func() time.Time { return issued })
	token, err := signer.Sign("user-1", auth.RoleClient, "")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	var reached bool
	router := newAuthRouter(t, auth.NewTokenManager("s3cret", time.Minute), &reached)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/p1/upload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if reached {
		t.Fatalf("handler should not run with an expired token")
	}
}

func TestRequireRolesDeniesClient(t *testing.T) {
	tm := auth.NewTokenManager("s3cret", time.Hour)
	token, err := tm.Sign("user-1", auth.RoleClient, "c@example.com")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	var reached bool
	router := newAuthRouter(t, tm, &reached)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/p1/upload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"code":"forbidden"`) {
		t.Fatalf("expected forbidden code, got %s", resp.Body.String())
	}
	if reached {
		t.Fatalf("handler should not run for a client")
	}
}

func TestRequireRolesAllowsAgent(t *testing.T) {
	tm := auth.NewTokenManager("s3cret", time.Hour)
	token, err := tm.Sign("user-2", auth.RoleAgent, "")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	var reached bool
	router := newAuthRouter(t, tm, &reached)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos/p1/upload", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if !reached {
		t.Fatalf("handler should run for an agent")
	}
}

func TestRequireRolesWithoutAuthIsForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/x", RequireRoles(auth.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}
