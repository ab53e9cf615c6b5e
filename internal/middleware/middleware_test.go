package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jacket_marketplace/internal/domain"
	"jacket_marketplace/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

type userMap map[uint]*domain.User

func (m userMap) Get(_ context.Context, id uint) (*domain.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func newEngine(users userMap, roles ...domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{JWTAuthMiddleware(secret), CurrentUserMiddleware(users)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID})
	})
	r.GET("/", handlers...)
	return r
}

func call(t *testing.T, r *gin.Engine, authHeader string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func token(t *testing.T, id uint) string {
	t.Helper()
	tok, err := utils.GenerateJWT(id, secret, time.Minute)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestJWTAuth(t *testing.T) {
	users := userMap{1: {ID: 1, Role: domain.RoleGuest}}
	r := newEngine(users)

	cases := []struct {
		name   string
		header string
		status int
		errMsg string
	}{
		{"missing header", "", http.StatusUnauthorized, "Missing token"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "Invalid token"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "Invalid token"},
		{"unknown user", token(t, 2), http.StatusUnauthorized, "Invalid token"},
		{"valid", token(t, 1), http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := call(t, r, tc.header)
			assert.Equal(t, tc.status, status)
			if tc.errMsg != "" {
				assert.Equal(t, tc.errMsg, body["error"])
			} else {
				assert.EqualValues(t, 1, body["id"])
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	users := userMap{
		1: {ID: 1, Role: domain.RoleGuest},
		2: {ID: 2, Role: domain.RoleCreator},
		3: {ID: 3, Role: domain.RoleAdmin},
	}
	creators := newEngine(users, domain.RoleCreator)

	status, body := call(t, creators, token(t, 1))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Permission denied!", body["error"])

	status, _ = call(t, creators, token(t, 2))
	assert.Equal(t, http.StatusOK, status)

	admins := newEngine(users, domain.RoleAdmin)
	status, _ = call(t, admins, token(t, 2))
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, admins, token(t, 3))
	assert.Equal(t, http.StatusOK, status)
}
