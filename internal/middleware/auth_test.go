package middleware

import (
	"net/http"
	"net/http/httptest"
	"qbank_backend/internal/config"
	"qbank_backend/internal/model"
	"qbank_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	whoami := func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, string(claims.Role))
	}

	r.GET("/open", TryAuthMiddleware(cfg), whoami)
	r.GET("/private", AuthMiddleware(cfg), whoami)
	r.GET("/admin", AuthMiddleware(cfg), RoleMiddleware(model.Admin), whoami)
	return r
}

func signedToken(t *testing.T, secret string, role model.UserRole) string {
	t.Helper()
	user := &model.User{Email: "u@example.com", Role: role}
	user.ID = 9
	token, err := util.GenerateJWT(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return token
}

func TestAuthMiddlewares(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "mw-secret"}}
	r := newAuthRouter(cfg)

	userToken := signedToken(t, "mw-secret", model.RoleUser)
	adminToken := signedToken(t, "mw-secret", model.Admin)
	forged := signedToken(t, "wrong", model.Admin)

	cases := []struct {
		name   string
		path   string
		header string
		query  string
		status int
		body   string
	}{
		{"open anonymous", "/open", "", "", http.StatusOK, "anonymous"},
		{"open with token", "/open", "Bearer " + userToken, "", http.StatusOK, "user"},
		{"open with bad token", "/open", "Bearer " + forged, "", http.StatusOK, "anonymous"},
		{"private without token", "/private", "", "", http.StatusUnauthorized, ""},
		{"private with bad token", "/private", "Bearer " + forged, "", http.StatusUnauthorized, ""},
		{"private with query token", "/private", "", userToken, http.StatusOK, "user"},
		{"admin as user", "/admin", "Bearer " + userToken, "", http.StatusForbidden, ""},
		{"admin as admin", "/admin", "Bearer " + adminToken, "", http.StatusOK, "admin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := tc.path
			if tc.query != "" {
				path += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			if tc.body != "" && w.Body.String() != tc.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tc.body)
			}
		})
	}
}
