package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/config"
	"app/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func makeAccessToken(t *testing.T, secret string, sub int64, role string, tv int, method jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"tv":   tv,
		"iat":  1,
		"exp":  9999999999,
	}

	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

// 認証が通ったらcontextの中身をそのまま返すハンドラを立てる
func newAuthTestServer() *echo.Echo {
	e := echo.New()
	g := e.Group("/secure")
	g.Use(middleware.AuthJWT(config.Config{JWTSecret: testSecret}))
	g.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"user_id":       c.Get(middleware.CtxUserIDKey),
			"role":          c.Get(middleware.CtxUserRoleKey),
			"token_version": c.Get(middleware.CtxTokenVersionKey),
		})
	})
	return e
}

func doSecureGet(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	e := newAuthTestServer()

	rec := doSecureGet(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	e := newAuthTestServer()

	token := makeAccessToken(t, testSecret, 1, "USER", 0, jwt.SigningMethodHS256)
	rec := doSecureGet(e, "Basic "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	e := newAuthTestServer()

	token := makeAccessToken(t, "other-secret", 1, "USER", 0, jwt.SigningMethodHS256)
	rec := doSecureGet(e, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSigningMethod(t *testing.T) {
	e := newAuthTestServer()

	//HS256以外は正しい鍵でも弾く
	token := makeAccessToken(t, testSecret, 1, "USER", 0, jwt.SigningMethodHS512)
	rec := doSecureGet(e, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ValidTokenSetsContext(t *testing.T) {
	e := newAuthTestServer()

	token := makeAccessToken(t, testSecret, 42, "ADMIN", 3, jwt.SigningMethodHS256)
	rec := doSecureGet(e, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":42,"role":"ADMIN","token_version":3}`, rec.Body.String())
}

func TestAuthJWT_SubMustBePositive(t *testing.T) {
	e := newAuthTestServer()

	token := makeAccessToken(t, testSecret, 0, "USER", 0, jwt.SigningMethodHS256)
	rec := doSecureGet(e, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
