package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Skotchmaster/marketplace/pkg/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func signed(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokens.AccessClaims{
		Role:     role,
		Email:    "buyer@example.com",
		VendorID: "",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7d4a1f0e-2b1c-4c5d-8e9f-0a1b2c3d4e5f",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(secret)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, req *http.Request, h echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, h(c)
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	auth := NewJWTAuth(secret)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed(t, "customer"))

	var gotRole, gotUser string
	_, err := run(t, req, auth.RequireAuth(func(c echo.Context) error {
		gotRole, _ = c.Get(CtxRole).(string)
		gotUser, _ = c.Get(CtxUserID).(string)
		return c.NoContent(http.StatusOK)
	}))
	require.NoError(t, err)
	assert.Equal(t, "customer", gotRole)
	assert.Equal(t, "7d4a1f0e-2b1c-4c5d-8e9f-0a1b2c3d4e5f", gotUser)
}

func TestRequireAuth_Cookie(t *testing.T) {
	auth := NewJWTAuth(secret)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: signed(t, "admin")})

	_, err := run(t, req, auth.RequireAuth(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	require.NoError(t, err)
}

func TestRequireAuth_MissingOrInvalid(t *testing.T) {
	auth := NewJWTAuth(secret)

	missing := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := run(t, missing, auth.RequireAuth(func(c echo.Context) error { return nil }))
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)

	invalid := httptest.NewRequest(http.MethodGet, "/", nil)
	invalid.Header.Set(echo.HeaderAuthorization, "Bearer junk")
	_, err = run(t, invalid, auth.RequireAuth(func(c echo.Context) error { return nil }))
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	h := RequireRole("admin")(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(CtxRole, "vendor")
	var he *echo.HTTPError
	require.ErrorAs(t, h(c), &he)
	assert.Equal(t, http.StatusForbidden, he.Code)

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(CtxRole, "admin")
	require.NoError(t, h(c))
}
