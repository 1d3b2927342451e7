package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/optikform/optik-api/internal/middleware"
)

const testSecret = "jwt-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":     c.Locals("user_id"),
			"user_role":   c.Locals("user_role"),
			"school_id":   c.Locals("school_id"),
			"school_name": c.Locals("school_name"),
		})
	})
	return app
}

func TestJWTProtected_MissingHeader(t *testing.T) {
	app := newProtectedApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtected_InvalidToken(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtected_WrongSecret(t *testing.T) {
	app := newProtectedApp()

	token := signToken(t, "other-secret", jwt.MapClaims{"sub": "7"})
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtected_ExpiredToken(t *testing.T) {
	app := newProtectedApp()

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtected_BindsCallerIdentity(t *testing.T) {
	var gotUserID, gotSchoolID uint
	var gotRole, gotSchoolName string

	app := fiber.New()
	app.Get("/protected", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		gotUserID, _ = c.Locals("user_id").(uint)
		gotRole, _ = c.Locals("user_role").(string)
		gotSchoolID, _ = c.Locals("school_id").(uint)
		gotSchoolName, _ = c.Locals("school_name").(string)
		return c.SendStatus(fiber.StatusOK)
	})

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":         "7",
		"role":        "Teacher",
		"school_id":   float64(3),
		"school_name": "Gazi Ilkokulu",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.EqualValues(t, 7, gotUserID)
	require.Equal(t, "teacher", gotRole)
	require.EqualValues(t, 3, gotSchoolID)
	require.Equal(t, "Gazi Ilkokulu", gotSchoolName)
}

func TestJWTProtected_IgnoresUnknownRole(t *testing.T) {
	var roleBound bool

	app := fiber.New()
	app.Get("/protected", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		_, roleBound = c.Locals("user_role").(string)
		return c.SendStatus(fiber.StatusOK)
	})

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "7",
		"role": "janitor",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.False(t, roleBound)
}
