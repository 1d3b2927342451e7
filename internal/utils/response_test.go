package utils_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/optikform/optik-api/internal/utils"
)

func fetch(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return resp.StatusCode, payload
}

func TestSendSuccessDefaultsMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "", map[string]string{"name": "deneme"})
	})

	status, payload := fetch(t, app, "/ok")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, payload["success"])
	require.Equal(t, "success", payload["message"])
	require.NotNil(t, payload["data"])
}

func TestSendListIncludesCount(t *testing.T) {
	app := fiber.New()
	app.Get("/list", func(c *fiber.Ctx) error {
		return utils.SendList(c, "items retrieved", []int{1, 2, 3}, 3)
	})

	status, payload := fetch(t, app, "/list")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, float64(3), payload["count"])
}

func TestSendErrorOmitsData(t *testing.T) {
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusTeapot, "nope")
	})

	status, payload := fetch(t, app, "/fail")
	require.Equal(t, fiber.StatusTeapot, status)
	require.Equal(t, false, payload["success"])
	require.NotContains(t, payload, "data")
	require.NotContains(t, payload, "count")
}
