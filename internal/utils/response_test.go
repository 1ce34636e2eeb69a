package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, handler fiber.Handler) (*http.Response, APIResponse) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)

	var payload APIResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	return res, payload
}

func TestSendSuccess(t *testing.T) {
	res, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, "record created", map[string]string{"id": "42"})
	})
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	require.True(t, payload.Success)
	require.Equal(t, "record created", payload.Message)
	require.NotNil(t, payload.Data)
	require.Empty(t, payload.Code)
}

func TestSendSuccessWithStatus(t *testing.T) {
	res, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccessWithStatus(c, fiber.StatusCreated, "", nil)
	})
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
	require.Nil(t, payload.Data)
}

func TestSendError(t *testing.T) {
	res, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusNotFound, "record not found")
	})
	require.Equal(t, fiber.StatusNotFound, res.StatusCode)
	require.False(t, payload.Success)
	require.Equal(t, "record not found", payload.Message)
	require.Empty(t, payload.Code)
}

func TestSendErrorCode(t *testing.T) {
	res, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendErrorCode(c, fiber.StatusUnauthorized, "TOKEN_EXPIRED", "session has expired")
	})
	require.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	require.False(t, payload.Success)
	require.Equal(t, "TOKEN_EXPIRED", payload.Code)
	require.Equal(t, "session has expired", payload.Message)
}
