package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewUnauthorizedError("x"), fiber.StatusUnauthorized},
		{NewInvalidIdentifierError("x"), fiber.StatusBadRequest},
		{NewValidationError("x"), fiber.StatusBadRequest},
		{NewNotFoundError("x"), fiber.StatusNotFound},
		{NewForbiddenError("x"), fiber.StatusForbidden},
		{NewConflictError("x"), fiber.StatusConflict},
		{NewPersistenceError("x", errors.New("boom")), fiber.StatusInternalServerError},
		{errors.New("plain"), fiber.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NewNotFoundError("x")), fiber.StatusNotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestRespondWithError_HidesCause(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithError(c, NewPersistenceError("Failed to fetch posts", errors.New("pq: connection refused")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "connection refused")

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.Success)
	assert.Equal(t, "Failed to fetch posts", out.Error)
}

func TestRespondWithError_Details(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return RespondWithError(c, NewValidationError("Validation failed",
			ValidationIssue{Field: "content", Code: "min", Message: "Post content must be at least 1 character long"}))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Details, 1)
	assert.Equal(t, "content", out.Details[0].Field)
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(fmt.Errorf("ctx: %w", NewForbiddenError("no")), CodeForbidden))
	assert.False(t, IsCode(errors.New("no"), CodeForbidden))
}
