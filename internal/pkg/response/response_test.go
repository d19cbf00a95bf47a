package response

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return Created(c, "made", fiber.Map{"id": 1})
	})
	app.Get("/rule", func(c *fiber.Ctx) error {
		return UnprocessableEntity(c, "loan_limit_reached", "member is not eligible")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.True(t, body.Success)
	assert.Equal(t, "made", body.Message)
	assert.Empty(t, body.Code)

	resp, err = app.Test(httptest.NewRequest("GET", "/rule", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	body = decode(t, resp.Body)
	assert.False(t, body.Success)
	assert.Equal(t, "loan_limit_reached", body.Code)
	assert.Equal(t, "member is not eligible", body.Error)
}

func decode(t *testing.T, r io.Reader) Response {
	t.Helper()
	var out Response
	require.NoError(t, jsoniter.NewDecoder(r).Decode(&out))
	return out
}
