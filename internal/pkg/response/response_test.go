package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h fiber.Handler) (int, map[string]interface{}) {
	app := fiber.New()
	app.Get("/", h)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return resp.StatusCode, out
}

func TestList_NilIsEmptyArray(t *testing.T) {
	code, out := call(t, func(c *fiber.Ctx) error {
		var items []string
		return List(c, "ok", items)
	})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, []interface{}{}, out["data"])
	assert.EqualValues(t, 0, out["metadata"].(map[string]interface{})["count"])
}

func TestError(t *testing.T) {
	code, out := call(t, func(c *fiber.Ctx) error {
		return Error(c, "nope", fiber.StatusConflict, nil)
	})
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, "error", out["status"])
	e := out["error"].(map[string]interface{})
	assert.Equal(t, "nope", e["message"])
	assert.EqualValues(t, 409, e["statusCode"])
}

func TestSuccessCreated_DefaultsMetadata(t *testing.T) {
	code, out := call(t, func(c *fiber.Ctx) error {
		return SuccessCreated(c, "made", fiber.Map{"id": 1}, nil)
	})
	assert.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, map[string]interface{}{}, out["metadata"])
}
