// Package handlertest holds helpers shared by handler tests.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// AsUser puts a session user into Locals the way middleware.Session does.
func AsUser(userID, email string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": userID,
			"email":   email,
		})
		return c.Next()
	}
}

// FromHeader takes the session user from the X-User and X-Email headers so
// one app can serve several callers.
func FromHeader() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := c.Get("X-User"); id != "" {
			c.Locals("user", map[string]interface{}{
				"user_id": id,
				"email":   c.Get("X-Email"),
			})
		}
		return c.Next()
	}
}

// Response is a decoded envelope.
type Response struct {
	Code int
	Body map[string]interface{}
}

// Message returns the error message, or the success message.
func (r Response) Message() string {
	if e, ok := r.Body["error"].(map[string]interface{}); ok {
		s, _ := e["message"].(string)
		return s
	}
	s, _ := r.Body["message"].(string)
	return s
}

// Data returns the data object.
func (r Response) Data() map[string]interface{} {
	d, _ := r.Body["data"].(map[string]interface{})
	return d
}

// List returns the data array.
func (r Response) List() []interface{} {
	d, _ := r.Body["data"].([]interface{})
	return d
}

// Do sends a JSON request through app and decodes the response.
func Do(t testing.TB, app *fiber.App, method, path string, body interface{}) Response {
	t.Helper()
	return DoAs(t, app, "", method, path, body)
}

// DoAs is Do with X-User set to userID, for apps using FromHeader.
func DoAs(t testing.TB, app *fiber.App, userID, method, path string, body interface{}) Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User", userID)
		req.Header.Set("X-Email", userID+"@example.com")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	if len(b) > 0 {
		_ = json.Unmarshal(b, &out)
	}
	return Response{Code: resp.StatusCode, Body: out}
}
