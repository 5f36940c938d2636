package handler

import (
	"context"
	"net/http"

	"codmsocial-backend/bootstrap"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var serve http.HandlerFunc

func init() {
	a, err := bootstrap.New(context.Background())
	if err != nil {
		panic("app create: " + err.Error())
	}
	serve = adaptor.FiberApp(a.Fiber)
}

// Handler is the serverless entry point. All requests are rewritten here.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()
	serve(w, r)
}
