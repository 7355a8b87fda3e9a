// Package httpapi exposes run status over HTTP in serve mode.
package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/citysense/weather-etl/internal/store"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, runs *store.RunLog) {
	v1 := app.Group("/api/v1")

	v1.Get("/runs/latest", func(c *fiber.Ctx) error {
		summary, err := runs.Latest()
		if err != nil {
			if errors.Is(err, store.ErrNoRuns) {
				return fiber.NewError(fiber.StatusNotFound, "no runs completed yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run log")
		}
		return c.JSON(summary)
	})
}
