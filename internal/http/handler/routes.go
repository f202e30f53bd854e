package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"golang.org/x/time/rate"

	"pdfapi/docs"
	"pdfapi/internal/http/middleware"
	"pdfapi/internal/service"
)

// Services bundles what the routes depend on. DB and Limiter may be nil.
type Services struct {
	DB        *sql.DB
	PDF       service.PDFService
	Artifacts service.ArtifactService
	Limiter   *rate.Limiter
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate between HTTP and the service layer.
func RegisterRoutes(app *fiber.App, s Services) {
	app.Get("/health", HealthCheck(s.DB))
	app.Get("/healthz", LivenessProbe())

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	api := app.Group("/api")
	api.Get("/download/:filename", Download(s.Artifacts))
	api.Get("/artifacts", ListArtifacts(s.Artifacts))

	throttle := middleware.Throttle(s.Limiter)
	api.Post("/merge", throttle, MergeFiles(s.PDF))
	api.Post("/watermark", throttle, Watermark(s.PDF))
	api.Post("/extract", throttle, ExtractText(s.PDF))
	api.Post("/split", throttle, Split(s.PDF))
	api.Post("/rotate", throttle, Rotate(s.PDF))
	api.Post("/cover-letter", throttle, CoverLetter(s.PDF))
}

// Endpoints lists the public routes, for the startup banner.
func Endpoints() []string {
	return []string{
		"POST /api/merge",
		"POST /api/watermark",
		"POST /api/extract",
		"POST /api/split",
		"POST /api/rotate",
		"POST /api/cover-letter",
		"GET  /api/download/:filename",
		"GET  /api/artifacts",
		"GET  /health",
		"GET  /metrics",
		"GET  /swagger/*",
	}
}
