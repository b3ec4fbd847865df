package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"etasync/internal/service"
)

// Deps are the collaborators the HTTP routes need.
type Deps struct {
	DB          *sql.DB
	Sync        service.InvoiceSyncService
	Invoices    service.InvoiceService
	Gatherer    prometheus.Gatherer
	Location    *time.Location
	OpenAPIPath string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; business logic lives in the service layer.
func RegisterRoutes(app *fiber.App, d Deps) {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	spec := d.OpenAPIPath
	if spec == "" {
		spec = "openapi.yaml"
	}

	app.Get("/openapi.yaml", OpenAPISpec(spec))
	app.Get("/docs/*", swagger.New(swagger.Config{
		URL:   "/openapi.yaml",
		Title: "ETA Sync API",
	}))

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	app.Post("/eta/sync", SyncInvoices(d.Sync, loc))

	app.Get("/invoices", ListInvoices(d.Invoices, loc))
	app.Get("/invoices/:uuid", GetInvoice(d.Invoices))
	app.Get("/invoices/:uuid/raw", GetInvoiceRaw(d.Invoices))
}

// OpenAPISpec serves the hand-written API description.
func OpenAPISpec(path string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile(path)
	}
}
