package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"retailadmin/handlers"
	"retailadmin/metrics"
	"retailadmin/middleware"
	"retailadmin/resources"
	"retailadmin/utils"
)

// Config is what the route table needs besides the handlers.
type Config struct {
	JWTSecret []byte
	UploadDir string
	Metrics   *metrics.Metrics
}

// NewApp builds the fiber app with the shared middleware stack and every route.
func NewApp(h *handlers.Handler, cfg Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "retailadmin-sandbox",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestID)
	app.Use(middleware.RequestLogger)
	app.Use(middleware.Metrics(cfg.Metrics))

	SetupRoutes(app, h, cfg)
	return app
}

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, h *handlers.Handler, cfg Config) {
	protect := middleware.Authenticate(cfg.JWTSecret)

	app.Get("/health", h.HandleHealth)
	app.Get("/version", h.HandleVersion)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	app.Static(handlers.UploadRoute, cfg.UploadDir)

	api := app.Group("/api")

	// --- Authentication Routes ---
	auth := api.Group("/auth")
	auth.Post("/login", h.HandleLogin)
	auth.Post("/register", h.HandleRegister)
	auth.Post("/refresh", protect, h.HandleRefresh)

	// --- Dashboard, inventory and uploads ---
	api.Get("/dashboard/stats", protect, h.HandleDashboardStats)
	api.Get("/inventory", protect, h.HandleInventory)
	api.Post("/upload", protect, h.HandleUpload)

	// --- Resources ---
	for _, s := range resources.All() {
		guards := []fiber.Handler{protect}
		if s == resources.Users {
			// User management
			guards = append(guards, middleware.CheckRole(utils.RoleAdmin, utils.RoleManager))
		}
		group := api.Group(s.Endpoint, guards...)
		group.Get("/", h.HandleList(s))
		group.Post("/", h.HandleCreate(s))
		group.Get("/:id", h.HandleGet(s))
		group.Put("/:id", h.HandleUpdate(s))
		group.Delete("/:id", h.HandleDelete(s))
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"status": "error", "message": err.Error()})
}
