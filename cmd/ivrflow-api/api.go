// Package main provides the IVRFlow API server implementation.
package main

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/dialvox/ivrflow/pkg/auth"
	"github.com/dialvox/ivrflow/pkg/eventbus"
	"github.com/dialvox/ivrflow/pkg/persistence"
	"github.com/dialvox/ivrflow/pkg/registry"
	"github.com/dialvox/ivrflow/pkg/services"
	"github.com/dialvox/ivrflow/pkg/session"
	"github.com/dialvox/ivrflow/pkg/web"
)

const janitorSchedule = "@every 1m"

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	sessions    *session.Manager
	validate    *validator.Validate
	sessionTTL  time.Duration
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	sessionTTL time.Duration,
) *API {
	return &API{
		persistence: persistence,
		logger:      logger,
		registry:    registry.NewRegistry(logger),
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		sessionTTL:  sessionTTL,
	}
}

func (a *API) App() *fiber.App {
	flowService := services.NewFlow(a.persistence, a.registry, a.eventBus, a.logger)

	a.sessions = session.NewManager(flowService, a.logger, a.sessionTTL)

	handlers := web.NewAPIHandlers(flowService, a.sessions, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("IVRFlow API")
	})

	editFlows := web.RequirePermission(auth.PermissionFlowsEdit)

	f := app.Group("/flows")
	f.Get("/", handlers.GetFlows)
	f.Post("/", handlers.CreateFlow, web.RequirePermission(auth.PermissionFlowsCreate))
	f.Get("/:id", handlers.GetFlow)
	f.Patch("/:id", handlers.UpdateFlow, editFlows)
	f.Delete("/:id", handlers.DeleteFlow, web.RequirePermission(auth.PermissionFlowsDelete))

	// Version endpoints:
	f.Get("/:id/versions", handlers.GetFlowVersions)
	f.Get("/:id/versions/:sequence", handlers.GetFlowVersion)
	f.Post("/:id/versions", handlers.CreateFlowVersion, editFlows)

	// Editing session endpoints:
	f.Post("/:id/sessions", handlers.CreateSession, editFlows)

	s := app.Group("/sessions")
	s.Get("/:sid", handlers.GetSession)
	s.Delete("/:sid", handlers.CloseSession, editFlows)
	s.Post("/:sid/nodes", handlers.AddSessionNode, editFlows)
	s.Delete("/:sid/nodes/:nodeId", handlers.RemoveSessionNode, editFlows)
	s.Post("/:sid/edges", handlers.AddSessionEdge, editFlows)
	s.Put("/:sid/start-node", handlers.SetSessionStartNode, editFlows)
	s.Put("/:sid/viewport", handlers.SetSessionViewport, editFlows)
	s.Post("/:sid/undo", handlers.UndoSession, editFlows)
	s.Post("/:sid/redo", handlers.RedoSession, editFlows)
	s.Post("/:sid/save", handlers.SaveSession, editFlows)

	app.Post("/definitions/validate", handlers.ValidateDefinition)
	app.Get("/node-kinds", handlers.GetNodeKinds)
	app.Get("/auth/permissions", handlers.GetPermissions)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	if err := a.sessions.StartJanitor(janitorSchedule); err != nil {
		return err
	}
	defer a.sessions.StopJanitor()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
