package main

import (
	"context"
	"fmt"
	"log"

	common_api "nextgen-crm/internal/common/api"
	"nextgen-crm/internal/config"
	"nextgen-crm/internal/database"
	"nextgen-crm/internal/features/access"
	"nextgen-crm/internal/features/activity"
	"nextgen-crm/internal/features/auth"
	"nextgen-crm/internal/features/datamgmt"
	"nextgen-crm/internal/features/lead"
	"nextgen-crm/internal/features/prospect"
	"nextgen-crm/internal/features/reminder"
	"nextgen-crm/internal/features/session"
	"nextgen-crm/internal/features/system"
	"nextgen-crm/internal/features/team"
	"nextgen-crm/internal/features/template"
	"nextgen-crm/internal/logger"
	"nextgen-crm/internal/middleware"
	"nextgen-crm/internal/store"
	"nextgen-crm/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// NewStore selects the document-store driver from config. The memory
// driver skips the Mongo connection entirely.
func NewStore(lc fx.Lifecycle, cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == "memory" {
		return store.NewMemoryStore(), nil
	}
	db, err := database.NewDatabase(lc, cfg)
	if err != nil {
		return nil, err
	}
	return store.NewMongoStore(db), nil
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Store
			NewStore,

			// Initialize Repository
			access.NewAccessRepository,
			prospect.NewProspectRepository,
			lead.NewLeadRepository,
			team.NewTeamRepository,
			template.NewTemplateRepository,

			// Initialize Service
			auth.NewAuthService,
			access.NewAccessService,
			activity.NewActivityService,
			prospect.NewProspectService,
			lead.NewLeadService,
			team.NewTeamService,
			template.NewTemplateService,
			datamgmt.NewDataService,
			reminder.NewReminderService,
			session.NewManager,

			// Initialize Controller
			auth.NewAuthController,
			access.NewAccessController,
			activity.NewActivityController,
			system.NewWebSocketController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(access.NewAccessApi),
			AsRoute(activity.NewActivityApi),
			AsRoute(system.NewWebSocketApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, reminders reminder.ReminderService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return reminders.Start(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return reminders.Stop()
					},
				})
			},
		),
	)

	app.Run()
}
