package routes

import (
	"stock-app/apperror"
	"stock-app/config"
	"stock-app/middleware"
	"stock-app/realtime"
	"stock-app/services"
	"stock-app/types"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries the settings the HTTP layer needs.
type Options struct {
	Prefix           string
	JWTSecret        string
	TokenTTL         time.Duration
	TenantID         uint
	DefaultAgingDays int
	RequestTimeout   time.Duration
	LoginRateLimit   int
}

// OptionsFromConfig copies the values loaded by config.LoadConfig.
func OptionsFromConfig() Options {
	return Options{
		Prefix:           config.MAIN_ROUTES,
		JWTSecret:        config.JWTSecret,
		TokenTTL:         time.Duration(config.JWTExpiration) * time.Second,
		TenantID:         config.TenantID,
		DefaultAgingDays: config.DefaultAgingDays,
		RequestTimeout:   config.RequestTimeout,
		LoginRateLimit:   config.LoginRateLimit,
	}
}

// Deps are the long-lived objects shared by every handler.
type Deps struct {
	DB     *gorm.DB
	Log    *zap.Logger
	Hub    *realtime.Hub
	Mailer services.Mailer
	Opts   Options
}

// Services groups the business services behind the handlers.
type Services struct {
	Auth        *services.AuthService
	Accounts    *services.AccountService
	Stock       *services.StockService
	Assignments *services.AssignmentService
	Transfers   *services.TransferService
	Intake      *services.IntakeService
	Audit       *services.AuditService
	Departments *services.DepartmentService
	Categories  *services.CategoryService
}

func NewServices(d Deps) *Services {
	var publisher services.AuditPublisher
	if d.Hub != nil {
		publisher = d.Hub
	}
	trail := services.NewAuditTrail(publisher, d.Log)

	return &Services{
		Auth:        services.NewAuthService(d.DB, d.Log, d.Opts.JWTSecret, d.Opts.TokenTTL),
		Accounts:    services.NewAccountService(d.DB, trail, d.Mailer, d.Log),
		Stock:       services.NewStockService(d.DB, trail, d.Log, d.Opts.DefaultAgingDays),
		Assignments: services.NewAssignmentService(d.DB, trail, d.Log),
		Transfers:   services.NewTransferService(d.DB, trail, d.Log),
		Intake:      services.NewIntakeService(d.DB, trail, d.Log, d.Opts.TenantID),
		Audit:       services.NewAuditService(d.DB),
		Departments: services.NewDepartmentService(d.DB, d.Opts.TenantID),
		Categories:  services.NewCategoryService(d.DB),
	}
}

// gates holds the middleware chains shared by the route files.
type gates struct {
	authed   fiber.Handler
	admin    fiber.Handler
	managers fiber.Handler
}

// NewApp builds the fiber application with every route mounted.
func NewApp(d Deps) (*fiber.App, *Services) {
	app := fiber.New(fiber.Config{
		AppName:      "stock-app",
		ErrorHandler: apperror.Handler(d.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(d.Log))
	config.SetupCORS(app)
	app.Use(middleware.Timeout(d.Opts.RequestTimeout))

	svc := NewServices(d)
	g := gates{
		authed:   middleware.Auth(svc.Auth),
		admin:    middleware.RequireRoles(types.RoleAdmin),
		managers: middleware.RequireRoles(types.RoleAdmin, types.RoleStockManager),
	}

	api := app.Group(d.Opts.Prefix)
	SetupAuthRoutes(api, svc, g, d.Opts.LoginRateLimit)
	SetupReferenceRoutes(api, svc, g)
	SetupStockRoutes(api, svc, g)
	SetupTransferRoutes(api, svc, g)
	SetupIntakeRoutes(api, svc, g)
	SetupAdminRoutes(api, svc, g)
	if d.Hub != nil {
		SetupRealtimeRoutes(app, d.Hub, g)
	}

	return app, svc
}
