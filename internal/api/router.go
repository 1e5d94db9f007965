package api

import (
	"budgetlink/docs"
	"budgetlink/internal/api/handlers"
	"budgetlink/pkg/auth"
	"budgetlink/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func SetupRouter(
	userHandler *handlers.UserHandler,
	budgetHandler *handlers.BudgetHandler,
	expenseHandler *handlers.ExpenseHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
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

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Swagger - importing the docs package registers the documentation via init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authRequired := middleware.AuthMiddleware(jwtManager, appLogger)

	api := app.Group("/api")

	// User directory; create and auth are public, the rest requires a token
	users := api.Group("/users")
	users.Post("/", userHandler.Create)
	users.Post("/auth", userHandler.Authenticate)
	users.Get("/", authRequired, userHandler.List)
	users.Put("/", authRequired, userHandler.Update)
	users.Get("/:id", authRequired, userHandler.Get)
	users.Delete("/:id", authRequired, userHandler.Delete)

	// Budget registry
	budgets := api.Group("/budgets", authRequired)
	budgets.Post("/", budgetHandler.Create)
	budgets.Put("/", budgetHandler.Update)
	budgets.Get("/all/:user_id", budgetHandler.ListForUser)
	budgets.Get("/current/:user_id", budgetHandler.Active)
	budgets.Get("/history/:budget_id", budgetHandler.History)
	budgets.Get("/:id", budgetHandler.Get)
	budgets.Delete("/:id", budgetHandler.Delete)

	// Consumption ledger and reports
	expenses := api.Group("/expenses", authRequired)
	expenses.Post("/", expenseHandler.Record)
	expenses.Put("/", expenseHandler.Update)
	expenses.Post("/consumptionReport", expenseHandler.ConsumptionReport)
	expenses.Post("/categoriesExpensesReport", expenseHandler.CategoryReport)
	expenses.Get("/all/:budget_id", expenseHandler.ListByBudget)
	expenses.Get("/:id", expenseHandler.Get)
	expenses.Delete("/:id", expenseHandler.Delete)

	return app
}
