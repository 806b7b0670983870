package FiberConfig

import (
	"fmt"
	"os"

	"Cadence/Controllers"
	"Cadence/Models"
	"Cadence/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/template/html"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	taskController := Controllers.NewTaskController(db)
	completionController := Controllers.NewCompletionController(db)
	pendingController := Controllers.NewPendingController(db)
	leaderboardController := Controllers.NewLeaderboardController(db)
	alertController := Controllers.NewAlertController(db)
	pointsConfigController := Controllers.NewPointsConfigController(db)

	// Auth
	app.Post("/api/Login", Controllers.Login)
	app.Get("/api/validate-token", Controllers.ValidateToken)
	app.Use("/api/User", Controllers.User)
	app.Use("/api/Logout", Controllers.Logout)
	app.Post("/api/RegisterUser", middleware.Verify(4), Controllers.RegisterUser)
	app.Get("/api/FetchUsers", middleware.Verify(4), Controllers.FetchUsers)

	api := app.Group("/api")

	// Daily task surface
	tasks := api.Group("/tasks", middleware.Verify(1))
	tasks.Get("/today", taskController.GetTodayTasks)
	tasks.Post("/", taskController.CreateTask)
	tasks.Get("/user/:id", middleware.Verify(3), taskController.GetUserTasks)

	// Task templates (the recurring catalog)
	templates := api.Group("/templates", middleware.Verify(3))
	templates.Get("/", taskController.GetTemplates)
	templates.Post("/", taskController.CreateTemplate)
	templates.Put("/:id", taskController.UpdateTemplate)
	templates.Delete("/:id", taskController.DeleteTemplate)

	// Completion recording
	completions := api.Group("/completions", middleware.Verify(1))
	completions.Post("/", completionController.SubmitCompletions)
	completions.Get("/mine", completionController.GetMyCompletions)

	// Regularization of pending days
	pending := api.Group("/pending", middleware.Verify(1))
	pending.Get("/", pendingController.GetPendingTasks)
	pending.Post("/regularize", pendingController.RegularizePending)

	// Ranking
	leaderboard := api.Group("/leaderboard", middleware.Verify(1))
	leaderboard.Get("/", leaderboardController.GetLeaderboard)
	leaderboard.Post("/reconcile", middleware.Verify(4), leaderboardController.Reconcile)

	// Admin alert inbox
	alerts := api.Group("/alerts", middleware.Verify(3))
	alerts.Get("/", alertController.GetAlerts)
	alerts.Get("/unread-count", alertController.GetUnreadCount)
	alerts.Put("/:id/read", alertController.MarkRead)
	alerts.Put("/read-all", alertController.MarkAllRead)
	alerts.Delete("/:id", alertController.DeleteAlert)

	// Criticality point table
	config := api.Group("/points-config", middleware.Verify(4))
	config.Get("/", pointsConfigController.GetCriticalityPoints)
	config.Put("/", pointsConfigController.UpdateCriticalityPoints)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	engine := html.New("./Templates", ".html")
	app := fiber.New(fiber.Config{
		Views: engine,
	})
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // Important for cookies
		MaxAge:           300,
	}))

	SetupRoutes(app, Models.DB)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	app.Listen(":" + port)
}
