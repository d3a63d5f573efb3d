package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"

	"startupops/config"
	controller "startupops/controllers"
	"startupops/middleware"
	"startupops/models"
	"startupops/utils"
	"startupops/worker"
)

// SetupRoutes wires the full HTTP surface. Controllers that need the
// database or the notifier get them injected here; auth stays on the
// package-level handlers.
func SetupRoutes(app *fiber.App, log *logrus.Logger, notifier *worker.Notifier, ai *genai.Client) {
	utils.InitRazorpay()

	startupCtrl := controller.NewStartupController(config.DB, log)
	teamCtrl := controller.NewTeamController(config.DB, log, notifier)
	taskCtrl := controller.NewTaskController(config.DB, log)
	milestoneCtrl := controller.NewMilestoneController(config.DB, log)
	feedbackCtrl := controller.NewFeedbackController(config.DB, log)
	accessCtrl := controller.NewAccessController(config.DB, log, notifier)
	subscriptionCtrl := controller.NewSubscriptionController(config.DB, log)
	paymentCtrl := controller.NewPaymentController(config.DB, log)
	pitchCtrl := controller.NewPitchController(config.DB, log, ai)
	dashboardCtrl := controller.NewDashboardController(config.DB, log)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public auth routes
	auth := app.Group("/auth", logger.New())
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)

	// Auth routes that need a valid token
	authProtected := auth.Group("", middleware.Protected())
	authProtected.Get("/me", controller.GetCurrentUser)
	authProtected.Post("/change-password", controller.ChangePassword)
	authProtected.Post("/logout", controller.Logout)

	api := app.Group("/api", logger.New(), middleware.Protected())

	// Startup profile: founder creates and edits, any member reads
	startup := api.Group("/startup")
	startup.Post("/", middleware.RequireRole(models.RoleFounder), startupCtrl.CreateStartup)
	startup.Get("/me", middleware.RequireRole(models.RoleFounder, models.RoleTeam), startupCtrl.GetMyStartup)
	startup.Put("/:id", middleware.RequireRole(models.RoleFounder), startupCtrl.UpdateStartup)

	// Team management
	team := api.Group("/team")
	team.Post("/add", middleware.RequireRole(models.RoleFounder), teamCtrl.AddMember)
	team.Delete("/remove/:userId", middleware.RequireRole(models.RoleFounder), teamCtrl.RemoveMember)
	team.Get("/", middleware.RequireRole(models.RoleFounder, models.RoleTeam), teamCtrl.ListTeam)

	// Tasks: shared by founder and team
	tasks := api.Group("/tasks", middleware.RequireRole(models.RoleFounder, models.RoleTeam))
	tasks.Post("/", taskCtrl.CreateTask)
	tasks.Get("/", taskCtrl.GetTasks)
	tasks.Put("/:id", taskCtrl.UpdateTask)
	tasks.Delete("/:id", taskCtrl.DeleteTask)

	// Milestones: founder mutates, team reads
	milestones := api.Group("/milestones")
	milestones.Post("/", middleware.RequireRole(models.RoleFounder), milestoneCtrl.CreateMilestone)
	milestones.Get("/", middleware.RequireRole(models.RoleFounder, models.RoleTeam), milestoneCtrl.GetMilestones)
	milestones.Put("/:id", middleware.RequireRole(models.RoleFounder), milestoneCtrl.UpdateMilestone)
	milestones.Delete("/:id", middleware.RequireRole(models.RoleFounder), milestoneCtrl.DeleteMilestone)

	// Feedback: anyone submits, members read, founder deletes
	feedback := api.Group("/feedback")
	feedback.Post("/", feedbackCtrl.SubmitFeedback)
	feedback.Get("/", middleware.RequireRole(models.RoleFounder, models.RoleTeam), feedbackCtrl.GetFeedback)
	feedback.Delete("/:id", middleware.RequireRole(models.RoleFounder), feedbackCtrl.DeleteFeedback)

	// Access grant ledger
	access := api.Group("/access", middleware.RequireRole(models.RoleFounder))
	access.Post("/grant-investor", accessCtrl.GrantInvestorAccess)
	access.Post("/grant-mentor", accessCtrl.GrantMentorAccess)
	access.Delete("/revoke/:id/:type", accessCtrl.RevokeAccess)

	// Read-only views for external parties
	investor := api.Group("/investor", middleware.RequireRole(models.RoleInvestor))
	investor.Get("/startups", accessCtrl.ListInvestorStartups)
	investor.Get("/dashboard/:startupId", accessCtrl.InvestorDashboard)

	mentor := api.Group("/mentor", middleware.RequireRole(models.RoleMentor))
	mentor.Get("/startups", accessCtrl.ListMentorStartups)
	mentor.Get("/dashboard/:startupId", accessCtrl.MentorDashboard)

	// User-level subscription billing
	subscription := api.Group("/subscription")
	subscription.Post("/create-order", middleware.RequireRole(models.RoleFounder), subscriptionCtrl.CreateOrder)
	subscription.Post("/verify", middleware.RequireRole(models.RoleFounder), subscriptionCtrl.VerifyPayment)
	subscription.Get("/current", subscriptionCtrl.GetSubscription)

	// Startup-level subscription billing
	payment := api.Group("/payment")
	payment.Post("/create-order", middleware.RequireRole(models.RoleFounder), paymentCtrl.CreateStartupOrder)
	payment.Post("/verify", middleware.RequireRole(models.RoleFounder), paymentCtrl.VerifyStartupPayment)
	payment.Get("/subscription", paymentCtrl.GetStartupSubscription)

	// AI pitch generation: active-pro users only, rate limited per user
	pitch := api.Group("/pitch",
		middleware.RequireRole(models.RoleFounder, models.RoleTeam),
		middleware.RequireActivePro(),
		middleware.PitchRateLimiter(),
	)
	pitch.Post("/generate", pitchCtrl.GeneratePitch)

	// Progress analytics
	dashboard := api.Group("/dashboard", middleware.RequireRole(models.RoleFounder, models.RoleTeam))
	dashboard.Get("/stats", dashboardCtrl.GetStats)

	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Route not found", nil)
	})
}
