package routes

import (
	"github.com/gin-gonic/gin"

	"sasamom-server/internal/handlers"
	"sasamom-server/internal/jobs"
	"sasamom-server/internal/logger"
	"sasamom-server/internal/repos"
	"sasamom-server/internal/scheduling"
	"sasamom-server/internal/utils"
)

// Dependencies are the services the HTTP layer calls into.
type Dependencies struct {
	Repos     *repos.Repos
	Scheduler *scheduling.Service
	Runner    *jobs.Runner
	Log       *logger.Logger
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	utils.RegisterValidators()

	motherHandler := handlers.NewMotherHandler(deps.Repos, deps.Log)
	childHandler := handlers.NewChildHandler(deps.Repos, deps.Scheduler, deps.Log)
	vaccinationHandler := handlers.NewVaccinationHandler(deps.Repos, deps.Log)
	doseHandler := handlers.NewDoseHandler(deps.Repos, deps.Log)
	reminderLogHandler := handlers.NewReminderLogHandler(deps.Repos, deps.Log)
	jobHandler := handlers.NewJobHandler(deps.Runner, deps.Log)

	api := router.Group("/api/v1")
	{
		motherRoutes := api.Group("/mothers")
		{
			motherRoutes.POST("", motherHandler.CreateMother)
			motherRoutes.GET("", motherHandler.GetMothers)
			motherRoutes.GET("/:id", motherHandler.GetMotherByID)
			motherRoutes.DELETE("/:id", motherHandler.DeleteMother)
			motherRoutes.GET("/:id/upcoming-vaccinations", motherHandler.GetUpcomingVaccinations)
			motherRoutes.POST("/:id/pregnancies", motherHandler.CreatePregnancy)
		}

		childRoutes := api.Group("/children")
		{
			childRoutes.POST("", childHandler.CreateChild)
			childRoutes.GET("/:id", childHandler.GetChildByID)
			childRoutes.POST("/:id/schedule", childHandler.ScheduleChild)
		}

		vaccinationRoutes := api.Group("/vaccinations")
		{
			vaccinationRoutes.GET("", vaccinationHandler.GetVaccinations)
			vaccinationRoutes.POST("", vaccinationHandler.CreateVaccination)
			vaccinationRoutes.DELETE("/:id", vaccinationHandler.DeleteVaccination)
		}

		doseRoutes := api.Group("/doses")
		{
			doseRoutes.GET("/report", doseHandler.GetReport)
			doseRoutes.PATCH("/:id/complete", doseHandler.CompleteDose)
			doseRoutes.GET("/:id/reminders", reminderLogHandler.GetRemindersForDose)
		}

		// Manual triggers for the batch jobs cron also runs.
		jobRoutes := api.Group("/jobs")
		{
			jobRoutes.POST("/schedule", jobHandler.RunSchedule)
			jobRoutes.POST("/reminders", jobHandler.RunReminders)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
