package api

import (
	"net/http"

	"github.com/fafnerzhang/codetrekking/internal/repository"
	"github.com/fafnerzhang/codetrekking/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the planning API onto the router.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	tokenService service.TokenService,
	phaseService service.PhaseService,
	weekService service.WeekService,
	workoutService service.WorkoutService,
	runRepo repository.RunRepository,
) {
	authHandler := NewAuthHandler(tokenService)
	planHandler := NewPlanHandler(phaseService, weekService, workoutService)
	runHandler := NewRunHandler(runRepo)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/token", authHandler.IssueToken)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Planning Pipeline ---
		planGroup := protected.Group("/plans")
		{
			// POST /api/v1/plans/phases - periodized phase planning
			planGroup.POST("/phases", planHandler.GeneratePhases)
			// POST /api/v1/plans/workouts - week enhancement + daily expansion
			planGroup.POST("/workouts", planHandler.GenerateWorkouts)
		}

		// --- Planning Run Records ---
		runGroup := protected.Group("/runs")
		{
			runGroup.GET("", runHandler.ListRuns)
			runGroup.GET("/:id", runHandler.GetRun)
		}
	}
}
