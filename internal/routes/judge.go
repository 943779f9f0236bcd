package routes

import (
	"github.com/codetrek/backend/internal/handlers"
	"github.com/codetrek/backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterJudgeRoutes(rg *gin.RouterGroup) {
	judge := rg.Group("/judge")
	judge.Use(middleware.AuthMiddleware())
	{
		judge.POST("/submit", middleware.SubmitRateLimit(), handlers.SubmitSolution)
		judge.POST("/run", middleware.ExecuteRateLimit(), handlers.RunSolution)
		judge.GET("/submissions", handlers.GetSubmissions)
	}
}

func RegisterUserRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me/progress", handlers.GetProgress)
	}
}
