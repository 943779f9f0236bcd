package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/codetrek/backend/internal/database"
	"github.com/codetrek/backend/internal/models"
	"github.com/codetrek/backend/internal/services"
	apperrors "github.com/codetrek/backend/pkg/errors"
	"github.com/gin-gonic/gin"
)

type judgeRequest struct {
	ProblemID string `json:"problemId" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Language  string `json:"language" binding:"required"`
}

// SubmitSolution handles POST /api/judge/submit
// Judges against hidden test cases, records the submission, updates progress
func SubmitSolution(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	uid := userID.(string)

	var input judgeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Per-user quota on top of the per-IP limiter
	if database.Redis != nil {
		if ok, err := database.CheckRateLimit("submit:"+uid, 20, time.Minute); err == nil && !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many submissions, slow down"})
			return
		}
	}

	result, err := services.SubmitSolution(c.Request.Context(), uid, input.ProblemID, input.Code, input.Language)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunSolution handles POST /api/judge/run
// Judges against visible test cases only, records nothing
func RunSolution(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	uid := userID.(string)

	var input judgeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := services.RunSolution(c.Request.Context(), uid, input.ProblemID, input.Code, input.Language)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSubmissions handles GET /api/judge/submissions
// Lists the caller's own submission history, newest first
func GetSubmissions(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	query := database.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(100)
	if problemID := c.Query("problemId"); problemID != "" {
		query = query.Where("problem_id = ?", problemID)
	}

	var submissions []models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// GetProgress handles GET /api/users/me/progress
func GetProgress(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"solvedCount":    len(user.SolvedProblems),
		"solvedProblems": user.SolvedProblems,
		"streakCount":    user.StreakCount,
		"lastStreakDate": user.LastStreakDate,
		"heatmap":        user.Heatmap,
	})
}

// respondServiceError maps service errors onto the API taxonomy without
// leaking internals: AppErrors carry their own code, judge dependency faults
// become 503/504 with the message passed through, the rest are 500.
func respondServiceError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
	case errors.Is(err, services.ErrJudgeTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrJudgeUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
