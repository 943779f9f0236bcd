package integration

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codetrek/backend/internal/config"
	"github.com/codetrek/backend/internal/database"
	"github.com/codetrek/backend/internal/middleware"
	"github.com/codetrek/backend/internal/models"
	"github.com/codetrek/backend/internal/routes"
	"github.com/codetrek/backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Init Config for JWT
	config.AppConfig = &config.Config{
		JWTSecret:       "test_secret_key_12345",
		DefaultTimezone: "UTC",
	}

	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.Submission{},
	); err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}

	// Handlers use the global database.DB
	database.DB = db
	return db
}

// setupRouter builds the router the same way main does, minus CORS
func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())

	api := r.Group("/api")
	routes.RegisterJudgeRoutes(api)
	routes.RegisterUserRoutes(api)
	return r
}

// setupJudge points the global judge client at a stub server
func setupJudge(t *testing.T, baseURL string) {
	t.Helper()
	old := services.Judge
	services.Judge = &services.JudgeClient{
		BaseURL:         baseURL,
		HTTPClient:      &http.Client{Timeout: 5 * time.Second},
		PollInterval:    10 * time.Millisecond,
		PerCaseWait:     200 * time.Millisecond,
		MinWait:         200 * time.Millisecond,
		DispatchRetries: 1,
	}
	t.Cleanup(func() { services.Judge = old })
}

// acceptAllJudge answers every dispatch with accepted verdicts in order
func acceptAllJudge(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/submissions/batch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`[{"token":"it-0"},{"token":"it-1"}]`))
			return
		}
		w.Write([]byte(`{"submissions":[
			{"token":"it-0","status_id":3,"time":"0.011","memory":900,"stdout":"3\n"},
			{"token":"it-1","status_id":3,"time":"0.014","memory":1100,"stdout":"30\n"}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
