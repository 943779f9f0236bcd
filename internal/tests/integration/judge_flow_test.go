package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codetrek/backend/internal/database"
	"github.com/codetrek/backend/internal/models"
	"github.com/codetrek/backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProblemWithCases(t *testing.T, id string) {
	t.Helper()
	cases, err := json.Marshal([]models.TestCase{
		{Input: "1 2", Output: "3"},
		{Input: "10 20", Output: "30"},
	})
	require.NoError(t, err)
	require.NoError(t, database.DB.Create(&models.Problem{
		ID:               id,
		Title:            "Sum " + id,
		VisibleTestCases: string(cases),
		HiddenTestCases:  string(cases),
	}).Error)
}

func doJSON(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Full authenticated flow: submit a solution, then read back history and
// progress through the API.
func TestJudgeFlow_SubmitThenReadBack(t *testing.T) {
	setupTestDB(t)

	user := models.User{ID: "it-user-1", Username: "it_flow1", Email: "it1@example.com", Timezone: "UTC"}
	require.NoError(t, database.DB.Create(&user).Error)
	seedProblemWithCases(t, "it-prob-1")

	setupJudge(t, acceptAllJudge(t).URL)
	router := setupRouter()

	token, err := utils.GenerateToken(user.ID)
	require.NoError(t, err)

	// Submit
	w := doJSON(router, "POST", "/api/judge/submit", token, map[string]string{
		"problemId": "it-prob-1",
		"code":      "print(sum(map(int, input().split())))",
		"language":  "python",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var submitRes struct {
		SubmissionID string  `json:"submissionId"`
		Accepted     bool    `json:"accepted"`
		Passed       int     `json:"passedTestCases"`
		Total        int     `json:"totalTestCases"`
		Runtime      float64 `json:"runtime"`
		Memory       int     `json:"memory"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitRes))
	assert.True(t, submitRes.Accepted)
	assert.Equal(t, 2, submitRes.Passed)
	assert.Equal(t, 2, submitRes.Total)
	assert.InDelta(t, 0.025, submitRes.Runtime, 1e-9)
	assert.Equal(t, 1100, submitRes.Memory)

	// History
	w = doJSON(router, "GET", "/api/judge/submissions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listRes struct {
		Submissions []models.Submission `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listRes))
	require.Len(t, listRes.Submissions, 1)
	assert.Equal(t, submitRes.SubmissionID, listRes.Submissions[0].ID)
	assert.Equal(t, models.StatusAccepted, listRes.Submissions[0].Status)

	// Progress
	w = doJSON(router, "GET", "/api/users/me/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var progressRes struct {
		SolvedCount    int            `json:"solvedCount"`
		SolvedProblems []string       `json:"solvedProblems"`
		StreakCount    int            `json:"streakCount"`
		Heatmap        map[string]int `json:"heatmap"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progressRes))
	assert.Equal(t, 1, progressRes.SolvedCount)
	assert.Contains(t, progressRes.SolvedProblems, "it-prob-1")
	assert.Equal(t, 1, progressRes.StreakCount)
	assert.Len(t, progressRes.Heatmap, 1)
}

func TestJudgeFlow_RunDoesNotPersist(t *testing.T) {
	setupTestDB(t)

	user := models.User{ID: "it-user-2", Username: "it_flow2", Email: "it2@example.com", Timezone: "UTC"}
	require.NoError(t, database.DB.Create(&user).Error)
	seedProblemWithCases(t, "it-prob-2")

	setupJudge(t, acceptAllJudge(t).URL)
	router := setupRouter()

	token, err := utils.GenerateToken(user.ID)
	require.NoError(t, err)

	w := doJSON(router, "POST", "/api/judge/run", token, map[string]string{
		"problemId": "it-prob-2",
		"code":      "print(sum(map(int, input().split())))",
		"language":  "python",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var runRes struct {
		Success   bool `json:"success"`
		TestCases []struct {
			Stdout string `json:"stdout"`
			Passed bool   `json:"passed"`
		} `json:"testCases"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runRes))
	assert.True(t, runRes.Success)
	require.Len(t, runRes.TestCases, 2)
	assert.Equal(t, "3\n", runRes.TestCases[0].Stdout)

	var count int64
	database.DB.Model(&models.Submission{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
}

func TestJudgeFlow_RequiresAuth(t *testing.T) {
	setupTestDB(t)
	router := setupRouter()

	w := doJSON(router, "POST", "/api/judge/submit", "", map[string]string{
		"problemId": "p", "code": "x", "language": "python",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "GET", "/api/users/me/progress", "invalid.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
