package services

import (
	"context"
	"errors"
	"strings"

	"github.com/codetrek/backend/internal/database"
	"github.com/codetrek/backend/internal/models"
	apperrors "github.com/codetrek/backend/pkg/errors"
	"github.com/codetrek/backend/pkg/logger"
	"github.com/codetrek/backend/pkg/utils"
	"gorm.io/gorm"
)

// SubmitResult is the response of the submit path
type SubmitResult struct {
	SubmissionID    string  `json:"submissionId"`
	Accepted        bool    `json:"accepted"`
	TotalTestCases  int     `json:"totalTestCases"`
	PassedTestCases int     `json:"passedTestCases"`
	Runtime         float64 `json:"runtime"`
	Memory          int     `json:"memory"`
	ErrorMessage    *string `json:"errorMessage"`
}

// CaseResult is one visible test case outcome on the run path
type CaseResult struct {
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expectedOutput"`
	Stdout         string  `json:"stdout"`
	Stderr         string  `json:"stderr,omitempty"`
	CompileOutput  string  `json:"compileOutput,omitempty"`
	Passed         bool    `json:"passed"`
	Time           float64 `json:"time"`
	Memory         int     `json:"memory"`
}

// RunResult is the response of the run path
type RunResult struct {
	Success         bool         `json:"success"`
	TestCases       []CaseResult `json:"testCases"`
	TotalTestCases  int          `json:"totalTestCases"`
	PassedTestCases int          `json:"passedTestCases"`
	Runtime         float64      `json:"runtime"`
	Memory          int          `json:"memory"`
	ErrorMessage    *string      `json:"errorMessage"`
}

// SubmitSolution judges code against a problem's hidden test cases, records a
// durable submission, and applies the user's progress updates. The submission
// is created PENDING and moved to a terminal status exactly once.
func SubmitSolution(ctx context.Context, userID, problemID, code, language string) (*SubmitResult, error) {
	if userID == "" || problemID == "" || strings.TrimSpace(code) == "" || language == "" {
		return nil, apperrors.BadRequest("problemId, code and language are required")
	}

	languageID, err := ResolveLanguage(language)
	if err != nil {
		return nil, apperrors.BadRequest("unsupported language: " + language)
	}

	problem, cases, err := loadProblemCases(problemID, true)
	if err != nil {
		return nil, err
	}

	submission := models.Submission{
		ID:         utils.GenerateID(),
		UserID:     userID,
		ProblemID:  problem.ID,
		Code:       code,
		Language:   strings.ToLower(language),
		LanguageID: languageID,
		Status:     models.StatusPending,
		TestsTotal: len(cases),
	}
	if err := database.DB.Create(&submission).Error; err != nil {
		return nil, apperrors.Internal("failed to create submission")
	}

	verdicts, err := judgeBatch(ctx, code, languageID, cases)
	if err != nil {
		// The judge never answered; the record goes to ERROR and the
		// progress ledger is not touched.
		failSubmission(submission.ID, err)
		return nil, err
	}

	agg := AggregateVerdicts(verdicts)
	if err := finalizeSubmission(submission.ID, agg); err != nil {
		return nil, apperrors.Internal("failed to record submission result")
	}

	if err := RecordProgress(userID, problem.ID, agg.Status == models.StatusAccepted); err != nil {
		logger.Error().Err(err).Str("submission_id", submission.ID).Msg("Failed to record progress")
		return nil, apperrors.Internal("failed to update progress")
	}

	logger.Info().
		Str("submission_id", submission.ID).
		Str("user_id", userID).
		Str("problem_id", problem.ID).
		Str("status", string(agg.Status)).
		Int("passed", agg.Passed).
		Int("total", len(cases)).
		Msg("Submission judged")

	result := &SubmitResult{
		SubmissionID:    submission.ID,
		Accepted:        agg.Status == models.StatusAccepted,
		TotalTestCases:  len(cases),
		PassedTestCases: agg.Passed,
		Runtime:         agg.Runtime,
		Memory:          agg.Memory,
	}
	if !result.Accepted {
		msg := agg.ErrorMessage
		result.ErrorMessage = &msg
	}
	return result, nil
}

// RunSolution judges code against a problem's visible test cases. No
// submission record is written and the progress ledger is not invoked; the
// caller gets the full per-case verdict list for display.
func RunSolution(ctx context.Context, userID, problemID, code, language string) (*RunResult, error) {
	if userID == "" || problemID == "" || strings.TrimSpace(code) == "" || language == "" {
		return nil, apperrors.BadRequest("problemId, code and language are required")
	}

	languageID, err := ResolveLanguage(language)
	if err != nil {
		return nil, apperrors.BadRequest("unsupported language: " + language)
	}

	_, cases, err := loadProblemCases(problemID, false)
	if err != nil {
		return nil, err
	}

	verdicts, err := judgeBatch(ctx, code, languageID, cases)
	if err != nil {
		return nil, err
	}

	agg := AggregateVerdicts(verdicts)

	// Verdicts come back in dispatch order, so each one lines up with the
	// case that produced it.
	caseResults := make([]CaseResult, len(verdicts))
	for i, v := range verdicts {
		caseResults[i] = CaseResult{
			Input:          cases[i].Input,
			ExpectedOutput: cases[i].Output,
			Stdout:         v.Stdout,
			Stderr:         v.Stderr,
			CompileOutput:  v.CompileOutput,
			Passed:         v.Accepted(),
			Time:           v.Time,
			Memory:         v.Memory,
		}
	}

	result := &RunResult{
		Success:         agg.Status == models.StatusAccepted,
		TestCases:       caseResults,
		TotalTestCases:  len(cases),
		PassedTestCases: agg.Passed,
		Runtime:         agg.Runtime,
		Memory:          agg.Memory,
	}
	if !result.Success {
		msg := agg.ErrorMessage
		result.ErrorMessage = &msg
	}
	return result, nil
}

func loadProblemCases(problemID string, hidden bool) (*models.Problem, []models.TestCase, error) {
	var problem models.Problem
	if err := database.DB.First(&problem, "id = ?", problemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("problem not found")
		}
		return nil, nil, apperrors.Internal("failed to load problem")
	}

	var (
		cases []models.TestCase
		err   error
	)
	if hidden {
		cases, err = problem.HiddenCases()
	} else {
		cases, err = problem.VisibleCases()
	}
	if err != nil {
		return nil, nil, apperrors.Internal("problem has malformed test cases")
	}
	if len(cases) == 0 {
		return nil, nil, apperrors.BadRequest("problem has no test cases to judge")
	}
	return &problem, cases, nil
}

func judgeBatch(ctx context.Context, code string, languageID int, cases []models.TestCase) ([]Verdict, error) {
	batch := make([]JudgeCase, len(cases))
	for i, tc := range cases {
		batch[i] = JudgeCase{
			SourceCode:     code,
			LanguageID:     languageID,
			Stdin:          tc.Input,
			ExpectedOutput: tc.Output,
		}
	}

	tokens, err := Judge.Dispatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	return Judge.Await(ctx, tokens)
}

// finalizeSubmission is the sole transition out of PENDING. The guard makes
// re-finalization a no-op: a terminal submission never changes again.
func finalizeSubmission(submissionID string, agg Aggregate) error {
	return database.DB.Model(&models.Submission{}).
		Where("id = ? AND status = ?", submissionID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":       agg.Status,
			"tests_passed": agg.Passed,
			"runtime":      agg.Runtime,
			"memory":       agg.Memory,
			"error":        agg.ErrorMessage,
		}).Error
}

func failSubmission(submissionID string, cause error) {
	err := database.DB.Model(&models.Submission{}).
		Where("id = ? AND status = ?", submissionID, models.StatusPending).
		Updates(map[string]interface{}{
			"status": models.StatusError,
			"error":  cause.Error(),
		}).Error
	if err != nil {
		logger.Error().Err(err).Str("submission_id", submissionID).Msg("Failed to mark submission as errored")
	}
}
