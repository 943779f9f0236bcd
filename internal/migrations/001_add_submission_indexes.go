package migrations

import (
	"gorm.io/gorm"
)

// Migration001AddSubmissionIndexes adds indexes for the submission hot paths:
// 1. Submission history (user_id, created_at DESC)
// 2. Per-problem history filter (user_id, problem_id)
//
// All indexes are idempotent (IF NOT EXISTS) for safe re-runs. For large
// production tables run the CONCURRENTLY variant manually; the migrator wraps
// Up() in a transaction, which CREATE INDEX CONCURRENTLY does not allow.
func Migration001AddSubmissionIndexes() Migration {
	return Migration{
		ID:   "001_add_submission_indexes",
		Name: "Add indexes for submission history queries",
		Up: func(db *gorm.DB) error {
			// Optimizes: WHERE user_id = ? ORDER BY created_at DESC
			idx1 := `
				CREATE INDEX IF NOT EXISTS idx_submissions_user_created
				ON submissions (user_id, created_at DESC)
			`
			if err := db.Exec(idx1).Error; err != nil {
				return err
			}

			// Optimizes: WHERE user_id = ? AND problem_id = ?
			idx2 := `
				CREATE INDEX IF NOT EXISTS idx_submissions_user_problem
				ON submissions (user_id, problem_id)
			`
			return db.Exec(idx2).Error
		},
		Down: func(db *gorm.DB) error {
			if err := db.Exec(`DROP INDEX IF EXISTS idx_submissions_user_problem`).Error; err != nil {
				return err
			}
			return db.Exec(`DROP INDEX IF EXISTS idx_submissions_user_created`).Error
		},
	}
}
