package models

import "time"

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "PENDING"
	StatusAccepted SubmissionStatus = "ACCEPTED"
	StatusWrong    SubmissionStatus = "WRONG_ANSWER"
	StatusError    SubmissionStatus = "ERROR"
)

// Terminal reports whether the status can no longer change
func (s SubmissionStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusWrong || s == StatusError
}

// Submission is one judging attempt against a problem's hidden test cases.
// Created PENDING and finalized into a terminal status exactly once.
type Submission struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	UserID    string `gorm:"index" json:"userId"`
	User      User   `gorm:"foreignKey:UserID" json:"-"`
	ProblemID string `gorm:"index" json:"problemId"`

	Code       string `gorm:"type:text" json:"code"`
	Language   string `json:"language"`
	LanguageID int    `json:"-"` // judge service language code

	Status      SubmissionStatus `gorm:"default:'PENDING'" json:"status"`
	TestsPassed int              `json:"testsPassed"`
	TestsTotal  int              `json:"testsTotal"`
	Runtime     float64          `json:"runtime"` // sum across cases, seconds
	Memory      int              `json:"memory"`  // peak across cases, KB
	Error       string           `gorm:"type:text" json:"error,omitempty"`
}
