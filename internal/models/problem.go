package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// TestCase is one input/expected-output pair of a problem
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

type Problem struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title       string `json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Difficulty  string `gorm:"default:'MEDIUM'" json:"difficulty"` // EASY, MEDIUM, HARD

	// Visible cases back the "run" path and are shown to the user.
	// Hidden cases back the "submit" path and are never exposed.
	// Both are JSON arrays of TestCase.
	VisibleTestCases string `gorm:"type:text" json:"visibleTestCases"`
	HiddenTestCases  string `gorm:"type:text" json:"-"`

	TimeLimit   int `gorm:"default:2" json:"timeLimit"`     // Seconds
	MemoryLimit int `gorm:"default:128" json:"memoryLimit"` // MB
}

func (p *Problem) VisibleCases() ([]TestCase, error) {
	return decodeCases(p.VisibleTestCases)
}

func (p *Problem) HiddenCases() ([]TestCase, error) {
	return decodeCases(p.HiddenTestCases)
}

func decodeCases(raw string) ([]TestCase, error) {
	if raw == "" {
		return nil, nil
	}
	var cases []TestCase
	if err := json.Unmarshal([]byte(raw), &cases); err != nil {
		return nil, err
	}
	return cases, nil
}
