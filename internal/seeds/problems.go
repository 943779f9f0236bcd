package seeds

import (
	"encoding/json"

	"github.com/codetrek/backend/internal/database"
	"github.com/codetrek/backend/internal/models"
	"github.com/codetrek/backend/pkg/logger"
	"github.com/google/uuid"
)

type seedProblem struct {
	Title       string
	Description string
	Difficulty  string
	Visible     []models.TestCase
	Hidden      []models.TestCase
}

var sampleProblems = []seedProblem{
	{
		Title:       "Two Sum",
		Description: "Read two integers from stdin and print their sum.",
		Difficulty:  "EASY",
		Visible: []models.TestCase{
			{Input: "1 2", Output: "3"},
			{Input: "10 20", Output: "30"},
		},
		Hidden: []models.TestCase{
			{Input: "1 2", Output: "3"},
			{Input: "10 20", Output: "30"},
			{Input: "-5 5", Output: "0"},
			{Input: "1000000 1000000", Output: "2000000"},
		},
	},
	{
		Title:       "Reverse String",
		Description: "Read a line from stdin and print it reversed.",
		Difficulty:  "EASY",
		Visible: []models.TestCase{
			{Input: "hello", Output: "olleh"},
		},
		Hidden: []models.TestCase{
			{Input: "hello", Output: "olleh"},
			{Input: "a", Output: "a"},
			{Input: "racecar", Output: "racecar"},
		},
	},
	{
		Title:       "FizzBuzz",
		Description: "Read n and print the FizzBuzz sequence from 1 to n, one entry per line.",
		Difficulty:  "MEDIUM",
		Visible: []models.TestCase{
			{Input: "5", Output: "1\n2\nFizz\n4\nBuzz"},
		},
		Hidden: []models.TestCase{
			{Input: "5", Output: "1\n2\nFizz\n4\nBuzz"},
			{Input: "15", Output: "1\n2\nFizz\n4\nBuzz\nFizz\n7\n8\nFizz\nBuzz\n11\nFizz\n13\n14\nFizzBuzz"},
			{Input: "1", Output: "1"},
		},
	},
}

// SeedProblems inserts the sample problem set, skipping titles that already exist
func SeedProblems() error {
	logger.Info().Msg("📚 Seeding Problems...")

	created := 0
	for _, sp := range sampleProblems {
		var count int64
		database.DB.Model(&models.Problem{}).Where("title = ?", sp.Title).Count(&count)
		if count > 0 {
			continue
		}

		visible, err := json.Marshal(sp.Visible)
		if err != nil {
			return err
		}
		hidden, err := json.Marshal(sp.Hidden)
		if err != nil {
			return err
		}

		problem := models.Problem{
			ID:               uuid.New().String(),
			Title:            sp.Title,
			Description:      sp.Description,
			Difficulty:       sp.Difficulty,
			VisibleTestCases: string(visible),
			HiddenTestCases:  string(hidden),
		}
		if err := database.DB.Create(&problem).Error; err != nil {
			return err
		}
		created++
	}

	logger.Info().Int("created", created).Msg("   ✅ Problems seeded")
	return nil
}

// Run executes all seeders
func Run() error {
	if _, err := GetOrCreateDemoUser(); err != nil {
		return err
	}
	return SeedProblems()
}
