package seeds

import (
	"github.com/codetrek/backend/internal/database"
	"github.com/codetrek/backend/internal/models"
	"github.com/codetrek/backend/pkg/logger"
	"github.com/google/uuid"
)

// GetOrCreateDemoUser ensures a demo account exists for local development
func GetOrCreateDemoUser() (models.User, error) {
	logger.Info().Msg("👤 Checking Demo User...")

	username := "codetrek"
	email := "demo@codetrek.dev"

	var user models.User
	err := database.DB.Where("username = ?", username).First(&user).Error

	if err == nil {
		logger.Info().Str("username", user.Username).Msg("   ✅ Demo User found")
		return user, nil
	}

	user = models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Name:     "CodeTrek Demo",
		Timezone: "UTC",
	}

	if err := database.DB.Create(&user).Error; err != nil {
		return models.User{}, err
	}

	logger.Info().Str("username", user.Username).Msg("   ✅ Demo User created")
	return user, nil
}
