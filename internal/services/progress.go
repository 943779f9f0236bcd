package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/codetrek/backend/internal/config"
	"github.com/codetrek/backend/internal/database"
	"github.com/codetrek/backend/internal/models"
	"github.com/codetrek/backend/pkg/logger"
)

const dateLayout = "2006-01-02"

// nowFunc is swapped in tests for deterministic dates
var nowFunc = time.Now

// userLocks serializes progress writes per user so two concurrent
// submissions cannot lose each other's update.
var userLocks sync.Map

func lockUser(userID string) *sync.Mutex {
	mu, _ := userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// RecordProgress applies the progress side effects of one judged submission:
// the attempt heatmap is updated (and pruned) for every outcome, the solved
// set and streak only when the submission was accepted. All mutations land on
// one user snapshot and are persisted in a single write.
func RecordProgress(userID, problemID string, accepted bool) error {
	mu := lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("loading user %s: %w", userID, err)
	}

	// The date is computed once and feeds both heatmap and streak so the
	// two stay consistent within this request.
	now := nowFunc().In(userLocation(user.Timezone))
	date := now.Format(dateLayout)

	applyAttempt(&user, now, date)
	if accepted {
		applyAcceptance(&user, problemID, date)
	}

	if err := database.DB.Save(&user).Error; err != nil {
		return fmt.Errorf("saving progress for user %s: %w", userID, err)
	}

	logger.Debug().
		Str("user_id", userID).
		Str("problem_id", problemID).
		Bool("accepted", accepted).
		Str("date", date).
		Msg("Progress recorded")
	return nil
}

func userLocation(tz string) *time.Location {
	if tz == "" && config.AppConfig != nil {
		tz = config.AppConfig.DefaultTimezone
	}
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.Warn().Str("timezone", tz).Msg("Unknown timezone, falling back to UTC")
		return time.UTC
	}
	return loc
}

func applyAttempt(user *models.User, asOf time.Time, date string) {
	if user.Heatmap == nil {
		user.Heatmap = models.Heatmap{}
	}
	user.Heatmap[date]++
	user.Heatmap = user.Heatmap.Prune(asOf)
}

func applyAcceptance(user *models.User, problemID, date string) {
	if !user.SolvedProblems.Contains(problemID) {
		user.SolvedProblems = append(user.SolvedProblems, problemID)
	}

	if user.LastStreakDate == nil {
		user.StreakCount = 1
		user.LastStreakDate = &date
		return
	}

	diff := daysBetween(*user.LastStreakDate, date)
	switch {
	case diff == 1:
		user.StreakCount++
	case diff > 1:
		user.StreakCount = 1
	case diff < 0:
		// Submission dated before the stored streak date (clock skew or a
		// timezone change). Leave both count and date alone.
		return
	}
	user.LastStreakDate = &date
}

// daysBetween returns whole calendar days from a to b using midnight-aligned
// dates, not wall-clock subtraction.
func daysBetween(a, b string) int {
	ta, errA := time.Parse(dateLayout, a)
	tb, errB := time.Parse(dateLayout, b)
	if errA != nil || errB != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}
