package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Heatmap keys are calendar dates (YYYY-MM-DD) in the user's local timezone,
// values are attempt counts for that day. Stored as a JSON text column.
type Heatmap map[string]int

func (h Heatmap) Value() (driver.Value, error) {
	if h == nil {
		return "{}", nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h *Heatmap) Scan(src interface{}) error {
	if src == nil {
		*h = Heatmap{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	default:
		return errors.New("unsupported heatmap column type")
	}
}

// Prune returns the entries still inside the retention window: everything
// dated strictly before (asOf - 12 months - 1 day) is dropped, the boundary
// date itself is kept. YYYY-MM-DD keys compare correctly as strings.
func (h Heatmap) Prune(asOf time.Time) Heatmap {
	cutoff := asOf.AddDate(-1, 0, -1).Format("2006-01-02")
	pruned := make(Heatmap, len(h))
	for date, count := range h {
		if date >= cutoff {
			pruned[date] = count
		}
	}
	return pruned
}

// StringList is a JSON-encoded text column of strings.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported string list column type")
	}
}

func (l StringList) Contains(s string) bool {
	for _, item := range l {
		if item == s {
			return true
		}
	}
	return false
}

type User struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name     string `json:"name"`
	Email    string `gorm:"uniqueIndex" json:"email"`
	Username string `gorm:"uniqueIndex" json:"username"`

	// IANA timezone name; attempt dates and streaks are computed in this zone
	Timezone string `json:"timezone"`

	// Progress state, mutated only by the progress ledger
	SolvedProblems StringList `gorm:"type:text" json:"solvedProblems"`
	StreakCount    int        `gorm:"default:0" json:"streakCount"`
	LastStreakDate *string    `json:"lastStreakDate"`
	Heatmap        Heatmap    `gorm:"type:text" json:"heatmap"`
}
