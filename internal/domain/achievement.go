package domain

import "time"

// RequirementType - the player statistic an achievement is measured against
type RequirementType string

const (
	RequirementTotalKush      RequirementType = "total_kush"
	RequirementTotalClicks    RequirementType = "total_clicks"
	RequirementUpgradesBought RequirementType = "upgrades_bought"
)

// RequirementTypes lists every known requirement type.
var RequirementTypes = []RequirementType{
	RequirementTotalKush,
	RequirementTotalClicks,
	RequirementUpgradesBought,
}

var progressAccessors = map[RequirementType]func(Stats) int64{
	RequirementTotalKush:      func(s Stats) int64 { return s.TotalKush },
	RequirementTotalClicks:    func(s Stats) int64 { return s.TotalClicks },
	RequirementUpgradesBought: func(s Stats) int64 { return s.UpgradesBought },
}

func (t RequirementType) Valid() bool {
	_, ok := progressAccessors[t]
	return ok
}

// Progress returns the stat value the requirement type tracks.
func (t RequirementType) Progress(s Stats) int64 {
	if get, ok := progressAccessors[t]; ok {
		return get(s)
	}
	return 0
}

// Achievement - catalog milestone
type Achievement struct {
	ID              string          `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Description     string          `db:"description" json:"description"`
	Icon            string          `db:"icon" json:"icon"`
	Requirement     int64           `db:"requirement" json:"requirement"`
	RequirementType RequirementType `db:"requirement_type" json:"requirementType"`
	Reward          int64           `db:"reward" json:"reward"`
}

func (a *Achievement) Validate() error {
	switch {
	case a.Name == "":
		return NewValidationError("name", "is required")
	case a.Requirement <= 0:
		return NewValidationError("requirement", "must be positive")
	case !a.RequirementType.Valid():
		return NewValidationError("requirementType", "is unknown")
	case a.Reward < 0:
		return NewValidationError("reward", "must not be negative")
	}
	return nil
}

// PlayerAchievement - progress of a player towards an achievement
type PlayerAchievement struct {
	ID            string     `db:"id" json:"id"`
	PlayerID      string     `db:"player_id" json:"playerId"`
	AchievementID string     `db:"achievement_id" json:"achievementId"`
	Progress      int64      `db:"progress" json:"progress"`
	Completed     bool       `db:"completed" json:"completed"`
	CompletedAt   *time.Time `db:"completed_at" json:"completedAt"`
}

// Advance records new progress and completes the achievement once the
// requirement is met. It reports whether anything changed and whether this
// call completed it. A completed achievement is never touched again.
func (pa *PlayerAchievement) Advance(progress, requirement int64, now time.Time) (changed, completed bool) {
	if pa.Completed {
		return false, false
	}
	if progress != pa.Progress {
		pa.Progress = progress
		changed = true
	}
	if progress >= requirement {
		pa.Completed = true
		at := now
		pa.CompletedAt = &at
		return true, true
	}
	return changed, false
}

// Percent returns the progress in percent (0-100)
func (pa *PlayerAchievement) Percent(requirement int64) int {
	if pa.Completed || requirement <= 0 {
		return 100
	}
	if pa.Progress <= 0 {
		return 0
	}
	pct := pa.Progress * 100 / requirement
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// AchievementProgress - catalog entry merged with a player's progress (for API responses)
type AchievementProgress struct {
	Achievement
	Progress    int64      `json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Percent     int        `json:"percent"`
}
