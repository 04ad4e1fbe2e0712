package services

import (
	"log"

	"mindmemos/models"

	"gorm.io/gorm"
)

// XP awards for user contributions.
const (
	XPPostCreated    = 5
	XPCommentCreated = 2
	XPHelpfulRating  = 10
)

// ComputeLevelAndBadge derives level and badge from total XP.
// Every 100 XP is one level; badges unlock at levels 1, 2 and 3+.
func ComputeLevelAndBadge(xp int) (level int, badge string) {
	level = xp / 100

	switch {
	case level >= 3:
		badge = models.BadgeDiamond
	case level == 2:
		badge = models.BadgeGold
	case level == 1:
		badge = models.BadgeSilver
	default:
		badge = models.BadgeNone
	}
	return level, badge
}

// AddXP grants XP to a user and recomputes level and badge. Failures are
// logged, not returned: XP is a side effect that must never fail the
// operation that triggered it.
func AddXP(db *gorm.DB, userID uint, amount int) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		log.Printf("[xp] user %d not found for XP update: %v", userID, err)
		return
	}

	user.XP += amount
	user.Level, user.Badge = ComputeLevelAndBadge(user.XP)

	if err := db.Save(&user).Error; err != nil {
		log.Printf("[xp] failed to save XP for user %d: %v", userID, err)
		return
	}

	log.Printf("[xp] added %d XP to %s. Now: level %d, %d XP, %s badge",
		amount, user.Username, user.Level, user.XP, user.Badge)
}
