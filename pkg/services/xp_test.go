package services

import (
	"testing"

	"mindmemos/models"
)

func TestComputeLevelAndBadge(t *testing.T) {
	cases := []struct {
		xp    int
		level int
		badge string
	}{
		{0, 0, models.BadgeNone},
		{99, 0, models.BadgeNone},
		{100, 1, models.BadgeSilver},
		{199, 1, models.BadgeSilver},
		{200, 2, models.BadgeGold},
		{299, 2, models.BadgeGold},
		{300, 3, models.BadgeDiamond},
		{1000, 10, models.BadgeDiamond},
	}
	for _, c := range cases {
		level, badge := ComputeLevelAndBadge(c.xp)
		if level != c.level || badge != c.badge {
			t.Errorf("ComputeLevelAndBadge(%d) = (%d, %s), want (%d, %s)",
				c.xp, level, badge, c.level, c.badge)
		}
	}
}

func TestAddXP(t *testing.T) {
	db := newTestDB(t)
	u := models.User{Email: "xp@example.com", Username: "xpuser"}
	if err := u.SetPassword("pw123456"); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}

	AddXP(db, u.ID, 150)

	var got models.User
	if err := db.First(&got, u.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.XP != 150 || got.Level != 1 || got.Badge != models.BadgeSilver {
		t.Fatalf("unexpected user state after XP grant: xp=%d level=%d badge=%s",
			got.XP, got.Level, got.Badge)
	}

	// unknown user id must be a no-op
	AddXP(db, 9999, 10)
}
