package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Badge values earned through leveling.
const (
	BadgeNone    = "none"
	BadgeSilver  = "silver"
	BadgeGold    = "gold"
	BadgeDiamond = "diamond"
)

type User struct {
	gorm.Model
	Email           string `gorm:"uniqueIndex;size:120;not null"`
	Username        string `gorm:"uniqueIndex;size:80;not null"`
	PasswordHash    string `gorm:"size:255;not null"`
	ProfileImageURL string `gorm:"size:500"`
	Tokens          int    `gorm:"not null;default:0"`
	XP              int    `gorm:"not null;default:0"`
	Level           int    `gorm:"not null;default:0"`
	Badge           string `gorm:"size:20;not null;default:none"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
