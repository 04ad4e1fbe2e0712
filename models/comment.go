package models

import "gorm.io/gorm"

type Comment struct {
	gorm.Model
	PostID     uint   `gorm:"not null;index:idx_comments_post_created,priority:1"`
	AuthorID   uint   `gorm:"not null"`
	AuthorName string `gorm:"size:100;not null"`
	Content    string `gorm:"size:1000;not null"`
}
