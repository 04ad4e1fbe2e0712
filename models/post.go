package models

import (
	"strings"

	"gorm.io/gorm"
)

type Post struct {
	gorm.Model
	AuthorID   uint   `gorm:"not null;index:idx_posts_author_created,priority:1"`
	AuthorName string `gorm:"size:100;not null"`
	Title      string `gorm:"size:150;not null"`
	Content    string `gorm:"type:text;not null"`
	Tags       string `gorm:"size:500"` // comma-separated, lowercase
	IsPublic   bool   `gorm:"not null;default:true"`
	ImageURL   string `gorm:"size:500"`
	LikeCount  int    `gorm:"not null;default:0"`
	Likes      []PostLike
}

// PostLike records one like per (post, user) pair.
type PostLike struct {
	gorm.Model
	PostID uint `gorm:"not null;uniqueIndex:idx_post_likes_post_user,priority:1"`
	UserID uint `gorm:"not null;uniqueIndex:idx_post_likes_post_user,priority:2"`
}

// TagList splits the stored tag string into individual tags.
func (p *Post) TagList() []string {
	if strings.TrimSpace(p.Tags) == "" {
		return []string{}
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, t := range parts {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// SetTags normalizes and stores a tag list.
func (p *Post) SetTags(tags []string) {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			clean = append(clean, t)
		}
	}
	p.Tags = strings.Join(clean, ",")
}
