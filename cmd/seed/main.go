package main

import (
	"flag"
	"log"

	"mindmemos/models"
	svc "mindmemos/pkg/services"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type seedUser struct {
	email    string
	username string
	password string
	xp       int
}

type seedPost struct {
	author  string
	title   string
	content string
	tags    string
}

var seedUsers = []seedUser{
	{"maya@example.com", "maya", "memos123", 120},
	{"arif@example.com", "arif", "memos123", 40},
	{"sinta@example.com", "sinta", "memos123", 310},
}

var seedPosts = []seedPost{
	{"maya", "Can't sleep before exams", "Every exam week my sleep falls apart. Writing down tomorrow's worries before bed has helped a little.", "sleep,exam-stress"},
	{"maya", "Small wins journal", "Started noting one small win per day. Week two and my mood is noticeably steadier.", "habits,mood"},
	{"arif", "First week at a new school", "Moved cities and the loneliness hit harder than expected. Anyone been through this?", "loneliness,school"},
	{"sinta", "Breathing through panic", "Box breathing got me through a panic attack on the bus yesterday. Four counts in, hold, four out.", "anxiety,coping"},
	{"sinta", "Talking to my parents about therapy", "Took months to bring it up. Sharing how it went in case it helps someone else.", "therapy,family"},
}

// Seeds demo accounts and journal posts into a fresh database so the app has
// something to browse on first run.
func main() {
	dbPath := flag.String("db", "app.db", "sqlite database path")
	flag.Parse()

	db, err := gorm.Open(sqlite.Open(*dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.Conversation{},
		&models.DirectMessage{},
		&models.ChatRating{},
	); err != nil {
		log.Fatalf("failed migrate: %v", err)
	}

	userIDs := map[string]uint{}
	for _, su := range seedUsers {
		var existing models.User
		if err := db.Where("username = ?", su.username).First(&existing).Error; err == nil {
			log.Printf("[seed] user already exists: %s", su.username)
			userIDs[su.username] = existing.ID
			continue
		}
		u := models.User{Email: su.email, Username: su.username, XP: su.xp}
		u.Level, u.Badge = svc.ComputeLevelAndBadge(su.xp)
		if err := u.SetPassword(su.password); err != nil {
			log.Fatalf("failed to hash password for %s: %v", su.username, err)
		}
		if err := db.Create(&u).Error; err != nil {
			log.Fatalf("failed to create user %s: %v", su.username, err)
		}
		userIDs[su.username] = u.ID
		log.Printf("[seed] created user: %s", su.username)
	}

	for _, sp := range seedPosts {
		authorID := userIDs[sp.author]
		var existing models.Post
		if err := db.Where("author_id = ? AND title = ?", authorID, sp.title).First(&existing).Error; err == nil {
			log.Printf("[seed] post already exists: %s", sp.title)
			continue
		}
		p := models.Post{
			AuthorID:   authorID,
			AuthorName: sp.author,
			Title:      sp.title,
			Content:    sp.content,
			Tags:       sp.tags,
			IsPublic:   true,
		}
		if err := db.Create(&p).Error; err != nil {
			log.Fatalf("failed to create post %q: %v", sp.title, err)
		}
		log.Printf("[seed] created post: %s", sp.title)
	}

	log.Printf("[seed] done")
}
