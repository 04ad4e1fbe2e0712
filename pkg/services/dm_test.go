package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"mindmemos/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Post{}, &models.PostLike{}, &models.Comment{},
		&models.Conversation{}, &models.DirectMessage{}, &models.ChatRating{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{Email: name + "@example.com", Username: name}
	if err := u.SetPassword("pw123456"); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestGetOrCreateConversationIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewDMService(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	c1, other, err := svc.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("first get-or-create: %v", err)
	}
	if other.ID != bob.ID {
		t.Fatalf("expected other participant %d, got %d", bob.ID, other.ID)
	}

	// repeat from both directions must yield the same conversation
	c2, _, err := svc.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("second get-or-create: %v", err)
	}
	c3, _, err := svc.GetOrCreateConversation(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("reversed get-or-create: %v", err)
	}
	if c1.ID != c2.ID || c1.ID != c3.ID {
		t.Fatalf("expected one conversation, got ids %d %d %d", c1.ID, c2.ID, c3.ID)
	}

	var count int64
	db.Model(&models.Conversation{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one conversation record, got %d", count)
	}
}

func TestGetOrCreateConversationRejectsSelfAndUnknown(t *testing.T) {
	db := newTestDB(t)
	svc := NewDMService(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")

	if _, _, err := svc.GetOrCreateConversation(ctx, alice.ID, alice.ID); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("self-target: expected ErrInvalidRequest, got %v", err)
	}
	if _, _, err := svc.GetOrCreateConversation(ctx, alice.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown target: expected ErrNotFound, got %v", err)
	}

	var count int64
	db.Model(&models.Conversation{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no conversations created, got %d", count)
	}
}

func TestSendMessageValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewDMService(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	eve := createUser(t, db, "eve")

	conv, _, err := svc.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SendMessage(ctx, alice.ID, conv.ID, bob.ID, "   "); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("blank content: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, alice.ID, 0, bob.ID, "hi"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("zero conversation id: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, alice.ID, conv.ID+100, bob.ID, "hi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing conversation: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, eve.ID, conv.ID, bob.ID, "hi"); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-participant sender: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, alice.ID, conv.ID, eve.ID, "hi"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("receiver outside conversation: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, alice.ID, conv.ID, bob.ID, strings.Repeat("x", 2001)); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("oversized content: expected ErrInvalidRequest, got %v", err)
	}

	var count int64
	db.Model(&models.DirectMessage{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no messages persisted after rejected sends, got %d", count)
	}
}

func TestSendMessageUpdatesSummary(t *testing.T) {
	db := newTestDB(t)
	svc := NewDMService(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	conv, _, _ := svc.GetOrCreateConversation(ctx, alice.ID, bob.ID)

	long := strings.Repeat("a", 150)
	msg, err := svc.SendMessage(ctx, alice.ID, conv.ID, bob.ID, long)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.IsRead {
		t.Errorf("new message must start unread")
	}

	var got models.Conversation
	if err := db.First(&got, conv.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.LastMessage != strings.Repeat("a", 100) {
		t.Errorf("lastMessage not truncated to 100 runes, len=%d", len(got.LastMessage))
	}
	if got.LastMessageAt == nil || !got.LastMessageAt.Equal(msg.CreatedAt) {
		t.Errorf("lastMessageAt = %v, want %v", got.LastMessageAt, msg.CreatedAt)
	}
}

func TestListMessagesOrderingAndAuth(t *testing.T) {
	db := newTestDB(t)
	svc := NewDMService(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	eve := createUser(t, db, "eve")
	conv, _, _ := svc.GetOrCreateConversation(ctx, alice.ID, bob.ID)

	for i := 1; i <= 5; i++ {
		if _, err := svc.SendMessage(ctx, alice.ID, conv.ID, bob.ID, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	msgs, err := svc.ListMessages(ctx, bob.ID, conv.ID, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].ID < msgs[i-1].ID {
			t.Fatalf("messages out of order: %d before %d", msgs[i-1].ID, msgs[i].ID)
		}
	}

	// limit keeps the most recent messages, still ascending
	last2, err := svc.ListMessages(ctx, bob.ID, conv.ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(last2) != 2 || last2[0].Content != "message 4" || last2[1].Content != "message 5" {
		t.Fatalf("unexpected limited window: %+v", last2)
	}

	if _, err := svc.ListMessages(ctx, eve.ID, conv.ID, 0); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-participant: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.ListMessages(ctx, bob.ID, conv.ID+100, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing conversation: expected ErrNotFound, got %v", err)
	}
}

func TestMarkReadAndUnreadCounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewDMService(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	conv, _, _ := svc.GetOrCreateConversation(ctx, alice.ID, bob.ID)

	for i := 0; i < 3; i++ {
		if _, err := svc.SendMessage(ctx, alice.ID, conv.ID, bob.ID, "hello"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.SendMessage(ctx, bob.ID, conv.ID, alice.ID, "hey back"); err != nil {
		t.Fatal(err)
	}

	// bob has 3 unread; alice has 1; own sent messages never count
	bobList, err := svc.ListConversations(ctx, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(bobList) != 1 || bobList[0].UnreadCount != 3 {
		t.Fatalf("expected bob unread=3, got %+v", bobList)
	}
	aliceList, _ := svc.ListConversations(ctx, alice.ID)
	if len(aliceList) != 1 || aliceList[0].UnreadCount != 1 {
		t.Fatalf("expected alice unread=1, got %+v", aliceList)
	}

	if err := svc.MarkRead(ctx, bob.ID, conv.ID); err != nil {
		t.Fatalf("mark-read: %v", err)
	}
	bobList, _ = svc.ListConversations(ctx, bob.ID)
	if bobList[0].UnreadCount != 0 {
		t.Fatalf("expected bob unread=0 after mark-read, got %d", bobList[0].UnreadCount)
	}

	msgs, _ := svc.ListMessages(ctx, bob.ID, conv.ID, 0)
	for _, m := range msgs {
		if m.ReceiverID == bob.ID && !m.IsRead {
			t.Fatalf("message %d addressed to bob still unread", m.ID)
		}
		if m.ReceiverID == alice.ID && m.IsRead {
			t.Fatalf("message %d addressed to alice must stay unread", m.ID)
		}
	}

	// idempotent: second call succeeds and changes nothing
	if err := svc.MarkRead(ctx, bob.ID, conv.ID); err != nil {
		t.Fatalf("second mark-read: %v", err)
	}
	// lenient: arbitrary conversation id affects zero rows, no error
	if err := svc.MarkRead(ctx, bob.ID, conv.ID+500); err != nil {
		t.Fatalf("mark-read on unknown conversation: %v", err)
	}
}

func TestListConversationsOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewDMService(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	dave := createUser(t, db, "dave")

	cBob, _, _ := svc.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	cCarol, _, _ := svc.GetOrCreateConversation(ctx, alice.ID, carol.ID)
	// conversation with dave stays empty
	svc.GetOrCreateConversation(ctx, alice.ID, dave.ID)

	svc.SendMessage(ctx, alice.ID, cBob.ID, bob.ID, "older")
	svc.SendMessage(ctx, alice.ID, cCarol.ID, carol.ID, "newer")

	list, err := svc.ListConversations(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(list))
	}
	if list[len(list)-1].OtherUsername != "dave" {
		t.Errorf("conversation without messages must sort last, got %s", list[len(list)-1].OtherUsername)
	}
	if list[0].LastMessage != "newer" && list[0].LastMessageAt != nil {
		// both sends can share a timestamp on coarse clocks; only flag a
		// strict inversion
		if list[1].LastMessageAt != nil && list[0].LastMessageAt.Before(*list[1].LastMessageAt) {
			t.Errorf("conversations not in lastMessageAt descending order")
		}
	}
}
