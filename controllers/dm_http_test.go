package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"mindmemos/middleware"
	"mindmemos/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDMTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Post{}, &models.PostLike{}, &models.Comment{},
		&models.Conversation{}, &models.DirectMessage{}, &models.ChatRating{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	r := gin.New()
	// test shim instead of the JWT middleware: identity comes from a header
	g := r.Group("/")
	g.Use(func(c *gin.Context) {
		uid, _ := strconv.ParseUint(c.GetHeader("X-Test-User"), 10, 64)
		c.Set(middleware.ContextUserIDKey, uint(uid))
		c.Next()
	})
	g.GET("/dm/conversations", ListConversations(db))
	g.POST("/dm/conversations", OpenConversation(db))
	g.GET("/dm/conversations/:conversation_id/messages", ListMessages(db))
	g.POST("/dm/conversations/:conversation_id/messages", CreateMessage(db, nil))
	g.POST("/dm/conversations/:conversation_id/read", MarkConversationRead(db))
	return r, db
}

func createDMUser(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	u := models.User{Email: name + "@example.com", Username: name}
	if err := u.SetPassword("pass1234"); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u.ID
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, userID uint, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(userID), 10))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, out
}

func TestDMRestFlow(t *testing.T) {
	r, db := newDMTestRouter(t)
	alice := createDMUser(t, db, "alice")
	bob := createDMUser(t, db, "bob")

	// open the conversation
	w, resp := doJSON(t, r, http.MethodPost, "/dm/conversations", alice, gin.H{"user_id": bob})
	if w.Code != http.StatusOK {
		t.Fatalf("open conversation: status %d body %s", w.Code, w.Body.String())
	}
	conv := resp["conversation"].(map[string]any)
	convID := uint(conv["id"].(float64))
	if got := conv["other_username"].(string); got != "bob" {
		t.Fatalf("other_username = %q, want bob", got)
	}

	// send a message over REST
	path := fmt.Sprintf("/dm/conversations/%d/messages", convID)
	w, resp = doJSON(t, r, http.MethodPost, path, alice, gin.H{"receiver_id": bob, "content": "hey bob"})
	if w.Code != http.StatusCreated {
		t.Fatalf("send: status %d body %s", w.Code, w.Body.String())
	}
	msg := resp["message"].(map[string]any)
	if msg["content"].(string) != "hey bob" || msg["is_read"].(bool) {
		t.Fatalf("unexpected message payload: %v", msg)
	}

	// bob sees it in history and in the directory with an unread count
	w, resp = doJSON(t, r, http.MethodGet, path, bob, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: status %d", w.Code)
	}
	if msgs := resp["messages"].([]any); len(msgs) != 1 {
		t.Fatalf("history length = %d, want 1", len(msgs))
	}

	w, resp = doJSON(t, r, http.MethodGet, "/dm/conversations", bob, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("directory: status %d", w.Code)
	}
	convs := resp["conversations"].([]any)
	if len(convs) != 1 {
		t.Fatalf("directory length = %d, want 1", len(convs))
	}
	if unread := convs[0].(map[string]any)["unread_count"].(float64); unread != 1 {
		t.Fatalf("unread_count = %v, want 1", unread)
	}

	// mark read clears the counter
	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/dm/conversations/%d/read", convID), bob, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("mark read: status %d", w.Code)
	}
	_, resp = doJSON(t, r, http.MethodGet, "/dm/conversations", bob, nil)
	convs = resp["conversations"].([]any)
	if unread := convs[0].(map[string]any)["unread_count"].(float64); unread != 0 {
		t.Fatalf("unread_count after mark read = %v, want 0", unread)
	}
}

func TestDMRestErrorMapping(t *testing.T) {
	r, db := newDMTestRouter(t)
	alice := createDMUser(t, db, "alice")
	bob := createDMUser(t, db, "bob")
	eve := createDMUser(t, db, "eve")

	// self conversation
	w, _ := doJSON(t, r, http.MethodPost, "/dm/conversations", alice, gin.H{"user_id": alice})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self conversation: status %d, want 400", w.Code)
	}

	// unknown user
	w, _ = doJSON(t, r, http.MethodPost, "/dm/conversations", alice, gin.H{"user_id": 9999})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown user: status %d, want 404", w.Code)
	}

	// missing conversation
	w, _ = doJSON(t, r, http.MethodGet, "/dm/conversations/424242/messages", alice, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing conversation: status %d, want 404", w.Code)
	}

	// outsider reading someone else's history
	_, resp := doJSON(t, r, http.MethodPost, "/dm/conversations", alice, gin.H{"user_id": bob})
	convID := uint(resp["conversation"].(map[string]any)["id"].(float64))
	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/dm/conversations/%d/messages", convID), eve, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("outsider history: status %d, want 403", w.Code)
	}

	// blank message
	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/dm/conversations/%d/messages", convID), alice,
		gin.H{"receiver_id": bob, "content": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank message: status %d, want 400", w.Code)
	}
}
