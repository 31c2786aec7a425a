package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/resulta/resulta-gateway/internal/middleware"
	"github.com/resulta/resulta-gateway/internal/model"
	"github.com/resulta/resulta-gateway/internal/notify"
	"github.com/resulta/resulta-gateway/internal/service"
	"github.com/resulta/resulta-gateway/internal/store"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name: "Test User",
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newNotificationRouter(t *testing.T) (*gin.Engine, *notify.MemStore, *notify.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := notify.NewMemStore()
	engine := notify.NewEngine(store.NewMemKV(), st, zerolog.Nop())
	svc := service.NewNotificationService(engine, st, zerolog.Nop())
	h := NewNotificationHandler(svc)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.RequireUser(testSecret))
	api.GET("/notifications", h.List)
	api.GET("/notifications/unread-count", h.UnreadCount)
	api.POST("/notifications/:id/read", h.MarkRead)
	api.POST("/notifications/read-all", h.MarkAllRead)
	return r, st, engine
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNotificationsRequireAuth(t *testing.T) {
	r, _, _ := newNotificationRouter(t)

	w := doRequest(r, http.MethodGet, "/api/v1/notifications", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/api/v1/notifications", "not-a-jwt")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status with bad token = %d, want 401", w.Code)
	}
}

func TestNotificationListAndReadFlow(t *testing.T) {
	r, st, _ := newNotificationRouter(t)
	token := signToken(t, "student-42")
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := st.Insert(ctx, model.Notification{
			ID:        "notif-" + id,
			SourceID:  "src-" + id,
			Title:     "News " + id,
			Kind:      model.NotificationKindNews,
			CreatedAt: time.Now(),
		}); err != nil {
			t.Fatal(err)
		}
	}

	w := doRequest(r, http.MethodGet, "/api/v1/notifications", token)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", w.Code, w.Body.String())
	}
	var listResp struct {
		Data struct {
			Notifications []model.Notification `json:"notifications"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Data.Notifications) != 2 {
		t.Fatalf("listed %d notifications, want 2", len(listResp.Data.Notifications))
	}

	w = doRequest(r, http.MethodPost, "/api/v1/notifications/notif-a/read", token)
	if w.Code != http.StatusOK {
		t.Fatalf("mark read status = %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/api/v1/notifications/unread-count", token)
	var countResp struct {
		Data struct {
			Unread int `json:"unread"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &countResp); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if countResp.Data.Unread != 1 {
		t.Errorf("unread = %d, want 1", countResp.Data.Unread)
	}

	w = doRequest(r, http.MethodPost, "/api/v1/notifications/read-all", token)
	if w.Code != http.StatusOK {
		t.Fatalf("read-all status = %d", w.Code)
	}
	count, _ := st.UnreadCount(ctx, "student-42")
	if count != 0 {
		t.Errorf("unread after read-all = %d, want 0", count)
	}
}
