package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hyunw00/attendbot/bot"
	"github.com/hyunw00/attendbot/config"
	"github.com/hyunw00/attendbot/imaging"
	"github.com/hyunw00/attendbot/models"
	"github.com/hyunw00/attendbot/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()
	utils.Sugar = utils.Logger.Sugar()
}

type fakePlatform struct {
	texts    []string
	messages []any
}

func (f *fakePlatform) GetUserInfo(_ context.Context, userID string) models.UserInfo {
	return models.UserInfo{Name: "김철수", Email: "kim@corp.kr", Department: "개발팀"}
}

func (f *fakePlatform) SendMessage(_ context.Context, _, _ string, message any) error {
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakePlatform) SendText(_ context.Context, _, _ string, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakePlatform) DownloadContent(_ context.Context, _ string) ([]byte, error) {
	return nil, nil
}

func (f *fakePlatform) CreatePersistentMenu(_ context.Context) error { return nil }
func (f *fakePlatform) DeletePersistentMenu(_ context.Context) error { return nil }

type fakeStore struct {
	saved []*models.AttendanceEvent
	err   error
}

func (f *fakeStore) Save(_ context.Context, ev *models.AttendanceEvent) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, ev)
	return nil
}

func (f *fakeStore) DayEvents(_ context.Context, _ time.Time) ([]models.AttendanceEvent, error) {
	out := make([]models.AttendanceEvent, 0, len(f.saved))
	for _, ev := range f.saved {
		out = append(out, *ev)
	}
	return out, nil
}

type fakeUploader struct{}

func (fakeUploader) Upload(_ context.Context, name string, _ []byte, _ string) (string, error) {
	return "https://cdn.example.com/" + name, nil
}

type fakePipeline struct{}

func (fakePipeline) Process(data []byte) ([]byte, imaging.Meta, error) {
	return data, imaging.Meta{Width: 640, Height: 480, Format: "jpeg"}, nil
}

const testSecret = "test-bot-secret"

func testEngine(t *testing.T, store *fakeStore, p *fakePlatform) *gin.Engine {
	t.Helper()
	cfg := config.AppConfig{
		WorksBotSecret:    testSecret,
		WorkdayStart:      "09:00",
		CooldownSeconds:   30,
		LateExemptActions: []string{"연차"},
	}
	cooldown := bot.NewCooldown(30 * time.Second)
	lateness := bot.NewLatenessPolicy(cfg.WorkdayStart, time.UTC, cfg.LateExemptActions)
	router := bot.NewRouter(cfg, p, store, cooldown, lateness, fakeUploader{}, fakePipeline{}, time.UTC)

	r := gin.New()
	r.POST("/api/webhook", NewWebhookController(cfg, router).Handle)
	return r
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-WORKS-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func eventBody(t *testing.T, contentType string, extra map[string]any) []byte {
	return eventBodyAt(t, "2026-08-28T01:00:00Z", contentType, extra)
}

func eventBodyAt(t *testing.T, issuedTime, contentType string, extra map[string]any) []byte {
	t.Helper()
	content := map[string]any{"type": contentType}
	for k, v := range extra {
		content[k] = v
	}
	body, err := json.Marshal(map[string]any{
		"type":       "message",
		"issuedTime": issuedTime,
		"source":     map[string]any{"userId": "user-1", "domainId": 400123},
		"content":    content,
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	store := &fakeStore{}
	r := testEngine(t, store, &fakePlatform{})
	body := eventBody(t, "text", map[string]any{"text": "/test"})

	if w := postWebhook(r, body, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing signature: status %d, want 401", w.Code)
	}
	if w := postWebhook(r, body, "bm90LXRoZS1zaWduYXR1cmU="); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong signature: status %d, want 401", w.Code)
	}
}

func TestWebhookRejectsInvalidPayload(t *testing.T) {
	r := testEngine(t, &fakeStore{}, &fakePlatform{})

	garbage := []byte("{not json")
	if w := postWebhook(r, garbage, signBody(garbage)); w.Code != http.StatusBadRequest {
		t.Errorf("garbage payload: status %d, want 400", w.Code)
	}

	missing, _ := json.Marshal(map[string]any{"type": "message"})
	if w := postWebhook(r, missing, signBody(missing)); w.Code != http.StatusBadRequest {
		t.Errorf("incomplete payload: status %d, want 400", w.Code)
	}
}

func TestWebhookSimpleCheckinAndCooldown(t *testing.T) {
	store := &fakeStore{}
	p := &fakePlatform{}
	r := testEngine(t, store, p)

	body := eventBody(t, "postback", map[string]any{"postback": "CHECKIN_SIMPLE"})
	if w := postWebhook(r, body, signBody(body)); w.Code != http.StatusOK {
		t.Fatalf("checkin: status %d, want 200", w.Code)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d events, want 1", len(store.saved))
	}
	ev := store.saved[0]
	if ev.Action != models.ActionCheckin || ev.AccountID != "user-1" || ev.DomainID != 400123 {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.UserInfo.Name != "김철수" {
		t.Errorf("profile not resolved: %+v", ev.UserInfo)
	}

	// immediate retry lands inside the cooldown window
	if w := postWebhook(r, body, signBody(body)); w.Code != http.StatusOK {
		t.Fatalf("cooldown retry: status %d, want 200", w.Code)
	}
	if len(store.saved) != 1 {
		t.Errorf("cooldown did not suppress: saved %d events", len(store.saved))
	}
	last := p.texts[len(p.texts)-1]
	if !bytes.Contains([]byte(last), []byte("잠시 후")) {
		t.Errorf("expected cooldown notice, got %q", last)
	}
}

func TestWebhookMenuCheckinRecords(t *testing.T) {
	store := &fakeStore{}
	p := &fakePlatform{}
	r := testEngine(t, store, p)

	body := eventBody(t, "postback", map[string]any{"postback": "CHECKIN_ACTION"})
	if w := postWebhook(r, body, signBody(body)); w.Code != http.StatusOK {
		t.Fatalf("menu checkin: status %d, want 200", w.Code)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d events, want 1", len(store.saved))
	}
	ev := store.saved[0]
	if ev.Action != models.ActionCheckin || ev.Method != models.MethodManual {
		t.Errorf("unexpected event: action=%s method=%s", ev.Action, ev.Method)
	}
}

func TestWebhookKeepsIssuedTime(t *testing.T) {
	store := &fakeStore{}
	r := testEngine(t, store, &fakePlatform{})

	// delivered long after it was issued; the record keeps the issued instant
	issued := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	body := eventBodyAt(t, issued.Format(time.RFC3339), "postback", map[string]any{"postback": "CHECKIN_SIMPLE"})
	if w := postWebhook(r, body, signBody(body)); w.Code != http.StatusOK {
		t.Fatalf("checkin: status %d, want 200", w.Code)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d events, want 1", len(store.saved))
	}
	ev := store.saved[0]
	if !ev.Timestamp.Equal(issued) {
		t.Errorf("Timestamp = %v, want %v", ev.Timestamp, issued)
	}
	if !ev.IsLate || ev.LateMinutes != 30 {
		t.Errorf("lateness from issued time: late=%v minutes=%d, want 30", ev.IsLate, ev.LateMinutes)
	}
}

func TestWebhookCheckoutNotSuppressedByCooldown(t *testing.T) {
	store := &fakeStore{}
	p := &fakePlatform{}
	r := testEngine(t, store, p)

	checkin := eventBody(t, "postback", map[string]any{"postback": "CHECKIN_SIMPLE"})
	if w := postWebhook(r, checkin, signBody(checkin)); w.Code != http.StatusOK {
		t.Fatalf("checkin: status %d, want 200", w.Code)
	}

	// checkout right after a check-in must not hit the duplicate gate
	checkout := eventBody(t, "postback", map[string]any{"postback": "CHECKOUT_ACTION"})
	if w := postWebhook(r, checkout, signBody(checkout)); w.Code != http.StatusOK {
		t.Fatalf("checkout: status %d, want 200", w.Code)
	}
	if len(store.saved) != 2 {
		t.Fatalf("saved %d events, want 2", len(store.saved))
	}
	if store.saved[1].Action != models.ActionCheckout {
		t.Errorf("second event = %+v, want checkout", store.saved[1])
	}
}

func TestWebhookImageNotSuppressedByCooldown(t *testing.T) {
	store := &fakeStore{}
	p := &fakePlatform{}
	r := testEngine(t, store, p)

	checkin := eventBody(t, "postback", map[string]any{"postback": "CHECKIN_SIMPLE"})
	if w := postWebhook(r, checkin, signBody(checkin)); w.Code != http.StatusOK {
		t.Fatalf("checkin: status %d, want 200", w.Code)
	}

	image := eventBody(t, "image", map[string]any{"fileId": "file-123"})
	if w := postWebhook(r, image, signBody(image)); w.Code != http.StatusOK {
		t.Fatalf("image: status %d, want 200", w.Code)
	}
	if len(store.saved) != 2 {
		t.Fatalf("saved %d events, want 2", len(store.saved))
	}
	if store.saved[1].Action != models.ActionImageUpload {
		t.Errorf("second event = %+v, want image upload", store.saved[1])
	}
}

func TestWebhookLocationCheckin(t *testing.T) {
	store := &fakeStore{}
	p := &fakePlatform{}
	r := testEngine(t, store, p)

	body := eventBody(t, "location", map[string]any{
		"address":   "서울시청",
		"latitude":  37.566535,
		"longitude": 126.977969,
	})
	if w := postWebhook(r, body, signBody(body)); w.Code != http.StatusOK {
		t.Fatalf("location checkin: status %d, want 200", w.Code)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d events, want 1", len(store.saved))
	}
	ev := store.saved[0]
	if ev.Action != models.ActionLocationCheckin || ev.Location == nil || !ev.Location.Verified {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestWebhookImageCheckin(t *testing.T) {
	store := &fakeStore{}
	p := &fakePlatform{}
	r := testEngine(t, store, p)

	body := eventBody(t, "image", map[string]any{"fileId": "file-123"})
	if w := postWebhook(r, body, signBody(body)); w.Code != http.StatusOK {
		t.Fatalf("image checkin: status %d, want 200", w.Code)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d events, want 1", len(store.saved))
	}
	ev := store.saved[0]
	if ev.Action != models.ActionImageUpload || ev.ImageURL == "" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if len(p.messages) == 0 {
		t.Error("expected an image preview message")
	}
}

func TestWebhookIgnoresUnknownText(t *testing.T) {
	store := &fakeStore{}
	p := &fakePlatform{}
	r := testEngine(t, store, p)

	body := eventBody(t, "text", map[string]any{"text": "점심 뭐 먹지"})
	if w := postWebhook(r, body, signBody(body)); w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if len(store.saved) != 0 || len(p.texts) != 0 {
		t.Errorf("unknown text should be ignored: saved=%d texts=%d", len(store.saved), len(p.texts))
	}
}
