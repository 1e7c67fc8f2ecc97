package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/messmate/internal/config"
	"github.com/example/messmate/internal/database"
	"github.com/example/messmate/internal/models"
	"github.com/example/messmate/internal/otp"
	"github.com/example/messmate/internal/routes"
	"github.com/example/messmate/internal/services"
	"github.com/example/messmate/internal/utils"
)

// fakeOtpStore keeps hashed codes in memory with explicit expiry so
// tests can move the clock.
type fakeOtpStore struct {
	entries map[string]fakeOtpEntry
}

type fakeOtpEntry struct {
	hash      string
	expiresAt time.Time
}

func newFakeOtpStore() *fakeOtpStore {
	return &fakeOtpStore{entries: make(map[string]fakeOtpEntry)}
}

func (s *fakeOtpStore) Save(_ context.Context, email, hash string) error {
	s.entries[email] = fakeOtpEntry{hash: hash, expiresAt: time.Now().Add(5 * time.Minute)}
	return nil
}

func (s *fakeOtpStore) Get(_ context.Context, email string) (string, error) {
	entry, ok := s.entries[email]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, email)
		return "", otp.ErrNotFound
	}
	return entry.hash, nil
}

func (s *fakeOtpStore) Consume(_ context.Context, email string) (bool, error) {
	entry, ok := s.entries[email]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, email)
		return false, nil
	}
	delete(s.entries, email)
	return true, nil
}

func (s *fakeOtpStore) expire(email string) {
	if entry, ok := s.entries[email]; ok {
		entry.expiresAt = time.Now().Add(-time.Second)
		s.entries[email] = entry
	}
}

// fakeMailer records sends and captures the last OTP code so tests can
// complete the real login flow.
type fakeMailer struct {
	failOtp    bool
	lastOtp    map[string]string
	approvals  []string
	rejections []rejectionMail
}

type rejectionMail struct {
	email  string
	name   string
	reason string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{lastOtp: make(map[string]string)}
}

func (m *fakeMailer) SendOtpEmail(email, code string) error {
	if m.failOtp {
		return fmt.Errorf("provider unavailable")
	}
	m.lastOtp[email] = code
	return nil
}

func (m *fakeMailer) SendApprovalEmail(email, _ string) error {
	m.approvals = append(m.approvals, email)
	return nil
}

func (m *fakeMailer) SendRejectionEmail(email, name, reason string) error {
	m.rejections = append(m.rejections, rejectionMail{email: email, name: name, reason: reason})
	return nil
}

// fakeImageStore succeeds for the first succeedFirst uploads and fails
// for the rest, recording destroyed tokens.
type fakeImageStore struct {
	succeedFirst int
	stored       int
	destroyed    []string
}

func (s *fakeImageStore) Store(filename string, _ io.Reader) (services.Upload, error) {
	if s.stored >= s.succeedFirst {
		return services.Upload{}, fmt.Errorf("upload rejected")
	}
	s.stored++
	return services.Upload{
		URL:         fmt.Sprintf("https://img.test/%s", filename),
		DeleteToken: fmt.Sprintf("token-%d", s.stored),
	}, nil
}

func (s *fakeImageStore) Destroy(deleteToken string) {
	s.destroyed = append(s.destroyed, deleteToken)
}

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	cfg    *config.Config
	otps   *fakeOtpStore
	mailer *fakeMailer
	images *fakeImageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		TokenExpires: time.Hour,
		OtpExpires:   5 * time.Minute,
		AdminEmail:   "admin@campus.test",
		AdminName:    "Campus Admin",
	}

	env := &testEnv{
		db:     db,
		cfg:    cfg,
		otps:   newFakeOtpStore(),
		mailer: newFakeMailer(),
		images: &fakeImageStore{succeedFirst: 100},
	}

	env.app = fiber.New(fiber.Config{ErrorHandler: routes.ErrorHandler})
	routes.Register(env.app, db, cfg, env.otps, env.mailer, env.images)

	return env
}

func (e *testEnv) tokenFor(t *testing.T, id uuid.UUID, role string) string {
	t.Helper()
	token, err := utils.GenerateToken(e.cfg.JWTSecret, id, role, e.cfg.TokenExpires)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func (e *testEnv) createStudent(t *testing.T, email, name string) (models.Student, string) {
	t.Helper()
	student := models.Student{Name: name, Email: email, AuthMethod: models.AuthMethodOtp}
	if err := e.db.Create(&student).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	return student, e.tokenFor(t, student.ID, utils.RoleStudent)
}

func (e *testEnv) createVendor(t *testing.T, email, contact string) (models.Vendor, string) {
	t.Helper()
	now := time.Now()
	vendor := models.Vendor{
		Name:          "Vendor " + contact,
		Email:         email,
		ContactNumber: contact,
		AuthMethod:    models.AuthMethodOtp,
		MessName:      "Mess " + contact,
		Address:       "1 Hostel Lane",
		City:          "Pune",
		Pincode:       "411001",
		IsApproved:    true,
		ApprovedAt:    &now,
	}
	if err := e.db.Create(&vendor).Error; err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	return vendor, e.tokenFor(t, vendor.ID, utils.RoleVendor)
}

// request performs a JSON request and decodes the response body.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("decode response: %v", err)
	}

	return resp.StatusCode, decoded
}

// submitApplication posts a multipart vendor application with the
// given field overrides and number of attached images.
func (e *testEnv) submitApplication(t *testing.T, fields map[string]string, imageCount int) (int, map[string]interface{}) {
	t.Helper()

	form := map[string]string{
		"name":            "Ravi Kumar",
		"contact_number":  "9876543210",
		"email":           "ravi@mess.test",
		"mess_name":       "Ravi's Mess",
		"address":         "12 College Road",
		"city":            "Pune",
		"pincode":         "411001",
		"gstin_or_images": "gstin",
		"gstin_number":    "27ABCDE1234F1Z5",
	}
	for k, v := range fields {
		form[k] = v
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range form {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for i := 0; i < imageCount; i++ {
		part, err := writer.CreateFormFile("restaurant_images", fmt.Sprintf("mess-%d.jpg", i))
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write([]byte("fake image bytes")); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/applications", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("submit application: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("decode response: %v", err)
	}

	return resp.StatusCode, decoded
}
