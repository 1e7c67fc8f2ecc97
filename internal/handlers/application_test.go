package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/example/messmate/internal/models"
)

func TestSubmitApplicationStoresPending(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.submitApplication(t, nil, 0)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, body)
	}

	var app models.VendorApplication
	if err := env.db.Where("email = ?", "ravi@mess.test").First(&app).Error; err != nil {
		t.Fatalf("application not persisted: %v", err)
	}
	if app.Status != models.ApplicationPending {
		t.Fatalf("expected pending status, got %q", app.Status)
	}
}

func TestSubmitApplicationDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	if status, _ := env.submitApplication(t, nil, 0); status != http.StatusCreated {
		t.Fatalf("first submission failed with %d", status)
	}

	status, body := env.submitApplication(t, map[string]string{
		"name":           "Someone Else",
		"contact_number": "9123456789",
	}, 0)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %v", status, body)
	}

	var count int64
	env.db.Model(&models.VendorApplication{}).Where("email = ?", "ravi@mess.test").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one stored application, got %d", count)
	}
}

func TestSubmitApplicationFieldValidation(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.submitApplication(t, map[string]string{
		"contact_number": "12345",
		"pincode":        "9",
		"email":          "not-an-email",
	}, 0)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}

	errs, ok := body["errors"].([]interface{})
	if !ok || len(errs) != 3 {
		t.Fatalf("expected 3 itemized errors, got %v", body["errors"])
	}

	var count int64
	env.db.Model(&models.VendorApplication{}).Count(&count)
	if count != 0 {
		t.Fatalf("no application should be persisted on validation failure")
	}
}

func TestSubmitApplicationBadGstin(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.submitApplication(t, map[string]string{"gstin_number": "nope"}, 0)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed GSTIN, got %d", status)
	}
}

func TestSubmitApplicationWithImages(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.submitApplication(t, map[string]string{
		"gstin_or_images": "images",
		"gstin_number":    "",
	}, 3)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	var app models.VendorApplication
	if err := env.db.Where("email = ?", "ravi@mess.test").First(&app).Error; err != nil {
		t.Fatalf("application not persisted: %v", err)
	}
	if len(app.RestaurantImages) != 3 {
		t.Fatalf("expected 3 stored image URLs, got %d", len(app.RestaurantImages))
	}
}

func TestSubmitApplicationTooFewImagesAttached(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.submitApplication(t, map[string]string{
		"gstin_or_images": "images",
		"gstin_number":    "",
	}, 2)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 with only 2 attached images, got %d", status)
	}
}

func TestSubmitApplicationPartialUploadFailure(t *testing.T) {
	env := newTestEnv(t)
	env.images.succeedFirst = 2 // third upload fails

	status, body := env.submitApplication(t, map[string]string{
		"gstin_or_images": "images",
		"gstin_number":    "",
	}, 3)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %v", status, body)
	}

	message, _ := body["message"].(string)
	if !strings.Contains(message, "3 restaurant images") || !strings.Contains(message, "2") {
		t.Fatalf("message should cite the minimum and the uploaded count, got %q", message)
	}

	var count int64
	env.db.Model(&models.VendorApplication{}).Count(&count)
	if count != 0 {
		t.Fatalf("no application should be persisted when the image minimum is missed")
	}

	// The two successful uploads are cleaned up again.
	if len(env.images.destroyed) != 2 {
		t.Fatalf("expected 2 compensating deletes, got %d", len(env.images.destroyed))
	}
}

func TestApplicationStatusProbe(t *testing.T) {
	env := newTestEnv(t)

	if status, _ := env.submitApplication(t, nil, 0); status != http.StatusCreated {
		t.Fatal("submission failed")
	}

	status, body := env.request(t, http.MethodGet, "/api/applications/status?email=ravi@mess.test", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["status"] != models.ApplicationPending {
		t.Fatalf("expected pending, got %v", body["status"])
	}

	status, _ = env.request(t, http.MethodGet, "/api/applications/status?email=unknown@mess.test", "", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown email, got %d", status)
	}
}
