package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/messmate/internal/models"
	"github.com/example/messmate/internal/services"
)

const minRestaurantImages = 3

// ApplicationHandler manages vendor application intake.
type ApplicationHandler struct {
	db     *gorm.DB
	images ImageStore
}

// NewApplicationHandler constructs an ApplicationHandler.
func NewApplicationHandler(db *gorm.DB, images ImageStore) *ApplicationHandler {
	return &ApplicationHandler{db: db, images: images}
}

// Submit accepts a vendor application as a multipart form. The
// verification method is either a GSTIN number or at least three
// restaurant images; images are uploaded one by one, best-effort, and
// the submission fails if fewer than three end up stored.
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	app := models.VendorApplication{
		Name:          c.FormValue("name"),
		ContactNumber: c.FormValue("contact_number"),
		Email:         c.FormValue("email"),
		MessName:      c.FormValue("mess_name"),
		Address:       c.FormValue("address"),
		City:          c.FormValue("city"),
		Pincode:       c.FormValue("pincode"),
		GstinOrImages: c.FormValue("gstin_or_images"),
		GstinNumber:   c.FormValue("gstin_number"),
		Status:        models.ApplicationPending,
	}

	var errs []string
	if !validName(app.Name) {
		errs = append(errs, "name must be 2-60 letters")
	}
	if !validContact(app.ContactNumber) {
		errs = append(errs, "contact number must be 10 digits")
	}
	if !validEmail(app.Email) {
		errs = append(errs, "a valid email is required")
	}
	if app.MessName == "" {
		errs = append(errs, "mess name is required")
	}
	if app.Address == "" {
		errs = append(errs, "address is required")
	}
	if app.City == "" {
		errs = append(errs, "city is required")
	}
	if !validPincode(app.Pincode) {
		errs = append(errs, "pincode must be 6 digits")
	}
	switch app.GstinOrImages {
	case models.VerifyByGstin:
		if !validGstin(app.GstinNumber) {
			errs = append(errs, "a valid GSTIN number is required")
		}
	case models.VerifyByImages:
		// checked below, after the duplicate lookup
	default:
		errs = append(errs, "verification method must be gstin or images")
	}
	if len(errs) > 0 {
		return validationError(c, errs)
	}

	var existing models.VendorApplication
	err := h.db.Where("email = ?", app.Email).First(&existing).Error
	if err == nil {
		return fiber.NewError(fiber.StatusConflict, "an application already exists for this email")
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	if app.GstinOrImages == models.VerifyByImages {
		urls, failErr := h.uploadImages(c)
		if failErr != nil {
			return failErr
		}
		app.RestaurantImages = urls
	}

	if err := h.db.Create(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "an application already exists for this email")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"message":     "application submitted and pending review",
		"application": app,
	})
}

// uploadImages stores every attached restaurant image. Per-file
// failures are logged and skipped; if fewer than three uploads
// succeed, the ones that did are deleted again and the submission
// fails without persisting anything.
func (h *ApplicationHandler) uploadImages(c *fiber.Ctx) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid multipart form")
	}

	files := form.File["restaurant_images"]
	if len(files) < minRestaurantImages {
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("at least %d restaurant images are required", minRestaurantImages))
	}

	var uploads []services.Upload
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			log.Printf("[Storage] Failed to open %s: %v", header.Filename, err)
			continue
		}

		upload, err := h.images.Store(header.Filename, file)
		file.Close()
		if err != nil {
			log.Printf("[Storage] Failed to upload %s: %v", header.Filename, err)
			continue
		}

		uploads = append(uploads, upload)
	}

	if len(uploads) < minRestaurantImages {
		for _, u := range uploads {
			h.images.Destroy(u.DeleteToken)
		}
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity,
			fmt.Sprintf("at least %d restaurant images must be stored, only %d uploaded", minRestaurantImages, len(uploads)))
	}

	urls := make([]string, len(uploads))
	for i, u := range uploads {
		urls[i] = u.URL
	}
	return urls, nil
}

// Status lets an applicant check where their application stands.
func (h *ApplicationHandler) Status(c *fiber.Ctx) error {
	email := c.Query("email")
	if !validEmail(email) {
		return fiber.NewError(fiber.StatusBadRequest, "a valid email is required")
	}

	var app models.VendorApplication
	if err := h.db.Where("email = ?", email).First(&app).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "no application found for this email")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  app.Status,
		"applied": app.CreatedAt,
	})
}
