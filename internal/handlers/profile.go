package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/messmate/internal/middleware"
	"github.com/example/messmate/internal/models"
)

// ProfileHandler manages the authenticated student's profile.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated student.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	studentID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
	}

	var student models.Student
	if err := h.db.First(&student, "id = ?", studentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "student not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"student": student,
	})
}

type updateProfileRequest struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number"`
}

// UpdateProfile completes or updates the student's name and contact
// number. The contact number must not belong to another student.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	studentID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var errs []string
	if req.Name != "" && !validName(req.Name) {
		errs = append(errs, "name must be 2-60 letters")
	}
	if req.ContactNumber != "" && !validContact(req.ContactNumber) {
		errs = append(errs, "contact number must be 10 digits")
	}
	if len(errs) > 0 {
		return validationError(c, errs)
	}

	var student models.Student
	if err := h.db.First(&student, "id = ?", studentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "student not found")
		}
		return err
	}

	if req.ContactNumber != "" {
		var other models.Student
		err := h.db.Where("contact_number = ? AND id <> ?", req.ContactNumber, studentID).First(&other).Error
		if err == nil {
			return fiber.NewError(fiber.StatusConflict, "contact number already in use")
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		student.ContactNumber = &req.ContactNumber
	}

	if req.Name != "" {
		student.Name = req.Name
	}

	if err := h.db.Save(&student).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"student": student,
	})
}
