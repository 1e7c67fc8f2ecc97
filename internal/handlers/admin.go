package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/messmate/internal/models"
	"github.com/example/messmate/internal/utils"
)

// AdminHandler manages admin-only endpoints: application review and
// dashboard statistics.
type AdminHandler struct {
	db     *gorm.DB
	mailer Mailer
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, mailer Mailer) *AdminHandler {
	return &AdminHandler{db: db, mailer: mailer}
}

// ListApplications returns applications with optional status filter
// and pagination.
func (h *AdminHandler) ListApplications(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.VendorApplication{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var apps []models.VendorApplication
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&apps).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    apps,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetApplication returns a single application by ID.
func (h *AdminHandler) GetApplication(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var app models.VendorApplication
	if err := h.db.First(&app, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "application not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"application": app,
	})
}

// Approve provisions a vendor account from a pending application. The
// vendor row and the status flip commit together; the notification
// mail is attempted afterwards and never rolls the transition back.
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var app models.VendorApplication
	if err := h.db.First(&app, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "application not found")
		}
		return err
	}

	if app.Status == models.ApplicationApproved {
		return fiber.NewError(fiber.StatusConflict, "application already approved")
	}

	// Cross-aggregate uniqueness: the new vendor must collide with no
	// existing vendor on either identity field.
	var conflict models.Vendor
	err = h.db.Where("email = ? OR contact_number = ?", app.Email, app.ContactNumber).First(&conflict).Error
	if err == nil {
		return fiber.NewError(fiber.StatusConflict, "a vendor already exists with this email or contact number")
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	now := time.Now()
	vendor := models.Vendor{
		Name:             app.Name,
		Email:            app.Email,
		ContactNumber:    app.ContactNumber,
		AuthMethod:       models.AuthMethodOtp,
		MessName:         app.MessName,
		Address:          app.Address,
		City:             app.City,
		Pincode:          app.Pincode,
		GstinOrImages:    app.GstinOrImages,
		GstinNumber:      app.GstinNumber,
		RestaurantImages: app.RestaurantImages,
		IsApproved:       true,
		ApprovedAt:       &now,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vendor).Error; err != nil {
			return err
		}
		return tx.Model(&app).Update("status", models.ApplicationApproved).Error
	})
	if err != nil {
		// Unique indexes on vendor email and contact number catch the
		// race two concurrent approvals can win past the check above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "a vendor already exists with this email or contact number")
		}
		return err
	}

	if err := h.mailer.SendApprovalEmail(app.Email, app.Name); err != nil {
		log.Printf("[Mail] Approval notification to %s failed: %v", app.Email, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "application approved and vendor account created",
		"vendor":      vendor,
		"application": app,
	})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject removes a pending application. The rejection mail goes out
// before the delete: after deletion the name and email needed for the
// message are gone.
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req rejectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Reason == "" {
		return fiber.NewError(fiber.StatusBadRequest, "a rejection reason is required")
	}

	var app models.VendorApplication
	if err := h.db.First(&app, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "application not found")
		}
		return err
	}

	if app.Status == models.ApplicationApproved {
		return fiber.NewError(fiber.StatusConflict, "application already approved")
	}

	if err := h.mailer.SendRejectionEmail(app.Email, app.Name, req.Reason); err != nil {
		log.Printf("[Mail] Rejection notification to %s failed: %v", app.Email, err)
	}

	if err := h.db.Delete(&app).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "application rejected",
	})
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalStudents int64
	if err := h.db.Model(&models.Student{}).Count(&totalStudents).Error; err != nil {
		return err
	}

	var totalVendors int64
	if err := h.db.Model(&models.Vendor{}).Where("is_approved = ?", true).Count(&totalVendors).Error; err != nil {
		return err
	}

	var pendingApplications int64
	if err := h.db.Model(&models.VendorApplication{}).
		Where("status = ?", models.ApplicationPending).
		Count(&pendingApplications).Error; err != nil {
		return err
	}

	var totalReviews int64
	if err := h.db.Model(&models.Review{}).Count(&totalReviews).Error; err != nil {
		return err
	}

	var averageRating float64
	if err := h.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&averageRating).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_students":       totalStudents,
			"total_vendors":        totalVendors,
			"pending_applications": pendingApplications,
			"total_reviews":        totalReviews,
			"average_rating":       roundRating(averageRating),
		},
	})
}
