package handlers

import (
	"math"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/messmate/internal/middleware"
	"github.com/example/messmate/internal/models"
	"github.com/example/messmate/internal/utils"
)

// ReviewHandler manages ratings and comments on vendors.
type ReviewHandler struct {
	db *gorm.DB
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

// ratingStats is computed in a single aggregate pass so count and
// average always reflect the current rows, with no counter drift.
type ratingStats struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

func (h *ReviewHandler) statsFor(vendorEmail string) (ratingStats, error) {
	var stats ratingStats
	err := h.db.Model(&models.Review{}).
		Where("vendor_email = ?", vendorEmail).
		Select("COUNT(*) as count, COALESCE(AVG(rating), 0) as average").
		Scan(&stats).Error
	stats.Average = roundRating(stats.Average)
	return stats, err
}

func roundRating(avg float64) float64 {
	return math.Round(avg*100) / 100
}

type upsertReviewRequest struct {
	VendorEmail string `json:"vendor_email"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}

// Upsert creates or replaces the authenticated student's review of a
// vendor. The (vendor, student) pair identifies the row: repeated
// submissions overwrite rating and comment in place.
func (h *ReviewHandler) Upsert(c *fiber.Ctx) error {
	studentID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
	}

	var req upsertReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Rating < 1 || req.Rating > 5 {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	var vendor models.Vendor
	if err := h.db.Where("email = ? AND is_approved = ?", req.VendorEmail, true).First(&vendor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "vendor not found")
		}
		return err
	}

	var review models.Review
	err := h.db.Where("vendor_email = ? AND student_id = ?", req.VendorEmail, studentID).First(&review).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		review = models.Review{
			VendorEmail: req.VendorEmail,
			VendorName:  vendor.MessName,
			StudentID:   studentID,
			Rating:      req.Rating,
			Comment:     req.Comment,
		}
		if err := h.db.Create(&review).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		review.Rating = req.Rating
		review.Comment = req.Comment
		review.VendorName = vendor.MessName
		if err := h.db.Save(&review).Error; err != nil {
			return err
		}
	}

	// Attach the author for display.
	var student models.Student
	if err := h.db.First(&student, "id = ?", studentID).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
	} else {
		review.Student = &student
	}

	return c.JSON(fiber.Map{
		"success": true,
		"review":  review,
	})
}

// ListByVendor returns one page of a vendor's reviews, newest first,
// together with the running count and average.
func (h *ReviewHandler) ListByVendor(c *fiber.Ctx) error {
	vendorEmail := c.Params("email")
	if vendorEmail == "" {
		return fiber.NewError(fiber.StatusBadRequest, "vendor email is required")
	}

	stats, err := h.statsFor(vendorEmail)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)

	var reviews []models.Review
	if err := h.db.Preload("Student").
		Where("vendor_email = ?", vendorEmail).
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return err
	}

	hasMore := int64(pg.Offset+len(reviews)) < stats.Count

	return c.JSON(fiber.Map{
		"success":        true,
		"data":           reviews,
		"total_reviews":  stats.Count,
		"average_rating": stats.Average,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"has_more":       hasMore,
		},
	})
}

// Remove deletes the authenticated student's review of a vendor.
func (h *ReviewHandler) Remove(c *fiber.Ctx) error {
	studentID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
	}

	vendorEmail := c.Query("vendor_email")
	if vendorEmail == "" {
		return fiber.NewError(fiber.StatusBadRequest, "vendor_email is required")
	}

	result := h.db.Where("vendor_email = ? AND student_id = ?", vendorEmail, studentID).
		Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "review not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "review deleted",
	})
}

// VendorOwnReviews returns every review of the authenticated vendor,
// unpaginated, with the same aggregate statistics.
func (h *ReviewHandler) VendorOwnReviews(c *fiber.Ctx) error {
	vendorID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
	}

	var vendor models.Vendor
	if err := h.db.First(&vendor, "id = ?", vendorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "vendor not found")
		}
		return err
	}

	stats, err := h.statsFor(vendor.Email)
	if err != nil {
		return err
	}

	var reviews []models.Review
	if err := h.db.Preload("Student").
		Where("vendor_email = ?", vendor.Email).
		Order("created_at desc").
		Find(&reviews).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"vendor":         fiber.Map{"email": vendor.Email, "mess_name": vendor.MessName},
		"data":           reviews,
		"total_reviews":  stats.Count,
		"average_rating": stats.Average,
	})
}
