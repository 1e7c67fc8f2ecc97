package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/messmate/internal/middleware"
	"github.com/example/messmate/internal/models"
	"github.com/example/messmate/internal/utils"
)

// MenuHandler manages vendor menus and public browsing.
type MenuHandler struct {
	db *gorm.DB
}

// NewMenuHandler constructs MenuHandler.
func NewMenuHandler(db *gorm.DB) *MenuHandler {
	return &MenuHandler{db: db}
}

type publishMenuRequest struct {
	Date      string      `json:"date"`
	Day       string      `json:"day"`
	Breakfast models.Meal `json:"breakfast"`
	Lunch     models.Meal `json:"lunch"`
	Dinner    models.Meal `json:"dinner"`
}

// Publish stores the authenticated vendor's menu for the day. Each
// publish creates a new row; the latest row is the current menu.
func (h *MenuHandler) Publish(c *fiber.Ctx) error {
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

	var req publishMenuRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Date == "" || req.Day == "" {
		return fiber.NewError(fiber.StatusBadRequest, "date and day are required")
	}

	menu := models.Menu{
		VendorEmail: vendor.Email,
		VendorName:  vendor.MessName,
		Date:        req.Date,
		Day:         req.Day,
		Breakfast:   req.Breakfast,
		Lunch:       req.Lunch,
		Dinner:      req.Dinner,
	}

	if err := h.db.Create(&menu).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"menu":    menu,
	})
}

// CurrentMenu returns a vendor's latest published menu.
func (h *MenuHandler) CurrentMenu(c *fiber.Ctx) error {
	vendorEmail := c.Params("email")
	if vendorEmail == "" {
		return fiber.NewError(fiber.StatusBadRequest, "vendor email is required")
	}

	var menu models.Menu
	err := h.db.Where("vendor_email = ?", vendorEmail).
		Order("created_at desc").
		First(&menu).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "no menu published yet")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"menu":    menu,
	})
}

// ListVendors returns approved vendors with their review statistics
// for the browse page.
func (h *MenuHandler) ListVendors(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	query := h.db.Model(&models.Vendor{}).Where("is_approved = ?", true)
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var vendors []models.Vendor
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&vendors).Error; err != nil {
		return err
	}

	// Enrich with review counts and averages in one grouped query.
	type vendorStats struct {
		VendorEmail string  `json:"vendor_email"`
		Count       int64   `json:"count"`
		Average     float64 `json:"average"`
	}

	var stats []vendorStats
	if err := h.db.Model(&models.Review{}).
		Select("vendor_email, COUNT(*) as count, COALESCE(AVG(rating), 0) as average").
		Group("vendor_email").
		Scan(&stats).Error; err != nil {
		return err
	}

	statsMap := make(map[string]vendorStats)
	for _, s := range stats {
		statsMap[s.VendorEmail] = s
	}

	type vendorResponse struct {
		models.Vendor
		ReviewCount   int64   `json:"review_count"`
		AverageRating float64 `json:"average_rating"`
	}

	result := make([]vendorResponse, len(vendors))
	for i, v := range vendors {
		result[i] = vendorResponse{Vendor: v}
		if s, ok := statsMap[v.Email]; ok {
			result[i].ReviewCount = s.Count
			result[i].AverageRating = roundRating(s.Average)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
