package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/messmate/internal/config"
	"github.com/example/messmate/internal/models"
	"github.com/example/messmate/internal/otp"
	"github.com/example/messmate/internal/utils"
)

// VendorAuthHandler bundles dependencies for vendor authentication.
// The configured admin identity logs in through the same OTP flow:
// verification branches on the email, not on a separate code pool.
type VendorAuthHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	otps   otp.Store
	mailer Mailer
}

// NewVendorAuthHandler constructs a VendorAuthHandler.
func NewVendorAuthHandler(db *gorm.DB, cfg *config.Config, otps otp.Store, mailer Mailer) *VendorAuthHandler {
	return &VendorAuthHandler{db: db, cfg: cfg, otps: otps, mailer: mailer}
}

func (h *VendorAuthHandler) isAdminEmail(email string) bool {
	return h.cfg.AdminEmail != "" && email == h.cfg.AdminEmail
}

// SendOtp issues a login code for a vendor or the admin. Unlike the
// student flow there is no implicit registration: an unknown email is
// told to apply first.
func (h *VendorAuthHandler) SendOtp(c *fiber.Ctx) error {
	var req sendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !validEmail(req.Email) {
		return fiber.NewError(fiber.StatusBadRequest, "a valid email is required")
	}

	if !h.isAdminEmail(req.Email) {
		var vendor models.Vendor
		err := h.db.Where("email = ? AND is_approved = ?", req.Email, true).First(&vendor).Error
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "Vendor not registered. Please apply first.")
		}
		if err != nil {
			return err
		}
	}

	return issueOtp(c, h.otps, h.mailer, req.Email)
}

// VerifyOtp validates a login code and mints a session token. The
// response is a tagged variant: either an admin profile with an admin
// token, or the vendor profile with a vendor token.
func (h *VendorAuthHandler) VerifyOtp(c *fiber.Ctx) error {
	var req verifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := consumeOtp(c, h.otps, req.Email, req.Code); err != nil {
		return err
	}

	if h.isAdminEmail(req.Email) {
		token, err := utils.GenerateToken(h.cfg.JWTSecret, adminSubjectID(req.Email), utils.RoleAdmin, h.cfg.TokenExpires)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"token":    token,
			"is_admin": true,
			"admin": fiber.Map{
				"email": h.cfg.AdminEmail,
				"name":  h.cfg.AdminName,
			},
		})
	}

	var vendor models.Vendor
	if err := h.db.Where("email = ? AND is_approved = ?", req.Email, true).First(&vendor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "Vendor not registered. Please apply first.")
		}
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, vendor.ID, utils.RoleVendor, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"token":    token,
		"is_admin": false,
		"vendor":   vendor,
	})
}

type vendorRegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Password      string `json:"password"`
	MessName      string `json:"mess_name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Pincode       string `json:"pincode"`
}

// Register creates a legacy password-based vendor account directly,
// bypassing the application pipeline.
func (h *VendorAuthHandler) Register(c *fiber.Ctx) error {
	var req vendorRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var errs []string
	if !validName(req.Name) {
		errs = append(errs, "name must be 2-60 letters")
	}
	if !validEmail(req.Email) {
		errs = append(errs, "a valid email is required")
	}
	if !validContact(req.ContactNumber) {
		errs = append(errs, "contact number must be 10 digits")
	}
	if len(req.Password) < 6 {
		errs = append(errs, "password must be at least 6 characters")
	}
	if req.MessName == "" {
		errs = append(errs, "mess name is required")
	}
	if len(errs) > 0 {
		return validationError(c, errs)
	}

	var existing models.Vendor
	err := h.db.Where("email = ? OR contact_number = ?", req.Email, req.ContactNumber).First(&existing).Error
	if err == nil {
		return fiber.NewError(fiber.StatusConflict, "vendor already exists with this email or contact number")
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	now := time.Now()
	vendor := models.Vendor{
		Name:          req.Name,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		PasswordHash:  passwordHash,
		AuthMethod:    models.AuthMethodPassword,
		MessName:      req.MessName,
		Address:       req.Address,
		City:          req.City,
		Pincode:       req.Pincode,
		IsApproved:    true,
		ApprovedAt:    &now,
	}

	if err := h.db.Create(&vendor).Error; err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, vendor.ID, utils.RoleVendor, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"vendor":  vendor,
	})
}

// Login authenticates a legacy password-based vendor account.
func (h *VendorAuthHandler) Login(c *fiber.Ctx) error {
	var req passwordLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var vendor models.Vendor
	if err := h.db.Where("email = ?", req.Email).First(&vendor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if vendor.PasswordHash == "" || !utils.CheckPassword(vendor.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, vendor.ID, utils.RoleVendor, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"vendor":  vendor,
	})
}
