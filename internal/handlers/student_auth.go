package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/messmate/internal/config"
	"github.com/example/messmate/internal/models"
	"github.com/example/messmate/internal/otp"
	"github.com/example/messmate/internal/utils"
)

// StudentAuthHandler bundles dependencies for student authentication.
type StudentAuthHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	otps   otp.Store
	mailer Mailer
}

// NewStudentAuthHandler constructs a StudentAuthHandler.
func NewStudentAuthHandler(db *gorm.DB, cfg *config.Config, otps otp.Store, mailer Mailer) *StudentAuthHandler {
	return &StudentAuthHandler{db: db, cfg: cfg, otps: otps, mailer: mailer}
}

type sendOtpRequest struct {
	Email string `json:"email"`
}

// SendOtp issues a login code for a student. Login-by-email doubles as
// registration: an unknown email gets a fresh OTP-only account.
func (h *StudentAuthHandler) SendOtp(c *fiber.Ctx) error {
	var req sendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if !validEmail(req.Email) {
		return fiber.NewError(fiber.StatusBadRequest, "a valid email is required")
	}

	student := models.Student{Email: req.Email, AuthMethod: models.AuthMethodOtp}
	if err := h.db.Where("email = ?", req.Email).FirstOrCreate(&student).Error; err != nil {
		return err
	}

	return issueOtp(c, h.otps, h.mailer, req.Email)
}

type verifyOtpRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyOtp validates a login code and mints a student session token.
func (h *StudentAuthHandler) VerifyOtp(c *fiber.Ctx) error {
	var req verifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := consumeOtp(c, h.otps, req.Email, req.Code); err != nil {
		return err
	}

	var student models.Student
	if err := h.db.Where("email = ?", req.Email).First(&student).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "student not found")
		}
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, student.ID, utils.RoleStudent, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"student": student,
	})
}

type passwordLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a legacy password-based student account.
func (h *StudentAuthHandler) Login(c *fiber.Ctx) error {
	var req passwordLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var student models.Student
	if err := h.db.Where("email = ?", req.Email).First(&student).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	// OTP-only accounts carry no password; they must log in by code.
	if student.PasswordHash == "" || !utils.CheckPassword(student.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, student.ID, utils.RoleStudent, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"student": student,
	})
}
