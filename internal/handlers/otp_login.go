package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/messmate/internal/otp"
	"github.com/example/messmate/internal/utils"
)

// issueOtp generates a fresh code for the email, stores its hash
// (replacing any live code) and mails the plaintext. Delivery failure
// is surfaced: without the mail the user has no code.
func issueOtp(c *fiber.Ctx, store otp.Store, mailer Mailer, email string) error {
	code, err := otp.GenerateCode()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate login code")
	}

	hash, err := utils.HashPassword(code)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate login code")
	}

	if err := store.Save(c.Context(), email, hash); err != nil {
		return err
	}

	if err := mailer.SendOtpEmail(email, code); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "failed to send login code, please try again")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "login code sent",
	})
}

// consumeOtp validates the candidate code against the stored hash and
// consumes it. A wrong code does not consume the entry; a correct one
// is removed atomically so it can succeed at most once, even under a
// racing second verification.
func consumeOtp(c *fiber.Ctx, store otp.Store, email, code string) error {
	if email == "" || code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and code are required")
	}

	hash, err := store.Get(c.Context(), email)
	if err == otp.ErrNotFound {
		return fiber.NewError(fiber.StatusUnauthorized, "verification code expired or not found")
	}
	if err != nil {
		return err
	}

	if !utils.CheckPassword(hash, code) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid verification code")
	}

	removed, err := store.Consume(c.Context(), email)
	if err != nil {
		return err
	}
	if !removed {
		return fiber.NewError(fiber.StatusUnauthorized, "verification code expired or not found")
	}

	return nil
}
