package handlers

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	nameRe    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z .'-]{1,59}$`)
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	contactRe = regexp.MustCompile(`^[0-9]{10}$`)
	pincodeRe = regexp.MustCompile(`^[0-9]{6}$`)
	gstinRe   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
)

func validName(s string) bool    { return nameRe.MatchString(s) }
func validEmail(s string) bool   { return emailRe.MatchString(s) }
func validContact(s string) bool { return contactRe.MatchString(s) }
func validPincode(s string) bool { return pincodeRe.MatchString(s) }
func validGstin(s string) bool   { return gstinRe.MatchString(s) }

// validationError returns a 400 with the itemized field messages.
func validationError(c *fiber.Ctx, errs []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": strings.Join(errs, "; "),
		"errors":  errs,
	})
}

// adminSubjectID derives a stable subject UUID for the configured
// admin identity, which has no database row of its own.
func adminSubjectID(email string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email))
}
